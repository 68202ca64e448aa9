package worker

import (
	"context"

	"github.com/google/uuid"
)

// Task represents an in-flight or completed offloaded call. All reads
// block until the call finishes; the completion value and error are
// published before the done channel closes.
type Task struct {
	id     uuid.UUID
	done   chan struct{}
	val    any
	err    error
	cancel context.CancelFunc
}

// ID identifies the task in logs and spans.
func (t *Task) ID() uuid.UUID { return t.id }

// Done returns a channel that is closed when the call completes.
func (t *Task) Done() <-chan struct{} { return t.done }

// Err blocks until the call completes and returns its error.
func (t *Task) Err() error {
	<-t.done
	return t.err
}

// Result blocks until the call completes or ctx is done. Abandoning
// the wait does not stop the call; use [Task.Cancel] for that.
func (t *Task) Result(ctx context.Context) (any, error) {
	select {
	case <-t.done:
		return t.val, t.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Cancel cancels the context the work function was given. The task
// still completes, with whatever the function returns once it notices
// the cancellation.
func (t *Task) Cancel() { t.cancel() }
