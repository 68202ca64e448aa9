package offload

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/adamwoolhether/offload/worker"
)

// ErrUnknownLimiter is returned by a wrapped call whose limiter name
// is not registered at the moment of the call. The failure is
// surfaced before any work is submitted; falling back to the default
// bound would hide a configuration mistake.
var ErrUnknownLimiter = errors.New("limiter is not registered")

// Func is a wrapped blocking call. Invoking it submits the underlying
// function to a worker and returns the pending [Task] immediately.
// The error covers only what can be decided synchronously: bad call
// options and limiter resolution. The outcome of the blocking
// function itself is carried by the task.
type Func[T any] func(ctx context.Context) (*Task[T], error)

// Func1 is a [Func] taking one argument. Calls needing more arguments
// wrap them in a struct or close over them.
type Func1[A, T any] func(ctx context.Context, arg A) (*Task[T], error)

// Task is the typed view of an offloaded call in flight. The value
// and error are published before the done channel closes.
type Task[T any] struct {
	task *worker.Task
}

// ID identifies the task in logs and spans.
func (t *Task[T]) ID() uuid.UUID { return t.task.ID() }

// Done returns a channel that is closed when the call completes.
func (t *Task[T]) Done() <-chan struct{} { return t.task.Done() }

// Err blocks until the call completes and returns its error.
func (t *Task[T]) Err() error { return t.task.Err() }

// Result blocks until the call completes or ctx is done, then returns
// the call's value and error exactly as the wrapped function produced
// them. Abandoning the wait does not stop the call; use [Task.Cancel]
// for that.
func (t *Task[T]) Result(ctx context.Context) (T, error) {
	v, err := t.task.Result(ctx)
	if v == nil {
		var zero T
		return zero, err
	}

	return v.(T), err
}

// Cancel cancels the context the wrapped function was given. The task
// still completes, with whatever the function returns once it notices
// the cancellation.
func (t *Task[T]) Cancel() { t.task.Cancel() }
