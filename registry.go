package offload

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/adamwoolhether/offload/limiter"
	"github.com/adamwoolhether/offload/worker"
)

// Registry maps names to capacity limiters so that call sites and the
// configuration that bounds them stay decoupled: the code wrapping a
// call names a limiter, and whatever owns the registry decides what
// that name means at any moment.
//
// A Registry is safe for concurrent use. Racing Register and
// Unregister calls on one name resolve by last write wins.
type Registry struct {
	logger *slog.Logger // nil resolves to slog.Default at use
	runner worker.Runner

	mu     sync.RWMutex
	limits map[string]*limiter.Limiter
}

// NewRegistry builds an isolated Registry with the provided options.
// Without options the registry logs through the default slog logger
// and dispatches to [worker.Default].
func NewRegistry(optFns ...Option) (*Registry, error) {
	var opts registryOpts
	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			return nil, fmt.Errorf("applying registry option: %w", err)
		}
	}

	r := &Registry{
		logger: opts.logger,
		runner: opts.runner,
		limits: make(map[string]*limiter.Limiter),
	}

	return r, nil
}

// Register maps name to lim, overwriting any previous entry. A
// displaced limiter is not released or drained; callers that still
// hold it keep using it untouched. A nil lim is stored like any other
// handle and resolves to the runner's ambient bound at dispatch.
func (r *Registry) Register(name string, lim *limiter.Limiter) {
	r.mu.Lock()
	r.limits[name] = lim
	r.mu.Unlock()

	if lim == nil {
		r.log().Debug("limiter registered", "name", name)
		return
	}

	r.log().Debug("limiter registered", "name", name, "capacity", lim.Capacity())
}

// Unregister removes the entry for name. Removing an absent name is a
// no-op, so Unregister is safe to call twice.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	delete(r.limits, name)
	r.mu.Unlock()

	r.log().Debug("limiter unregistered", "name", name)
}

// Lookup returns the limiter currently registered under name.
// Absence is reported with ok set to false, never an error.
func (r *Registry) Lookup(name string) (*limiter.Limiter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lim, ok := r.limits[name]

	return lim, ok
}

// Scoped registers a fresh limiter bounded at capacity under name and
// returns it together with a release func. Pair the release with
// defer so the entry is removed on every exit path:
//
//	lim, release := reg.Scoped("reindex", 4)
//	defer release()
//
// Release removes the entry only while it still holds this limiter; a
// name overwritten by someone else in the meantime is left alone.
// Calling release more than once is allowed, only the first call can
// remove the entry. Scoped panics if capacity is less than one, as
// [limiter.New] does.
func (r *Registry) Scoped(name string, capacity int64) (*limiter.Limiter, func()) {
	lim := limiter.New(capacity)
	r.Register(name, lim)

	release := func() {
		r.mu.Lock()
		removed := r.limits[name] == lim
		if removed {
			delete(r.limits, name)
		}
		r.mu.Unlock()

		if removed {
			r.log().Debug("scoped limiter released", "name", name)
		}
	}

	return lim, release
}

// run resolves the worker facility at dispatch time.
func (r *Registry) run() worker.Runner {
	if r.runner != nil {
		return r.runner
	}

	return worker.Default()
}

// log resolves the logger at use time so option ordering and late
// slog.SetDefault calls both behave.
func (r *Registry) log() *slog.Logger {
	if r.logger != nil {
		return r.logger
	}

	return slog.Default()
}
