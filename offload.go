// Package offload hands blocking calls to worker goroutines under
// named concurrency bounds, so a serving loop stays responsive while
// slow synchronous work runs elsewhere.
//
// # Limiter registry
//
// A [Registry] maps names to capacity limiters. Entries are registered
// up front, looked up by the wrapped calls below, and removed when no
// longer wanted:
//
//	offload.Register("db", limiter.New(8))
//	defer offload.Unregister("db")
//
// Re-registering a name overwrites the previous entry (last write
// wins). The package-level functions operate on the process-wide
// registry returned by [Default]; [NewRegistry] builds an isolated one
// for tests or scoped composition.
//
// For a bound tied to a block of work, [Registry.Scoped] registers a
// fresh limiter and returns a release func to pair with defer:
//
//	lim, release := offload.Scoped("reindex", 4)
//	defer release()
//
// # Wrapping blocking calls
//
// [Async] and [Async1] wrap a blocking function into one that submits
// to a worker and immediately returns a pending [Task]:
//
//	query := offload.Async1(lookupUser, offload.WithLimiterName("db"))
//
//	t, err := query(ctx, userID) // does not block on the lookup
//	if err != nil { ... }        // resolution errors surface here
//	user, err := t.Result(ctx)   // the call's own outcome
//
// A name is resolved against the registry at every call, never at wrap
// time, so registering or removing "db" between calls changes what the
// next call does. An unregistered name fails the call with
// [ErrUnknownLimiter] rather than silently falling back to the default
// bound. Wrapping with [WithLimiter] bypasses the registry entirely,
// and wrapping with no limiter option leaves the call under the worker
// pool's own ambient bound.
//
// Execution is delegated to a runner from the
// [github.com/adamwoolhether/offload/worker] package; the built-in
// pool is used unless a registry was built with another runner.
package offload

import (
	"github.com/adamwoolhether/offload/limiter"
)

var defaultRegistry = &Registry{limits: make(map[string]*limiter.Limiter)}

// Default returns the process-wide registry used by the package-level
// functions and by wrapped calls that were not given a registry.
func Default() *Registry { return defaultRegistry }

// Register maps name to lim in the default registry, overwriting any
// previous entry.
func Register(name string, lim *limiter.Limiter) { defaultRegistry.Register(name, lim) }

// Unregister removes name from the default registry if present.
func Unregister(name string) { defaultRegistry.Unregister(name) }

// Lookup returns the limiter registered under name in the default
// registry, reporting absence with ok=false.
func Lookup(name string) (*limiter.Limiter, bool) { return defaultRegistry.Lookup(name) }

// Scoped registers a fresh limiter under name in the default registry
// and returns it with its release func.
func Scoped(name string, capacity int64) (*limiter.Limiter, func()) {
	return defaultRegistry.Scoped(name, capacity)
}
