// Package pool implements the thread pool abstraction of spec.md §4.8:
// a shared contract (construct with a positive worker count, spawn
// one-shot jobs) with three implementations — naive, shared-queue, and a
// delegating pool over an external work-stealing library.
//
// Grounded on original_source/src/thread_pool/{naive,shared_queue,rayon}.rs
// for the three-implementation shape and the panic-isolation requirement,
// translated to Go's goroutines/channels/recover rather than the Rust
// source's threads/mpsc/catch_unwind — and on the recover()-at-the-boundary
// idiom in a4eee857_ehrlich-b-wingthing's grpc interceptors for how the
// pack logs a recovered panic with a stack trace.
package pool

import (
	"log/slog"
	"runtime/debug"

	"github.com/jassi-singh/kvs/internal/kverrors"
)

// Job is a one-shot callable a pool runs exactly once.
type Job func()

// Pool is the shared contract every implementation below satisfies.
type Pool interface {
	// Spawn enqueues job for execution. It never blocks on the job's
	// completion.
	Spawn(job Job)
	// Shutdown releases the pool's workers. Whether it stops accepting new
	// jobs and whether it waits for in-flight jobs depends on the
	// implementation; see each type's Shutdown.
	Shutdown()
}

func runIsolated(job Job) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("pool: recovered panic in job", "panic", r, "stack", string(debug.Stack()))
		}
	}()
	job()
}

func requirePositiveSize(size int) error {
	if size <= 0 {
		return kverrors.Stringf("pool: size must be positive, got %d", size)
	}
	return nil
}
