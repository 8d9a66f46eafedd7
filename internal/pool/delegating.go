package pool

import (
	"log/slog"

	"github.com/panjf2000/ants/v2"
	"github.com/jassi-singh/kvs/internal/kverrors"
)

// DelegatingPool forwards jobs to github.com/panjf2000/ants, a
// general-purpose work-stealing goroutine pool, configured with the
// requested size. This is the Go analogue of the original project's
// rayon-backed RayonThreadPool (original_source/src/thread_pool/rayon.rs).
type DelegatingPool struct {
	inner *ants.Pool
}

// NewDelegatingPool constructs a DelegatingPool backed by an ants.Pool
// capped at size concurrent goroutines.
func NewDelegatingPool(size int) (*DelegatingPool, error) {
	if err := requirePositiveSize(size); err != nil {
		return nil, err
	}

	inner, err := ants.NewPool(size, ants.WithPanicHandler(func(r any) {
		slog.Error("pool: recovered panic in delegated job", "panic", r)
	}))
	if err != nil {
		return nil, kverrors.Stringf("pool: ants.NewPool: %v", err)
	}

	slog.Info("pool: started delegating pool", "workers", size)
	return &DelegatingPool{inner: inner}, nil
}

// Spawn submits job to the underlying ants.Pool.
func (p *DelegatingPool) Spawn(job Job) {
	if err := p.inner.Submit(func() { job() }); err != nil {
		slog.Error("pool: failed to submit job to delegating pool", "error", err)
	}
}

// Shutdown releases the underlying ants.Pool. Later Spawn calls are
// rejected and logged; it returns without waiting for jobs that are still
// running.
func (p *DelegatingPool) Shutdown() {
	p.inner.Release()
}
