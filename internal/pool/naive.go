package pool

// NaivePool ignores its configured size and spawns a fresh goroutine per
// job. Acceptable for tests and baselines (spec.md §4.8); not the
// production choice because it gives no bound on concurrent jobs.
type NaivePool struct{}

// NewNaivePool constructs a NaivePool. size must be positive even though
// it is otherwise unused, matching the shared construction contract.
func NewNaivePool(size int) (*NaivePool, error) {
	if err := requirePositiveSize(size); err != nil {
		return nil, err
	}
	return &NaivePool{}, nil
}

// Spawn runs job on a new goroutine, isolated from panics.
func (p *NaivePool) Spawn(job Job) {
	go runIsolated(job)
}

// Shutdown is a no-op: NaivePool holds no worker state to stop. In-flight
// goroutines are not waited on.
func (p *NaivePool) Shutdown() {}
