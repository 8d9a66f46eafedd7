package pool

import (
	"log/slog"
	"sync"
)

// SharedQueuePool is the production pool: a fixed number of worker
// goroutines consuming a single shared channel. A panic in one job is
// caught at the worker boundary so it cannot crash the worker or leak
// into other jobs; the worker simply continues to the next message.
type SharedQueuePool struct {
	jobs chan Job
	done chan struct{}
	wg   sync.WaitGroup
}

// NewSharedQueuePool starts size worker goroutines, each blocked on a
// shared job channel.
func NewSharedQueuePool(size int) (*SharedQueuePool, error) {
	if err := requirePositiveSize(size); err != nil {
		return nil, err
	}

	p := &SharedQueuePool{
		jobs: make(chan Job),
		done: make(chan struct{}),
	}

	for i := 0; i < size; i++ {
		p.wg.Add(1)
		go p.worker()
	}

	slog.Info("pool: started shared-queue pool", "workers", size)
	return p, nil
}

func (p *SharedQueuePool) worker() {
	defer p.wg.Done()
	for {
		select {
		case job, ok := <-p.jobs:
			if !ok {
				return
			}
			runIsolated(job)
		case <-p.done:
			return
		}
	}
}

// Spawn enqueues job on the shared channel. A blocked worker picks it up
// as soon as one is free.
func (p *SharedQueuePool) Spawn(job Job) {
	select {
	case p.jobs <- job:
	case <-p.done:
	}
}

// Shutdown signals every worker to stop taking new jobs and waits for
// them to drain their current job, if any, before returning.
func (p *SharedQueuePool) Shutdown() {
	close(p.done)
	p.wg.Wait()
}
