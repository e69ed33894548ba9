package util

import (
	"sync/atomic"

	"github.com/panjf2000/ants/v2"
)

// WorkerPool schedules functions onto a bounded set of goroutines.
// *ants.Pool satisfies it.
type WorkerPool interface {
	// Submit hands fn to a worker goroutine. A non-nil error
	// means fn was not accepted and will never run.
	Submit(fn func()) error

	// Release shuts the pool down. Submit returns ErrPoolClosed
	// afterwards. Functions already running are not waited for.
	Release()
}

// ErrPoolClosed is returned by Submit after Release.
var ErrPoolClosed = ants.ErrPoolClosed

type syncWorkerPool struct {
	closed atomic.Bool
}

// NewPseudoWorkerPool returns a WorkerPool that runs each submitted
// function in the caller's goroutine before Submit returns. Used in
// tests to make pool-driven code deterministic.
func NewPseudoWorkerPool() WorkerPool {
	return new(syncWorkerPool)
}

func (p *syncWorkerPool) Submit(fn func()) error {
	if p.closed.Load() {
		return ErrPoolClosed
	}

	fn()

	return nil
}

func (p *syncWorkerPool) Release() {
	p.closed.Store(true)
}
