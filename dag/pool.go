package dag

import "context"

// WorkerPool executes submitted node and fallback bodies. The engine never
// shuts it down and creates no implicit threads of its own beyond the
// dispatch goroutine that awaits a slot from this pool. A caller may supply
// its own implementation; BoundedPool is the bundled default.
type WorkerPool interface {
	// Submit blocks until a slot is available or ctx is cancelled, then
	// runs fn asynchronously and returns before fn completes. A non-nil
	// error means fn was never run.
	Submit(ctx context.Context, fn func()) error
}

// BoundedPool is a fixed-size WorkerPool backed by a buffered channel
// semaphore. It reimplements the acquire/release idiom of
// resilience.Bulkhead without inheriting its synchronous, run-to-completion
// contract, since the scheduler needs submission decoupled from completion.
type BoundedPool struct {
	sem chan struct{}
}

// NewBoundedPool returns a WorkerPool allowing at most size concurrent
// in-flight submissions.
func NewBoundedPool(size int) *BoundedPool {
	if size <= 0 {
		size = 1
	}
	return &BoundedPool{sem: make(chan struct{}, size)}
}

// Submit implements WorkerPool.
func (p *BoundedPool) Submit(ctx context.Context, fn func()) error {
	select {
	case p.sem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}

	go func() {
		defer func() { <-p.sem }()
		fn()
	}()
	return nil
}

// InUse returns the number of slots currently occupied.
func (p *BoundedPool) InUse() int {
	return len(p.sem)
}
