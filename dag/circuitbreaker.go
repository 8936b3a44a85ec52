package dag

import (
	"context"

	dagerrors "github.com/H-Mr/DAGFlow/errors"
	"github.com/H-Mr/DAGFlow/resilience"
)

// withCircuitBreaker wraps a (possibly retry-wrapped) processor with a
// per-node circuit breaker that persists across invocations. While open,
// calls fail immediately with CircuitOpenError instead of running the
// processor, protecting a chronically failing node from repeatedly burning
// worker-pool time and its configured timeout.
func withCircuitBreaker(id string, processor Processor, cb *resilience.CircuitBreaker) Processor {
	return func(ctx context.Context, request any, input *UpstreamInputView) (any, error) {
		var result any
		err := cb.Execute(func() error {
			var procErr error
			result, procErr = processor(ctx, request, input)
			return procErr
		})
		if err == resilience.ErrCircuitOpen {
			return nil, dagerrors.CircuitOpenError(id, err)
		}
		return result, err
	}
}
