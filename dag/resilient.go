package dag

import (
	"context"
	"time"
)

// withRetry wraps a raw processor with synchronous bounded retry. It
// attempts the processor up to 1+MaxRetries times, sleeping RetryBackoff
// between attempts (context-aware: a cancelled context aborts the wait
// and the error propagates without further retries). On exhaustion, the
// last captured error is raised. It does not understand timeouts — those
// are the scheduler's job.
//
// This does not delegate to resilience.Retry: that helper substitutes a
// 100ms default the moment InitialBackoff is zero, which would silently
// turn an explicit RetryBackoff of 0 (retry immediately, no pause) into
// a 100ms pause between every attempt. The governance contract requires
// zero to mean zero.
func withRetry(_ string, processor Processor, gov *Governance) Processor {
	attempts := 1 + gov.MaxRetries
	backoff := gov.RetryBackoff

	return func(ctx context.Context, request any, input *UpstreamInputView) (any, error) {
		var lastErr error

		for attempt := 1; attempt <= attempts; attempt++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			result, err := processor(ctx, request, input)
			if err == nil {
				return result, nil
			}
			lastErr = err

			if attempt == attempts {
				break
			}
			if backoff > 0 {
				timer := time.NewTimer(backoff)
				select {
				case <-ctx.Done():
					timer.Stop()
					return nil, ctx.Err()
				case <-timer.C:
				}
			}
		}

		return nil, lastErr
	}
}
