package dag

import (
	"context"
	"sync"
	"time"

	"github.com/H-Mr/DAGFlow/logger"
	"github.com/H-Mr/DAGFlow/observability"
)

const observabilityComponent = "dag"

var (
	metricsOnce sync.Once
	metricsInst *observability.Metrics
)

// dagMetricsInstance lazily builds the package-wide metric instruments
// against the global OTel meter provider. A provider that was never
// initialized (no InitMeter call) yields a no-op meter, so this never
// blocks invocation; it just means RecordOperation/RecordError report
// into the default (discarded) SDK meter.
func dagMetricsInstance() *observability.Metrics {
	metricsOnce.Do(func() {
		m, err := observability.NewMetrics(observability.Meter("github.com/H-Mr/DAGFlow/dag"))
		if err == nil {
			metricsInst = m
		}
	})
	return metricsInst
}

// withObservability wraps a node's (possibly retry/circuit-breaker
// wrapped) processor with tracing, metric recording, and structured
// logging, applied unconditionally by Compile to every node regardless
// of governance. Compile applies it last, making it the outermost
// decorator, so the span and the recorded duration cover retries and
// circuit-breaker checks too.
func withObservability(id string, processor Processor) Processor {
	log := logger.GetGlobalLogger()
	if log == nil {
		log = logger.NewDefault(observabilityComponent)
	}
	log = log.WithComponent(observabilityComponent)

	return func(ctx context.Context, request any, input *UpstreamInputView) (any, error) {
		ctx, span := observability.StartSpan(ctx, "dag.node."+id)
		defer span.End()
		observability.SetSpanAttribute(ctx, "dag.node", id)

		start := time.Now()
		result, err := processor(ctx, request, input)
		duration := time.Since(start)

		status := "ok"
		fields := logger.Fields("node", id, "duration", duration.String())
		if err != nil {
			status = "error"
			observability.SetSpanError(ctx, err)
			if m := dagMetricsInstance(); m != nil {
				m.RecordError(ctx, "execute", id)
			}
			log.Error("dag node failed", logger.MergeWithError(fields, err))
		} else {
			log.Debug("dag node completed", fields)
		}

		if m := dagMetricsInstance(); m != nil {
			m.RecordOperation(ctx, id, "dag.run", status, duration)
		}

		return result, err
	}
}
