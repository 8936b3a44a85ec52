package dag

import (
	"context"

	"github.com/google/uuid"

	dagerrors "github.com/H-Mr/DAGFlow/errors"
	"github.com/H-Mr/DAGFlow/observability"
)

// Engine is the construct-once, apply-many façade over a compiled graph.
// New performs compilation eagerly so a caller learns about a cycle or a
// missing dependency at startup rather than on the first request; Apply
// is the single-shot execution entry point.
type Engine[Req, Res any] struct {
	plan     *ExecutionPlan
	terminal TerminalStrategy[Req, Res]
}

// New compiles cfg into an Engine. It fails if the graph is cyclic or
// disconnected, if the configured worker pool or terminal strategy is
// missing, or if the terminal strategy's type parameters don't match
// Req/Res.
func New[Req, Res any](cfg *GraphConfig) (*Engine[Req, Res], error) {
	plan, err := Compile(cfg)
	if err != nil {
		return nil, err
	}

	terminal, ok := plan.terminal.(TerminalStrategy[Req, Res])
	if !ok {
		return nil, dagerrors.CompileError("terminal strategy does not match the engine's request/response types")
	}

	return &Engine[Req, Res]{plan: plan, terminal: terminal}, nil
}

// Apply drives the compiled plan against request: it waits on the
// engine-level rate limiter (if configured), builds and awaits the
// per-invocation task graph, then reduces the successful results through
// the terminal strategy. Every call gets its own task table; nothing is
// shared across calls except the immutable plan and any governance-level
// circuit breakers/bulkheads.
func (e *Engine[Req, Res]) Apply(ctx context.Context, request Req) (Res, error) {
	var zero Res

	if e.plan.rateLimiter != nil {
		if err := e.plan.rateLimiter.Wait(ctx); err != nil {
			return zero, err
		}
	}

	ctx, span := observability.StartSpan(ctx, "dag.apply")
	defer span.End()

	// Every invocation gets its own correlation id, carried on the span so
	// a single Apply's node-level spans and logs can be traced together.
	invocationID := uuid.New().String()
	observability.SetSpanAttribute(ctx, "dag.invocation_id", invocationID)

	results, err := newScheduler(e.plan, request).run(ctx)
	if err != nil {
		observability.SetSpanError(ctx, err)
		return zero, err
	}

	res, err := e.terminal(request, results)
	if err != nil {
		observability.SetSpanError(ctx, err)
		return zero, err
	}
	return res, nil
}

// NodeCount returns the number of nodes in the compiled plan.
func (e *Engine[Req, Res]) NodeCount() int {
	return e.plan.NodeCount()
}

// CheckHealth reports the health of the underlying compiled plan.
func (e *Engine[Req, Res]) CheckHealth(ctx context.Context) observability.Health {
	return e.plan.CheckHealth(ctx)
}
