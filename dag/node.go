package dag

import "context"

// Processor is a node's unit of work: given the request and a view over
// its parents' results, it produces a value or an error.
type Processor func(ctx context.Context, request any, input *UpstreamInputView) (any, error)

// EdgePredicate gates traversal of one edge at runtime.
type EdgePredicate func(ctx context.Context, request any, input *UpstreamInputView) (bool, error)

// FallbackStrategy produces a substitute value for a node that failed. It
// is invoked with an empty upstream view — on cascade failure, parent
// outputs are generally unavailable or incoherent, and the engine does not
// pass partial parent data to avoid encouraging dependence on it.
type FallbackStrategy func(ctx context.Context, request any, input *UpstreamInputView, cause error) (any, error)

// NodeCondition gates a node on the request alone, evaluated before the
// node's parents are even consulted.
type NodeCondition func(ctx context.Context, request any) (bool, error)

// TerminalStrategy collapses the set of successful node values into the
// caller's final result. It runs once per invocation, after every task has
// settled.
type TerminalStrategy[Req, Res any] func(request Req, results map[string]any) (Res, error)

func alwaysTrue(_ context.Context, _ any, _ *UpstreamInputView) (bool, error) {
	return true, nil
}
