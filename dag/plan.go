package dag

import (
	"context"
	"strconv"
	"time"

	"github.com/H-Mr/DAGFlow/observability"
	"github.com/H-Mr/DAGFlow/resilience"
)

// ExecutionPlan is the immutable, compiled representation of a GraphConfig.
// Compilation is pure and deterministic — the same configuration produces
// an equal plan — and the result is safe to share across invocations.
type ExecutionPlan struct {
	allNodes       map[string]struct{}
	parents        map[string][]string
	processors     map[string]Processor
	governance     map[string]*Governance
	edgePredicates map[string]EdgePredicate
	conditions     map[string]NodeCondition
	terminal       any
	globalTimeout  time.Duration
	pool           WorkerPool
	rateLimiter    *resilience.RateLimiter
}

// NodeCount returns the number of nodes in the compiled plan.
func (p *ExecutionPlan) NodeCount() int {
	return len(p.allNodes)
}

// CheckHealth reports the plan itself as up; a compiled plan carries no
// runtime signal beyond having been constructed successfully. Per-node
// circuit breaker state is not surfaced here — it belongs to the governance
// records, which are not addressable by name from outside the package.
func (p *ExecutionPlan) CheckHealth(_ context.Context) observability.Health {
	return observability.Health{
		Name:   "dag.execution_plan",
		Status: observability.HealthStatusUp,
		Details: map[string]string{
			"nodes": strconv.Itoa(len(p.allNodes)),
		},
	}
}
