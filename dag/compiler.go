package dag

import (
	"fmt"
	"time"

	dagerrors "github.com/H-Mr/DAGFlow/errors"
)

// defaultGlobalTimeout is applied when GraphConfig.SetGlobalTimeout is
// never called, per SetGlobalTimeout's documented default.
const defaultGlobalTimeout = 60 * time.Second

// Compile validates a configuration, rejects cycles, computes the
// reverse-dependency map, and wraps each node's processor with the
// configured resilience and unconditional observability decorators. It
// returns a frozen ExecutionPlan, or a CompileError.
func Compile(cfg *GraphConfig) (*ExecutionPlan, error) {
	if cfg.pool == nil {
		return nil, dagerrors.CompileError("a worker pool is required")
	}
	if cfg.terminal == nil {
		return nil, dagerrors.CompileError("a terminal strategy is required")
	}

	inDegree := make(map[string]int, len(cfg.nodes))
	children := make(map[string][]string)
	parents := make(map[string][]string)
	edgePredicates := make(map[string]EdgePredicate)

	for id := range cfg.nodes {
		inDegree[id] = 0
	}

	for _, r := range cfg.routes {
		if _, ok := cfg.nodes[r.from]; !ok {
			continue // edges referencing unknown nodes are silently dropped
		}
		if _, ok := cfg.nodes[r.to]; !ok {
			continue
		}
		inDegree[r.to]++
		children[r.from] = append(children[r.from], r.to)
		parents[r.to] = append(parents[r.to], r.from)
		edgePredicates[r.from+"->"+r.to] = r.predicate
	}

	var queue []string
	for id, deg := range inDegree {
		if deg == 0 {
			queue = append(queue, id)
		}
	}

	drained := 0
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		drained++
		for _, child := range children[id] {
			inDegree[child]--
			if inDegree[child] == 0 {
				queue = append(queue, child)
			}
		}
	}

	if drained != len(cfg.nodes) {
		return nil, dagerrors.CompileError(fmt.Sprintf("cycle detected: drained %d of %d nodes", drained, len(cfg.nodes)))
	}

	processors := make(map[string]Processor, len(cfg.nodes))
	governance := make(map[string]*Governance, len(cfg.nodes))
	conditions := make(map[string]NodeCondition)
	allNodes := make(map[string]struct{}, len(cfg.nodes))

	for id, n := range cfg.nodes {
		allNodes[id] = struct{}{}

		gov := n.governance
		if !n.hasGovernance {
			gov = cfg.defaultGovernance
		}

		proc := n.processor
		if gov != nil && gov.MaxRetries > 0 {
			proc = withRetry(id, proc, gov)
		}
		if gov != nil && gov.CircuitBreaker != nil {
			proc = withCircuitBreaker(id, proc, gov.CircuitBreaker)
		}
		proc = withObservability(id, proc)

		processors[id] = proc
		governance[id] = gov
		if n.condition != nil {
			conditions[id] = n.condition
		}
	}

	globalTimeout := cfg.globalTimeout
	if globalTimeout <= 0 {
		globalTimeout = defaultGlobalTimeout
	}

	return &ExecutionPlan{
		allNodes:       allNodes,
		parents:        parents,
		processors:     processors,
		governance:     governance,
		edgePredicates: edgePredicates,
		conditions:     conditions,
		terminal:       cfg.terminal,
		globalTimeout:  globalTimeout,
		pool:           cfg.pool,
		rateLimiter:    cfg.rateLimiter,
	}, nil
}
