package dag

import (
	"time"

	"github.com/H-Mr/DAGFlow/resilience"
)

// Governance holds per-node resilience and concurrency control knobs.
// A zero-value Governance enables none of them.
type Governance struct {
	// Timeout caps a node's wall time. Zero means no timeout.
	Timeout time.Duration
	// MaxRetries is the synchronous retry count. Zero disables the retry
	// decorator entirely.
	MaxRetries int
	// RetryBackoff is the sleep between retry attempts.
	RetryBackoff time.Duration
	// Fallback produces a substitute value on any task-level error.
	Fallback FallbackStrategy
	// CircuitBreaker, if set, gates the node's processor across
	// invocations. It lives on the governance record, not the
	// per-invocation task table, so failures accumulate across calls.
	CircuitBreaker *resilience.CircuitBreaker
	// Bulkhead, if set, bounds how many concurrent in-flight calls to this
	// node (across overlapping invocations sharing the same plan) are
	// allowed, independent of the worker pool's own size.
	Bulkhead *resilience.Bulkhead
}

type node struct {
	id            string
	processor     Processor
	governance    *Governance
	hasGovernance bool
	condition     NodeCondition
}

type route struct {
	from, to  string
	predicate EdgePredicate
}

// GraphConfig is a mutable accumulator for nodes, routes, and engine-level
// settings, used only until an Engine is constructed from it.
type GraphConfig struct {
	nodes             map[string]*node
	routes            []route
	defaultGovernance *Governance
	globalTimeout     time.Duration
	pool              WorkerPool
	rateLimiter       *resilience.RateLimiter
	terminal          any
}

// NewGraphConfig returns an empty graph configuration.
func NewGraphConfig() *GraphConfig {
	return &GraphConfig{nodes: make(map[string]*node)}
}

// AddNode registers a node. The default governance, if any, applies at
// compile time. Duplicate registration overwrites (last wins).
func (c *GraphConfig) AddNode(id string, processor Processor) *GraphConfig {
	c.nodes[id] = &node{id: id, processor: processor}
	return c
}

// AddNodeWithGovernance registers a node with explicit per-node governance.
// A nil governance means no timeout, no retry, no fallback, no circuit
// breaker, no bulkhead — it does not fall back to DefaultGovernance.
func (c *GraphConfig) AddNodeWithGovernance(id string, processor Processor, governance *Governance) *GraphConfig {
	c.nodes[id] = &node{id: id, processor: processor, governance: governance, hasGovernance: true}
	return c
}

// AddNodeCondition attaches a request-only gating condition to an
// already-registered node.
func (c *GraphConfig) AddNodeCondition(id string, condition NodeCondition) *GraphConfig {
	if n, ok := c.nodes[id]; ok {
		n.condition = condition
	}
	return c
}

// AddRoute appends an edge from -> to with a constant-true predicate.
func (c *GraphConfig) AddRoute(from, to string) *GraphConfig {
	c.routes = append(c.routes, route{from: from, to: to, predicate: alwaysTrue})
	return c
}

// AddRouteWithPredicate appends an edge with an explicit predicate. Routes
// are keyed by "from->to"; a later call with the same pair replaces the
// predicate used at compile time, but the adjacency itself still
// accumulates the duplicate entry.
func (c *GraphConfig) AddRouteWithPredicate(from, to string, predicate EdgePredicate) *GraphConfig {
	c.routes = append(c.routes, route{from: from, to: to, predicate: predicate})
	return c
}

// SetDefaultGovernance installs the governance applied to any node
// registered via AddNode (not AddNodeWithGovernance).
func (c *GraphConfig) SetDefaultGovernance(g *Governance) *GraphConfig {
	c.defaultGovernance = g
	return c
}

// SetGlobalTimeout bounds the whole invocation. Unset, it defaults to 60s
// at Engine construction.
func (c *GraphConfig) SetGlobalTimeout(d time.Duration) *GraphConfig {
	c.globalTimeout = d
	return c
}

// SetWorkerPool installs the pool that runs node and fallback bodies. A
// pool is mandatory at Engine construction.
func (c *GraphConfig) SetWorkerPool(pool WorkerPool) *GraphConfig {
	c.pool = pool
	return c
}

// SetRateLimiter installs an optional engine-level admission gate: Apply
// waits on it before building any tasks.
func (c *GraphConfig) SetRateLimiter(rl *resilience.RateLimiter) *GraphConfig {
	c.rateLimiter = rl
	return c
}

// SetTerminalStrategy installs the reducer invoked once execution settles.
// Pass a TerminalStrategy[Req, Res] matching the type parameters of the
// Engine this configuration will be compiled for; New rejects a mismatch.
// A terminal strategy is mandatory at Engine construction.
func (c *GraphConfig) SetTerminalStrategy(ts any) *GraphConfig {
	c.terminal = ts
	return c
}
