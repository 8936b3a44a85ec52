package dag

import (
	"fmt"
	"time"
)

// Pipeline is a composable, YAML-defined graph topology: a name, an
// optional list of other named pipelines to compose, and the node
// definitions that make up this pipeline specifically. Streaming/
// schedule-specific fields present in this shape elsewhere in the
// ecosystem are intentionally absent — this engine is batch-only.
type Pipeline struct {
	// Name is the pipeline identifier, used for include resolution and
	// cycle detection.
	Name string `yaml:"name"`
	// Includes lists other named pipelines to compose (resolved
	// recursively, cycle-checked, diamond-deduplicated).
	Includes []string `yaml:"includes,omitempty"`
	// Nodes defines this pipeline's own node specifications.
	Nodes []NodeDef `yaml:"nodes"`
}

// NodeDef defines one node within a Pipeline.
type NodeDef struct {
	// Name is the node's ID in the resulting GraphConfig. Defaults to
	// Component when empty, matching the common case of one processor
	// registered under one name used by exactly one node.
	Name string `yaml:"name,omitempty"`
	// Component is the registry lookup key for this node's Processor.
	Component string `yaml:"component"`
	// DependsOn lists the node IDs this node depends on; each entry
	// becomes an AddRoute(dep, thisNode) edge with a constant-true
	// predicate.
	DependsOn []string `yaml:"depends_on,omitempty"`
	// Condition is a named NodeCondition registry key, evaluated
	// before this node's parents are even consulted.
	Condition string `yaml:"condition,omitempty"`
	// Governance is this node's inline governance, if any.
	Governance *GovernanceDef `yaml:"governance,omitempty"`
}

// GovernanceDef is the YAML-friendly mirror of Governance: durations as
// parseable strings, and the fallback referenced by registry name rather
// than embedded directly. It has no circuit-breaker or bulkhead fields;
// those can only be set on a Governance from Go code.
type GovernanceDef struct {
	// Timeout is a time.ParseDuration string, e.g. "200ms".
	Timeout string `yaml:"timeout,omitempty"`
	// MaxRetries is the synchronous retry count.
	MaxRetries int `yaml:"max_retries,omitempty"`
	// RetryBackoff is a time.ParseDuration string.
	RetryBackoff string `yaml:"retry_backoff,omitempty"`
	// Fallback is a registry lookup key for a FallbackStrategy.
	Fallback string `yaml:"fallback,omitempty"`
}

// resolve parses the duration strings and looks up the named fallback,
// producing a *Governance ready to attach to a node. A nil
// GovernanceDef yields a nil Governance, matching
// AddNodeWithGovernance's "nil means no governance" contract.
func (g *GovernanceDef) resolve(registry *Registry) (*Governance, error) {
	if g == nil {
		return nil, nil
	}

	gov := &Governance{MaxRetries: g.MaxRetries}

	if g.Timeout != "" {
		d, err := time.ParseDuration(g.Timeout)
		if err != nil {
			return nil, err
		}
		gov.Timeout = d
	}

	if g.RetryBackoff != "" {
		d, err := time.ParseDuration(g.RetryBackoff)
		if err != nil {
			return nil, err
		}
		gov.RetryBackoff = d
	}

	if g.Fallback != "" {
		fb, ok := registry.Fallback(g.Fallback)
		if !ok {
			return nil, fmt.Errorf("dag: fallback %q not found in registry", g.Fallback)
		}
		gov.Fallback = fb
	}

	return gov, nil
}
