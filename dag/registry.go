package dag

import "sync"

// Registry provides named lookup of Processor, EdgePredicate, and
// FallbackStrategy values for declarative graph construction. Closures
// can't be expressed in YAML, so a Pipeline references components by
// name and ResolvePipeline looks them up here.
type Registry struct {
	mu         sync.RWMutex
	processors map[string]Processor
	predicates map[string]EdgePredicate
	fallbacks  map[string]FallbackStrategy
	conditions map[string]NodeCondition
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		processors: make(map[string]Processor),
		predicates: make(map[string]EdgePredicate),
		fallbacks:  make(map[string]FallbackStrategy),
		conditions: make(map[string]NodeCondition),
	}
}

// RegisterProcessor adds a named processor. A later call with the same
// name overwrites the earlier one.
func (r *Registry) RegisterProcessor(name string, p Processor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.processors[name] = p
}

// Processor looks up a named processor.
func (r *Registry) Processor(name string) (Processor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.processors[name]
	return p, ok
}

// RegisterPredicate adds a named edge predicate.
func (r *Registry) RegisterPredicate(name string, p EdgePredicate) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.predicates[name] = p
}

// Predicate looks up a named edge predicate.
func (r *Registry) Predicate(name string) (EdgePredicate, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.predicates[name]
	return p, ok
}

// RegisterFallback adds a named fallback strategy.
func (r *Registry) RegisterFallback(name string, f FallbackStrategy) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallbacks[name] = f
}

// Fallback looks up a named fallback strategy.
func (r *Registry) Fallback(name string) (FallbackStrategy, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.fallbacks[name]
	return f, ok
}

// RegisterCondition adds a named node condition.
func (r *Registry) RegisterCondition(name string, c NodeCondition) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conditions[name] = c
}

// Condition looks up a named node condition.
func (r *Registry) Condition(name string) (NodeCondition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.conditions[name]
	return c, ok
}
