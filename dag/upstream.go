package dag

import dagerrors "github.com/H-Mr/DAGFlow/errors"

// UpstreamInputView is an immutable, read-only projection of a node's
// parent results. It is the only way a processor, edge predicate, or
// fallback observes upstream output.
type UpstreamInputView struct {
	values map[string]any
}

func newUpstreamView(values map[string]any) *UpstreamInputView {
	return &UpstreamInputView{values: values}
}

func emptyUpstreamView() *UpstreamInputView {
	return &UpstreamInputView{values: map[string]any{}}
}

// Get returns the value produced by the named parent node, or nil if the
// parent was skipped, never ran, or succeeded with a nil value.
func (v *UpstreamInputView) Get(nodeID string) any {
	if v == nil {
		return nil
	}
	return v.values[nodeID]
}

// GetTyped returns the value produced by the named parent node, asserted
// to type T. A missing parent yields the zero value and a nil error — the
// same outcome as a parent that succeeded with a nil value — so callers
// must not assume a nil-valued parent is distinguishable from an absent
// one. A parent present with a non-conforming type yields TypeMismatch.
func GetTyped[T any](v *UpstreamInputView, nodeID string) (T, error) {
	var zero T
	if v == nil {
		return zero, nil
	}
	raw, ok := v.values[nodeID]
	if !ok {
		return zero, nil
	}
	typed, ok := raw.(T)
	if !ok {
		return zero, dagerrors.TypeMismatch(nodeID, raw, zero)
	}
	return typed, nil
}
