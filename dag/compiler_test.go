package dag

import (
	"context"
	"testing"
)

func TestCompile_DropsEdgesReferencingUnknownNodes(t *testing.T) {
	cfg := NewGraphConfig().
		AddNode("A", constProcessor("a")).
		AddRoute("A", "ghost").
		AddRoute("ghost", "A").
		SetWorkerPool(NewBoundedPool(1)).
		SetTerminalStrategy(resultMapTerminal())

	plan, err := Compile(cfg)
	if err != nil {
		t.Fatalf("unexpected compile error: %v", err)
	}
	if len(plan.parents["A"]) != 0 {
		t.Errorf("expected no parents for A, got %v", plan.parents["A"])
	}
	if _, ok := plan.allNodes["ghost"]; ok {
		t.Error("ghost should not be registered as a node")
	}
}

func TestCompile_ParentsPreserveEdgeInsertionOrder(t *testing.T) {
	cfg := NewGraphConfig().
		AddNode("A", constProcessor("a")).
		AddNode("B", constProcessor("b")).
		AddNode("C", constProcessor("c")).
		AddRoute("B", "C").
		AddRoute("A", "C").
		SetWorkerPool(NewBoundedPool(1)).
		SetTerminalStrategy(resultMapTerminal())

	plan, err := Compile(cfg)
	if err != nil {
		t.Fatalf("unexpected compile error: %v", err)
	}
	parents := plan.parents["C"]
	if len(parents) != 2 || parents[0] != "B" || parents[1] != "A" {
		t.Errorf("expected parents [B A] in insertion order, got %v", parents)
	}
}

func TestCompile_DuplicateRouteAccumulatesParentsButCollapsesPredicate(t *testing.T) {
	calls := 0
	firstPredicate := func(_ context.Context, _ any, _ *UpstreamInputView) (bool, error) {
		calls++
		return true, nil
	}

	cfg := NewGraphConfig().
		AddNode("A", constProcessor("a")).
		AddNode("B", constProcessor("b")).
		AddRouteWithPredicate("A", "B", firstPredicate).
		AddRouteWithPredicate("A", "B", falsePredicate).
		SetWorkerPool(NewBoundedPool(1)).
		SetTerminalStrategy(resultMapTerminal())

	plan, err := Compile(cfg)
	if err != nil {
		t.Fatalf("unexpected compile error: %v", err)
	}

	if got := len(plan.parents["B"]); got != 2 {
		t.Errorf("expected the adjacency to accumulate both duplicate edges, got %d entries", got)
	}
	predicate, ok := plan.edgePredicates["A->B"]
	if !ok {
		t.Fatal("expected an edge predicate to be registered")
	}
	passed, err := predicate(context.Background(), "req", nil)
	if err != nil {
		t.Fatalf("unexpected predicate error: %v", err)
	}
	if passed {
		t.Error("expected the last-registered (false) predicate to win")
	}
}

func TestCompile_DuplicateNodeRegistrationLastWins(t *testing.T) {
	cfg := NewGraphConfig().
		AddNode("A", constProcessor("first")).
		AddNode("A", constProcessor("second")).
		SetWorkerPool(NewBoundedPool(1)).
		SetTerminalStrategy(lastResultTerminal("A"))

	engine, err := New[string, string](cfg)
	if err != nil {
		t.Fatalf("unexpected compile error: %v", err)
	}
	got, err := engine.Apply(context.Background(), "req")
	if err != nil {
		t.Fatalf("unexpected apply error: %v", err)
	}
	if got != "second" {
		t.Errorf("expected the later registration to win, got %q", got)
	}
}

func TestCompile_GlobalTimeoutDefaultsTo60Seconds(t *testing.T) {
	cfg := NewGraphConfig().
		AddNode("A", constProcessor("a")).
		SetWorkerPool(NewBoundedPool(1)).
		SetTerminalStrategy(resultMapTerminal())

	plan, err := Compile(cfg)
	if err != nil {
		t.Fatalf("unexpected compile error: %v", err)
	}
	if plan.globalTimeout != defaultGlobalTimeout {
		t.Errorf("expected default global timeout, got %s", plan.globalTimeout)
	}
}

func TestCompile_SelfLoopIsACycle(t *testing.T) {
	cfg := NewGraphConfig().
		AddNode("A", constProcessor("a")).
		AddRoute("A", "A").
		SetWorkerPool(NewBoundedPool(1)).
		SetTerminalStrategy(resultMapTerminal())

	if _, err := Compile(cfg); err == nil {
		t.Fatal("expected a self-loop to be rejected as a cycle")
	}
}
