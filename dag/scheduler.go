package dag

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	dagerrors "github.com/H-Mr/DAGFlow/errors"
	"github.com/H-Mr/DAGFlow/logger"
	"github.com/H-Mr/DAGFlow/resilience"
)

// scheduler drives one invocation of a compiled ExecutionPlan. Its task
// table is the memoization cache that guarantees each node runs at most
// once; its lifetime is exactly one Apply call and it is never shared.
type scheduler struct {
	plan    *ExecutionPlan
	request any

	mu    sync.Mutex
	tasks map[string]*task
}

func newScheduler(plan *ExecutionPlan, request any) *scheduler {
	return &scheduler{plan: plan, request: request, tasks: make(map[string]*task)}
}

// run builds the task graph bottom-up with memoization, awaits every task
// under the plan's global deadline via an errgroup-derived cancellable
// context, and returns the map of successful non-nil node results.
func (s *scheduler) run(parentCtx context.Context) (map[string]any, error) {
	ctx, cancel := context.WithTimeout(parentCtx, s.plan.globalTimeout)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)

	for id := range s.plan.allNodes {
		s.getOrCreateTask(gctx, g, id)
	}

	if err := g.Wait(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, dagerrors.DAGTimeout()
		}
		cause := dagerrors.RootCause(err)
		logger.WithComponent("dag").Error("invocation failed", logger.Fields("error", cause.Error()))
		if m := dagMetricsInstance(); m != nil {
			m.RecordError(ctx, "invocation", "dag")
		}
		return nil, cause
	}

	return s.collectResults(), nil
}

func (s *scheduler) collectResults() map[string]any {
	results := make(map[string]any)
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, t := range s.tasks {
		entry, settled := t.peek()
		if !settled {
			continue // cancelled or never completed; must not contribute
		}
		if entry.status == statusSuccess && entry.value != nil {
			results[id] = entry.value
		}
	}
	return results
}

// getOrCreateTask returns the memoized task for id, recursively obtaining
// parent tasks first and registering the node's eventual execution with g.
func (s *scheduler) getOrCreateTask(ctx context.Context, g *errgroup.Group, id string) *task {
	s.mu.Lock()
	if t, ok := s.tasks[id]; ok {
		s.mu.Unlock()
		return t
	}
	t := newTask()
	s.tasks[id] = t
	s.mu.Unlock()

	parentIDs := s.plan.parents[id]
	parentTasks := make([]*task, len(parentIDs))
	for i, pid := range parentIDs {
		parentTasks[i] = s.getOrCreateTask(ctx, g, pid)
	}

	g.Go(func() error {
		return s.dispatch(ctx, id, parentIDs, parentTasks, t)
	})

	return t
}

// dispatch submits the node's governed body to the worker pool and blocks
// until it settles, propagating any task error to the errgroup so the
// shared context is cancelled for every other outstanding task.
func (s *scheduler) dispatch(ctx context.Context, id string, parentIDs []string, parentTasks []*task, t *task) error {
	submitErr := s.plan.pool.Submit(ctx, func() {
		gov := s.plan.governance[id]
		entry, err := s.runNodeGoverned(ctx, id, gov, parentIDs, parentTasks)
		if err != nil {
			t.fail(err)
			return
		}
		t.resolve(entry)
	})
	if submitErr != nil {
		wrapped := fmt.Errorf("dag: submitting node %q to worker pool: %w", id, submitErr)
		t.fail(wrapped)
		return wrapped
	}

	_, err := t.wait(ctx)
	return err
}

// runNodeGoverned applies the per-node timeout, then the fallback, around
// the composite body — in that order, so fallback observes both timeouts
// and intrinsic failures.
func (s *scheduler) runNodeGoverned(ctx context.Context, id string, gov *Governance, parentIDs []string, parentTasks []*task) (nodeEntry, error) {
	bodyCtx := ctx
	if gov != nil && gov.Timeout > 0 {
		var cancel context.CancelFunc
		bodyCtx, cancel = context.WithTimeout(ctx, gov.Timeout)
		defer cancel()
	}

	entry, err := s.runNodeBody(bodyCtx, id, parentIDs, parentTasks)
	if err != nil && bodyCtx.Err() == context.DeadlineExceeded {
		err = dagerrors.NodeTimeoutError(id)
	}

	if err == nil {
		return entry, nil
	}

	if gov == nil || gov.Fallback == nil {
		return nodeEntry{}, err
	}

	cause := dagerrors.RootCause(err)
	fbValue, fbErr := gov.Fallback(ctx, s.request, emptyUpstreamView(), cause)
	if fbErr != nil {
		return nodeEntry{}, dagerrors.FallbackFailed(id, fbErr)
	}
	return nodeEntry{status: statusSuccess, value: fbValue}, nil
}

// runNodeBody evaluates the node's request-only condition, then either
// runs the body directly (no parents) or composes after parents settle.
func (s *scheduler) runNodeBody(ctx context.Context, id string, parentIDs []string, parentTasks []*task) (nodeEntry, error) {
	if cond, ok := s.plan.conditions[id]; ok {
		pass, err := cond(ctx, s.request)
		if err != nil {
			return nodeEntry{}, dagerrors.NodeExecutionError(id, err)
		}
		if !pass {
			return nodeEntry{status: statusSkipped}, nil
		}
	}

	if len(parentIDs) == 0 {
		return s.executeNodeBody(ctx, id, map[string]any{})
	}

	return s.composeAfterParents(ctx, id, parentIDs, parentTasks)
}

// composeAfterParents implements the scheduler's compose-after-parents
// step: skip checks and result assembly first (first SKIPPED parent
// short-circuits, in declared order), then edge predicates over the fully
// assembled parent results (first false short-circuits), then the body.
func (s *scheduler) composeAfterParents(ctx context.Context, id string, parentIDs []string, parentTasks []*task) (nodeEntry, error) {
	parentResults := make(map[string]any)
	for i, pid := range parentIDs {
		entry, err := parentTasks[i].wait(ctx)
		if err != nil {
			return nodeEntry{}, dagerrors.CascadedFailure(pid, err)
		}
		if entry.status == statusSkipped {
			return nodeEntry{status: statusSkipped}, nil
		}
		if entry.status == statusSuccess && entry.value != nil {
			parentResults[pid] = entry.value
		}
	}

	view := newUpstreamView(parentResults)
	for _, pid := range parentIDs {
		predicate, ok := s.plan.edgePredicates[pid+"->"+id]
		if !ok {
			continue
		}
		passed, err := predicate(ctx, s.request, view)
		if err != nil {
			return nodeEntry{}, dagerrors.EdgeConditionError(pid, id, err)
		}
		if !passed {
			return nodeEntry{status: statusSkipped}, nil
		}
	}

	return s.executeNodeBody(ctx, id, parentResults)
}

// executeNodeBody invokes the node's (possibly resilient/circuit-breaker
// wrapped) processor, optionally through a per-node bulkhead.
func (s *scheduler) executeNodeBody(ctx context.Context, id string, parentResults map[string]any) (nodeEntry, error) {
	view := newUpstreamView(parentResults)
	processor := s.plan.processors[id]
	gov := s.plan.governance[id]

	invoke := func() (any, error) {
		return s.invokeProcessor(ctx, id, processor, view)
	}

	var value any
	var err error
	if gov != nil && gov.Bulkhead != nil {
		value, err = resilience.ExecuteWithResult(gov.Bulkhead, ctx, invoke)
	} else {
		value, err = invoke()
	}
	if err != nil {
		return nodeEntry{}, err
	}
	return nodeEntry{status: statusSuccess, value: value}, nil
}

// invokeProcessor calls the decorated processor, recovering a panic into
// the same error kind a thrown error would produce — a single node's bug
// never takes down the process hosting it.
func (s *scheduler) invokeProcessor(ctx context.Context, id string, p Processor, view *UpstreamInputView) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = dagerrors.NodeExecutionError(id, fmt.Errorf("panic: %v", r))
		}
	}()

	value, procErr := p(ctx, s.request, view)
	if procErr != nil {
		return nil, dagerrors.NodeExecutionError(id, procErr)
	}
	return value, nil
}
