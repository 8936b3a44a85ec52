// Package dag provides a general-purpose DAG (Directed Acyclic Graph)
// execution engine for orchestrating heterogeneous, dependency-linked
// compute units — RPC fan-out aggregation, multi-stage validation
// pipelines, and business workflow composition are the canonical uses.
//
// A GraphConfig accumulates nodes, directed edges, and per-node governance.
// Compile validates the graph, rejects cycles, and produces an immutable
// ExecutionPlan that can be shared across invocations. Engine.Apply then
// drives the plan against a request value on each call: it propagates
// cascade skip and cascade failure, evaluates edge predicates, enforces
// per-node and global timeouts, retries and falls back where configured,
// and returns the terminal strategy's single result.
package dag
