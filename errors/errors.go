package errors

import "fmt"

// AppError is the unified error type raised by the DAG engine.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetails merges the provided details into the error and returns the receiver.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Retryable: IsRetryableCode(code),
	}
}

// --- DAG error constructors ---

// CompileError reports that a graph failed Compile or engine construction:
// a cycle, a missing worker pool or terminal strategy, or a terminal
// strategy whose type parameters do not match the engine's. Edges that
// reference unknown nodes are dropped by Compile, not reported here.
func CompileError(reason string) *AppError {
	return &AppError{
		Code:    ErrCodeCompileError,
		Message: fmt.Sprintf("graph compilation failed: %s", reason),
	}
}

// NodeExecutionError wraps an error returned (or a panic recovered) from a
// node's processor.
func NodeExecutionError(nodeID string, cause error) *AppError {
	return (&AppError{
		Code:    ErrCodeNodeExecution,
		Message: fmt.Sprintf("node %q execution failed", nodeID),
		Cause:   cause,
	}).WithDetail("node", nodeID)
}

// NodeTimeoutError reports that a node exceeded its governance timeout.
func NodeTimeoutError(nodeID string) *AppError {
	return (&AppError{
		Code:      ErrCodeNodeTimeout,
		Message:   fmt.Sprintf("node %q exceeded its timeout", nodeID),
		Retryable: true,
	}).WithDetail("node", nodeID)
}

// EdgeConditionError wraps an error raised while evaluating an edge predicate.
func EdgeConditionError(from, to string, cause error) *AppError {
	return (&AppError{
		Code:    ErrCodeEdgeCondition,
		Message: fmt.Sprintf("edge predicate %q->%q failed", from, to),
		Cause:   cause,
	}).WithDetail("from", from).WithDetail("to", to)
}

// FallbackFailed wraps an error raised by a node's fallback strategy.
func FallbackFailed(nodeID string, cause error) *AppError {
	return (&AppError{
		Code:    ErrCodeFallbackFailed,
		Message: fmt.Sprintf("node %q fallback strategy failed", nodeID),
		Cause:   cause,
	}).WithDetail("node", nodeID)
}

// CascadedFailure reports that a node never ran because a parent node
// failed first. A skipped parent does not produce this error; it skips
// the child instead.
func CascadedFailure(parentID string, cause error) *AppError {
	return (&AppError{
		Code:    ErrCodeCascadedFailure,
		Message: fmt.Sprintf("upstream node %q failed", parentID),
		Cause:   cause,
	}).WithDetail("parent", parentID)
}

// DAGTimeout reports that the invocation's global deadline was exceeded
// before all nodes completed.
func DAGTimeout() *AppError {
	return &AppError{
		Code:      ErrCodeDAGTimeout,
		Message:   "invocation exceeded its global timeout",
		Retryable: true,
	}
}

// TypeMismatch reports that an UpstreamInputView typed accessor disagreed
// with the runtime type of a stored parent result.
func TypeMismatch(nodeID string, actual, expected any) *AppError {
	return (&AppError{
		Code:    ErrCodeTypeMismatch,
		Message: fmt.Sprintf("node %q: expected %T, got %T", nodeID, expected, actual),
	}).WithDetail("node", nodeID).WithDetail("expected", fmt.Sprintf("%T", expected)).WithDetail("actual", fmt.Sprintf("%T", actual))
}

// CircuitOpenError reports that a node's circuit breaker rejected the call
// without running the processor.
func CircuitOpenError(nodeID string, cause error) *AppError {
	return (&AppError{
		Code:      ErrCodeCircuitOpen,
		Message:   fmt.Sprintf("node %q circuit breaker is open", nodeID),
		Retryable: true,
		Cause:     cause,
	}).WithDetail("node", nodeID)
}
