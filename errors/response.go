package errors

import (
	stderrors "errors"
)

// IsAppError checks if an error is an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// RootCause walks the Unwrap chain and returns the innermost error that is
// not itself an *AppError. This lets callers log or compare against the
// original cause (a timeout, a panic value, a processor's own sentinel
// error) without peeling through however many wrapper layers the engine
// added (a CascadedFailure wrapping the parent's NodeExecutionError
// wrapping the originating node's error, for example).
//
// If err is nil, or if no non-AppError cause is found, RootCause returns
// err unchanged.
func RootCause(err error) error {
	if err == nil {
		return nil
	}
	current := err
	for {
		appErr, ok := current.(*AppError)
		if !ok || appErr.Cause == nil {
			return current
		}
		current = appErr.Cause
	}
}
