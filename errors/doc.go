// Package errors provides the DAG engine's structured error taxonomy.
// It implements a single AppError carrier type with machine-readable
// codes, retryable detection, and root-cause unwrapping across the
// engine's internal wrapper layers.
package errors
