package csv2pg

import (
	"context"
	"time"
)

// TypeProvider is the capability contract for external type inference.
// Given a chunk of columns with sample data, an implementation returns one
// inferred type per column or fails the whole chunk.
//
// Implementations must not mutate the chunk, must be safe to invoke
// concurrently for distinct chunks, and must eventually resolve — retry and
// timeout discipline lives inside the provider, so callers only ever observe
// "chunk succeeded" or "chunk failed".
type TypeProvider interface {
	// InferTypes infers PostgreSQL types for every column in the chunk.
	// The returned slice ideally has one entry per chunk column; callers
	// must tolerate partial results.
	InferTypes(ctx context.Context, chunk ColumnChunk) ([]InferredType, error)
}

// RetryStrategy calculates the delay before the next retry attempt.
type RetryStrategy interface {
	// NextDelay returns the duration to wait before the next attempt.
	// attempt is zero-indexed (0 = first retry, 1 = second retry, etc.)
	NextDelay(attempt int) time.Duration

	// MaxAttempts returns the maximum number of retry attempts
	// (0 = no retries, -1 = unlimited).
	MaxAttempts() int
}

// ErrorClassifier determines whether an error is transient (retryable) or fatal.
type ErrorClassifier interface {
	// IsTransient returns true if the error is temporary and the operation
	// should be retried.
	IsTransient(err error) bool
}
