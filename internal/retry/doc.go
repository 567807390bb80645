// Package retry provides retry orchestration for inference provider calls:
// an exponential backoff strategy with jitter, an error classifier that
// separates transient API failures from fatal ones, and an executor that
// ties the two together under context cancellation.
package retry
