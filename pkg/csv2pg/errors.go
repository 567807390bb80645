package csv2pg

import (
	"errors"
	"strings"
)

// Sentinel errors for common failure scenarios.
// These enable callers to distinguish error types using errors.Is().
//
// Example usage:
//
//	schema, err := engine.Infer(ctx, sample)
//	if errors.Is(err, csv2pg.ErrProviderUnavailable) {
//	    // Provider was unreachable and fallback was disabled
//	}
var (
	// ErrInvalidConfig indicates the provided configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrNoColumns indicates chunking was attempted on an empty column set.
	ErrNoColumns = errors.New("no columns to chunk")

	// ErrEmptyCSV indicates the CSV file has no data rows.
	ErrEmptyCSV = errors.New("csv file is empty")

	// ErrCSVNotFound indicates the CSV file does not exist.
	ErrCSVNotFound = errors.New("csv file not found")

	// ErrProviderUnavailable indicates the inference provider failed for the
	// whole batch and heuristic fallback was disabled.
	ErrProviderUnavailable = errors.New("inference provider unavailable")

	// ErrMalformedResponse indicates the provider returned a payload that
	// could not be validated into inferred types.
	ErrMalformedResponse = errors.New("malformed provider response")

	// ErrOutputExists indicates a generated file already exists and --force
	// was not given.
	ErrOutputExists = errors.New("output file already exists")

	// ErrStateNotFound indicates the state file does not exist.
	ErrStateNotFound = errors.New("state file not found")

	// ErrChecksumMismatch indicates the CSV file changed since the state
	// file was written.
	ErrChecksumMismatch = errors.New("csv checksum mismatch")
)

// ExitCodeForError returns the appropriate exit code for an error.
// Returns ExitSuccess (0) for nil errors, semantic codes for known errors,
// and ExitGeneralError (1) for unclassified errors.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch {
	case errors.Is(err, ErrInvalidConfig):
		return ExitConfigError
	case errors.Is(err, ErrCSVNotFound), errors.Is(err, ErrEmptyCSV):
		return ExitCSVError
	case errors.Is(err, ErrNoColumns), errors.Is(err, ErrProviderUnavailable):
		return ExitInferenceFailed
	case errors.Is(err, ErrOutputExists):
		return ExitGenerationFailed
	case errors.Is(err, ErrStateNotFound), errors.Is(err, ErrChecksumMismatch):
		return ExitStateError
	}

	// Check for common file error patterns from wrapped os errors.
	errStr := err.Error()
	if strings.Contains(errStr, "no such file") ||
		strings.Contains(errStr, "permission denied") {
		return ExitCSVError
	}

	return ExitGeneralError
}
