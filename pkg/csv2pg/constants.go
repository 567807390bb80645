package csv2pg

import "time"

// Exit codes for semantic error classification.
// These follow Unix/GNU conventions:
//   - 0: Success
//   - 1: General error
//   - 2: CLI usage error (misuse of command line)
//   - 3+: Application-specific errors
const (
	ExitSuccess          = 0  // Import preparation completed successfully
	ExitGeneralError     = 1  // Unknown or unclassified error
	ExitUsageError       = 2  // CLI usage error (missing args, invalid flags)
	ExitPanic            = 3  // Internal panic (unexpected crash)
	ExitConfigError      = 10 // Invalid configuration or parameters
	ExitCSVError         = 11 // CSV file missing, empty, or unreadable
	ExitInferenceFailed  = 12 // Type inference failed with fallback disabled
	ExitGenerationFailed = 13 // Output file generation failed
	ExitStateError       = 14 // State file missing, corrupt, or stale
)

const (
	// DefaultSampleRows is the number of CSV rows sampled for inference.
	DefaultSampleRows = 100

	// DefaultChunkSize is the number of columns sent per inference request.
	DefaultChunkSize = 20

	// PreviewRows caps the number of sample rows embedded in any single
	// inference request. Wide samples are truncated, never the column set.
	PreviewRows = 20

	// MaxPatternValues bounds how many non-null values the heuristic
	// classifier inspects per column.
	MaxPatternValues = 100

	// VarcharThreshold is the longest observed value (exclusive) for which
	// the heuristic classifier still emits varchar instead of text.
	VarcharThreshold = 255

	// VarcharBuffer is the slack added to the longest observed value when
	// sizing a varchar column.
	VarcharBuffer = 50

	// MinInt32 and MaxInt32 bound the PostgreSQL integer type. Integral
	// values outside this range promote to bigint.
	MinInt32 = -2147483648
	MaxInt32 = 2147483647

	// DefaultProviderTimeout is the per-request timeout for the external
	// inference provider.
	DefaultProviderTimeout = 30 * time.Second

	// DefaultRetryAttempts is the number of retries after a failed
	// provider request.
	DefaultRetryAttempts = 3

	// DefaultRetryInitialDelay is the delay before the first retry attempt.
	DefaultRetryInitialDelay = 5 * time.Second

	// DefaultRetryMaxDelay is the maximum delay between retry attempts.
	DefaultRetryMaxDelay = 1 * time.Minute

	// DefaultModel is the inference model used when none is configured.
	DefaultModel = "gemini-1.5-pro"

	// DefaultOutputDir is where generated artifacts are written.
	DefaultOutputDir = "output"
)
