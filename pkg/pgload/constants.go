package pgload

// Exit codes for semantic error classification.
// These follow Unix/GNU conventions:
//   - 0: Success
//   - 1: General error
//   - 2: CLI usage error (misuse of command line)
//   - 3+: Application-specific errors
const (
	ExitSuccess             = 0  // Load completed successfully
	ExitGeneralError        = 1  // Unknown or unclassified error
	ExitUsageError          = 2  // CLI usage error (missing args, invalid flags)
	ExitPanic               = 3  // Internal panic (unexpected crash)
	ExitConfigError         = 10 // Invalid configuration or target definition
	ExitConnectionError     = 11 // Failed to connect to database
	ExitStatementFailed     = 13 // A COPY or maintenance statement failed
	ExitDirectoryUnreadable = 15 // Events directory cannot be read
	ExitProcessFailed       = 16 // External client process failed or could not start
)

const (
	// EventFilePattern is the base-name glob every loadable event file matches.
	EventFilePattern = "part-*"

	// ManagedHostMarker identifies hosts of a managed service that refuses
	// server-side COPY FROM '<file>'. Targets whose host contains it are
	// loaded by piping files through the psql client.
	ManagedHostMarker = "rds.amazonaws.com"

	// StepAnalyze is the skippable statistics refresh step.
	StepAnalyze = "analyze"

	// StepVacuum is the optional space reclamation step.
	StepVacuum = "vacuum"

	// DefaultClientBinary is the external client used for remote pipe loads.
	DefaultClientBinary = "psql"

	// DefaultAppName is reported as application_name on every connection.
	DefaultAppName = "pgload"

	// DefaultPort is the PostgreSQL port used when none is configured.
	DefaultPort = 5432

	// MaxErrorPreviewLength caps how much of a failing statement is echoed
	// in error messages.
	MaxErrorPreviewLength = 200
)
