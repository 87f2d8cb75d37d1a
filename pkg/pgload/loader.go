package pgload

import "context"

// Loader bulk-loads event files into one target.
//
// Load returns nil when every COPY statement (direct mode) or every client
// invocation (remote pipe mode) succeeded and post-processing completed.
// Otherwise it returns a *LoadError describing the single failing step.
//
// Atomicity differs by mode: direct loads commit all files or none, remote
// pipe loads leave files piped before the failure in the table.
type Loader interface {
	Load(ctx context.Context, req LoadRequest) error
}
