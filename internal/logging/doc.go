// Package logging provides concrete implementations of the pgload.Logger interface.
//
// Available implementations:
//   - ConsoleLogger: Writes messages to stderr, styled when stderr is a terminal
//   - NullLogger: Discards all messages (useful for testing)
//
// All logger implementations are safe for concurrent use by multiple goroutines.
package logging
