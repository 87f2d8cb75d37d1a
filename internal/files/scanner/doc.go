// Package scanner discovers the event files of a load.
//
// The scanner walks a directory tree and returns, in lexical walk order, the
// regular files whose base name matches pgload.EventFilePattern. Directories
// that happen to match the pattern are descended into but never returned.
//
// The scanner is filesystem-agnostic through filesystem.FileSystemProvider,
// enabling both production use with the OS filesystem and testing with
// in-memory filesystems.
package scanner
