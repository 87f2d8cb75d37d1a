package filesystem

import (
	"io"
	"io/fs"
)

// FileInfo is an alias for fs.FileInfo from the standard library.
// This provides compatibility with the fs.FS ecosystem while maintaining
// a stable local type for our abstraction layer.
type FileInfo = fs.FileInfo

// File represents an entry discovered while walking a directory.
type File interface {
	// Path returns the absolute path to the entry
	Path() string

	// RelativePath returns the path relative to the walk root
	RelativePath() string

	// Info returns entry metadata
	Info() FileInfo
}

// Directory represents a directory that can be traversed to discover files
type Directory interface {
	// Path returns the absolute path to the directory
	Path() string

	// Walk traverses the directory tree in lexical order, calling fn for each
	// file and directory, the root included.
	// An entry that cannot be read is passed with a non-nil error; its Info
	// may then be nil. Returning filepath.SkipDir for a directory skips its
	// contents. Any other error from fn stops the walk.
	Walk(fn func(File, error) error) error
}

// FileSystemProvider is a factory for creating Directory instances and
// streaming file content.
type FileSystemProvider interface {
	// Open opens a directory at the specified path.
	// Errors for missing paths wrap fs.ErrNotExist.
	Open(path string) (Directory, error)

	// OpenFile opens a regular file for streaming reads.
	// The caller must close it.
	OpenFile(path string) (io.ReadCloser, error)

	// Stat returns file information for the given path
	Stat(path string) (FileInfo, error)
}
