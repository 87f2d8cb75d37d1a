package scanner

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/vvka-141/pgload/internal/files/filesystem"
	"github.com/vvka-141/pgload/internal/logging"
	"github.com/vvka-141/pgload/pkg/pgload"
)

// Scanner enumerates event files below a directory.
// Scanner is safe for concurrent use as long as the fsProvider is.
type Scanner struct {
	pattern    string
	fsProvider filesystem.FileSystemProvider
	logger     pgload.Logger
}

// NewScanner creates a scanner over the OS filesystem using pgload.EventFilePattern.
func NewScanner() *Scanner {
	return NewScannerWithFS(filesystem.NewOSFileSystem())
}

// NewScannerWithFS creates a scanner with a custom filesystem provider.
// This is primarily useful for testing with in-memory filesystems.
// Panics if fsProvider is nil.
func NewScannerWithFS(fsProvider filesystem.FileSystemProvider) *Scanner {
	if fsProvider == nil {
		panic("fsProvider cannot be nil")
	}
	return &Scanner{
		pattern:    pgload.EventFilePattern,
		fsProvider: fsProvider,
		logger:     logging.NewNullLogger(),
	}
}

// WithLogger reports skipped subdirectories and entries to logger at verbose level.
func (s *Scanner) WithLogger(logger pgload.Logger) *Scanner {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// EventFiles returns the absolute paths of all regular files under dir whose
// base name matches the event file pattern, in lexical walk order.
// Symlinks are followed to decide whether they name a regular file.
//
// An unreadable root yields a *pgload.LoadError of kind KindDirectoryUnreadable.
// Unreadable subdirectories are skipped. No matching files is not an error.
func (s *Scanner) EventFiles(dir string) ([]string, error) {
	root, err := s.fsProvider.Open(dir)
	if err != nil {
		return nil, unreadable(dir, err)
	}

	var files []string
	err = root.Walk(func(file filesystem.File, err error) error {
		if err != nil {
			if file == nil || file.Path() == root.Path() {
				return err
			}
			s.logger.Verbose("Skipping unreadable %s: %v", file.Path(), err)
			return filepath.SkipDir
		}
		if file.Info().IsDir() {
			return nil
		}

		matched, err := filepath.Match(s.pattern, file.Info().Name())
		if err != nil {
			return fmt.Errorf("invalid event file pattern %q: %w", s.pattern, err)
		}
		if matched && s.isRegular(file) {
			files = append(files, file.Path())
		}
		return nil
	})
	if err != nil {
		return nil, unreadable(dir, err)
	}

	return files, nil
}

// isRegular rejects FIFOs, sockets and devices. A symlink counts when its
// target is a regular file.
func (s *Scanner) isRegular(file filesystem.File) bool {
	mode := file.Info().Mode()
	if mode.IsRegular() {
		return true
	}
	if mode&fs.ModeSymlink == 0 {
		s.logger.Verbose("Skipping %s: not a regular file (%s)", file.Path(), mode.Type())
		return false
	}
	target, err := s.fsProvider.Stat(file.Path())
	if err != nil {
		s.logger.Verbose("Skipping %s: %v", file.Path(), err)
		return false
	}
	return target.Mode().IsRegular()
}

func unreadable(dir string, err error) error {
	category := "IOError"
	switch {
	case errors.Is(err, fs.ErrNotExist):
		category = "NotFound"
	case errors.Is(err, fs.ErrPermission):
		category = "PermissionDenied"
	}
	return &pgload.LoadError{
		Kind:     pgload.KindDirectoryUnreadable,
		File:     dir,
		Category: category,
		Message:  err.Error(),
		Err:      err,
	}
}
