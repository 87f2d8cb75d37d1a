package scanner

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vvka-141/pgload/internal/files/filesystem"
	"github.com/vvka-141/pgload/pkg/pgload"
)

func newTestScanner() (*Scanner, *filesystem.MemoryFileSystem) {
	fs := filesystem.NewMemoryFileSystem("/events")
	return NewScannerWithFS(fs), fs
}

// failingProvider reports err for the entry at failAt during a walk.
type failingProvider struct {
	filesystem.FileSystemProvider
	failAt string
	err    error
}

func (p *failingProvider) Open(path string) (filesystem.Directory, error) {
	dir, err := p.FileSystemProvider.Open(path)
	if err != nil {
		return nil, err
	}
	return &failingDirectory{Directory: dir, failAt: p.failAt, err: p.err}, nil
}

type failingDirectory struct {
	filesystem.Directory
	failAt string
	err    error
}

func (d *failingDirectory) Walk(fn func(filesystem.File, error) error) error {
	return d.Directory.Walk(func(f filesystem.File, err error) error {
		if err == nil && f.Path() == d.failAt {
			return fn(f, d.err)
		}
		return fn(f, err)
	})
}

type verboseRecorder struct {
	lines []string
}

func (r *verboseRecorder) Verbose(format string, args ...interface{}) {
	r.lines = append(r.lines, fmt.Sprintf(format, args...))
}
func (r *verboseRecorder) Info(format string, args ...interface{})  {}
func (r *verboseRecorder) Error(format string, args ...interface{}) {}

func TestNewScannerWithFS_NilFS(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected panic for nil filesystem")
		}
	}()
	NewScannerWithFS(nil)
}

func TestEventFiles_MatchesPatternRecursively(t *testing.T) {
	s, fs := newTestScanner()
	fs.AddFile("part-00000", "a")
	fs.AddFile("run=2024-01-01/part-00001", "b")
	fs.AddFile("run=2024-01-01/_SUCCESS", "")
	fs.AddFile("notes.txt", "ignore me")

	files, err := s.EventFiles("/events")
	if err != nil {
		t.Fatalf("EventFiles failed: %v", err)
	}

	want := []string{"/events/part-00000", "/events/run=2024-01-01/part-00001"}
	if len(files) != len(want) {
		t.Fatalf("Expected %d files, got %d: %v", len(want), len(files), files)
	}
	for i := range want {
		if files[i] != want[i] {
			t.Errorf("files[%d] = %q, want %q", i, files[i], want[i])
		}
	}
}

func TestEventFiles_ExcludesMatchingDirectory(t *testing.T) {
	s, fs := newTestScanner()
	fs.AddDir("part-dir.tsv")
	fs.AddFile("part-dir.tsv/part-00000", "a")
	fs.AddFile("part-00001", "b")

	files, err := s.EventFiles("/events")
	if err != nil {
		t.Fatalf("EventFiles failed: %v", err)
	}

	for _, f := range files {
		if f == "/events/part-dir.tsv" {
			t.Error("directory matching the pattern must not be returned")
		}
	}
	if len(files) != 2 {
		t.Errorf("Expected 2 files, got %d: %v", len(files), files)
	}
}

func TestEventFiles_EmptyDirectoryIsNotAnError(t *testing.T) {
	s, _ := newTestScanner()

	files, err := s.EventFiles("/events")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(files) != 0 {
		t.Errorf("Expected no files, got %v", files)
	}
}

func TestEventFiles_StableAcrossRuns(t *testing.T) {
	s, fs := newTestScanner()
	for _, name := range []string{"b/part-2", "a/part-1", "c/part-3", "part-0"} {
		fs.AddFile(name, "x")
	}

	first, err := s.EventFiles("/events")
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		again, err := s.EventFiles("/events")
		if err != nil {
			t.Fatal(err)
		}
		if len(again) != len(first) {
			t.Fatalf("run %d: got %d files, want %d", i, len(again), len(first))
		}
		for j := range first {
			if again[j] != first[j] {
				t.Errorf("run %d: order changed at %d: %q vs %q", i, j, again[j], first[j])
			}
		}
	}
}

func TestEventFiles_MissingDirectory(t *testing.T) {
	s, _ := newTestScanner()

	_, err := s.EventFiles("/nowhere")
	if !errors.Is(err, pgload.ErrDirectoryUnreadable) {
		t.Fatalf("Expected ErrDirectoryUnreadable, got %v", err)
	}

	var loadErr *pgload.LoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("Expected *pgload.LoadError, got %T", err)
	}
	if loadErr.Category != "NotFound" {
		t.Errorf("Category = %q, want NotFound", loadErr.Category)
	}
	if loadErr.File != "/nowhere" {
		t.Errorf("File = %q, want /nowhere", loadErr.File)
	}
}

func TestEventFiles_OSFilesystem(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "part-looks-like-a-file"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "part-00000"), []byte("a\tb\n"), 0644); err != nil {
		t.Fatal(err)
	}

	files, err := NewScanner().EventFiles(root)
	if err != nil {
		t.Fatalf("EventFiles failed: %v", err)
	}
	if len(files) != 1 || files[0] != filepath.Join(root, "part-00000") {
		t.Errorf("Expected only the regular file, got %v", files)
	}
}

func TestEventFiles_SkipsUnreadableSubdirectory(t *testing.T) {
	mfs := filesystem.NewMemoryFileSystem("/events")
	mfs.AddFile("part-00000", "a")
	mfs.AddFile("locked/part-00001", "b")
	mfs.AddFile("open/part-00002", "c")

	denied := &fs.PathError{Op: "open", Path: "/events/locked", Err: fs.ErrPermission}
	rec := &verboseRecorder{}
	s := NewScannerWithFS(&failingProvider{FileSystemProvider: mfs, failAt: "/events/locked", err: denied}).
		WithLogger(rec)

	files, err := s.EventFiles("/events")
	if err != nil {
		t.Fatalf("EventFiles failed: %v", err)
	}

	want := []string{"/events/open/part-00002", "/events/part-00000"}
	if len(files) != len(want) {
		t.Fatalf("Expected %v, got %v", want, files)
	}
	for i := range want {
		if files[i] != want[i] {
			t.Errorf("files[%d] = %q, want %q", i, files[i], want[i])
		}
	}

	if len(rec.lines) != 1 || !strings.Contains(rec.lines[0], "/events/locked") {
		t.Errorf("Expected one verbose line naming the skipped directory, got %v", rec.lines)
	}
}

func TestEventFiles_UnreadableRootFails(t *testing.T) {
	mfs := filesystem.NewMemoryFileSystem("/events")
	mfs.AddFile("part-00000", "a")

	denied := &fs.PathError{Op: "open", Path: "/events", Err: fs.ErrPermission}
	s := NewScannerWithFS(&failingProvider{FileSystemProvider: mfs, failAt: "/events", err: denied})

	files, err := s.EventFiles("/events")
	if files != nil {
		t.Errorf("Expected no files, got %v", files)
	}

	var loadErr *pgload.LoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("Expected *pgload.LoadError, got %T (%v)", err, err)
	}
	if loadErr.Kind != pgload.KindDirectoryUnreadable {
		t.Errorf("Kind = %v, want KindDirectoryUnreadable", loadErr.Kind)
	}
	if loadErr.Category != "PermissionDenied" {
		t.Errorf("Category = %q, want PermissionDenied", loadErr.Category)
	}
}
