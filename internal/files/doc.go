// Package files groups the event file sub-packages.
//
//   - filesystem: Filesystem abstraction interfaces and implementations (OS and in-memory)
//   - scanner: Recursive discovery of part-* event files
//
// # Usage
//
//	import (
//	    "github.com/vvka-141/pgload/internal/files/filesystem"
//	    "github.com/vvka-141/pgload/internal/files/scanner"
//	)
//
//	fileScanner := scanner.NewScannerWithFS(filesystem.NewOSFileSystem())
//	paths, err := fileScanner.EventFiles("./events")
package files
