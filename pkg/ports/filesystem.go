package ports

import "io"

// FileSystem abstracts file system operations used by the asset store and
// the snapshot sink.
type FileSystem interface {
	// Open opens a file for streaming reads.
	Open(path string) (io.ReadCloser, error)

	// ReadFile reads the entire contents of a file.
	ReadFile(path string) ([]byte, error)

	// WriteFile writes data to a file, creating parent directories.
	WriteFile(path string, data []byte) error

	// MkdirAll creates a directory and all parent directories.
	MkdirAll(path string) error

	// Exists checks if a file or directory exists.
	Exists(path string) (bool, error)
}
