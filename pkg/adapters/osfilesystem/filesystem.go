// Package osfilesystem implements ports.FileSystem on top of the os package.
package osfilesystem

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/user/h264play/pkg/ports"
)

// FileSystem implements ports.FileSystem using the os package.
type FileSystem struct{}

// New creates a new FileSystem.
func New() *FileSystem {
	return &FileSystem{}
}

// Open opens a file for reading.
func (f *FileSystem) Open(path string) (io.ReadCloser, error) {
	return os.Open(path)
}

// ReadFile reads the entire contents of a file.
func (f *FileSystem) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// WriteFile writes data to a file, creating parent directories as needed.
func (f *FileSystem) WriteFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0644)
}

// MkdirAll creates a directory and all parent directories.
func (f *FileSystem) MkdirAll(path string) error {
	return os.MkdirAll(path, 0755)
}

// Exists reports whether path exists. Errors other than "not exist" are
// returned as is.
func (f *FileSystem) Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, err
	}
}

var _ ports.FileSystem = (*FileSystem)(nil)
