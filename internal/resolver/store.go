package resolver

import (
	"io"

	"github.com/spf13/afero"
)

// Store is where image files live. Exists is the only call the core makes;
// Open is for whoever displays the images.
type Store interface {
	Exists(path string) bool
	Open(path string) (io.ReadCloser, error)
}

// LocalStore serves images from a filesystem
type LocalStore struct {
	fs afero.Fs
}

// NewLocalStore creates a store over fs. A nil fs means the OS filesystem.
func NewLocalStore(fs afero.Fs) *LocalStore {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &LocalStore{fs: fs}
}

// Exists reports whether path names an existing regular file
func (s *LocalStore) Exists(path string) bool {
	info, err := s.fs.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// Open opens path for reading
func (s *LocalStore) Open(path string) (io.ReadCloser, error) {
	return s.fs.Open(path)
}

// Fs returns the underlying filesystem
func (s *LocalStore) Fs() afero.Fs {
	return s.fs
}
