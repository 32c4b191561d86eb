// Package filestore is a filesystem-path truelicense.Store, the Go
// equivalent of the original's storeInPath(Path) convenience.
package filestore

import (
	"io"
	"os"
	"sync"

	"github.com/zzq1314zll/truelicense"
)

// Store persists its content at a single file path.
type Store struct {
	mu   sync.Mutex
	path string
}

// New returns a Store backed by path. The file is created on first write;
// it need not exist yet.
func New(path string) *Store { return &Store{path: path} }

func (s *Store) Lock()   { s.mu.Lock() }
func (s *Store) Unlock() { s.mu.Unlock() }

func (s *Store) Exists() (bool, error) {
	_, err := os.Stat(s.path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, truelicense.NewStoreError(err.Error())
}

func (s *Store) Delete() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return truelicense.NewStoreError(err.Error())
	}
	return nil
}

func (s *Store) NewReader() (io.ReadCloser, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, truelicense.NewStoreError(err.Error())
	}
	return f, nil
}

func (s *Store) NewWriter() (io.WriteCloser, error) {
	f, err := os.Create(s.path)
	if err != nil {
		return nil, truelicense.NewStoreError(err.Error())
	}
	return f, nil
}

var _ truelicense.Store = (*Store)(nil)
