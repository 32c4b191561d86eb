// Package memstore is an in-memory truelicense.Store, for tests and for
// callers that want a throwaway store (for example to check whether key
// generation works at all by saving a license into one).
package memstore

import (
	"bytes"
	"io"
	"sync"

	"github.com/zzq1314zll/truelicense"
)

// Store holds its content in a byte slice guarded by a mutex. A second,
// separate mutex serves as the Store's monitor, so reads and writes still
// work while a manager holds Lock.
type Store struct {
	mu      sync.Mutex
	monitor sync.Mutex
	content []byte
	present bool
}

// New returns an empty memory store.
func New() *Store { return &Store{} }

func (s *Store) Lock()   { s.monitor.Lock() }
func (s *Store) Unlock() { s.monitor.Unlock() }

func (s *Store) Exists() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.present, nil
}

func (s *Store) Delete() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.content = nil
	s.present = false
	return nil
}

func (s *Store) NewReader() (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.present {
		return nil, truelicense.NewStoreError("memstore: no content installed")
	}
	return io.NopCloser(bytes.NewReader(s.content)), nil
}

type writer struct {
	s   *Store
	buf bytes.Buffer
}

func (w *writer) Write(p []byte) (int, error) { return w.buf.Write(p) }

func (w *writer) Close() error {
	w.s.mu.Lock()
	defer w.s.mu.Unlock()
	w.s.content = w.buf.Bytes()
	w.s.present = true
	return nil
}

func (s *Store) NewWriter() (io.WriteCloser, error) { return &writer{s: s}, nil }

var _ truelicense.Store = (*Store)(nil)
