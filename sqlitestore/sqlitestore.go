// Package sqlitestore is a durable truelicense.Store backed by SQLite: one
// row per named slot, created on first open and logged via slog.
package sqlitestore

import (
	"bytes"
	"database/sql"
	"io"
	"log/slog"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/zzq1314zll/truelicense"
)

// Store keeps a single named artifact blob in a SQLite table, row-keyed by
// slot so one database file can back several independent license managers
// (e.g. vendor test fixtures and a consumer instance in the same process).
type Store struct {
	mu   sync.Mutex
	db   *sql.DB
	slot string
}

// Open opens (creating if necessary) a SQLite database at path and returns
// a Store over the given slot name.
func Open(path, slot string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, truelicense.NewStoreError("sqlitestore: opening database: " + err.Error())
	}
	const createTable = `CREATE TABLE IF NOT EXISTS license_artifacts (
		slot TEXT PRIMARY KEY,
		content BLOB NOT NULL
	)`
	if _, err := db.Exec(createTable); err != nil {
		db.Close()
		return nil, truelicense.NewStoreError("sqlitestore: creating table: " + err.Error())
	}
	slog.Info("sqlitestore: database initialized", "path", path, "slot", slot)
	return &Store{db: db, slot: slot}, nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Lock()   { s.mu.Lock() }
func (s *Store) Unlock() { s.mu.Unlock() }

func (s *Store) Exists() (bool, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(1) FROM license_artifacts WHERE slot = ?`, s.slot).Scan(&n)
	if err != nil {
		return false, truelicense.NewStoreError("sqlitestore: checking existence: " + err.Error())
	}
	return n > 0, nil
}

func (s *Store) Delete() error {
	if _, err := s.db.Exec(`DELETE FROM license_artifacts WHERE slot = ?`, s.slot); err != nil {
		return truelicense.NewStoreError("sqlitestore: deleting: " + err.Error())
	}
	return nil
}

type writer struct {
	s   *Store
	buf []byte
}

func (w *writer) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)
	return len(p), nil
}

func (w *writer) Close() error {
	_, err := w.s.db.Exec(
		`INSERT INTO license_artifacts (slot, content) VALUES (?, ?)
		 ON CONFLICT(slot) DO UPDATE SET content = excluded.content`,
		w.s.slot, w.buf)
	if err != nil {
		return truelicense.NewStoreError("sqlitestore: writing: " + err.Error())
	}
	return nil
}

func (s *Store) NewWriter() (io.WriteCloser, error) { return &writer{s: s}, nil }

func (s *Store) NewReader() (io.ReadCloser, error) {
	var content []byte
	err := s.db.QueryRow(`SELECT content FROM license_artifacts WHERE slot = ?`, s.slot).Scan(&content)
	if err == sql.ErrNoRows {
		return nil, truelicense.NewStoreError("sqlitestore: no content installed for slot " + s.slot)
	}
	if err != nil {
		return nil, truelicense.NewStoreError("sqlitestore: reading: " + err.Error())
	}
	return io.NopCloser(bytes.NewReader(content)), nil
}

var _ truelicense.Store = (*Store)(nil)
