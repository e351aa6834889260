// Package stowage is the value-stowage overflow path original_source's
// wikrt_cx_create hints at but leaves to an external collaborator:
// large values get spilled to a content-addressed blob store instead
// of living in the arena. Backed by modernc.org/sqlite (the pack's
// pure-Go driver, chosen here over mattn/go-sqlite3 specifically to
// avoid cgo for a path that's purely an overflow store, not the
// transactional kv store itself — see txnstore for that) keyed by a
// google/uuid address.
package stowage

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Store is a content-addressed blob table: Stow assigns a fresh
// address, Load retrieves by address. The core never calls either
// directly — it hands a would-be-stowed value's bytes to whatever
// collaborator owns the stowage decision; Store exists so that
// collaborator has somewhere real to put them.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) a stowage database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("stowage: open: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS vex_stowage (addr TEXT PRIMARY KEY, data BLOB)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("stowage: create table: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// Stow writes data under a freshly minted address and returns it.
func (s *Store) Stow(data []byte) (uuid.UUID, error) {
	addr := uuid.New()
	_, err := s.db.Exec(`INSERT INTO vex_stowage (addr, data) VALUES (?, ?)`, addr.String(), data)
	if err != nil {
		return uuid.Nil, fmt.Errorf("stowage: stow: %w", err)
	}
	return addr, nil
}

// Load retrieves the bytes stowed at addr.
func (s *Store) Load(addr uuid.UUID) ([]byte, error) {
	var data []byte
	err := s.db.QueryRow(`SELECT data FROM vex_stowage WHERE addr = ?`, addr.String()).Scan(&data)
	if err != nil {
		return nil, fmt.Errorf("stowage: load %s: %w", addr, err)
	}
	return data, nil
}

// Drop removes a stowed value, for reclaiming space once nothing
// references the address anymore (the core's GC never sees stowed
// bytes, so refcounting them is this package's own concern, not the
// arena's).
func (s *Store) Drop(addr uuid.UUID) error {
	_, err := s.db.Exec(`DELETE FROM vex_stowage WHERE addr = ?`, addr.String())
	return err
}
