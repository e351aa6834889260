// Package txnstore is the persistent key-value store and transaction
// layer the core carries an opaque root for but never inspects.
// Grounded on the teacher's
// internal/database/database.go, which already imports these four
// database/sql drivers behind a connection-pool map guarded by a
// sync.RWMutex; txnstore keeps that driver set and that concurrency
// shape but replaces "scan for vulnerable services" with "open one
// store, begin/commit/rollback transactions against it."
package txnstore

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/denisenkom/go-mssqldb"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Store is a driver-agnostic handle on the persistent KV store. The
// engine core never touches it directly; it only ever holds an opaque
// *Txn root bound via engine.Context.BindTxn.
type Store struct {
	mu sync.RWMutex
	db *sql.DB
}

// Open connects to driverName/dsn and ensures the single kv table this
// store needs exists. driverName names one of the four linked drivers
// ("mysql", "postgres", "sqlite3", "sqlserver"), but the table
// definition and the Get/Put statements use SQLite syntax (`?`
// placeholders, a BLOB column, an ON CONFLICT upsert); of the four,
// only "sqlite3" accepts all of them.
func Open(driverName, dsn string) (*Store, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("txnstore: open %s: %w", driverName, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("txnstore: ping %s: %w", driverName, err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS vex_kv (k TEXT PRIMARY KEY, v BLOB)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("txnstore: create table: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// Txn is the opaque root the engine context binds: a single open
// database transaction plus the store it came from, so Commit/Rollback
// can be driven by whoever holds it (environment.Shutdown rolls it
// back; Context.Reset leaves it alone) without the core ever reading
// k/v contents.
type Txn struct {
	store *Store
	tx    *sql.Tx
}

// Begin starts a new transaction. The *Txn value itself, not its
// contents, is what the context carries as its opaque root —
// Get/Put below exist for txnstore's own callers, not for the core.
func (s *Store) Begin(ctx context.Context) (*Txn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("txnstore: begin: %w", err)
	}
	return &Txn{store: s, tx: tx}, nil
}

// Commit finalizes the transaction.
func (t *Txn) Commit() error { return t.tx.Commit() }

// Rollback discards the transaction. Safe to call after a successful
// Commit (returns sql.ErrTxDone, which callers performing best-effort
// cleanup at context reset may ignore).
func (t *Txn) Rollback() error { return t.tx.Rollback() }

// Get reads one value by key within the transaction.
func (t *Txn) Get(ctx context.Context, key string) ([]byte, error) {
	var v []byte
	err := t.tx.QueryRowContext(ctx, `SELECT v FROM vex_kv WHERE k = ?`, key).Scan(&v)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return v, err
}

// Put upserts one value by key within the transaction.
func (t *Txn) Put(ctx context.Context, key string, value []byte) error {
	_, err := t.tx.ExecContext(ctx,
		`INSERT INTO vex_kv (k, v) VALUES (?, ?) ON CONFLICT(k) DO UPDATE SET v = excluded.v`,
		key, value)
	return err
}
