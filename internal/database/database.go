package database

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

var sqlOpen = sql.Open

// DB wraps the SQLite database connection
type DB struct {
	conn             *sql.DB
	path             string
	mu               sync.RWMutex
	statementTimeout time.Duration
}

// New creates a new database connection
func New(path string) (*DB, error) {
	// Pragmas are applied to every pooled connection; foreign keys are off by default in SQLite
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", path)

	conn, err := sqlOpen("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// WAL allows concurrent readers, writes are serialized by SQLite itself
	conn.SetMaxOpenConns(10)
	conn.SetMaxIdleConns(5)

	log.Debug().Str("path", path).Msg("Database connection established")

	return &DB{
		conn: conn,
		path: path,
	}, nil
}

// NewFromConn wraps an already opened handle.
func NewFromConn(conn *sql.DB) *DB {
	return &DB{conn: conn}
}

// Path returns the database file path
func (db *DB) Path() string {
	return db.path
}

// SetStatementTimeout bounds every gateway call. Zero disables the bound.
func (db *DB) SetStatementTimeout(d time.Duration) {
	db.statementTimeout = d
}

// Close closes the underlying connection pool
func (db *DB) Close() error {
	return db.conn.Close()
}

// Transaction wraps a function in a database transaction
func (db *DB) Transaction(fn func(*sql.Tx) error) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	tx, err := db.conn.Begin()
	if err != nil {
		return normalize("begin", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Error().Err(rbErr).Msg("Failed to rollback transaction")
		}
		return normalize("transaction", err)
	}

	if err := tx.Commit(); err != nil {
		return normalize("commit", err)
	}

	return nil
}
