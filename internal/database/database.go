package database

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaFS embed.FS

// ErrSlotNotFound is returned by Get when nothing is stored under a name
var ErrSlotNotFound = errors.New("slot not found")

// Slots is a store of named values, each read and written as a whole
type Slots interface {
	Get(ctx context.Context, name string) ([]byte, error)
	Set(ctx context.Context, name string, value []byte) error
	Remove(ctx context.Context, name string) error
}

// DB interface defines the methods our database should implement
type DB interface {
	Slots
	Close() error
}

// SQLiteDB implements the DB interface
type SQLiteDB struct {
	db *sql.DB
}

// NewSQLiteDB creates a new SQLite database connection
func NewSQLiteDB(dbPath string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	// WAL lets readers proceed while the history slot is being rewritten
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("error enabling WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("error setting busy timeout: %w", err)
	}

	if err := initializeSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("error initializing schema: %w", err)
	}

	return &SQLiteDB{db: db}, nil
}

func initializeSchema(db *sql.DB) error {
	schemaBytes, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("error reading schema file: %w", err)
	}

	if _, err := db.Exec(string(schemaBytes)); err != nil {
		return fmt.Errorf("error executing schema: %w", err)
	}

	log.Println("Database schema initialized successfully")
	return nil
}

// Get returns the value stored under name
func (s *SQLiteDB) Get(ctx context.Context, name string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv_slots WHERE name = ?`, name).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, ErrSlotNotFound
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Set stores value under name, replacing any previous value
func (s *SQLiteDB) Set(ctx context.Context, name string, value []byte) error {
	query := `
		INSERT INTO kv_slots (name, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`
	_, err := s.db.ExecContext(ctx, query, name, value, time.Now().UTC())
	return err
}

// Remove deletes the value stored under name. Removing a missing slot is not an error.
func (s *SQLiteDB) Remove(ctx context.Context, name string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM kv_slots WHERE name = ?`, name)
	return err
}

// Close closes the database connection
func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

// MemoryDB keeps slots in process memory
type MemoryDB struct {
	mu    sync.RWMutex
	slots map[string][]byte
}

// NewMemoryDB creates an empty in-memory slot store
func NewMemoryDB() *MemoryDB {
	return &MemoryDB{slots: make(map[string][]byte)}
}

func (m *MemoryDB) Get(ctx context.Context, name string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.slots[name]
	if !ok {
		return nil, ErrSlotNotFound
	}
	return append([]byte(nil), value...), nil
}

func (m *MemoryDB) Set(ctx context.Context, name string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slots[name] = append([]byte(nil), value...)
	return nil
}

func (m *MemoryDB) Remove(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.slots, name)
	return nil
}

func (m *MemoryDB) Close() error { return nil }
