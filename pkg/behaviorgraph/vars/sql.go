package vars

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	_ "github.com/lib/pq"  // Postgres driver
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Dialect captures the differences between SQL backends.
type Dialect struct {
	// Driver is the database/sql driver name.
	Driver string

	// Numbered reports whether placeholders are $1, $2, ... instead of ?.
	Numbered bool
}

// Supported dialects.
var (
	SQLite   = Dialect{Driver: "sqlite"}
	Postgres = Dialect{Driver: "postgres", Numbered: true}
)

// rebind rewrites ? placeholders for dialects that number them.
func (d Dialect) rebind(query string) string {
	if !d.Numbered {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// SQLStore persists variables in a SQL table as JSON text.
// Values must be JSON-serializable. Integers read back as int, other
// numbers as float64.
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
	mu      sync.RWMutex
	closed  bool
}

// NewSQLiteStore opens a SQLite-backed store.
// The path should be a file path or ":memory:" for testing.
func NewSQLiteStore(path string) (*SQLStore, error) {
	db, err := sql.Open(SQLite.Driver, path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Each :memory: connection is a separate database.
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	} else if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	return newSQLStore(db, SQLite)
}

// NewPostgresStore opens a Postgres-backed store using lib/pq.
func NewPostgresStore(dsn string) (*SQLStore, error) {
	db, err := sql.Open(Postgres.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return newSQLStore(db, Postgres)
}

// NewSQLStore wraps an existing connection pool. The caller keeps ownership
// of db only until Close is called on the store.
func NewSQLStore(db *sql.DB, dialect Dialect) (*SQLStore, error) {
	return newSQLStore(db, dialect)
}

func newSQLStore(db *sql.DB, dialect Dialect) (*SQLStore, error) {
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS variables (
			name TEXT NOT NULL PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}
	return &SQLStore{db: db, dialect: dialect}, nil
}

// Lookup implements Reader.
func (s *SQLStore) Lookup(key string) (any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	var raw string
	err := s.db.QueryRow(s.dialect.rebind(`
		SELECT value FROM variables WHERE name = ?
	`), key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("load variable %s: %w", key, err)
	}
	return decodeValue([]byte(raw))
}

// Put implements Store.
func (s *SQLStore) Put(key string, value any) error {
	if key == "" {
		return ErrEmptyKey
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode variable %s: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	_, err = s.db.Exec(s.dialect.rebind(`
		INSERT INTO variables (name, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`), key, string(data), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("save variable %s: %w", key, err)
	}
	return nil
}

// Delete implements Store.
func (s *SQLStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	if _, err := s.db.Exec(s.dialect.rebind(`
		DELETE FROM variables WHERE name = ?
	`), key); err != nil {
		return fmt.Errorf("delete variable %s: %w", key, err)
	}
	return nil
}

// Keys implements Store.
func (s *SQLStore) Keys() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	rows, err := s.db.Query(`SELECT name FROM variables ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list variables: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("scan variable name: %w", err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate variables: %w", err)
	}
	return keys, nil
}

// Close implements Store.
func (s *SQLStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

func decodeValue(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("decode variable: %w", err)
	}
	return normalize(v), nil
}

func normalize(v any) any {
	switch x := v.(type) {
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return int(i)
		}
		f, _ := x.Float64()
		return f
	case map[string]any:
		for k, e := range x {
			x[k] = normalize(e)
		}
		return x
	case []any:
		for i, e := range x {
			x[i] = normalize(e)
		}
		return x
	default:
		return v
	}
}
