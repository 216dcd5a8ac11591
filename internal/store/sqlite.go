package store

import (
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"campusql/internal/dataset"
)

//go:embed schema.sql
var schemaSQL string

// SQLite persists one row per dataset in a single-file database.
// Uses WAL mode for concurrent read access.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite creates or opens a SQLite database at the given path.
// Applies required pragmas and the schema automatically; safe to call
// multiple times.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

// ReadAll implements Store.
func (s *SQLite) ReadAll() (map[string]dataset.Stored, error) {
	rows, err := s.db.Query("SELECT id, kind, records FROM datasets")
	if err != nil {
		return nil, fmt.Errorf("query datasets: %w", err)
	}
	defer rows.Close()

	units := make(map[string]dataset.Stored)
	for rows.Next() {
		var id, kind string
		var records []byte
		if err := rows.Scan(&id, &kind, &records); err != nil {
			return nil, fmt.Errorf("scan dataset row: %w", err)
		}
		units[id] = dataset.Stored{Kind: dataset.Kind(kind), Records: records}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate dataset rows: %w", err)
	}
	return units, nil
}

// Write implements Store. The row is replaced as a whole.
func (s *SQLite) Write(id string, unit dataset.Stored) error {
	_, err := s.db.Exec(
		"INSERT INTO datasets (id, kind, records) VALUES (?, ?, ?) "+
			"ON CONFLICT(id) DO UPDATE SET kind = excluded.kind, records = excluded.records",
		id, string(unit.Kind), []byte(unit.Records),
	)
	if err != nil {
		return fmt.Errorf("write dataset %s: %w", id, err)
	}
	return nil
}

// Delete implements Store. A missing row is reported as not-found.
func (s *SQLite) Delete(id string) error {
	res, err := s.db.Exec("DELETE FROM datasets WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete dataset %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete dataset %s: %w", id, err)
	}
	if n == 0 {
		return dataset.NewNotFoundError(id)
	}
	return nil
}

// Close implements Store.
func (s *SQLite) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %q: %w", pragma, err)
		}
	}
	return nil
}
