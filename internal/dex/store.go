// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dex is an offline entity source backed by SQLite. Records are
// seeded from YAML files with `pokerouter dex import` and served read-only
// to the router through the same interface as the remote lookup.
package dex

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/pokerouter/internal/lookup"
	"github.com/pdiddy/pokerouter/pkg/types"
)

// Store manages the dex SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the dex database at path and creates the schema if
// it does not exist.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating dex directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS entities (
			name TEXT PRIMARY KEY,
			record TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS entity_types (
			name TEXT NOT NULL REFERENCES entities(name) ON DELETE CASCADE,
			type TEXT NOT NULL,
			PRIMARY KEY (name, type)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_entity_types_type ON entity_types(type)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// ImportSummary holds counts from an import run.
type ImportSummary struct {
	Inserted int
	Updated  int
	Skipped  int
}

// Total returns the number of records processed.
func (s ImportSummary) Total() int {
	return s.Inserted + s.Updated + s.Skipped
}

// Import upserts records keyed by normalized name. Records without a name
// or with an incomplete stat block are skipped and reported to w.
func (s *Store) Import(ctx context.Context, records []types.EntityRecord, w io.Writer) (ImportSummary, error) {
	var summary ImportSummary

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return summary, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	for _, rec := range records {
		rec.Name = types.NormalizeName(rec.Name)
		if rec.Name == "" || !rec.HasAllStats() {
			fmt.Fprintf(w, "skipped %q: name and all six stats are required\n", rec.Name)
			summary.Skipped++
			continue
		}
		if rec.Details == nil {
			rec.Details = []string{}
		}

		var exists int
		if err := tx.QueryRowContext(ctx, `SELECT count(*) FROM entities WHERE name = ?`, rec.Name).Scan(&exists); err != nil {
			return summary, fmt.Errorf("checking %s: %w", rec.Name, err)
		}

		data, err := json.Marshal(rec)
		if err != nil {
			return summary, fmt.Errorf("encoding %s: %w", rec.Name, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO entities (name, record, updated_at) VALUES (?, ?, ?)
			 ON CONFLICT(name) DO UPDATE SET record = excluded.record, updated_at = excluded.updated_at`,
			rec.Name, string(data), now,
		); err != nil {
			return summary, fmt.Errorf("upserting %s: %w", rec.Name, err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM entity_types WHERE name = ?`, rec.Name); err != nil {
			return summary, fmt.Errorf("clearing types for %s: %w", rec.Name, err)
		}
		for _, typ := range rec.Types {
			if _, err := tx.ExecContext(ctx,
				`INSERT OR IGNORE INTO entity_types (name, type) VALUES (?, ?)`,
				rec.Name, strings.ToLower(typ),
			); err != nil {
				return summary, fmt.Errorf("indexing types for %s: %w", rec.Name, err)
			}
		}

		if exists > 0 {
			fmt.Fprintf(w, "updated %s\n", rec.Name)
			summary.Updated++
		} else {
			fmt.Fprintf(w, "added   %s\n", rec.Name)
			summary.Inserted++
		}
	}

	if err := tx.Commit(); err != nil {
		return summary, fmt.Errorf("committing import: %w", err)
	}
	return summary, nil
}

// Fetch returns the record stored under name. A missing record is reported
// as a lookup not-found failure so the store can sit in a lookup.Chain.
func (s *Store) Fetch(ctx context.Context, name string) (*types.EntityRecord, error) {
	key := types.NormalizeName(name)
	if key == "" {
		return nil, lookup.NotFoundError(name)
	}

	var data string
	err := s.db.QueryRowContext(ctx, `SELECT record FROM entities WHERE name = ?`, key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, lookup.NotFoundError(name)
	}
	if err != nil {
		return nil, &lookup.Error{Name: name, Kind: lookup.Transient, Err: err}
	}

	var rec types.EntityRecord
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, &lookup.Error{Name: name, Kind: lookup.Malformed, Err: err}
	}
	return &rec, nil
}

// List returns every stored record ordered by name. A non-empty typ limits
// the result to records of that category.
func (s *Store) List(ctx context.Context, typ string) ([]types.EntityRecord, error) {
	query := `SELECT record FROM entities ORDER BY name`
	var args []any
	if typ != "" {
		query = `SELECT e.record FROM entities e
			JOIN entity_types t ON t.name = e.name
			WHERE t.type = ? ORDER BY e.name`
		args = append(args, strings.ToLower(typ))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing entities: %w", err)
	}
	defer rows.Close()

	var out []types.EntityRecord
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scanning entity: %w", err)
		}
		var rec types.EntityRecord
		if err := json.Unmarshal([]byte(data), &rec); err != nil {
			return nil, fmt.Errorf("decoding entity: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// seedFile is the on-disk shape of a dex seed file.
type seedFile struct {
	Entities []types.EntityRecord `yaml:"pokemon"`
}

// LoadYAML reads seed records from path.
func LoadYAML(path string) ([]types.EntityRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading seed file: %w", err)
	}
	var seed seedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parsing seed file %s: %w", path, err)
	}
	return seed.Entities, nil
}

// ExportYAML writes the stored records in seed-file form, so an export can
// be imported again.
func (s *Store) ExportYAML(ctx context.Context, w io.Writer) error {
	records, err := s.List(ctx, "")
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(seedFile{Entities: records}); err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return enc.Close()
}
