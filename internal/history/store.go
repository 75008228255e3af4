// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history keeps a SQLite record of past analysis runs.
package history

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/smishguard/internal/report"
	"github.com/pdiddy/smishguard/pkg/types"
)

// ErrNotFound is returned by Get for an unknown run ID.
var ErrNotFound = errors.New("run not found")

const defaultLimit = 20

// timeLayout is fixed width so created_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Store manages the run history database.
type Store struct {
	db *sql.DB
}

// Run is one stored analysis. Document is the full result as JSON.
type Run struct {
	ID          string    `json:"id" yaml:"id"`
	CreatedAt   time.Time `json:"created_at" yaml:"created_at"`
	SMS         string    `json:"SMS" yaml:"SMS"`
	Category    bool      `json:"category" yaml:"category"`
	Fallback    bool      `json:"fallback" yaml:"fallback"`
	BriefReason string    `json:"brief_reason" yaml:"brief_reason"`
	Document    string    `json:"-" yaml:"-"`
}

// Open opens or creates the history database at path and ensures the
// schema exists.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
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
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			created_at TEXT NOT NULL,
			sms TEXT NOT NULL,
			category INTEGER NOT NULL,
			fallback INTEGER NOT NULL,
			brief_reason TEXT,
			document TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_category ON runs(category)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Save stores result. A run ID already present is replaced.
func (s *Store) Save(ctx context.Context, result *types.AnalysisResult) error {
	if result == nil || result.RunID == "" {
		return fmt.Errorf("result has no run ID")
	}
	var doc bytes.Buffer
	if err := report.Encode(&doc, result, report.FormatJSON); err != nil {
		return err
	}

	created := result.FinishedAt
	if created.IsZero() {
		created = time.Now()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO runs (id, created_at, sms, category, fallback, brief_reason, document)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		result.RunID,
		created.UTC().Format(timeLayout),
		result.SMS,
		result.DetectResult.Category,
		result.DetectResult.Fallback,
		result.DetectResult.BriefReason,
		doc.String(),
	)
	if err != nil {
		return fmt.Errorf("saving run %s: %w", result.RunID, err)
	}
	return nil
}

// ListOptions filters List.
type ListOptions struct {
	// Limit caps the number of runs. Zero uses 20.
	Limit int

	// Contains matches a substring of the message text.
	Contains string

	// Category keeps only runs with this category when set.
	Category *bool
}

// List returns stored runs, newest first.
func (s *Store) List(ctx context.Context, opts ListOptions) ([]Run, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	var (
		qb    strings.Builder
		args  []any
		where []string
	)
	qb.WriteString(`SELECT id, created_at, sms, category, fallback, brief_reason FROM runs`)
	if opts.Contains != "" {
		where = append(where, `sms LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(opts.Contains)+"%")
	}
	if opts.Category != nil {
		where = append(where, `category = ?`)
		args = append(args, *opts.Category)
	}
	if len(where) > 0 {
		qb.WriteString(" WHERE ")
		qb.WriteString(strings.Join(where, " AND "))
	}
	qb.WriteString(` ORDER BY created_at DESC, id LIMIT ?`)
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r       Run
			created string
			reason  sql.NullString
		)
		if err := rows.Scan(&r.ID, &created, &r.SMS, &r.Category, &r.Fallback, &reason); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		r.CreatedAt, _ = time.Parse(timeLayout, created)
		r.BriefReason = reason.String
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Get returns one run including its full document.
func (s *Store) Get(ctx context.Context, id string) (*Run, error) {
	var (
		r       Run
		created string
		reason  sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, created_at, sms, category, fallback, brief_reason, document FROM runs WHERE id = ?`, id,
	).Scan(&r.ID, &created, &r.SMS, &r.Category, &r.Fallback, &reason, &r.Document)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("reading run %s: %w", id, err)
	}
	r.CreatedAt, _ = time.Parse(timeLayout, created)
	r.BriefReason = reason.String
	return &r, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
