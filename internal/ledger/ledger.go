// Package ledger records generated changelogs in a SQL database.
package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"  // PostgreSQL driver
	_ "modernc.org/sqlite" // SQLite driver
)

// Record is one changelog generation.
type Record struct {
	ID          int64     `json:"id" yaml:"id"`
	ScriptPath  string    `json:"script_path" yaml:"script_path"`
	OutputPath  string    `json:"output_path" yaml:"output_path"`
	Version     string    `json:"version" yaml:"version"`
	Base        string    `json:"changeset_base" yaml:"changeset_base"`
	Author      string    `json:"author" yaml:"author"`
	Context     string    `json:"context" yaml:"context"`
	ChangeSets  int       `json:"changesets" yaml:"changesets"`
	Failures    int       `json:"failures" yaml:"failures"`
	Checksum    string    `json:"checksum" yaml:"checksum"`
	GeneratedAt time.Time `json:"generated_at" yaml:"generated_at"`
}

// Store persists generation records.
type Store interface {
	Init(ctx context.Context) error
	Record(ctx context.Context, r *Record) error
	List(ctx context.Context, limit int) ([]Record, error)
	Close() error
}

// Open connects to the ledger database named by dsn.
//
// postgres:// and postgresql:// URLs use PostgreSQL. sqlite://path,
// sqlite3://path, file: URIs and paths ending in .db, .sqlite or .sqlite3
// use SQLite. The dialect is also the registered driver name.
func Open(ctx context.Context, dsn string) (Store, error) {
	dialect, source, err := detectDialect(dsn)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(dialect, source)
	if err != nil {
		return nil, fmt.Errorf("connecting to ledger: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging ledger: %w", err)
	}

	return &sqlStore{db: db, q: statementsFor(dialect)}, nil
}

func detectDialect(dsn string) (dialect, source string, err error) {
	switch {
	case strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://"):
		return "postgres", dsn, nil
	case strings.HasPrefix(dsn, "sqlite://"):
		return "sqlite", strings.TrimPrefix(dsn, "sqlite://"), nil
	case strings.HasPrefix(dsn, "sqlite3://"):
		return "sqlite", strings.TrimPrefix(dsn, "sqlite3://"), nil
	case strings.HasPrefix(dsn, "file:"):
		return "sqlite", dsn, nil
	}

	lower := strings.ToLower(dsn)
	for _, ext := range []string{".db", ".sqlite", ".sqlite3"} {
		if strings.HasSuffix(lower, ext) {
			return "sqlite", dsn, nil
		}
	}

	return "", "", fmt.Errorf("unable to detect ledger dialect from %q", dsn)
}

type statements struct {
	create string
	insert string
	list   string
}

func statementsFor(dialect string) statements {
	if dialect == "postgres" {
		return statements{
			create: `
				CREATE TABLE IF NOT EXISTS js2liquibase_history (
					id BIGSERIAL PRIMARY KEY,
					script_path TEXT NOT NULL,
					output_path TEXT NOT NULL,
					version TEXT NOT NULL,
					changeset_base TEXT NOT NULL,
					author TEXT NOT NULL,
					context TEXT NOT NULL,
					changesets INTEGER NOT NULL,
					failures INTEGER NOT NULL,
					checksum TEXT NOT NULL,
					generated_at TIMESTAMPTZ NOT NULL
				)`,
			insert: `
				INSERT INTO js2liquibase_history
					(script_path, output_path, version, changeset_base, author, context,
					 changesets, failures, checksum, generated_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
				RETURNING id`,
			list: `
				SELECT id, script_path, output_path, version, changeset_base, author, context,
					changesets, failures, checksum, generated_at
				FROM js2liquibase_history
				ORDER BY id DESC
				LIMIT $1`,
		}
	}

	return statements{
		create: `
			CREATE TABLE IF NOT EXISTS js2liquibase_history (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				script_path TEXT NOT NULL,
				output_path TEXT NOT NULL,
				version TEXT NOT NULL,
				changeset_base TEXT NOT NULL,
				author TEXT NOT NULL,
				context TEXT NOT NULL,
				changesets INTEGER NOT NULL,
				failures INTEGER NOT NULL,
				checksum TEXT NOT NULL,
				generated_at TEXT NOT NULL
			)`,
		insert: `
			INSERT INTO js2liquibase_history
				(script_path, output_path, version, changeset_base, author, context,
				 changesets, failures, checksum, generated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			RETURNING id`,
		list: `
			SELECT id, script_path, output_path, version, changeset_base, author, context,
				changesets, failures, checksum, generated_at
			FROM js2liquibase_history
			ORDER BY id DESC
			LIMIT ?`,
	}
}

type sqlStore struct {
	db *sql.DB
	q  statements
}

// Init creates the history table if it does not exist.
func (s *sqlStore) Init(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, s.q.create); err != nil {
		return fmt.Errorf("creating history table: %w", err)
	}
	return nil
}

// Record inserts r and sets its ID. A zero GeneratedAt is set to now.
func (s *sqlStore) Record(ctx context.Context, r *Record) error {
	if r.GeneratedAt.IsZero() {
		r.GeneratedAt = time.Now().UTC()
	}
	err := s.db.QueryRowContext(ctx, s.q.insert,
		r.ScriptPath,
		r.OutputPath,
		r.Version,
		r.Base,
		r.Author,
		r.Context,
		r.ChangeSets,
		r.Failures,
		r.Checksum,
		r.GeneratedAt.Format(time.RFC3339Nano),
	).Scan(&r.ID)
	if err != nil {
		return fmt.Errorf("recording generation: %w", err)
	}
	return nil
}

// List returns up to limit records, newest first.
func (s *sqlStore) List(ctx context.Context, limit int) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, s.q.list, limit)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		var generatedAt string
		if err := rows.Scan(
			&r.ID,
			&r.ScriptPath,
			&r.OutputPath,
			&r.Version,
			&r.Base,
			&r.Author,
			&r.Context,
			&r.ChangeSets,
			&r.Failures,
			&r.Checksum,
			&generatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning history: %w", err)
		}
		r.GeneratedAt, err = time.Parse(time.RFC3339Nano, generatedAt)
		if err != nil {
			return nil, fmt.Errorf("parsing generated_at %q: %w", generatedAt, err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Close closes the database.
func (s *sqlStore) Close() error {
	return s.db.Close()
}
