// Package history keeps a SQLite log of completed exports.
package history

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"

	_ "github.com/mattn/go-sqlite3" // Import SQLite driver

	"github.com/hayeah/jackdir/export"
)

// Migration is one schema step, applied once and remembered by name.
type Migration struct {
	Name string
	Up   string
}

var migrations = []Migration{
	{
		Name: "create_exports_table",
		Up: `
			CREATE TABLE IF NOT EXISTS exports (
				id INTEGER PRIMARY KEY,
				root TEXT NOT NULL,
				destination TEXT NOT NULL,
				file_count INTEGER NOT NULL,
				bytes INTEGER NOT NULL,
				tokens INTEGER NOT NULL,
				message TEXT NOT NULL,
				created_at TIMESTAMP NOT NULL
			);
		`,
	},
	{
		Name: "index_exports_created_at",
		Up:   `CREATE INDEX IF NOT EXISTS exports_created_at ON exports (created_at);`,
	},
}

// Entry is a stored export.
type Entry struct {
	ID          int64     `db:"id" json:"id" yaml:"id"`
	Root        string    `db:"root" json:"root" yaml:"root"`
	Destination string    `db:"destination" json:"destination" yaml:"destination"`
	FileCount   int       `db:"file_count" json:"file_count" yaml:"file_count"`
	Bytes       int       `db:"bytes" json:"bytes" yaml:"bytes"`
	Tokens      int       `db:"tokens" json:"tokens" yaml:"tokens"`
	Message     string    `db:"message" json:"message" yaml:"message"`
	CreatedAt   time.Time `db:"created_at" json:"created_at" yaml:"created_at"`
}

// Store records exports. It satisfies export.Recorder.
type Store struct {
	DB     *sqlx.DB
	Logger *slog.Logger

	now func() time.Time
}

// Open opens (creating if needed) the database at path and migrates it.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}

	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	// sqlite allows a single writer
	db.SetMaxOpenConns(1)

	s := &Store{DB: db, Logger: logger}
	if err := s.Migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.DB.Close()
}

// Migrate applies every migration that has not run yet.
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.DB.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS migrations (
			name TEXT PRIMARY KEY,
			applied_at TIMESTAMP NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	for _, m := range migrations {
		var n int
		if err := s.DB.GetContext(ctx, &n, "SELECT COUNT(*) FROM migrations WHERE name = ?", m.Name); err != nil {
			return fmt.Errorf("failed to check migration %s: %w", m.Name, err)
		}
		if n > 0 {
			continue
		}

		tx, err := s.DB.BeginTxx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin migration %s: %w", m.Name, err)
		}
		if _, err := tx.ExecContext(ctx, m.Up); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to run migration %s: %w", m.Name, err)
		}
		if _, err := tx.ExecContext(ctx, "INSERT INTO migrations (name, applied_at) VALUES (?, ?)", m.Name, s.clock()); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %s: %w", m.Name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %s: %w", m.Name, err)
		}
		if s.Logger != nil {
			s.Logger.Debug("applied migration", "name", m.Name)
		}
	}
	return nil
}

// Record stores a completed export.
func (s *Store) Record(ctx context.Context, r export.Record) error {
	_, err := s.DB.ExecContext(ctx,
		"INSERT INTO exports (root, destination, file_count, bytes, tokens, message, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		r.Root, r.Destination, r.Files, r.Bytes, r.Tokens, r.Message, s.clock(),
	)
	if err != nil {
		return fmt.Errorf("failed to record export: %w", err)
	}
	return nil
}

// Recent returns up to limit exports, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	entries := []Entry{}
	err := s.DB.SelectContext(ctx, &entries, "SELECT * FROM exports ORDER BY created_at DESC, id DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list exports: %w", err)
	}
	return entries, nil
}

func (s *Store) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}
