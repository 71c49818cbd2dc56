package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/joescharf/clockme/internal/models"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLiteArchive is a queryable copy of a project's closed sessions and
// breaks, written by `clock-me export --format sqlite`. The JSON state file
// stays the source of truth.
type SQLiteArchive struct {
	db *sql.DB
}

// ArchiveStats counts the rows written by WriteProject.
type ArchiveStats struct {
	Sessions int
	Breaks   int
}

// OpenArchive opens (or creates) a SQLite archive at the given path.
func OpenArchive(dbPath string) (*SQLiteArchive, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create archive directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}

	// Single connection: every statement is issued from one command.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	return &SQLiteArchive{db: db}, nil
}

// Migrate runs all embedded SQL migration files in order.
func (a *SQLiteArchive) Migrate(ctx context.Context) error {
	_, err := a.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		filename TEXT PRIMARY KEY,
		applied_at DATETIME NOT NULL DEFAULT (datetime('now'))
	)`)
	if err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()

		var count int
		err := a.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_migrations WHERE filename = ?", name).Scan(&count)
		if err != nil {
			return fmt.Errorf("check migration %s: %w", name, err)
		}
		if count > 0 {
			continue
		}

		data, err := migrationsFS.ReadFile("migrations/" + name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		if _, err := a.db.ExecContext(ctx, string(data)); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}
		if _, err := a.db.ExecContext(ctx, "INSERT INTO schema_migrations (filename) VALUES (?)", name); err != nil {
			return fmt.Errorf("record migration %s: %w", name, err)
		}
	}
	return nil
}

// Close closes the database connection.
func (a *SQLiteArchive) Close() error {
	return a.db.Close()
}

// sessionID returns the stored ID, or a deterministic one derived from the
// start time for records written before sessions carried IDs.
func sessionID(s *models.Session) string {
	if s.ID != "" {
		return s.ID
	}
	return ulid.MustNew(ulid.Timestamp(s.Start), nil).String()
}

// WriteProject replaces the archived history of p with its current closed
// sessions. The open session, if any, is not archived.
func (a *SQLiteArchive) WriteProject(ctx context.Context, p *models.Project) (ArchiveStats, error) {
	var stats ArchiveStats

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return stats, fmt.Errorf("begin archive transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var createdAt any
	if !p.CreatedAt.IsZero() {
		createdAt = p.CreatedAt.UTC()
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO projects (name, created_at, exported_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET created_at = excluded.created_at, exported_at = excluded.exported_at`,
		p.Name, createdAt, time.Now().UTC(),
	)
	if err != nil {
		return stats, fmt.Errorf("upsert project: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE project_name = ?`, p.Name); err != nil {
		return stats, fmt.Errorf("clear archived sessions: %w", err)
	}

	for i := range p.Sessions {
		s := &p.Sessions[i]
		workTime, ok := s.WorkTime()
		if !ok {
			continue
		}
		id := sessionID(s)
		_, err := tx.ExecContext(ctx,
			`INSERT INTO sessions (id, project_name, started_at, ended_at, work_seconds, break_seconds)
			VALUES (?, ?, ?, ?, ?, ?)`,
			id, p.Name, s.Start.UTC(), s.End.UTC(),
			int64(workTime/time.Second), int64(s.TotalBreakTime()/time.Second),
		)
		if err != nil {
			return stats, fmt.Errorf("insert session %s: %w", id, err)
		}
		stats.Sessions++

		for j := range s.Breaks {
			b := &s.Breaks[j]
			d, ok := b.Duration()
			if !ok {
				continue
			}
			_, err := tx.ExecContext(ctx,
				`INSERT INTO breaks (session_id, seq, started_at, ended_at, seconds) VALUES (?, ?, ?, ?, ?)`,
				id, j, b.Start.UTC(), b.End.UTC(), int64(d/time.Second),
			)
			if err != nil {
				return stats, fmt.Errorf("insert break %d of session %s: %w", j, id, err)
			}
			stats.Breaks++
		}
	}

	if err := tx.Commit(); err != nil {
		return stats, fmt.Errorf("commit archive: %w", err)
	}
	committed = true
	return stats, nil
}

// SessionSummary is one archived session row.
type SessionSummary struct {
	ID          string
	StartedAt   time.Time
	WorkSeconds int64
	BreakCount  int
}

// ListSessions returns the archived sessions of a project, oldest first.
func (a *SQLiteArchive) ListSessions(ctx context.Context, projectName string) ([]SessionSummary, error) {
	rows, err := a.db.QueryContext(ctx,
		`SELECT s.id, s.started_at, s.work_seconds,
			(SELECT COUNT(*) FROM breaks b WHERE b.session_id = s.id)
		FROM sessions s WHERE s.project_name = ? ORDER BY s.started_at`, projectName)
	if err != nil {
		return nil, fmt.Errorf("list archived sessions: %w", err)
	}
	defer rows.Close()

	var out []SessionSummary
	for rows.Next() {
		var s SessionSummary
		if err := rows.Scan(&s.ID, &s.StartedAt, &s.WorkSeconds, &s.BreakCount); err != nil {
			return nil, fmt.Errorf("scan archived session: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
