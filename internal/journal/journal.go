// Package journal records alerts to a SQLite database so they outlive the
// dashboard's one-minute alert box.
package journal

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/rileyhilliard/sysmon/internal/errors"
	"github.com/rileyhilliard/sysmon/internal/processor"
)

// Journal is an append-only alert log. It implements dashboard.AlertSink.
type Journal struct {
	db       *sql.DB
	hostname string
}

// Entry is one recorded alert.
type Entry struct {
	ID       int64
	Hostname string
	processor.Alert
}

// Open opens or creates the journal at path.
func Open(path, hostname string) (*Journal, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.WrapWithCode(err, errors.ErrJournal,
				"Can't create alert journal directory",
				"Check alerts.journal_path points somewhere writable.")
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrJournal,
			"Can't open alert journal "+path, "")
	}
	// sqlite serialises writers anyway
	db.SetMaxOpenConns(1)

	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, errors.WrapWithCode(err, errors.ErrJournal,
			"Can't initialise alert journal "+path,
			"Delete the file if it is not a sysmon journal.")
	}
	return &Journal{db: db, hostname: hostname}, nil
}

func migrate(db *sql.DB) error {
	stmts := []string{
		`PRAGMA journal_mode=WAL;`,
		`CREATE TABLE IF NOT EXISTS alerts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			raised_at INTEGER NOT NULL,
			hostname TEXT NOT NULL,
			resource TEXT NOT NULL,
			level TEXT NOT NULL,
			message TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_alerts_raised_at ON alerts(raised_at);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// Record appends a. The insert runs on the caller's goroutine.
func (j *Journal) Record(a processor.Alert) error {
	_, err := j.db.Exec(
		`INSERT INTO alerts(raised_at, hostname, resource, level, message) VALUES(?, ?, ?, ?, ?)`,
		a.RaisedAt.UnixNano(), j.hostname, string(a.Resource), string(a.Level), a.Message,
	)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrJournal, "Failed to record alert", "")
	}
	return nil
}

// Recent returns up to limit entries, newest first. Entries raised before
// since are skipped when since is non-zero.
func (j *Journal) Recent(ctx context.Context, since time.Time, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	var from int64
	if !since.IsZero() {
		from = since.UnixNano()
	}

	rows, err := j.db.QueryContext(ctx,
		`SELECT id, raised_at, hostname, resource, level, message FROM alerts
		 WHERE raised_at >= ? ORDER BY raised_at DESC, id DESC LIMIT ?`,
		from, limit,
	)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrJournal, "Failed to read alert journal", "")
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e                        Entry
			raisedAt                 int64
			resource, level, message string
		)
		if err := rows.Scan(&e.ID, &raisedAt, &e.Hostname, &resource, &level, &message); err != nil {
			return nil, errors.WrapWithCode(err, errors.ErrJournal, "Failed to read alert journal", "")
		}
		e.RaisedAt = time.Unix(0, raisedAt)
		e.Resource = processor.Resource(resource)
		e.Level = processor.Level(level)
		e.Message = message
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrJournal, "Failed to read alert journal", "")
	}
	return out, nil
}

// Count returns how many alerts are recorded.
func (j *Journal) Count(ctx context.Context) (int, error) {
	var n int
	if err := j.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM alerts`).Scan(&n); err != nil {
		return 0, errors.WrapWithCode(err, errors.ErrJournal, "Failed to read alert journal", "")
	}
	return n, nil
}

// Close closes the database.
func (j *Journal) Close() error {
	return j.db.Close()
}
