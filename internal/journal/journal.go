// oreon/lumen · watchthelight <wtl>

// Package journal keeps an append-only record of operation events in SQLite.
// It backs the status command's history view; writes are best-effort so a
// broken journal never blocks an operation.
package journal

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"

	"github.com/oreonproject/lumen/pkg/events"
)

// timeFormat is fixed-width so lexicographic ordering in SQL matches
// chronological ordering.
const timeFormat = "2006-01-02T15:04:05.000000000Z"

// Journal is an append-only SQLite event store. It implements events.Sink.
type Journal struct {
	db     *sql.DB
	logger *slog.Logger
}

// Entry is one recorded event.
type Entry struct {
	ID         string
	Type       string
	Component  string
	StartedAt  time.Time
	DurationMs int64
	Success    bool
	Error      string
	Fields     map[string]interface{}
}

// Open opens or creates the journal database at path.
func Open(path string, logger *slog.Logger) (*Journal, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)")
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	j := &Journal{db: db, logger: logger}
	if err := j.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate journal: %w", err)
	}
	return j, nil
}

func (j *Journal) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS events (
		id          TEXT PRIMARY KEY,
		type        TEXT NOT NULL,
		component   TEXT NOT NULL,
		started_at  TEXT NOT NULL,
		duration_ms INTEGER NOT NULL DEFAULT 0,
		success     INTEGER NOT NULL DEFAULT 1,
		error       TEXT,
		fields      TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_events_started ON events(started_at DESC);
	`
	_, err := j.db.Exec(schema)
	return err
}

// Record appends an event. Failures are logged, never propagated.
func (j *Journal) Record(evt events.Event) {
	var fields []byte
	if len(evt.Fields) > 0 {
		fields, _ = json.Marshal(evt.Fields)
	}
	_, err := j.db.Exec(
		`INSERT OR IGNORE INTO events (id, type, component, started_at, duration_ms, success, error, fields)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		evt.OperationID,
		string(evt.Type),
		evt.Component,
		evt.StartedAt.UTC().Format(timeFormat),
		evt.DurationMs,
		boolToInt(evt.Success),
		evt.Error,
		string(fields),
	)
	if err != nil {
		j.logger.Warn("journal append failed", "error", err)
	}
}

// Recent returns the latest n entries, newest first.
func (j *Journal) Recent(n int) ([]Entry, error) {
	rows, err := j.db.Query(
		`SELECT id, type, component, started_at, duration_ms, success, error, fields
		 FROM events ORDER BY started_at DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var startedAt string
		var errMsg, fields sql.NullString
		var success int
		if err := rows.Scan(&e.ID, &e.Type, &e.Component, &startedAt,
			&e.DurationMs, &success, &errMsg, &fields); err != nil {
			return nil, fmt.Errorf("scan journal row: %w", err)
		}
		e.StartedAt, _ = time.Parse(timeFormat, startedAt)
		e.Success = success != 0
		e.Error = errMsg.String
		if fields.Valid && fields.String != "" {
			_ = json.Unmarshal([]byte(fields.String), &e.Fields)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close closes the underlying database.
func (j *Journal) Close() error {
	return j.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
