package datastore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aleister1102/pagewatch/internal/models"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// JournalEntry is one row of the check_history table.
type JournalEntry struct {
	ID           int64         `json:"id"`
	CycleID      string        `json:"cycle_id"`
	TargetName   string        `json:"target_name"`
	TargetURL    string        `json:"target_url"`
	StorageKey   string        `json:"storage_key"`
	Status       string        `json:"status"`
	Reason       string        `json:"reason,omitempty"`
	LinesAdded   int           `json:"lines_added"`
	LinesRemoved int           `json:"lines_removed"`
	CheckedAt    time.Time     `json:"checked_at"`
	Duration     time.Duration `json:"duration"`
}

// CheckJournal appends every check outcome to a SQLite database.
type CheckJournal struct {
	db     *sql.DB
	logger zerolog.Logger
}

// NewCheckJournal opens (or creates) the journal database and ensures the schema.
func NewCheckJournal(dataSourceName string, logger zerolog.Logger) (*CheckJournal, error) {
	logger = logger.With().Str("component", "CheckJournal").Logger()

	if dataSourceName != ":memory:" {
		dbDir := filepath.Dir(dataSourceName)
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create journal directory %s: %w", dbDir, err)
		}
	}

	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("sql.Open failed for %s: %w", dataSourceName, err)
	}
	// Workers record concurrently; a single connection serializes writers.
	db.SetMaxOpenConns(1)

	journal := &CheckJournal{db: db, logger: logger}
	if err := journal.InitSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Debug().Str("path", dataSourceName).Msg("Check journal ready")
	return journal, nil
}

// Close closes the database connection.
func (j *CheckJournal) Close() error {
	if j.db != nil {
		return j.db.Close()
	}
	return nil
}

// InitSchema creates the check_history table if it doesn't already exist.
func (j *CheckJournal) InitSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS check_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		cycle_id TEXT NOT NULL,
		target_name TEXT NOT NULL,
		target_url TEXT NOT NULL,
		storage_key TEXT NOT NULL,
		status TEXT NOT NULL,
		reason TEXT,
		lines_added INTEGER DEFAULT 0,
		lines_removed INTEGER DEFAULT 0,
		checked_at DATETIME NOT NULL,
		duration_ms INTEGER DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_check_history_url ON check_history (target_url, checked_at);
	`
	if _, err := j.db.Exec(query); err != nil {
		j.logger.Error().Err(err).Msg("Failed to initialize schema")
		return err
	}
	return nil
}

// Record appends the outcome of one target check.
func (j *CheckJournal) Record(ctx context.Context, cycleID string, result models.CheckResult) error {
	query := `INSERT INTO check_history
		(cycle_id, target_name, target_url, storage_key, status, reason, lines_added, lines_removed, checked_at, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	reason := result.Reason()
	_, err := j.db.ExecContext(ctx, query,
		cycleID,
		result.Target.Name,
		result.Target.URL,
		StorageKey(result.Target.URL),
		string(result.Status),
		sql.NullString{String: reason, Valid: reason != ""},
		result.Changes.Added(),
		result.Changes.Removed(),
		result.CheckedAt.UTC(),
		result.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert check record for %s: %w", result.Target.URL, err)
	}
	return nil
}

// Recent returns the newest entries across all targets, newest first.
func (j *CheckJournal) Recent(ctx context.Context, limit int) ([]JournalEntry, error) {
	query := `SELECT id, cycle_id, target_name, target_url, storage_key, status, reason, lines_added, lines_removed, checked_at, duration_ms
		FROM check_history ORDER BY checked_at DESC, id DESC LIMIT ?`
	return j.query(ctx, query, normalizeLimit(limit))
}

// RecentForTarget returns the newest entries for one target URL, newest first.
func (j *CheckJournal) RecentForTarget(ctx context.Context, url string, limit int) ([]JournalEntry, error) {
	query := `SELECT id, cycle_id, target_name, target_url, storage_key, status, reason, lines_added, lines_removed, checked_at, duration_ms
		FROM check_history WHERE target_url = ? ORDER BY checked_at DESC, id DESC LIMIT ?`
	return j.query(ctx, query, url, normalizeLimit(limit))
}

func (j *CheckJournal) query(ctx context.Context, query string, args ...any) ([]JournalEntry, error) {
	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query check history: %w", err)
	}
	defer rows.Close()

	var entries []JournalEntry
	for rows.Next() {
		var (
			e          JournalEntry
			reason     sql.NullString
			durationMs int64
		)
		if err := rows.Scan(&e.ID, &e.CycleID, &e.TargetName, &e.TargetURL, &e.StorageKey, &e.Status,
			&reason, &e.LinesAdded, &e.LinesRemoved, &e.CheckedAt, &durationMs); err != nil {
			return nil, fmt.Errorf("failed to scan check history row: %w", err)
		}
		e.Reason = reason.String
		e.Duration = time.Duration(durationMs) * time.Millisecond
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func normalizeLimit(limit int) int {
	if limit <= 0 || limit > 1000 {
		return 50
	}
	return limit
}
