package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"pomodoro/internal/core/timekeeper"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const historyFileName = "history.db"

// HistoryEntry is one finished phase in the journal.
type HistoryEntry struct {
	ID        string
	Phase     timekeeper.Phase
	Duration  time.Duration
	StartedAt time.Time
	EndedAt   time.Time
	Skipped   bool
}

// Summary aggregates journal entries over a period.
type Summary struct {
	FocusCount    int
	FocusTime     time.Duration
	BreakCount    int
	SkippedBreaks int
}

// String renders the totals as "3 focus sessions, 1h 15m focused".
func (summary Summary) String() string {
	sessions := "sessions"
	if summary.FocusCount == 1 {
		sessions = "session"
	}
	return fmt.Sprintf("%d focus %s, %s focused", summary.FocusCount, sessions, FormatSpan(summary.FocusTime))
}

// FormatSpan renders a duration rounded to minutes, such as "25m" or "1h 05m".
func FormatSpan(value time.Duration) string {
	value = value.Round(time.Minute)
	if value < 0 {
		value = 0
	}
	hours := int(value / time.Hour)
	minutes := int(value % time.Hour / time.Minute)
	if hours > 0 {
		return fmt.Sprintf("%dh %02dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}

// HistoryRecorder accepts finished phases.
type HistoryRecorder interface {
	Record(ctx context.Context, entry HistoryEntry) (HistoryEntry, error)
}

// HistoryStore is the SQLite-backed session journal.
type HistoryStore struct {
	db *sql.DB
}

// HistoryPathFor returns the journal location inside configDir.
func HistoryPathFor(configDir string) string {
	return filepath.Join(configDir, historyFileName)
}

// OpenHistory opens the journal at path, creating it and its directory when
// needed.
func OpenHistory(path string) (*HistoryStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)")
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	// One writer at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	store := &HistoryStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate history db: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (store *HistoryStore) Close() error {
	return store.db.Close()
}

func (store *HistoryStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS phases (
		id TEXT PRIMARY KEY,
		phase TEXT NOT NULL,
		duration_ms INTEGER NOT NULL,
		started_at INTEGER NOT NULL,
		ended_at INTEGER NOT NULL,
		skipped INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_phases_ended_at ON phases(ended_at);
	`
	_, err := store.db.Exec(schema)
	return err
}

// Record inserts a finished phase. An empty ID is replaced by a new UUID.
func (store *HistoryStore) Record(ctx context.Context, entry HistoryEntry) (HistoryEntry, error) {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.StartedAt.IsZero() {
		entry.StartedAt = entry.EndedAt.Add(-entry.Duration)
	}

	_, err := store.db.ExecContext(ctx,
		`INSERT INTO phases (id, phase, duration_ms, started_at, ended_at, skipped) VALUES (?, ?, ?, ?, ?, ?)`,
		entry.ID, string(entry.Phase), entry.Duration.Milliseconds(),
		entry.StartedAt.UnixNano(), entry.EndedAt.UnixNano(), boolToInt(entry.Skipped),
	)
	if err != nil {
		return entry, fmt.Errorf("insert phase: %w", err)
	}
	return entry, nil
}

// Recent returns up to limit entries, newest first.
func (store *HistoryStore) Recent(ctx context.Context, limit int) ([]HistoryEntry, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := store.db.QueryContext(ctx,
		`SELECT id, phase, duration_ms, started_at, ended_at, skipped FROM phases ORDER BY ended_at DESC, rowid DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query phases: %w", err)
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var (
			entry      HistoryEntry
			phase      string
			durationMs int64
			startedAt  int64
			endedAt    int64
			skipped    int
		)
		if err := rows.Scan(&entry.ID, &phase, &durationMs, &startedAt, &endedAt, &skipped); err != nil {
			return nil, fmt.Errorf("scan phase: %w", err)
		}
		entry.Phase = timekeeper.Phase(phase)
		entry.Duration = time.Duration(durationMs) * time.Millisecond
		entry.StartedAt = time.Unix(0, startedAt)
		entry.EndedAt = time.Unix(0, endedAt)
		entry.Skipped = skipped != 0
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Summarize aggregates every entry that ended at or after since.
func (store *HistoryStore) Summarize(ctx context.Context, since time.Time) (Summary, error) {
	var (
		summary Summary
		focusMs sql.NullInt64
	)
	err := store.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(CASE WHEN phase = ? THEN 1 ELSE 0 END), 0),
			SUM(CASE WHEN phase = ? THEN duration_ms END),
			COALESCE(SUM(CASE WHEN phase != ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN phase != ? AND skipped = 1 THEN 1 ELSE 0 END), 0)
		FROM phases WHERE ended_at >= ?`,
		string(timekeeper.PhaseFocus), string(timekeeper.PhaseFocus),
		string(timekeeper.PhaseFocus), string(timekeeper.PhaseFocus),
		since.UnixNano(),
	).Scan(&summary.FocusCount, &focusMs, &summary.BreakCount, &summary.SkippedBreaks)
	if err != nil {
		return Summary{}, fmt.Errorf("summarize phases: %w", err)
	}
	if focusMs.Valid {
		summary.FocusTime = time.Duration(focusMs.Int64) * time.Millisecond
	}
	return summary, nil
}

// RecordHistory journals every phase_advance event until events is closed or
// ctx is done. Storage failures are logged and never stop the loop.
func RecordHistory(ctx context.Context, events <-chan timekeeper.Event, recorder HistoryRecorder, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if event.Type != timekeeper.EventPhaseAdvance || event.Ended == nil {
				continue
			}
			entry, err := recorder.Record(ctx, EntryFromRecord(*event.Ended))
			if err != nil {
				logger.Error("record phase failed", "phase", event.Ended.Phase, "error", err)
				continue
			}
			logger.Debug("phase recorded", "id", entry.ID, "phase", entry.Phase, "duration", entry.Duration)
		}
	}
}

// EntryFromRecord converts an engine phase record to a journal entry.
func EntryFromRecord(record timekeeper.PhaseRecord) HistoryEntry {
	return HistoryEntry{
		Phase:     record.Phase,
		Duration:  record.Duration,
		StartedAt: record.StartedAt,
		EndedAt:   record.EndedAt,
		Skipped:   record.Skipped,
	}
}

// StartOfDay returns local midnight of the day containing t.
func StartOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
