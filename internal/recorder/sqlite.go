package recorder

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists the audit trail and schedule marks to a SQLite database.
// It satisfies marks.Store, so one file can hold both.
type SQLiteRecorder struct {
	db  *sql.DB
	mu  sync.Mutex
	log zerolog.Logger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, log zerolog.Logger) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets the API read history while the scheduler writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, log: log.With().Str("component", "recorder").Logger()}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	r.log.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS schedule_marks (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS briefing_runs (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp INTEGER NOT NULL,
			trigger_name TEXT,
			date      TEXT,
			failed    INTEGER,
			sources   INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_briefing_ts ON briefing_runs(timestamp)`,

		`CREATE TABLE IF NOT EXISTS alert_triggers (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp INTEGER NOT NULL,
			alert_id  TEXT,
			symbol    TEXT,
			condition TEXT,
			threshold REAL,
			price     REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_alert_ts ON alert_triggers(timestamp)`,

		`CREATE TABLE IF NOT EXISTS price_refreshes (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp   INTEGER NOT NULL,
			requested   INTEGER,
			parsed      INTEGER,
			accepted    INTEGER,
			rejected    INTEGER,
			duration_ms INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_refresh_ts ON price_refreshes(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// Get reads a schedule mark.
func (r *SQLiteRecorder) Get(key string) (string, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var v string
	err := r.db.QueryRow(`SELECT value FROM schedule_marks WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get mark %s: %w", key, err)
	}
	return v, true, nil
}

// Set writes a schedule mark.
func (r *SQLiteRecorder) Set(key, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO schedule_marks (key, value, updated_at) VALUES (?,?,?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("set mark %s: %w", key, err)
	}
	return nil
}

func (r *SQLiteRecorder) RecordBriefing(evt *BriefingRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO briefing_runs
		(timestamp, trigger_name, date, failed, sources)
		VALUES (?,?,?,?,?)`,
		time.Now().Unix(), evt.Trigger, evt.Date, evt.Failed, evt.Sources,
	)
	return err
}

func (r *SQLiteRecorder) RecordAlertTrigger(evt *AlertTrigger) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO alert_triggers
		(timestamp, alert_id, symbol, condition, threshold, price)
		VALUES (?,?,?,?,?,?)`,
		time.Now().Unix(), evt.AlertID, evt.Symbol, evt.Condition, evt.Threshold, evt.Price,
	)
	return err
}

func (r *SQLiteRecorder) RecordPriceRefresh(evt *PriceRefresh) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO price_refreshes
		(timestamp, requested, parsed, accepted, rejected, duration_ms)
		VALUES (?,?,?,?,?,?)`,
		time.Now().Unix(), evt.Requested, evt.Parsed, evt.Accepted, evt.Rejected,
		evt.Duration.Milliseconds(),
	)
	return err
}

func (r *SQLiteRecorder) Close() error {
	r.log.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}
