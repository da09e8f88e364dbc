package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/rvenkat/agentdesk/internal/domain"
)

// SQLiteStore implements Repository using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite creates a new SQLite-backed repository.
func NewSQLite(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	// Open database with WAL mode for better concurrency.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	// The two indexes back the conflict check and the NL2SQL date-range
	// queries; they are part of the latency contract, not an option.
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS meetings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		meeting_date TEXT NOT NULL,
		meeting_time TEXT,
		reasoning TEXT,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_meetings_date ON meetings(meeting_date);
	CREATE INDEX IF NOT EXISTS idx_meetings_date_time ON meetings(meeting_date, meeting_time);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// InsertMeeting inserts a meeting row. When the meeting carries a time,
// the (meeting_date, meeting_time) slot is re-checked inside the same
// transaction so two concurrent scheduling requests cannot both land on
// it; the loser gets domain.ErrSlotTaken.
func (s *SQLiteStore) InsertMeeting(ctx context.Context, m *domain.Meeting) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin insert: %w", err)
	}
	defer tx.Rollback()

	if m.MeetingTime != "" {
		var n int
		err := tx.QueryRowContext(ctx,
			`SELECT COUNT(1) FROM meetings WHERE meeting_date = ? AND meeting_time = ?`,
			m.MeetingDate, m.MeetingTime,
		).Scan(&n)
		if err != nil {
			return 0, fmt.Errorf("check slot: %w", err)
		}
		if n > 0 {
			return 0, domain.ErrSlotTaken
		}
	}

	createdAt := time.Now().UTC()
	res, err := tx.ExecContext(ctx,
		`INSERT INTO meetings (title, meeting_date, meeting_time, reasoning, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		m.Title, m.MeetingDate, nullable(m.MeetingTime), m.Reasoning,
		createdAt.Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("insert meeting: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("meeting id: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit insert: %w", err)
	}

	m.ID = id
	m.CreatedAt = createdAt
	return id, nil
}

// MeetingsOn returns all meetings on a date, ordered by time.
func (s *SQLiteStore) MeetingsOn(ctx context.Context, date string) ([]domain.Meeting, error) {
	return s.queryMeetings(ctx,
		`SELECT id, title, meeting_date, meeting_time, reasoning, created_at
		 FROM meetings WHERE meeting_date = ? ORDER BY meeting_time`, date)
}

// MeetingsAt returns meetings at an exact (date, time) slot.
func (s *SQLiteStore) MeetingsAt(ctx context.Context, date, tm string) ([]domain.Meeting, error) {
	return s.queryMeetings(ctx,
		`SELECT id, title, meeting_date, meeting_time, reasoning, created_at
		 FROM meetings WHERE meeting_date = ? AND meeting_time = ?`, date, tm)
}

func (s *SQLiteStore) queryMeetings(ctx context.Context, query string, args ...any) ([]domain.Meeting, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query meetings: %w", err)
	}
	defer rows.Close()

	var meetings []domain.Meeting
	for rows.Next() {
		var m domain.Meeting
		var meetingTime, reasoning sql.NullString
		var createdAt string
		if err := rows.Scan(&m.ID, &m.Title, &m.MeetingDate, &meetingTime, &reasoning, &createdAt); err != nil {
			return nil, fmt.Errorf("scan meeting row: %w", err)
		}
		m.MeetingTime = meetingTime.String
		m.Reasoning = reasoning.String
		if ts, err := time.Parse(time.RFC3339, createdAt); err == nil {
			m.CreatedAt = ts
		}
		meetings = append(meetings, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate meeting rows: %w", err)
	}
	return meetings, nil
}

// SelectRows executes an already-validated SELECT and returns column
// order plus one name->value map per row, preserving engine row order.
// Callers must run the statement through the nl2sql safety gate first.
func (s *SQLiteStore) SelectRows(ctx context.Context, query string) ([]string, []map[string]any, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, nil, fmt.Errorf("execute select: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, fmt.Errorf("read columns: %w", err)
	}

	var out []map[string]any
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, fmt.Errorf("scan row: %w", err)
		}
		rec := make(map[string]any, len(cols))
		for i, col := range cols {
			if b, ok := values[i].([]byte); ok {
				rec[col] = string(b)
			} else {
				rec[col] = values[i]
			}
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate rows: %w", err)
	}
	return cols, out, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

var _ Repository = (*SQLiteStore)(nil)
