package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/rvenkat/agentdesk/internal/domain"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestInsertAndQueryMeetings(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	m := &domain.Meeting{
		Title:       "Team Review",
		MeetingDate: "2026-03-05",
		MeetingTime: "14:00",
		Reasoning:   "Weather: Clear, 29.4C; no conflicts",
	}
	id, err := s.InsertMeeting(ctx, m)
	if err != nil {
		t.Fatalf("InsertMeeting: %v", err)
	}
	if id == 0 || m.ID != id {
		t.Errorf("expected assigned id, got %d (meeting %d)", id, m.ID)
	}
	if m.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be assigned")
	}

	at, err := s.MeetingsAt(ctx, "2026-03-05", "14:00")
	if err != nil {
		t.Fatalf("MeetingsAt: %v", err)
	}
	if len(at) != 1 || at[0].Title != "Team Review" {
		t.Fatalf("MeetingsAt = %+v, want one Team Review", at)
	}

	on, err := s.MeetingsOn(ctx, "2026-03-05")
	if err != nil {
		t.Fatalf("MeetingsOn: %v", err)
	}
	if len(on) != 1 {
		t.Fatalf("MeetingsOn returned %d rows, want 1", len(on))
	}

	if none, _ := s.MeetingsOn(ctx, "2026-03-06"); len(none) != 0 {
		t.Errorf("expected no meetings on other date, got %d", len(none))
	}
}

func TestInsertMeetingSlotTaken(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first := &domain.Meeting{Title: "Standup", MeetingDate: "2026-03-05", MeetingTime: "09:00"}
	if _, err := s.InsertMeeting(ctx, first); err != nil {
		t.Fatalf("first insert: %v", err)
	}

	second := &domain.Meeting{Title: "Retro", MeetingDate: "2026-03-05", MeetingTime: "09:00"}
	if _, err := s.InsertMeeting(ctx, second); !errors.Is(err, domain.ErrSlotTaken) {
		t.Fatalf("second insert err = %v, want ErrSlotTaken", err)
	}

	rows, _ := s.MeetingsOn(ctx, "2026-03-05")
	if len(rows) != 1 {
		t.Errorf("expected exactly one row after slot collision, got %d", len(rows))
	}
}

func TestInsertUntimedMeetingsDoNotCollide(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, title := range []string{"Offsite", "Planning"} {
		m := &domain.Meeting{Title: title, MeetingDate: "2026-03-07"}
		if _, err := s.InsertMeeting(ctx, m); err != nil {
			t.Fatalf("insert %s: %v", title, err)
		}
	}
	rows, _ := s.MeetingsOn(ctx, "2026-03-07")
	if len(rows) != 2 {
		t.Errorf("expected 2 untimed rows, got %d", len(rows))
	}
	if rows[0].MeetingTime != "" {
		t.Errorf("expected empty meeting_time, got %q", rows[0].MeetingTime)
	}
}

func TestSelectRows(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i, title := range []string{"First", "Second", "Third"} {
		m := &domain.Meeting{Title: title, MeetingDate: "2026-03-05", MeetingTime: []string{"08:00", "10:00", "12:00"}[i]}
		if _, err := s.InsertMeeting(ctx, m); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	cols, rows, err := s.SelectRows(ctx,
		`SELECT title, meeting_time FROM meetings WHERE meeting_date = '2026-03-05' ORDER BY meeting_time`)
	if err != nil {
		t.Fatalf("SelectRows: %v", err)
	}
	if len(cols) != 2 || cols[0] != "title" || cols[1] != "meeting_time" {
		t.Fatalf("columns = %v", cols)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	if rows[0]["title"] != "First" || rows[2]["title"] != "Third" {
		t.Errorf("row order not preserved: %v", rows)
	}
	if rows[1]["meeting_time"] != "10:00" {
		t.Errorf("meeting_time = %v, want 10:00", rows[1]["meeting_time"])
	}
}
