package nl2sql

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/rvenkat/agentdesk/internal/domain"
	"github.com/rvenkat/agentdesk/internal/llm"
	"github.com/rvenkat/agentdesk/internal/scheduler"
	"github.com/rvenkat/agentdesk/internal/store"
)

var testNow = func() time.Time {
	return time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)
}

// sqlLLM returns a fixed statement and records the prompt it saw.
type sqlLLM struct {
	stmt   string
	err    error
	prompt string
}

func (s *sqlLLM) Complete(_ context.Context, msgs []llm.Message, _ []llm.Tool) (*llm.Response, error) {
	s.prompt = msgs[len(msgs)-1].Content
	if s.err != nil {
		return nil, s.err
	}
	return &llm.Response{Content: s.stmt}, nil
}

type fakeQuerier struct {
	cols []string
	rows []map[string]any
	got  string
}

func (f *fakeQuerier) SelectRows(_ context.Context, q string) ([]string, []map[string]any, error) {
	f.got = q
	return f.cols, f.rows, nil
}

func TestTranslateAndRunResolvesDates(t *testing.T) {
	model := &sqlLLM{stmt: "SELECT * FROM meetings WHERE meeting_date = '2026-03-05'"}
	querier := &fakeQuerier{cols: []string{"id"}, rows: []map[string]any{{"id": int64(1)}}}
	tr := New(model, querier, WithClock(testNow))

	res, err := tr.TranslateAndRun(context.Background(), "Show all meetings scheduled tomorrow")
	if err != nil {
		t.Fatalf("TranslateAndRun: %v", err)
	}
	if model.prompt != "Show all meetings scheduled 2026-03-05" {
		t.Errorf("model saw %q; relative dates must be resolved first", model.prompt)
	}
	if res.RowCount != 1 {
		t.Errorf("row_count = %d, want 1", res.RowCount)
	}
}

func TestTranslateAndRunStripsFence(t *testing.T) {
	model := &sqlLLM{stmt: "```sql\nSELECT title FROM meetings\n```"}
	querier := &fakeQuerier{cols: []string{"title"}}
	tr := New(model, querier, WithClock(testNow))

	if _, err := tr.TranslateAndRun(context.Background(), "list meeting titles"); err != nil {
		t.Fatalf("TranslateAndRun: %v", err)
	}
	if querier.got != "SELECT title FROM meetings" {
		t.Errorf("executed %q, want fence stripped", querier.got)
	}
}

func TestTranslateAndRunRejectsUnsafe(t *testing.T) {
	for _, stmt := range []string{
		"DROP TABLE meetings",
		"SELECT * FROM meetings; DELETE FROM meetings",
	} {
		tr := New(&sqlLLM{stmt: stmt}, &fakeQuerier{}, WithClock(testNow))
		_, err := tr.TranslateAndRun(context.Background(), "show meetings")
		if !errors.Is(err, domain.ErrUnsafeQuery) {
			t.Errorf("stmt %q: err = %v, want ErrUnsafeQuery", stmt, err)
		}
	}
}

func TestTranslateAndRunProviderFailure(t *testing.T) {
	tr := New(&sqlLLM{err: domain.ErrProviderUnavailable}, &fakeQuerier{}, WithClock(testNow))
	if _, err := tr.TranslateAndRun(context.Background(), "show meetings"); !errors.Is(err, domain.ErrProviderUnavailable) {
		t.Fatalf("err = %v, want ErrProviderUnavailable", err)
	}
}

type clearWeather struct{}

func (clearWeather) Current(context.Context, string) (*domain.WeatherRecord, error) {
	return &domain.WeatherRecord{City: "Chennai", Condition: "Clear", Temperature: 29.4}, nil
}

// Round-trip: a meeting scheduled through the scheduler is retrievable
// through the translator with identical title, date and time.
func TestRoundTripThroughStore(t *testing.T) {
	repo, err := store.NewSQLite(filepath.Join(t.TempDir(), "rt.db"))
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}
	defer repo.Close()

	sched := scheduler.New(clearWeather{}, repo, scheduler.WithClock(testNow))
	d, err := sched.Schedule(context.Background(), scheduler.Request{
		Title: "Team Review", Date: "tomorrow", Time: "2 PM", City: "Chennai",
	})
	if err != nil || d.State != scheduler.StateScheduled {
		t.Fatalf("schedule = %+v, %v", d, err)
	}

	stmt := fmt.Sprintf("SELECT title, meeting_date, meeting_time FROM meetings WHERE meeting_date = '%s'", d.Meeting.MeetingDate)
	tr := New(&sqlLLM{stmt: stmt}, repo, WithClock(testNow))
	res, err := tr.TranslateAndRun(context.Background(), "Show all meetings scheduled tomorrow")
	if err != nil {
		t.Fatalf("TranslateAndRun: %v", err)
	}
	if res.RowCount != 1 {
		t.Fatalf("row_count = %d, want 1", res.RowCount)
	}
	row := res.Rows[0]
	if row["title"] != "Team Review" || row["meeting_date"] != "2026-03-05" || row["meeting_time"] != "14:00" {
		t.Errorf("row = %v", row)
	}
}
