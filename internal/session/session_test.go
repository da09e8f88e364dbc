package session

import (
	"testing"
	"time"
)

func TestAppendAndHistory(t *testing.T) {
	s := NewMemStore(time.Hour, 0)

	if got := s.History("abc"); len(got) != 0 {
		t.Fatalf("fresh session history = %v, want empty", got)
	}

	s.Append("abc", Turn{Message: "hi", Response: "hello"})
	s.Append("abc", Turn{Message: "again", Response: "yes"})
	s.Append("other", Turn{Message: "x", Response: "y"})

	got := s.History("abc")
	if len(got) != 2 || got[0].Message != "hi" || got[1].Message != "again" {
		t.Errorf("history = %+v", got)
	}
	if s.Len() != 2 {
		t.Errorf("Len = %d, want 2", s.Len())
	}

	// Histories are copies; mutating one must not leak back.
	got[0].Message = "mutated"
	if s.History("abc")[0].Message != "hi" {
		t.Error("History must return a copy")
	}
}

func TestMaxTurnsOverflow(t *testing.T) {
	s := NewMemStore(time.Hour, 2)
	s.Append("a", Turn{Message: "1"})
	s.Append("a", Turn{Message: "2"})
	s.Append("a", Turn{Message: "3"})

	got := s.History("a")
	if len(got) != 2 || got[0].Message != "2" || got[1].Message != "3" {
		t.Errorf("history = %+v, want oldest dropped", got)
	}
}

func TestSweepEvictsIdleSessions(t *testing.T) {
	s := NewMemStore(30*time.Minute, 0)
	base := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return base }

	s.Append("stale", Turn{Message: "old"})
	s.now = func() time.Time { return base.Add(20 * time.Minute) }
	s.Append("fresh", Turn{Message: "new"})

	s.now = func() time.Time { return base.Add(45 * time.Minute) }
	if n := s.sweep(); n != 1 {
		t.Fatalf("sweep evicted %d, want 1", n)
	}
	if len(s.History("stale")) != 0 {
		t.Error("stale session should be gone")
	}
	if len(s.History("fresh")) != 1 {
		t.Error("fresh session should survive")
	}
}
