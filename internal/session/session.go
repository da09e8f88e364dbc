// Package session keeps per-session conversation history. Sessions are
// created on first use, only ever appended to, and evicted after an
// idle TTL by a background janitor.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Turn is one completed exchange.
type Turn struct {
	Message  string
	Response string
	At       time.Time
}

// Store is the session history interface consumed by the supervisor.
type Store interface {
	// History returns a copy of the session's turns, oldest first.
	// An unknown id yields an empty history.
	History(id string) []Turn

	// Append records a completed turn, creating the session if needed.
	Append(id string, t Turn)
}

type entry struct {
	turns    []Turn
	lastSeen time.Time
}

// MemStore is an in-memory Store with idle-TTL eviction and a cap on
// turns kept per session (oldest dropped first).
type MemStore struct {
	mu       sync.Mutex
	sessions map[string]*entry
	ttl      time.Duration
	maxTurns int
	now      func() time.Time
	logger   *slog.Logger
}

// NewMemStore creates a store evicting sessions idle longer than ttl
// and keeping at most maxTurns turns per session (0 means unbounded).
func NewMemStore(ttl time.Duration, maxTurns int) *MemStore {
	return &MemStore{
		sessions: make(map[string]*entry),
		ttl:      ttl,
		maxTurns: maxTurns,
		now:      time.Now,
		logger:   slog.Default(),
	}
}

// History returns a copy of the session's turns.
func (s *MemStore) History(id string) []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[id]
	if !ok {
		return nil
	}
	e.lastSeen = s.now()
	out := make([]Turn, len(e.turns))
	copy(out, e.turns)
	return out
}

// Append records a turn, creating the session on first use.
func (s *MemStore) Append(id string, t Turn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[id]
	if !ok {
		e = &entry{}
		s.sessions[id] = e
	}
	e.turns = append(e.turns, t)
	if s.maxTurns > 0 && len(e.turns) > s.maxTurns {
		e.turns = e.turns[len(e.turns)-s.maxTurns:]
	}
	e.lastSeen = s.now()
}

// Len returns the number of live sessions.
func (s *MemStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// StartJanitor sweeps idle sessions every interval until ctx is done.
func (s *MemStore) StartJanitor(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := s.sweep(); n > 0 {
					s.logger.Info("evicted idle sessions", "count", n)
				}
			}
		}
	}()
}

func (s *MemStore) sweep() int {
	if s.ttl <= 0 {
		return 0
	}
	cutoff := s.now().Add(-s.ttl)
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, e := range s.sessions {
		if e.lastSeen.Before(cutoff) {
			delete(s.sessions, id)
			n++
		}
	}
	return n
}

var _ Store = (*MemStore)(nil)
