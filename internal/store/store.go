// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"

	"github.com/rvenkat/agentdesk/internal/domain"
)

// Repository defines the interface for persisting meeting data.
type Repository interface {
	// InsertMeeting inserts a new meeting row and returns its id.
	// For timed meetings the slot is re-checked inside the same
	// transaction; a collision returns domain.ErrSlotTaken.
	InsertMeeting(ctx context.Context, m *domain.Meeting) (int64, error)

	// MeetingsOn returns all meetings on a date, ordered by time.
	MeetingsOn(ctx context.Context, date string) ([]domain.Meeting, error)

	// MeetingsAt returns meetings at an exact (date, time) slot.
	MeetingsAt(ctx context.Context, date, tm string) ([]domain.Meeting, error)

	// SelectRows executes an already-validated read-only SELECT and
	// returns the column order plus one name->value map per row in
	// storage-native row order.
	SelectRows(ctx context.Context, query string) ([]string, []map[string]any, error)

	// Ping verifies database connectivity.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}
