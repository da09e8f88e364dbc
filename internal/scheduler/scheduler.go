// Package scheduler decides whether a meeting can be scheduled. It
// walks a fixed state machine: validate the request, evaluate weather
// suitability, check for slot conflicts, then either insert exactly one
// row with a reasoning trail or refuse with an explanation.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/rvenkat/agentdesk/internal/dates"
	"github.com/rvenkat/agentdesk/internal/domain"
	"github.com/rvenkat/agentdesk/internal/weather"
)

// State is a stop of the scheduling state machine.
type State string

const (
	StateEvaluating      State = "evaluating"
	StateWeatherChecked  State = "weather_checked"
	StateConflictChecked State = "conflict_checked"
	StateScheduled       State = "scheduled"
	StateRejected        State = "rejected"
)

// Temperature band outside which weather counts as bad (metric).
const (
	minComfortableC = 18.0
	maxComfortableC = 42.0
)

// Request is a scheduling request. Time is optional; an empty time
// means an all-day meeting with date-only conflict checking.
type Request struct {
	Title string
	Date  string // relative term or YYYY-MM-DD
	Time  string // HH:MM, "2 PM" etc.; optional
	City  string
}

// Decision is the terminal outcome of one scheduling request.
type Decision struct {
	State     State            `json:"state"`
	Reason    string           `json:"reason,omitempty"` // set when rejected
	Reasoning string           `json:"reasoning,omitempty"`
	Warning   string           `json:"warning,omitempty"`
	Meeting   *domain.Meeting  `json:"meeting,omitempty"`
	Conflicts []domain.Meeting `json:"conflicts,omitempty"`
}

// MeetingStore is the slice of the repository the scheduler needs.
type MeetingStore interface {
	InsertMeeting(ctx context.Context, m *domain.Meeting) (int64, error)
	MeetingsOn(ctx context.Context, date string) ([]domain.Meeting, error)
	MeetingsAt(ctx context.Context, date, tm string) ([]domain.Meeting, error)
}

// Scheduler evaluates and persists meeting requests.
type Scheduler struct {
	weather           weather.Provider
	store             MeetingStore
	blockOnBadWeather bool
	now               func() time.Time
	logger            *slog.Logger
}

// Option configures the Scheduler.
type Option func(*Scheduler)

// WithClock overrides the clock, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// WithBlockOnBadWeather makes bad weather a hard rejection instead of
// a note in the reasoning trail.
func WithBlockOnBadWeather(block bool) Option {
	return func(s *Scheduler) { s.blockOnBadWeather = block }
}

// WithLogger overrides the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Scheduler) { s.logger = l }
}

// New creates a Scheduler.
func New(provider weather.Provider, store MeetingStore, opts ...Option) *Scheduler {
	s := &Scheduler{
		weather: provider,
		store:   store,
		now:     time.Now,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type weatherVerdict int

const (
	weatherUnknown weatherVerdict = iota
	weatherGood
	weatherBad
)

// classify applies the fixed suitability rule set: precipitation, an
// adverse condition group, or a temperature outside the comfortable
// band means bad.
func classify(rec *domain.WeatherRecord) (weatherVerdict, string) {
	detail := fmt.Sprintf("Weather: %s, %.1fC", rec.Condition, rec.Temperature)
	if rec.Precipitation || weather.Precipitating(rec.Condition) {
		return weatherBad, detail + " (precipitation expected)"
	}
	if rec.Temperature < minComfortableC || rec.Temperature > maxComfortableC {
		return weatherBad, detail + " (temperature outside comfortable range)"
	}
	return weatherGood, detail
}

// Schedule runs the state machine to a terminal state. It returns an
// error only on storage failures; refusals come back as a Rejected
// decision with an explanation.
func (s *Scheduler) Schedule(ctx context.Context, req Request) (*Decision, error) {
	// Evaluating.
	var missing []string
	if strings.TrimSpace(req.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(req.Date) == "" {
		missing = append(missing, "date")
	}
	if strings.TrimSpace(req.City) == "" {
		missing = append(missing, "city")
	}
	if len(missing) > 0 {
		return &Decision{
			State:  StateRejected,
			Reason: fmt.Sprintf("%v: missing required field(s): %s", domain.ErrValidation, strings.Join(missing, ", ")),
		}, nil
	}

	date, err := dates.Resolve(req.Date, s.now())
	if err != nil {
		return &Decision{State: StateRejected, Reason: err.Error()}, nil
	}
	meetingTime, err := normalizeTime(req.Time)
	if err != nil {
		return &Decision{State: StateRejected, Reason: err.Error()}, nil
	}

	// WeatherChecked.
	verdict := weatherUnknown
	weatherNote := "weather unknown (provider unavailable)"
	rec, err := s.weather.Current(ctx, req.City)
	switch {
	case err == nil:
		verdict, weatherNote = classify(rec)
	case errors.Is(err, domain.ErrNotFound):
		weatherNote = fmt.Sprintf("weather unknown (no data for %s)", req.City)
	case errors.Is(err, domain.ErrProviderUnavailable):
		// An external outage must not block scheduling.
		s.logger.Warn("weather provider unavailable, proceeding", "city", req.City, "error", err)
	default:
		s.logger.Warn("weather lookup failed, proceeding", "city", req.City, "error", err)
	}

	if verdict == weatherBad && s.blockOnBadWeather {
		return &Decision{
			State:     StateRejected,
			Reason:    fmt.Sprintf("weather is not suitable: %s", weatherNote),
			Reasoning: weatherNote,
		}, nil
	}

	// ConflictChecked. Storage errors here are fatal: a scheduling
	// decision must not be made on an uncertain data view.
	var (
		conflicts []domain.Meeting
		warning   string
	)
	if meetingTime != "" {
		conflicts, err = s.store.MeetingsAt(ctx, date, meetingTime)
		if err != nil {
			return nil, fmt.Errorf("%w: conflict check: %v", domain.ErrExecution, err)
		}
		if len(conflicts) > 0 {
			return &Decision{
				State:     StateRejected,
				Reason:    fmt.Sprintf("conflicts with %q at %s %s", conflicts[0].Title, date, meetingTime),
				Conflicts: conflicts,
				Reasoning: weatherNote,
			}, nil
		}
	} else {
		// All-day vs timed meetings are not distinguished in the
		// schema, so same-day rows are a warning, not a hard block.
		sameDay, err := s.store.MeetingsOn(ctx, date)
		if err != nil {
			return nil, fmt.Errorf("%w: conflict check: %v", domain.ErrExecution, err)
		}
		if len(sameDay) > 0 {
			warning = fmt.Sprintf("%d other meeting(s) already on %s", len(sameDay), date)
		}
	}

	// Scheduled: the insert is the single side-effecting step, placed
	// last so an abandoned request leaves no partial row.
	reasoning := weatherNote + "; no conflicts"
	if warning != "" {
		reasoning = weatherNote + "; " + warning
	}
	meeting := &domain.Meeting{
		Title:       strings.TrimSpace(req.Title),
		MeetingDate: date,
		MeetingTime: meetingTime,
		Reasoning:   reasoning,
	}
	if _, err := s.store.InsertMeeting(ctx, meeting); err != nil {
		if errors.Is(err, domain.ErrSlotTaken) {
			// Lost the race between our conflict check and the insert.
			return &Decision{
				State:     StateRejected,
				Reason:    fmt.Sprintf("slot %s %s was taken while scheduling", date, meetingTime),
				Reasoning: weatherNote,
			}, nil
		}
		return nil, fmt.Errorf("%w: insert meeting: %v", domain.ErrExecution, err)
	}

	s.logger.Info("meeting scheduled", "title", meeting.Title, "date", date, "time", meetingTime)
	return &Decision{
		State:     StateScheduled,
		Reasoning: reasoning,
		Warning:   warning,
		Meeting:   meeting,
	}, nil
}

var timeLayouts = []string{"15:04", "15:04:05", "3:04 PM", "3 PM", "3:04PM", "3PM"}

// normalizeTime canonicalizes a time spec to HH:MM. Empty stays empty.
func normalizeTime(spec string) (string, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return "", nil
	}
	upper := strings.ToUpper(spec)
	for _, layout := range timeLayouts {
		if ts, err := time.Parse(layout, upper); err == nil {
			return ts.Format("15:04"), nil
		}
	}
	return "", fmt.Errorf("%w: unrecognized time %q", domain.ErrValidation, spec)
}
