package tools

import (
	"context"
	"encoding/json"

	"github.com/rvenkat/agentdesk/internal/scheduler"
)

// ScheduleTool schedules a meeting through the scheduling state
// machine. Refusals (bad weather, conflicts, bad input) come back as a
// successful tool execution carrying the rejected decision, so the
// model can explain them.
type ScheduleTool struct {
	scheduler *scheduler.Scheduler
}

// NewScheduleTool creates the meeting scheduling tool.
func NewScheduleTool(s *scheduler.Scheduler) *ScheduleTool {
	return &ScheduleTool{scheduler: s}
}

// ScheduleArgs are the tool's declared arguments.
type ScheduleArgs struct {
	Title string `json:"title" validate:"required"`
	Date  string `json:"date" validate:"required"`
	Time  string `json:"time,omitempty"`
	City  string `json:"city" validate:"required"`
}

func (t *ScheduleTool) Name() string { return "schedule_meeting" }

func (t *ScheduleTool) Description() string {
	return "Schedule a meeting after checking weather suitability and calendar conflicts. Returns the decision (scheduled or rejected) with reasoning."
}

func (t *ScheduleTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"title": {"type": "string", "description": "Meeting title"},
			"date": {"type": "string", "description": "today, tomorrow or YYYY-MM-DD"},
			"time": {"type": "string", "description": "Optional time, HH:MM 24h"},
			"city": {"type": "string", "description": "City for the weather check"}
		},
		"required": ["title", "date", "city"]
	}`)
}

func (t *ScheduleTool) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	var a ScheduleArgs
	if err := decodeArgs(args, &a); err != nil {
		return "", err
	}
	decision, err := t.scheduler.Schedule(ctx, scheduler.Request{
		Title: a.Title,
		Date:  a.Date,
		Time:  a.Time,
		City:  a.City,
	})
	if err != nil {
		return "", err
	}
	out, err := json.Marshal(decision)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

var _ Tool = (*ScheduleTool)(nil)
