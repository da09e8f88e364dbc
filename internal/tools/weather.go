package tools

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rvenkat/agentdesk/internal/dates"
	"github.com/rvenkat/agentdesk/internal/weather"
)

// WeatherTool looks up current weather for a city.
type WeatherTool struct {
	provider weather.Provider
	now      func() time.Time
}

// NewWeatherTool creates the weather lookup tool.
func NewWeatherTool(provider weather.Provider, now func() time.Time) *WeatherTool {
	if now == nil {
		now = time.Now
	}
	return &WeatherTool{provider: provider, now: now}
}

// WeatherArgs are the tool's declared arguments.
type WeatherArgs struct {
	City string `json:"city" validate:"required"`
	Date string `json:"date,omitempty"`
}

func (t *WeatherTool) Name() string { return "get_weather" }

func (t *WeatherTool) Description() string {
	return "Fetch current weather for a city: condition, temperature (C), humidity, wind and precipitation."
}

func (t *WeatherTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"city": {"type": "string", "description": "City name"},
			"date": {"type": "string", "description": "Optional: today, tomorrow, yesterday or YYYY-MM-DD"}
		},
		"required": ["city"]
	}`)
}

func (t *WeatherTool) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	var a WeatherArgs
	if err := decodeArgs(args, &a); err != nil {
		return "", err
	}
	date, err := dates.Resolve(a.Date, t.now())
	if err != nil {
		return "", err
	}
	rec, err := t.provider.Current(ctx, a.City)
	if err != nil {
		return "", err
	}
	rec.Date = date
	out, err := json.Marshal(rec)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

var _ Tool = (*WeatherTool)(nil)
