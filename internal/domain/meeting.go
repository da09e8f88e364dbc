// Package domain defines the core types shared across the service.
package domain

import "time"

// Meeting is a scheduled meeting row. Rows are created and queried,
// never updated or deleted.
type Meeting struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	MeetingDate string    `json:"meeting_date"`           // YYYY-MM-DD
	MeetingTime string    `json:"meeting_time,omitempty"` // HH:MM, empty for all-day
	Reasoning   string    `json:"reasoning,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// WeatherRecord is a normalized weather observation. It is never
// persisted; it only informs a single scheduling or lookup decision.
type WeatherRecord struct {
	City          string  `json:"city"`
	Date          string  `json:"date"` // YYYY-MM-DD
	Condition     string  `json:"condition"`
	Description   string  `json:"description,omitempty"`
	Temperature   float64 `json:"temperature_c"`
	Humidity      int     `json:"humidity,omitempty"`
	WindSpeed     float64 `json:"wind_speed,omitempty"`
	Precipitation bool    `json:"precipitation"`
}
