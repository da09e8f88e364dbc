// Package weather fetches current conditions from OpenWeatherMap.
package weather

import (
	"context"

	"github.com/rvenkat/agentdesk/internal/domain"
)

// Provider returns a normalized weather record for a city, or fails
// with domain.ErrNotFound / domain.ErrProviderUnavailable.
type Provider interface {
	Current(ctx context.Context, city string) (*domain.WeatherRecord, error)
}

// precipitating condition groups per the OpenWeatherMap taxonomy.
var precipitating = map[string]bool{
	"Rain":         true,
	"Drizzle":      true,
	"Thunderstorm": true,
	"Snow":         true,
}

// Precipitating reports whether a condition group implies
// precipitation.
func Precipitating(condition string) bool {
	return precipitating[condition]
}
