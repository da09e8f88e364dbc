package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rvenkat/agentdesk/internal/domain"
)

const defaultBaseURL = "https://api.openweathermap.org/data/2.5"

// Client queries the OpenWeatherMap current-weather endpoint. Every
// call is a fresh provider query; chat-turn-scale volume does not
// justify a cache.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// Option configures the Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint, mainly for tests.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// NewClient creates an OpenWeatherMap client.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return c
}

// currentResponse mirrors the subset of the OpenWeatherMap payload the
// service consumes.
type currentResponse struct {
	Name    string `json:"name"`
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity int     `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
}

// Current fetches current conditions for a city in metric units.
func (c *Client) Current(ctx context.Context, city string) (*domain.WeatherRecord, error) {
	values := url.Values{}
	values.Set("q", city)
	values.Set("appid", c.apiKey)
	values.Set("units", "metric")

	reqURL := fmt.Sprintf("%s/weather?%s", c.baseURL, values.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build weather request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: weather provider: %v", domain.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: city %q", domain.ErrNotFound, city)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: weather provider returned status %d", domain.ErrProviderUnavailable, resp.StatusCode)
	}

	var payload currentResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decode weather response: %v", domain.ErrProviderUnavailable, err)
	}
	if len(payload.Weather) == 0 {
		return nil, fmt.Errorf("%w: weather response missing conditions", domain.ErrProviderUnavailable)
	}

	rec := &domain.WeatherRecord{
		City:          payload.Name,
		Condition:     payload.Weather[0].Main,
		Description:   payload.Weather[0].Description,
		Temperature:   payload.Main.Temp,
		Humidity:      payload.Main.Humidity,
		WindSpeed:     payload.Wind.Speed,
		Precipitation: Precipitating(payload.Weather[0].Main),
	}
	if rec.City == "" {
		rec.City = city
	}
	return rec, nil
}

var _ Provider = (*Client)(nil)
