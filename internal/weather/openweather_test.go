package weather

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rvenkat/agentdesk/internal/domain"
)

func TestCurrent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "Chennai" {
			t.Errorf("q = %q, want Chennai", got)
		}
		if got := r.URL.Query().Get("units"); got != "metric" {
			t.Errorf("units = %q, want metric", got)
		}
		w.Write([]byte(`{
			"name": "Chennai",
			"weather": [{"main": "Clear", "description": "clear sky"}],
			"main": {"temp": 29.4, "humidity": 70},
			"wind": {"speed": 4.1}
		}`))
	}))
	defer srv.Close()

	c := NewClient("key", WithBaseURL(srv.URL))
	rec, err := c.Current(context.Background(), "Chennai")
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if rec.Condition != "Clear" || rec.Temperature != 29.4 {
		t.Errorf("record = %+v", rec)
	}
	if rec.Precipitation {
		t.Error("clear sky must not set precipitation")
	}
}

func TestCurrentRainSetsPrecipitation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"name": "London",
			"weather": [{"main": "Rain", "description": "light rain"}],
			"main": {"temp": 12.0, "humidity": 90},
			"wind": {"speed": 6.0}
		}`))
	}))
	defer srv.Close()

	rec, err := NewClient("key", WithBaseURL(srv.URL)).Current(context.Background(), "London")
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if !rec.Precipitation {
		t.Error("rain must set precipitation")
	}
}

func TestCurrentUnknownCity(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewClient("key", WithBaseURL(srv.URL)).Current(context.Background(), "Nowhereville")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestCurrentProviderDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewClient("key", WithBaseURL(srv.URL)).Current(context.Background(), "Chennai")
	if !errors.Is(err, domain.ErrProviderUnavailable) {
		t.Fatalf("err = %v, want ErrProviderUnavailable", err)
	}
}
