// Agentic assistant server: routes chat messages to weather, document,
// scheduling and meetings-query capabilities.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/rvenkat/agentdesk/internal/api"
	"github.com/rvenkat/agentdesk/internal/config"
	"github.com/rvenkat/agentdesk/internal/document"
	"github.com/rvenkat/agentdesk/internal/llm"
	"github.com/rvenkat/agentdesk/internal/middleware"
	"github.com/rvenkat/agentdesk/internal/nl2sql"
	"github.com/rvenkat/agentdesk/internal/scheduler"
	"github.com/rvenkat/agentdesk/internal/search"
	"github.com/rvenkat/agentdesk/internal/session"
	"github.com/rvenkat/agentdesk/internal/store"
	"github.com/rvenkat/agentdesk/internal/supervisor"
	"github.com/rvenkat/agentdesk/internal/tools"
	"github.com/rvenkat/agentdesk/internal/weather"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting server", "port", cfg.Port, "model", cfg.Model)

	repo, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			slog.Error("Failed to close repository", "error", closeErr)
		}
	}()

	if err := repo.Ping(context.Background()); err != nil {
		slog.Error("Database health check failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database connected", "path", cfg.DBPath)

	// External capabilities.
	model := llm.NewOpenAI(llm.OpenAIConfig{
		APIKey:      cfg.OpenAIAPIKey,
		BaseURL:     cfg.OpenAIBaseURL,
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
	})
	weatherClient := weather.NewClient(cfg.OpenWeatherAPIKey)
	searcher := search.NewSearxNG(cfg.SearxNGURL)
	answerer := document.NewAnswerer(document.NewPDFSource(cfg.DataDir), model, searcher, logger)

	// Handlers.
	sched := scheduler.New(weatherClient, repo,
		scheduler.WithBlockOnBadWeather(cfg.BlockOnBadWeather),
		scheduler.WithLogger(logger),
	)
	translator := nl2sql.New(model, repo, nl2sql.WithLogger(logger))

	registry := tools.NewRegistry()
	registry.Register(tools.NewWeatherTool(weatherClient, nil))
	registry.Register(tools.NewDocumentTool(answerer))
	registry.Register(tools.NewScheduleTool(sched))
	registry.Register(tools.NewQueryTool(translator))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sessions := session.NewMemStore(cfg.SessionTTL, cfg.SessionMaxTurns)
	sessions.StartJanitor(ctx, 5*time.Minute)
	slog.Info("Session store ready", "ttl", cfg.SessionTTL, "max_turns", cfg.SessionMaxTurns)

	sup := supervisor.New(model, registry, sessions,
		supervisor.WithDefaultCity(cfg.DefaultCity),
		supervisor.WithLogger(logger),
	)

	// Router.
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(120 * time.Second))
	origins := []string{"*"}
	if cfg.FrontendURL != "" {
		origins = []string{cfg.FrontendURL}
	}
	r.Use(middleware.CORS(origins))

	api.NewHandler(sup, repo, logger).Routes(r)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 150 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	slog.Info("Server stopped")
}
