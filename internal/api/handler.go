// Package api provides HTTP handlers for the assistant API.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// maxRequestBodySize caps chat request bodies (1MB).
const maxRequestBodySize = 1 << 20

// ChatService handles one chat turn.
type ChatService interface {
	Handle(ctx context.Context, message, sessionID string) (string, error)
}

// Pinger reports storage health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler provides the HTTP surface.
type Handler struct {
	chat   ChatService
	store  Pinger
	logger *slog.Logger
}

// NewHandler creates a Handler.
func NewHandler(chat ChatService, store Pinger, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{chat: chat, store: store, logger: logger}
}

// Routes mounts the API routes.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.Root)
	r.Get("/health", h.Health)
	r.Post("/chat", h.Chat)
}

// ChatRequest is the inbound chat payload.
type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
	UserID    string `json:"user_id,omitempty"`
}

// ChatResponse is the outbound chat payload.
type ChatResponse struct {
	Response  string `json:"response"`
	SessionID string `json:"session_id"`
}

// Root returns a service banner.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, map[string]any{
		"message": "Agentic assistant API",
		"capabilities": []string{
			"weather lookup",
			"document question answering",
			"meeting scheduling",
			"meetings query (NL2SQL)",
		},
		"status": "running",
	})
}

// Health reports service and storage health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		h.logger.Error("health check failed", "error", err)
		Error(w, http.StatusServiceUnavailable, "storage unreachable")
		return
	}
	JSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// Chat runs one supervised chat turn.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	defer io.Copy(io.Discard, body)

	var req ChatRequest
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Message == "" {
		Error(w, http.StatusBadRequest, "message is required")
		return
	}
	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	response, err := h.chat.Handle(r.Context(), req.Message, sessionID)
	if err != nil {
		h.logger.Error("chat turn failed", "session_id", sessionID, "error", err)
		if errors.Is(err, context.Canceled) {
			return
		}
		Error(w, http.StatusBadGateway, "failed to process the message")
		return
	}

	JSON(w, http.StatusOK, ChatResponse{Response: response, SessionID: sessionID})
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}
