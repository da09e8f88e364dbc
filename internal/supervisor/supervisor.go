// Package supervisor routes user messages to capability tools and
// synthesizes the final response. One request runs end to end on a
// single goroutine; tool calls execute sequentially in the order the
// model requested them.
package supervisor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/rvenkat/agentdesk/internal/llm"
	"github.com/rvenkat/agentdesk/internal/session"
	"github.com/rvenkat/agentdesk/internal/tools"
)

// defaultMaxRounds bounds the model/tool loop for one turn.
const defaultMaxRounds = 4

// ToolResult is the structured outcome of one tool call, fed back to
// the model (or concatenated into the fallback response).
type ToolResult struct {
	Status  string          `json:"status"` // success | failure
	Payload json.RawMessage `json:"payload,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// Supervisor is the entry point for one chat turn.
type Supervisor struct {
	llm         llm.Client
	registry    *tools.Registry
	sessions    session.Store
	defaultCity string
	maxRounds   int
	now         func() time.Time
	logger      *slog.Logger
}

// Option configures the Supervisor.
type Option func(*Supervisor)

// WithDefaultCity sets the city assumed when the user names none.
func WithDefaultCity(city string) Option {
	return func(s *Supervisor) { s.defaultCity = city }
}

// WithMaxRounds bounds the tool loop.
func WithMaxRounds(n int) Option {
	return func(s *Supervisor) { s.maxRounds = n }
}

// WithClock overrides the clock, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Supervisor) { s.now = now }
}

// WithLogger overrides the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Supervisor) { s.logger = l }
}

// New creates a Supervisor over the given model, tool set and session
// store.
func New(client llm.Client, registry *tools.Registry, sessions session.Store, opts ...Option) *Supervisor {
	s := &Supervisor{
		llm:         client,
		registry:    registry,
		sessions:    sessions,
		defaultCity: "Chennai",
		maxRounds:   defaultMaxRounds,
		now:         time.Now,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Supervisor) systemPrompt() string {
	return fmt.Sprintf(`You are a supervisor coordinating specialized capabilities:
- get_weather for weather questions
- query_document for questions about the reference document or general knowledge
- schedule_meeting for scheduling (weather and conflicts are checked for you)
- query_meetings for questions about already-stored meetings (read-only)

Today's date is %s. Resolve relative dates yourself; never ask the user for a date format. When scheduling and no city is given, use %s. Prefer calling a tool over guessing. After tool results arrive, answer the user in plain language.`,
		s.now().Format("2006-01-02"), s.defaultCity)
}

// Handle processes one message for a session and returns the final
// response text.
func (s *Supervisor) Handle(ctx context.Context, message, sessionID string) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", fmt.Errorf("empty message")
	}

	messages := []llm.Message{{Role: llm.RoleSystem, Content: s.systemPrompt()}}
	for _, turn := range s.sessions.History(sessionID) {
		messages = append(messages,
			llm.Message{Role: llm.RoleUser, Content: turn.Message},
			llm.Message{Role: llm.RoleAssistant, Content: turn.Response},
		)
	}
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: message})

	defs := s.registry.Definitions()
	var collected []ToolResult

	for round := 0; round < s.maxRounds; round++ {
		resp, err := s.llm.Complete(ctx, messages, defs)
		if err != nil {
			// Degrade: once tool results exist the caller still gets an
			// answer built from them.
			if len(collected) > 0 {
				s.logger.Warn("synthesis failed, falling back to raw tool results", "error", err)
				return s.finish(message, sessionID, fallbackText(collected)), nil
			}
			return "", fmt.Errorf("model decision: %w", err)
		}

		if len(resp.ToolCalls) == 0 {
			if resp.Content == "" {
				if len(collected) > 0 {
					return s.finish(message, sessionID, fallbackText(collected)), nil
				}
				return s.finish(message, sessionID, "I was not able to produce a response for that."), nil
			}
			return s.finish(message, sessionID, resp.Content), nil
		}

		// Record the assistant's tool request, then answer each call in
		// the order the model issued them.
		messages = append(messages, llm.Message{Role: llm.RoleAssistant, ToolCalls: resp.ToolCalls})
		for _, tc := range resp.ToolCalls {
			result := s.dispatch(ctx, tc)
			collected = append(collected, result)
			payload, _ := json.Marshal(result)
			messages = append(messages, llm.Message{
				Role:       llm.RoleTool,
				Content:    string(payload),
				ToolCallID: tc.ID,
			})
		}
	}

	// Round budget exhausted: answer from whatever the tools returned.
	s.logger.Warn("tool round budget exhausted", "session_id", sessionID)
	if len(collected) > 0 {
		return s.finish(message, sessionID, fallbackText(collected)), nil
	}
	return "", fmt.Errorf("no response after %d rounds", s.maxRounds)
}

// dispatch validates and executes one tool call. Failures of any kind
// become a failure ToolResult; they never abort the turn.
func (s *Supervisor) dispatch(ctx context.Context, tc llm.ToolCall) ToolResult {
	tool, ok := s.registry.Get(tc.Name)
	if !ok {
		s.logger.Warn("model requested unknown tool", "tool", tc.Name)
		return ToolResult{Status: "failure", Error: fmt.Sprintf("unknown tool %q", tc.Name)}
	}

	out, err := tool.Execute(ctx, tc.Arguments)
	if err != nil {
		s.logger.Warn("tool failed", "tool", tc.Name, "error", err)
		return ToolResult{Status: "failure", Error: err.Error()}
	}

	payload := json.RawMessage(out)
	if !json.Valid(payload) {
		quoted, _ := json.Marshal(out)
		payload = quoted
	}
	return ToolResult{Status: "success", Payload: payload}
}

func (s *Supervisor) finish(message, sessionID, response string) string {
	s.sessions.Append(sessionID, session.Turn{
		Message:  message,
		Response: response,
		At:       s.now(),
	})
	return response
}

// fallbackText concatenates raw tool payloads into a plain-text answer
// for when the model cannot synthesize one.
func fallbackText(results []ToolResult) string {
	var sb strings.Builder
	for _, r := range results {
		if sb.Len() > 0 {
			sb.WriteByte('\n')
		}
		if r.Status == "success" {
			sb.Write(r.Payload)
		} else {
			sb.WriteString("error: " + r.Error)
		}
	}
	return sb.String()
}
