// Package nl2sql turns natural-language questions about meetings into
// safe, read-only SQL and executes them. The language model only ever
// sees literal dates: relative phrases are resolved first, so the
// model does no calendar arithmetic of its own.
package nl2sql

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/rvenkat/agentdesk/internal/dates"
	"github.com/rvenkat/agentdesk/internal/domain"
	"github.com/rvenkat/agentdesk/internal/llm"
)

const schemaPrompt = `You translate questions into a single SQLite SELECT statement.

Table: meetings(id INTEGER, title TEXT, meeting_date TEXT 'YYYY-MM-DD', meeting_time TEXT 'HH:MM' or NULL, reasoning TEXT, created_at TEXT)

Rules:
- Return exactly one SELECT statement and nothing else (no prose, no explanation).
- All dates in the question are already literal YYYY-MM-DD values; use them as string literals.
- Never use INSERT, UPDATE, DELETE or any schema statement.`

// Result is the formatted outcome of a translated query: ordered
// columns plus one name->value map per row in storage order.
type Result struct {
	Columns  []string         `json:"columns"`
	Rows     []map[string]any `json:"rows"`
	RowCount int              `json:"row_count"`
}

// RowQuerier is the slice of the repository the translator needs.
type RowQuerier interface {
	SelectRows(ctx context.Context, query string) ([]string, []map[string]any, error)
}

// Translator synthesizes and runs read-only queries.
type Translator struct {
	llm    llm.Client
	store  RowQuerier
	now    func() time.Time
	logger *slog.Logger
}

// Option configures the Translator.
type Option func(*Translator)

// WithClock overrides the clock, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(t *Translator) { t.now = now }
}

// WithLogger overrides the logger.
func WithLogger(l *slog.Logger) Option {
	return func(t *Translator) { t.logger = l }
}

// New creates a Translator.
func New(client llm.Client, store RowQuerier, opts ...Option) *Translator {
	t := &Translator{
		llm:    client,
		store:  store,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// TranslateAndRun resolves dates, synthesizes a statement, validates
// it against the safety policy, executes it and formats the rows.
func (t *Translator) TranslateAndRun(ctx context.Context, request string) (*Result, error) {
	resolved := dates.ResolveInText(request, t.now())

	resp, err := t.llm.Complete(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: schemaPrompt},
		{Role: llm.RoleUser, Content: resolved},
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("synthesize query: %w", err)
	}

	stmt := extractSQL(resp.Content)
	if err := Validate(stmt); err != nil {
		t.logger.Warn("rejected synthesized statement", "statement", stmt, "error", err)
		return nil, err
	}

	cols, rows, err := t.store.SelectRows(ctx, stmt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrExecution, err)
	}
	return &Result{Columns: cols, Rows: rows, RowCount: len(rows)}, nil
}

// extractSQL strips a markdown code fence if the model wrapped the
// statement in one.
func extractSQL(content string) string {
	s := strings.TrimSpace(content)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```sql")
		s = strings.TrimPrefix(s, "```")
		if idx := strings.Index(s, "```"); idx >= 0 {
			s = s[:idx]
		}
	}
	return strings.TrimSpace(s)
}
