package document

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/rvenkat/agentdesk/internal/llm"
	"github.com/rvenkat/agentdesk/internal/search"
)

// NotInDocument is the sentinel the model must return when the
// document does not contain the answer. Seeing it triggers the single
// web-search escalation.
const NotInDocument = "NOT_IN_DOCUMENT"

// SourceDocument and SourceWeb tag where an answer came from.
const (
	SourceDocument = "document"
	SourceWeb      = "web"
)

const maxPassages = 6

// Answer is a grounded answer with its provenance.
type Answer struct {
	Text   string `json:"text"`
	Source string `json:"source"`
}

// Answerer answers questions from the cached document, falling back to
// web search at most once per question.
type Answerer struct {
	source Source
	llm    llm.Client
	search search.Provider
	logger *slog.Logger
}

// NewAnswerer wires a document source, a model client and a search
// provider together.
func NewAnswerer(src Source, client llm.Client, searcher search.Provider, logger *slog.Logger) *Answerer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Answerer{source: src, llm: client, search: searcher, logger: logger}
}

// Answer runs the two-stage pipeline: document-grounded first, one
// web-search escalation if the document has no answer.
func (a *Answerer) Answer(ctx context.Context, question string) (*Answer, error) {
	text, err := a.source.Text(ctx)
	if err != nil {
		// No readable document is not fatal; go straight to the web.
		a.logger.Warn("document unavailable, escalating to web search", "error", err)
		return a.answerFromWeb(ctx, question)
	}

	passages := topPassages(text, question, maxPassages)
	if len(passages) == 0 {
		return a.answerFromWeb(ctx, question)
	}

	prompt := fmt.Sprintf(`Answer the question using ONLY the passages below.
If the passages do not clearly contain the answer, respond with exactly %s and nothing else.

Passages:
%s

Question: %s`, NotInDocument, strings.Join(passages, "\n---\n"), question)

	resp, err := a.llm.Complete(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: "You answer strictly from the provided document passages."},
		{Role: llm.RoleUser, Content: prompt},
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("document answer: %w", err)
	}

	answer := strings.TrimSpace(resp.Content)
	if answer == "" || strings.Contains(strings.ToUpper(answer), NotInDocument) {
		return a.answerFromWeb(ctx, question)
	}
	return &Answer{Text: answer, Source: SourceDocument}, nil
}

func (a *Answerer) answerFromWeb(ctx context.Context, question string) (*Answer, error) {
	results, err := a.search.Search(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("web escalation: %w", err)
	}
	if len(results) == 0 {
		return &Answer{Text: "I could not find an answer in the document or on the web.", Source: SourceWeb}, nil
	}

	var sb strings.Builder
	for _, r := range results {
		fmt.Fprintf(&sb, "- %s (%s): %s\n", r.Title, r.URL, r.Content)
	}
	resp, err := a.llm.Complete(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: "You answer concisely from the provided web search results."},
		{Role: llm.RoleUser, Content: fmt.Sprintf("Search results:\n%s\nQuestion: %s", sb.String(), question)},
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("web answer: %w", err)
	}
	return &Answer{Text: strings.TrimSpace(resp.Content), Source: SourceWeb}, nil
}

// topPassages ranks paragraphs by keyword overlap with the question
// and returns the best n in document order.
func topPassages(text, question string, n int) []string {
	paragraphs := splitParagraphs(text)
	terms := queryTerms(question)
	if len(paragraphs) == 0 || len(terms) == 0 {
		return nil
	}

	type scored struct {
		idx   int
		score int
	}
	var ranked []scored
	for i, p := range paragraphs {
		lower := strings.ToLower(p)
		score := 0
		for term := range terms {
			if strings.Contains(lower, term) {
				score++
			}
		}
		if score > 0 {
			ranked = append(ranked, scored{idx: i, score: score})
		}
	}
	if len(ranked) == 0 {
		return nil
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	sort.Slice(ranked, func(i, j int) bool { return ranked[i].idx < ranked[j].idx })

	out := make([]string, 0, len(ranked))
	for _, r := range ranked {
		out = append(out, paragraphs[r.idx])
	}
	return out
}

func splitParagraphs(text string) []string {
	var out []string
	for _, p := range strings.Split(text, "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) > 1 {
		return out
	}
	// Single-block extractions fall back to line granularity.
	out = out[:0]
	for _, p := range strings.Split(text, "\n") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func queryTerms(question string) map[string]bool {
	terms := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(question)) {
		w = strings.Trim(w, `?.,!:;"'()`)
		if len(w) > 3 {
			terms[w] = true
		}
	}
	return terms
}
