package document

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rvenkat/agentdesk/internal/llm"
	"github.com/rvenkat/agentdesk/internal/search"
)

type fakeSource struct {
	text string
	err  error
}

func (f *fakeSource) Text(context.Context) (string, error) { return f.text, f.err }

// scriptedLLM returns canned responses in order.
type scriptedLLM struct {
	responses []string
	calls     int
	lastMsgs  []llm.Message
}

func (s *scriptedLLM) Complete(_ context.Context, msgs []llm.Message, _ []llm.Tool) (*llm.Response, error) {
	s.lastMsgs = msgs
	if s.calls >= len(s.responses) {
		return nil, errors.New("no scripted response left")
	}
	resp := s.responses[s.calls]
	s.calls++
	return &llm.Response{Content: resp}, nil
}

type fakeSearch struct {
	results []search.Result
	err     error
	queries []string
}

func (f *fakeSearch) Search(_ context.Context, q string) ([]search.Result, error) {
	f.queries = append(f.queries, q)
	return f.results, f.err
}

const resume = `Ravi Venkatesan
Software Engineer

Experience
Five years of Python development, including data pipelines and REST services.

Education
B.E. Computer Science, Anna University.`

func TestAnswerFromDocument(t *testing.T) {
	model := &scriptedLLM{responses: []string{"Five years of Python development."}}
	searcher := &fakeSearch{}
	a := NewAnswerer(&fakeSource{text: resume}, model, searcher, nil)

	ans, err := a.Answer(context.Background(), "What is my Python experience?")
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if ans.Source != SourceDocument {
		t.Errorf("source = %q, want document", ans.Source)
	}
	if len(searcher.queries) != 0 {
		t.Error("document-grounded answer must not hit the search provider")
	}
	// The grounding prompt must carry the relevant passage.
	prompt := model.lastMsgs[len(model.lastMsgs)-1].Content
	if !strings.Contains(prompt, "Python development") {
		t.Error("expected ranked passage in prompt")
	}
}

func TestAnswerEscalatesOnSentinel(t *testing.T) {
	model := &scriptedLLM{responses: []string{NotInDocument, "Sundar Pichai is the CEO of Google."}}
	searcher := &fakeSearch{results: []search.Result{
		{Title: "Google leadership", URL: "https://example.com", Content: "Sundar Pichai, CEO"},
	}}
	a := NewAnswerer(&fakeSource{text: resume}, model, searcher, nil)

	ans, err := a.Answer(context.Background(), "Who is the Google chief executive officer?")
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if ans.Source != SourceWeb {
		t.Errorf("source = %q, want web", ans.Source)
	}
	if len(searcher.queries) != 1 {
		t.Fatalf("expected exactly one escalation, got %d", len(searcher.queries))
	}
}

func TestAnswerEscalatesWhenDocumentMissing(t *testing.T) {
	model := &scriptedLLM{responses: []string{"Answer from the web."}}
	searcher := &fakeSearch{results: []search.Result{{Title: "t", URL: "u", Content: "c"}}}
	a := NewAnswerer(&fakeSource{err: errors.New("no pdf")}, model, searcher, nil)

	ans, err := a.Answer(context.Background(), "What about something current?")
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if ans.Source != SourceWeb {
		t.Errorf("source = %q, want web", ans.Source)
	}
}

func TestAnswerSearchFailureSurfaces(t *testing.T) {
	model := &scriptedLLM{responses: []string{NotInDocument}}
	searcher := &fakeSearch{err: errors.New("searx down")}
	a := NewAnswerer(&fakeSource{text: resume}, model, searcher, nil)

	if _, err := a.Answer(context.Background(), "Who invented question marks?"); err == nil {
		t.Fatal("expected error when escalation fails")
	}
}

func TestTopPassages(t *testing.T) {
	got := topPassages(resume, "What is my Python experience?", 2)
	if len(got) == 0 {
		t.Fatal("expected at least one passage")
	}
	joined := strings.Join(got, " ")
	if !strings.Contains(joined, "Python") {
		t.Errorf("passages missed the relevant paragraph: %q", joined)
	}
}
