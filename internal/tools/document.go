package tools

import (
	"context"
	"encoding/json"

	"github.com/rvenkat/agentdesk/internal/document"
)

// DocumentTool answers questions from the reference document with a
// web-search fallback.
type DocumentTool struct {
	answerer *document.Answerer
}

// NewDocumentTool creates the document question-answering tool.
func NewDocumentTool(answerer *document.Answerer) *DocumentTool {
	return &DocumentTool{answerer: answerer}
}

// DocumentArgs are the tool's declared arguments.
type DocumentArgs struct {
	Question string `json:"question" validate:"required"`
}

func (t *DocumentTool) Name() string { return "query_document" }

func (t *DocumentTool) Description() string {
	return "Answer a question from the reference document, escalating to web search when the document has no answer. Returns the answer and its source (document or web)."
}

func (t *DocumentTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"question": {"type": "string", "description": "Natural language question"}
		},
		"required": ["question"]
	}`)
}

func (t *DocumentTool) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	var a DocumentArgs
	if err := decodeArgs(args, &a); err != nil {
		return "", err
	}
	ans, err := t.answerer.Answer(ctx, a.Question)
	if err != nil {
		return "", err
	}
	out, err := json.Marshal(ans)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

var _ Tool = (*DocumentTool)(nil)
