package tools

import (
	"context"
	"encoding/json"

	"github.com/rvenkat/agentdesk/internal/nl2sql"
)

// QueryTool answers natural-language questions about stored meetings
// via the safety-gated NL2SQL pipeline.
type QueryTool struct {
	translator *nl2sql.Translator
}

// NewQueryTool creates the meetings query tool.
func NewQueryTool(tr *nl2sql.Translator) *QueryTool {
	return &QueryTool{translator: tr}
}

// QueryArgs are the tool's declared arguments.
type QueryArgs struct {
	Request string `json:"request" validate:"required"`
}

func (t *QueryTool) Name() string { return "query_meetings" }

func (t *QueryTool) Description() string {
	return "Answer questions about stored meetings (read-only). Translates the request into a single SELECT over the meetings table and returns the matching rows."
}

func (t *QueryTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"request": {"type": "string", "description": "Natural language question about meetings"}
		},
		"required": ["request"]
	}`)
}

func (t *QueryTool) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	var a QueryArgs
	if err := decodeArgs(args, &a); err != nil {
		return "", err
	}
	res, err := t.translator.TranslateAndRun(ctx, a.Request)
	if err != nil {
		return "", err
	}
	out, err := json.Marshal(res)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

var _ Tool = (*QueryTool)(nil)
