// Package llm abstracts the language model behind a small client
// interface so orchestration logic can be tested against scripted
// responses. Given a prompt and a declared tool set, the model returns
// either free text or one or more tool invocations.
package llm

import (
	"context"
	"encoding/json"
)

// Message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Message is a single chat message.
type Message struct {
	Role       string
	Content    string
	ToolCalls  []ToolCall // assistant messages that requested tools
	ToolCallID string     // tool messages answering a specific call
}

// ToolCall is a model-requested tool invocation.
type ToolCall struct {
	ID        string
	Name      string
	Arguments json.RawMessage
}

// Tool declares a callable tool to the model.
type Tool struct {
	Name        string
	Description string
	Parameters  json.RawMessage // JSON schema for the arguments
}

// Response is a completed model turn: free text or tool calls.
type Response struct {
	Content   string
	ToolCalls []ToolCall
}

// Client is the language model capability consumed by the supervisor
// and handlers.
type Client interface {
	Complete(ctx context.Context, messages []Message, tools []Tool) (*Response, error)
}
