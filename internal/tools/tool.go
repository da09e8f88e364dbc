// Package tools defines the closed set of capability tools the
// supervisor may dispatch to. Tool names are enumerated at wiring
// time; arguments decode into typed structs and are validated before
// any handler runs, so free-form arguments are never evaluated.
package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/rvenkat/agentdesk/internal/domain"
	"github.com/rvenkat/agentdesk/internal/llm"
)

// Tool is one executable capability.
type Tool interface {
	Name() string
	Description() string
	Parameters() json.RawMessage
	Execute(ctx context.Context, args json.RawMessage) (string, error)
}

// Registry holds registered tools in registration order.
type Registry struct {
	order []string
	tools map[string]Tool
}

// NewRegistry creates an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Register adds a tool to the registry.
func (r *Registry) Register(t Tool) {
	if _, ok := r.tools[t.Name()]; !ok {
		r.order = append(r.order, t.Name())
	}
	r.tools[t.Name()] = t
}

// Get returns a tool by name.
func (r *Registry) Get(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// Definitions declares the registered tools to the language model.
func (r *Registry) Definitions() []llm.Tool {
	out := make([]llm.Tool, 0, len(r.order))
	for _, name := range r.order {
		t := r.tools[name]
		out = append(out, llm.Tool{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.Parameters(),
		})
	}
	return out
}

var validate = validator.New()

// decodeArgs unmarshals tool arguments into a typed struct and runs
// presence/format validation. Failures wrap domain.ErrValidation; the
// handler is never invoked on invalid arguments.
func decodeArgs(args json.RawMessage, into any) error {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}
	if err := json.Unmarshal(args, into); err != nil {
		return fmt.Errorf("%w: malformed arguments: %v", domain.ErrValidation, err)
	}
	if err := validate.Struct(into); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	return nil
}
