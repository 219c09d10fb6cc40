package llm

import (
	"context"
	"encoding/json"
	"errors"
)

var (
	// ErrStepLimit is returned when a tool-calling run exceeds its step budget
	// without producing a final answer.
	ErrStepLimit = errors.New("llm: step limit exceeded")
	// ErrUnparseable means a completion did not contain the expected JSON shape.
	ErrUnparseable = errors.New("llm: unparseable completion")
	// ErrEmptyCompletion means the provider answered with no choices or text.
	ErrEmptyCompletion = errors.New("llm: empty completion")
)

// ToolSpec describes a callable tool; Parameters is a JSON Schema object.
type ToolSpec struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// ToolCall is one invocation requested by the model.
type ToolCall struct {
	ID        string
	Name      string
	Arguments json.RawMessage
}

// ToolHandler executes a tool call. A returned error is reported back to the
// model as the tool result, not to the caller of RunTools.
type ToolHandler func(ctx context.Context, call ToolCall) (string, error)

// Provider is a chat-completion backend.
type Provider interface {
	Name() string
	Model() string
	// Complete performs one system+user exchange and returns the first choice's text.
	Complete(ctx context.Context, system, user string) (string, error)
	// RunTools lets the model call tools until it produces a text answer or
	// maxSteps model turns have been spent.
	RunTools(ctx context.Context, system, user string, tools []ToolSpec, handle ToolHandler, maxSteps int) (string, error)
}

// toolResult runs handle and converts a failure into text the model can read.
func toolResult(ctx context.Context, handle ToolHandler, call ToolCall) (string, bool) {
	out, err := handle(ctx, call)
	if err != nil {
		return "error: " + err.Error(), true
	}
	return out, false
}
