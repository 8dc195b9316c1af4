// Package llm abstracts the external language model behind a narrow
// interface so the orchestration logic (parsing, fallback, re-validation)
// is unit-testable against a scripted stub. Production code talks to a live
// model; tests never do.
package llm

import (
	"context"
	"encoding/json"
)

// Message roles mirror the chat-completion convention.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Message is one turn of a model conversation.
type Message struct {
	Role       string     `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"toolCalls,omitempty"`  // assistant turns only
	ToolCallID string     `json:"toolCallId,omitempty"` // tool turns only
	Name       string     `json:"name,omitempty"`       // tool turns only
}

// ToolCall is a model request to invoke one of the offered tools.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"` // JSON-encoded argument object
}

// ToolDef describes a tool offered to the model.
type ToolDef struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"` // JSON schema for the arguments
}

// Request is one model call.
type Request struct {
	Messages    []Message
	Tools       []ToolDef
	Temperature float32
	MaxTokens   int
}

// Response is the model's reply: either content, tool calls, or both.
type Response struct {
	Content   string
	ToolCalls []ToolCall
}

// Generator is the single seam between the orchestrator and the model.
type Generator interface {
	Generate(ctx context.Context, req Request) (Response, error)
}
