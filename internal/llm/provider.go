package llm

import (
	"context"
	"encoding/json"
	"fmt"
)

// Provider is the completion service. Every backend (hosted or local) sits
// behind this interface so the question pipeline never imports an SDK.
type Provider interface {
	// Generate sends a prompt and returns the model's output text. A
	// Schema is passed to backends that can constrain their output; the
	// result is not validated here, since question text is parsed leniently
	// and a truncated response still carries usable questions.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Request describes one completion call.
type Request struct {
	// System is the system prompt.
	System string

	// Messages is the conversation. Question generation and reports are
	// single-turn, so this usually holds one user message.
	Messages []Message

	// Schema, when set, asks the backend for JSON shaped by it.
	Schema *Schema

	// MaxTokens caps the response length. Zero leaves it to the provider.
	MaxTokens int

	// Temperature controls randomness in the range 0.0 - 1.0.
	Temperature float64
}

// Message represents a single message in the conversation.
type Message struct {
	Role    Role
	Content string
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema defines the JSON structure expected from the model.
type Schema struct {
	// Name identifies this schema, e.g. "mcq-question". It doubles as the
	// cache key for the compiled validator.
	Name string

	// Description is sent to providers that support it.
	Description string

	// Definition is the JSON Schema definition as a map.
	Definition map[string]any
}

// Response holds the model's output.
type Response struct {
	// Content is the completion text, JSON when a Schema was honored.
	Content json.RawMessage

	// Usage reports token consumption for this request.
	Usage Usage

	// Model is the actual model that served the request.
	Model string

	// StopReason is normalized to "end" or "max_tokens".
	StopReason string
}

// Text returns the response content as a plain string.
func (r *Response) Text() string {
	if r == nil {
		return ""
	}
	return string(r.Content)
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// Complete sends a single user prompt with no schema and returns the raw
// completion text. This is the plain text-in/text-out contract the question
// and report pipelines are written against.
func Complete(ctx context.Context, p Provider, prompt string, maxTokens int, temperature float64) (string, error) {
	return complete(ctx, p, prompt, nil, maxTokens, temperature)
}

// CompleteJSON is Complete with a structured-output hint. Backends without
// native support ignore the schema and the prompt alone shapes the output.
func CompleteJSON(ctx context.Context, p Provider, prompt string, schema *Schema, maxTokens int, temperature float64) (string, error) {
	return complete(ctx, p, prompt, schema, maxTokens, temperature)
}

func complete(ctx context.Context, p Provider, prompt string, schema *Schema, maxTokens int, temperature float64) (string, error) {
	resp, err := p.Generate(ctx, Request{
		Messages:    []Message{{Role: RoleUser, Content: prompt}},
		Schema:      schema,
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

// emptyResponse reports a completion with no text in it.
func emptyResponse(backend string) error {
	return &ErrInvalidResponse{Err: fmt.Errorf("empty %s response", backend)}
}
