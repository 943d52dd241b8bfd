package llm

import (
	"context"
	"encoding/json"
)

// Provider is one model behind one API. The content layer only ever
// talks to this interface; which vendor serves it is a config matter.
type Provider interface {
	// Generate runs one completion. With Request.Schema set the reply is
	// schema-validated JSON; without it, raw text wrapped as a JSON
	// string. Implementations translate vendor errors into this
	// package's error types so the retry policy can sort them.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID is the full model identifier in use, for logs and pricing.
	ModelID() string
}

// Request is a single generation call. Questions and explanations are
// single-turn: a system prompt plus one user message carrying the
// concept, grade and session context.
type Request struct {
	System   string
	Messages []Message

	// Schema, when set, makes the provider use its native structured
	// output mechanism and validate the reply against the definition.
	Schema *Schema

	MaxTokens int

	// Temperature in [0, 1]; zero means deterministic and is the
	// default. Question generation runs warm so repeats differ.
	Temperature float64
}

// Message is one turn of the conversation.
type Message struct {
	Role    Role
	Content string
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema names a JSON shape the model must produce. The same value
// drives three different vendor mechanisms, so it stays declarative: a
// name, a description for the model, and the schema as plain maps.
type Schema struct {
	// Name is kebab-case, e.g. "practice-question".
	Name        string
	Description string
	Definition  map[string]any
}

// Response is the normalized reply.
type Response struct {
	// Content is validated JSON when the request carried a Schema,
	// otherwise the raw text as a JSON string.
	Content json.RawMessage

	Usage Usage

	// Model is the model that actually served the request, which may be
	// more specific than the one configured.
	Model string

	// StopReason is normalized across vendors: "end" or "max_tokens".
	StopReason string
}

// Usage is the token bill for one request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
