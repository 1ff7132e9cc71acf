package analysis

import "context"

// Request is one completion request to a model backend.
type Request struct {
	System    string
	Prompt    string
	MaxTokens int

	// Schema, when non-nil, asks the backend to enforce a structured
	// response. Backends without schema support may ignore it.
	SchemaName string
	Schema     map[string]any
}

// Provider is a model backend capable of a single completion call.
// Implementations map transport failures onto the shared error
// taxonomy so the retry loop can tell transient from fatal.
type Provider interface {
	Name() string
	Complete(ctx context.Context, req Request) (string, error)
}
