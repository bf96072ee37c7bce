package generator

import "context"

// Options tunes a single provider call.
type Options struct {
	// Model overrides the provider's default model when set.
	Model string
	// JSON asks the provider to answer with a draft-shaped JSON object.
	JSON bool
}

// Provider is the interface for LLM backends that draft assumptions.
type Provider interface {
	GenerateResponse(ctx context.Context, prompt, systemPrompt string, opts Options) (string, error)
	// Name identifies the backend and model, and is part of the cache key.
	Name() string
}
