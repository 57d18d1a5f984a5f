package llm

import "context"

// Provider defines the interface for LLM providers.
type Provider interface {
	// Complete sends a completion request and returns the response.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
	// Name returns the name of this provider.
	Name() string
}

// StreamProvider is implemented by providers that can deliver a
// completion incrementally. onDelta is called once per content chunk;
// the accumulated text is returned when the stream ends.
type StreamProvider interface {
	Provider
	Stream(ctx context.Context, req CompletionRequest, onDelta func(delta string)) (string, error)
}
