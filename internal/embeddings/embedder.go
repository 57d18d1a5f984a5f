// Package embeddings turns transcript chunks into vectors for the
// chat retriever. The corpus is embedded in bulk during ingest and one
// query at a time while serving.
package embeddings

import "context"

// Embedder generates embedding vectors for transcript text.
type Embedder interface {
	// Embed returns one vector per input text, in order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions is the width of the vectors this model produces.
	Dimensions() int

	// Name identifies the backing model, e.g. "ollama/nomic-embed-text".
	Name() string
}
