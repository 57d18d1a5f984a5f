package vectordb

import "context"

// VectorStore stores transcript chunks and retrieves them by semantic
// similarity.
type VectorStore interface {
	// AddChunks adds or updates chunks in the store.
	AddChunks(ctx context.Context, chunks []Chunk) error

	// Search performs a semantic search using the query text.
	Search(ctx context.Context, query string, limit int, filter *SearchFilter) ([]SearchResult, error)

	// DeleteByRecording removes all chunks for the given recording.
	DeleteByRecording(ctx context.Context, recordingID string) error

	// All returns every chunk in the store (used to build the keyword
	// index alongside the vector one).
	All(ctx context.Context) ([]Chunk, error)

	// Persist saves the store's data to the given directory.
	Persist(ctx context.Context, dir string) error

	// Load restores the store's data from the given directory.
	Load(ctx context.Context, dir string) error

	// Count returns the total number of chunks in the store.
	Count() int
}
