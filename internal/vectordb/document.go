package vectordb

// Chunk is an embedded span of transcript text. Content is the raw
// joined segment text with no prefixes; everything else lives in
// metadata so the embedding sees pure speech.
type Chunk struct {
	ID       string
	Content  string
	Metadata ChunkMetadata
}

// ChunkMetadata locates a chunk inside a recording.
type ChunkMetadata struct {
	RecordingID  string
	StartSeconds float64
	EndSeconds   float64
	// Timestamp is the human-readable M:SS label used in prompts and
	// citation references.
	Timestamp string
}

// Key identifies a chunk by recording and label, the granularity at
// which retrieval results are deduplicated.
func (m ChunkMetadata) Key() string {
	return m.RecordingID + "_" + m.Timestamp
}

// SearchResult pairs a chunk with its similarity score.
type SearchResult struct {
	Chunk      Chunk
	Similarity float32
}

// SearchFilter narrows search results by metadata fields.
type SearchFilter struct {
	RecordingID *string
}
