package vectordb

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	chromem "github.com/philippgille/chromem-go"

	"github.com/achen-archive/memoirsite/internal/embeddings"
)

const collectionName = "memoir_transcripts"

// ChromemStore implements VectorStore using chromem-go. Alongside the
// vector collection it keeps the flat chunk list, which the keyword
// index is built from and which persists as plain JSON next to the
// chromem export.
type ChromemStore struct {
	db         *chromem.DB
	collection *chromem.Collection
	embedder   embeddings.Embedder
	embedFunc  chromem.EmbeddingFunc

	mu     sync.RWMutex
	chunks []Chunk
}

// NewChromemStore creates a new in-memory ChromemStore.
func NewChromemStore(embedder embeddings.Embedder) (*ChromemStore, error) {
	db := chromem.NewDB()
	ef := embeddings.ToChromemFunc(embedder)

	col, err := db.GetOrCreateCollection(collectionName, nil, ef)
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}

	return &ChromemStore{
		db:         db,
		collection: col,
		embedder:   embedder,
		embedFunc:  ef,
	}, nil
}

func (s *ChromemStore) AddChunks(ctx context.Context, chunks []Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	docs := make([]chromem.Document, len(chunks))
	for i, c := range chunks {
		docs[i] = chromem.Document{
			ID:       c.ID,
			Content:  c.Content,
			Metadata: metadataToMap(c.Metadata),
		}
	}

	if err := s.collection.AddDocuments(ctx, docs, 1); err != nil {
		return err
	}

	s.mu.Lock()
	s.chunks = append(s.chunks, chunks...)
	s.mu.Unlock()
	return nil
}

func (s *ChromemStore) Search(ctx context.Context, query string, limit int, filter *SearchFilter) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 10
	}

	// chromem-go requires nResults <= collection size.
	if count := s.collection.Count(); limit > count && count > 0 {
		limit = count
	} else if count == 0 {
		return nil, nil
	}

	var where map[string]string
	if filter != nil && filter.RecordingID != nil {
		where = map[string]string{"recording_id": *filter.RecordingID}
	}

	results, err := s.collection.Query(ctx, query, limit, where, nil)
	if err != nil {
		return nil, fmt.Errorf("chromem query: %w", err)
	}

	searchResults := make([]SearchResult, len(results))
	for i, r := range results {
		searchResults[i] = SearchResult{
			Chunk: Chunk{
				ID:       r.ID,
				Content:  r.Content,
				Metadata: mapToMetadata(r.Metadata),
			},
			Similarity: r.Similarity,
		}
	}

	return searchResults, nil
}

func (s *ChromemStore) DeleteByRecording(ctx context.Context, recordingID string) error {
	where := map[string]string{"recording_id": recordingID}
	if err := s.collection.Delete(ctx, where, nil); err != nil {
		return err
	}

	s.mu.Lock()
	kept := s.chunks[:0]
	for _, c := range s.chunks {
		if c.Metadata.RecordingID != recordingID {
			kept = append(kept, c)
		}
	}
	s.chunks = kept
	s.mu.Unlock()
	return nil
}

func (s *ChromemStore) All(ctx context.Context) ([]Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Chunk, len(s.chunks))
	copy(out, s.chunks)
	return out, nil
}

func (s *ChromemStore) Persist(ctx context.Context, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating vector dir: %w", err)
	}
	if err := s.db.ExportToFile(filepath.Join(dir, "chromem.gob.gz"), true, ""); err != nil {
		return fmt.Errorf("exporting vectors: %w", err)
	}

	s.mu.RLock()
	data, err := json.Marshal(s.chunks)
	s.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("encoding chunks: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "chunks.json"), data, 0o644); err != nil {
		return fmt.Errorf("writing chunks: %w", err)
	}
	return nil
}

func (s *ChromemStore) Load(ctx context.Context, dir string) error {
	if err := s.db.ImportFromFile(filepath.Join(dir, "chromem.gob.gz"), ""); err != nil {
		return fmt.Errorf("import from file: %w", err)
	}

	// Re-acquire collection reference after import.
	col := s.db.GetCollection(collectionName, s.embedFunc)
	if col == nil {
		return fmt.Errorf("collection %q not found after import", collectionName)
	}
	s.collection = col

	data, err := os.ReadFile(filepath.Join(dir, "chunks.json"))
	if err != nil {
		return fmt.Errorf("reading chunks: %w", err)
	}
	var chunks []Chunk
	if err := json.Unmarshal(data, &chunks); err != nil {
		return fmt.Errorf("decoding chunks: %w", err)
	}

	s.mu.Lock()
	s.chunks = chunks
	s.mu.Unlock()
	return nil
}

func (s *ChromemStore) Count() int {
	return s.collection.Count()
}

// metadataToMap converts ChunkMetadata to a flat map[string]string for chromem.
func metadataToMap(m ChunkMetadata) map[string]string {
	return map[string]string{
		"recording_id":  m.RecordingID,
		"start_seconds": strconv.FormatFloat(m.StartSeconds, 'f', -1, 64),
		"end_seconds":   strconv.FormatFloat(m.EndSeconds, 'f', -1, 64),
		"timestamp":     m.Timestamp,
	}
}

// mapToMetadata converts a flat map[string]string back to ChunkMetadata.
func mapToMetadata(m map[string]string) ChunkMetadata {
	start, _ := strconv.ParseFloat(m["start_seconds"], 64)
	end, _ := strconv.ParseFloat(m["end_seconds"], 64)
	return ChunkMetadata{
		RecordingID:  m["recording_id"],
		StartSeconds: start,
		EndSeconds:   end,
		Timestamp:    m["timestamp"],
	}
}
