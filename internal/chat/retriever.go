package chat

import (
	"context"
	"log"
	"sort"

	"github.com/achen-archive/memoirsite/internal/vectordb"
)

// Retrieval tuning. Retrieve more than we send: the hybrid ranking gets
// k candidates and the LLM sees only the top contextChunks of them.
const (
	RetrieveK     = 20
	ContextChunks = 10

	// Chunks found by both methods get the keyword score boosted, and
	// keyword-only hits still outrank mediocre vector matches.
	bothMethodsBoost = 1.5
	bm25OnlyWeight   = 1.2
)

// Retriever runs hybrid search over the vector store and a BM25 index
// built from the same chunks.
type Retriever struct {
	store  vectordb.VectorStore
	bm25   *BM25Index
	chunks []vectordb.Chunk
}

// NewRetriever builds a retriever from the store's current contents.
func NewRetriever(ctx context.Context, store vectordb.VectorStore) (*Retriever, error) {
	chunks, err := store.All(ctx)
	if err != nil {
		return nil, err
	}
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}
	return &Retriever{
		store:  store,
		bm25:   NewBM25Index(texts),
		chunks: chunks,
	}, nil
}

// Retrieve returns up to k chunks ranked by a blend of semantic
// similarity and keyword relevance.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int) []vectordb.Chunk {
	if k <= 0 {
		k = RetrieveK
	}

	type scored struct {
		chunk vectordb.Chunk
		score float64
	}
	results := make(map[string]scored)

	// Semantic pass. A failed vector search degrades to keyword-only
	// rather than failing the question.
	vecResults, err := r.store.Search(ctx, query, k, nil)
	if err != nil {
		log.Printf("chat: vector search failed, falling back to keyword only: %v", err)
	}
	for _, res := range vecResults {
		norm := float64(res.Similarity)
		if norm < 0 {
			norm = 0
		}
		results[res.Chunk.Metadata.Key()] = scored{chunk: res.Chunk, score: norm}
	}

	// Keyword pass.
	if r.bm25.Len() > 0 {
		scores := r.bm25.Scores(query)
		maxScore := 0.0
		for _, s := range scores {
			if s > maxScore {
				maxScore = s
			}
		}
		if maxScore > 0 {
			for _, idx := range r.bm25.TopN(query, k) {
				chunk := r.chunks[idx]
				norm := scores[idx] / maxScore
				key := chunk.Metadata.Key()
				if existing, ok := results[key]; ok {
					existing.score += norm * bothMethodsBoost
					results[key] = existing
				} else {
					results[key] = scored{chunk: chunk, score: norm * bm25OnlyWeight}
				}
			}
		}
	}

	ranked := make([]scored, 0, len(results))
	for _, s := range results {
		ranked = append(ranked, s)
	}
	sort.Slice(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })
	if len(ranked) > k {
		ranked = ranked[:k]
	}

	out := make([]vectordb.Chunk, len(ranked))
	for i, s := range ranked {
		out[i] = s.chunk
	}
	return out
}
