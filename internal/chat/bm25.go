package chat

import (
	"math"
	"sort"
	"strings"
)

// Okapi BM25 parameters, standard values.
const (
	bm25K1 = 1.5
	bm25B  = 0.75
)

// BM25Index scores documents by keyword overlap with a query. It
// complements the vector store: embeddings find paraphrases, BM25 finds
// exact names and places the embedding model has never seen.
type BM25Index struct {
	docTokens [][]string
	docLens   []int
	avgLen    float64
	// idf per term across the corpus.
	idf map[string]float64
}

func tokenize(text string) []string {
	return strings.Fields(strings.ToLower(text))
}

// NewBM25Index builds an index over the given document texts. Document
// order is preserved; Scores returns one score per input document.
func NewBM25Index(docs []string) *BM25Index {
	idx := &BM25Index{
		docTokens: make([][]string, len(docs)),
		docLens:   make([]int, len(docs)),
		idf:       make(map[string]float64),
	}

	totalLen := 0
	df := make(map[string]int)
	for i, doc := range docs {
		tokens := tokenize(doc)
		idx.docTokens[i] = tokens
		idx.docLens[i] = len(tokens)
		totalLen += len(tokens)

		seen := make(map[string]bool, len(tokens))
		for _, tok := range tokens {
			if !seen[tok] {
				seen[tok] = true
				df[tok]++
			}
		}
	}

	if len(docs) > 0 {
		idx.avgLen = float64(totalLen) / float64(len(docs))
	}
	n := float64(len(docs))
	for term, freq := range df {
		// +1 inside the log keeps idf positive for very common terms.
		idx.idf[term] = math.Log(1 + (n-float64(freq)+0.5)/(float64(freq)+0.5))
	}
	return idx
}

// Len returns the number of indexed documents.
func (idx *BM25Index) Len() int { return len(idx.docTokens) }

// Scores returns the BM25 score of every document against the query,
// in document order.
func (idx *BM25Index) Scores(query string) []float64 {
	scores := make([]float64, len(idx.docTokens))
	queryTokens := tokenize(query)
	if len(queryTokens) == 0 || idx.avgLen == 0 {
		return scores
	}

	for i, tokens := range idx.docTokens {
		tf := make(map[string]int, len(tokens))
		for _, tok := range tokens {
			tf[tok]++
		}
		lenNorm := 1 - bm25B + bm25B*float64(idx.docLens[i])/idx.avgLen

		for _, q := range queryTokens {
			f := float64(tf[q])
			if f == 0 {
				continue
			}
			scores[i] += idx.idf[q] * f * (bm25K1 + 1) / (f + bm25K1*lenNorm)
		}
	}
	return scores
}

// TopN returns the indices of the n highest-scoring documents for the
// query, best first, skipping zero scores.
func (idx *BM25Index) TopN(query string, n int) []int {
	scores := idx.Scores(query)
	order := make([]int, 0, len(scores))
	for i, s := range scores {
		if s > 0 {
			order = append(order, i)
		}
	}
	sort.Slice(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})
	if len(order) > n {
		order = order[:n]
	}
	return order
}
