package search

import (
	"encoding/json"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
)

// Service answers search queries from a lazily loaded index. The index
// is cached after the first successful load; a failed load is retried
// on the next request, so an index built after startup gets picked up.
type Service struct {
	indexPath string

	mu  sync.Mutex
	idx *Index
}

// NewService creates a Service that loads the index file on first use.
func NewService(indexPath string) *Service {
	return &Service{indexPath: indexPath}
}

func (s *Service) index() (*Index, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.idx != nil {
		return s.idx, nil
	}
	idx, err := LoadFile(s.indexPath)
	if err != nil {
		return nil, err
	}
	s.idx = idx
	return idx, nil
}

// RegisterRoutes mounts the search endpoint.
func RegisterRoutes(r chi.Router, svc *Service) {
	r.Get("/api/search", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		q := req.URL.Query().Get("q")
		if Normalize(q) == "" {
			http.Error(w, `{"error":"q is required"}`, http.StatusBadRequest)
			return
		}
		limit := 50
		if raw := req.URL.Query().Get("limit"); raw != "" {
			if n, err := strconv.Atoi(raw); err == nil && n > 0 {
				limit = n
			}
		}

		idx, err := svc.index()
		if err != nil {
			http.Error(w, `{"error":"search index unavailable"}`, http.StatusServiceUnavailable)
			return
		}

		results := idx.Query(q, limit)
		if results == nil {
			results = []IndexEntry{}
		}
		json.NewEncoder(w).Encode(map[string]any{
			"query":   q,
			"results": results,
		})
	})
}
