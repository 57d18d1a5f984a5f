package places

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
)

// Service serves the places file. The file is cached after the first
// successful load; a failed load is retried on the next request.
type Service struct {
	path string

	mu   sync.Mutex
	file *File
}

// NewService creates a Service reading from the given places.json.
func NewService(path string) *Service {
	return &Service{path: path}
}

func (s *Service) load() (*File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file != nil {
		return s.file, nil
	}
	f, err := LoadFile(s.path)
	if err != nil {
		return nil, err
	}
	s.file = f
	return f, nil
}

// RegisterRoutes mounts the places endpoints.
func RegisterRoutes(r chi.Router, svc *Service) {
	r.Get("/api/places", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		f, err := svc.load()
		if err != nil {
			log.Printf("places: %v", err)
			http.Error(w, `{"error":"places unavailable"}`, http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(f)
	})

	r.Get("/api/places/{name}", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		f, err := svc.load()
		if err != nil {
			log.Printf("places: %v", err)
			http.Error(w, `{"error":"places unavailable"}`, http.StatusInternalServerError)
			return
		}

		name := chi.URLParam(req, "name")
		place, ok := f.Get(name)
		if !ok {
			log.Printf("places: unknown place requested: %q", name)
			http.Error(w, `{"error":"place not found"}`, http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(place)
	})
}
