package timeline

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes serves the built timeline. The file is cached after
// the first successful read; a failed read is retried on the next
// request, so a timeline built after startup gets picked up.
func RegisterRoutes(r chi.Router, path string) {
	var (
		mu     sync.Mutex
		cached *File
	)

	r.Get("/api/timeline", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		mu.Lock()
		if cached == nil {
			f, err := LoadFile(path)
			if err != nil {
				mu.Unlock()
				log.Printf("timeline: %v", err)
				http.Error(w, `{"error":"timeline unavailable"}`, http.StatusNotFound)
				return
			}
			cached = f
		}
		f := cached
		mu.Unlock()

		json.NewEncoder(w).Encode(f)
	})
}
