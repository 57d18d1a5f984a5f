package chapters

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/achen-archive/memoirsite/internal/catalog"
)

// RegisterRoutes mounts chapter endpoints. Recording paths contain
// slashes, so the recording is addressed by query parameter.
func RegisterRoutes(r chi.Router, c *catalog.Catalog) {
	r.Get("/api/chapters", handleChapters(c))
	r.Get("/api/outline", handleOutline(c))
}

func handleChapters(c *catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		rec, ok := c.Get(r.URL.Query().Get("recording"))
		if !ok {
			http.Error(w, `{"error":"unknown recording"}`, http.StatusNotFound)
			return
		}

		f, err := Load(c.Dir(rec.Path))
		if err != nil {
			log.Printf("chapters: load %s: %v", rec.Path, err)
			http.Error(w, `{"error":"chapters unavailable"}`, http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(f)
	}
}

func handleOutline(c *catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		rec, ok := c.Get(r.URL.Query().Get("recording"))
		if !ok {
			http.Error(w, `{"error":"unknown recording"}`, http.StatusNotFound)
			return
		}

		f, err := Load(c.Dir(rec.Path))
		if err != nil {
			log.Printf("chapters: load %s: %v", rec.Path, err)
			http.Error(w, `{"error":"chapters unavailable"}`, http.StatusNotFound)
			return
		}
		tr, err := c.Transcript(rec.Path)
		if err != nil {
			log.Printf("chapters: transcript %s: %v", rec.Path, err)
			http.Error(w, `{"error":"transcript unavailable"}`, http.StatusNotFound)
			return
		}

		json.NewEncoder(w).Encode(map[string]any{
			"recording": rec.Path,
			"summary":   f.Summary,
			"chapters":  Outline(f, tr),
		})
	}
}
