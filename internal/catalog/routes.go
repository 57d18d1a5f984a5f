package catalog

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes mounts the recording listing under /api/recordings.
func RegisterRoutes(r chi.Router, c *Catalog) {
	r.Get("/api/recordings", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"recordings": c.Recordings(),
		})
	})
}
