package changelog

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes mounts the changelog endpoint.
func RegisterRoutes(r chi.Router, svc *Service) {
	r.Get("/api/changelog", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		rendered, err := svc.HTML()
		if err != nil {
			log.Printf("changelog: %v", err)
			http.Error(w, `{"error":"changelog unavailable"}`, http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"html": rendered})
	})
}
