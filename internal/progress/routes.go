package progress

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// clientIDHeader carries the caller's stable anonymous id. When absent
// the server issues one and echoes it back for the client to keep.
const clientIDHeader = "X-Client-ID"

// RegisterRoutes mounts the progress endpoints under /api/progress.
func RegisterRoutes(r chi.Router, store *Store) {
	r.Route("/api/progress", func(r chi.Router) {
		r.Get("/", handleList(store))
		r.Get("/entry", handleGet(store))
		r.Put("/entry", handleSave(store))
		r.Delete("/entry", handleDelete(store))
	})
}

func clientID(w http.ResponseWriter, r *http.Request) string {
	id := r.Header.Get(clientIDHeader)
	if id == "" {
		id = uuid.New().String()
	}
	w.Header().Set(clientIDHeader, id)
	return id
}

func handleList(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		id := clientID(w, r)

		entries, err := store.List(r.Context(), id)
		if err != nil {
			http.Error(w, `{"error":"progress unavailable"}`, http.StatusInternalServerError)
			return
		}
		if entries == nil {
			entries = []Entry{}
		}
		json.NewEncoder(w).Encode(map[string]any{"entries": entries})
	}
}

func handleGet(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		id := clientID(w, r)

		rec := r.URL.Query().Get("recording")
		if rec == "" {
			http.Error(w, `{"error":"recording is required"}`, http.StatusBadRequest)
			return
		}

		entry, err := store.Get(r.Context(), id, rec)
		if errors.Is(err, ErrNoProgress) {
			http.Error(w, `{"error":"no saved progress"}`, http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, `{"error":"progress unavailable"}`, http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(entry)
	}
}

type saveRequest struct {
	Recording string  `json:"recording"`
	Position  float64 `json:"position"`
	Duration  float64 `json:"duration"`
}

func handleSave(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		id := clientID(w, r)

		var req saveRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Recording == "" {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}

		saved, err := store.Save(r.Context(), id, req.Recording, req.Position, req.Duration)
		if err != nil {
			http.Error(w, `{"error":"progress unavailable"}`, http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(map[string]bool{"saved": saved})
	}
}

func handleDelete(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := clientID(w, r)

		rec := r.URL.Query().Get("recording")
		if rec == "" {
			http.Error(w, `{"error":"recording is required"}`, http.StatusBadRequest)
			return
		}
		if err := store.Delete(r.Context(), id, rec); err != nil {
			http.Error(w, `{"error":"progress unavailable"}`, http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
