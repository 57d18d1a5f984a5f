package progress

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/achen-archive/memoirsite/internal/db"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return NewStore(database)
}

func TestSaveAndGet(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	saved, err := store.Save(ctx, "client-1", "memoirs/Norm_red", 120.5, 3600)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !saved {
		t.Fatal("expected save to happen")
	}

	entry, err := store.Get(ctx, "client-1", "memoirs/Norm_red")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if entry.Position != 120.5 || entry.Duration != 3600 {
		t.Errorf("entry = %+v", entry)
	}
}

func TestSaveSuppressedBelowMinElapsed(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	saved, err := store.Save(ctx, "c", "rec", 9.9, 3600)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if saved {
		t.Error("save below 10s should be suppressed")
	}
	if _, err := store.Get(ctx, "c", "rec"); !errors.Is(err, ErrNoProgress) {
		t.Errorf("Get after suppressed save: %v", err)
	}
}

func TestSaveClearedNearEnd(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	if _, err := store.Save(ctx, "c", "rec", 100, 3600); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// Within 30 seconds of the end.
	saved, err := store.Save(ctx, "c", "rec", 3575, 3600)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if saved {
		t.Error("near-end save should clear, not save")
	}
	if _, err := store.Get(ctx, "c", "rec"); !errors.Is(err, ErrNoProgress) {
		t.Errorf("progress should be cleared, got %v", err)
	}
}

func TestSaveClearedPast95Percent(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	// 96% of a 10000s recording, but still more than 30s from the end.
	saved, err := store.Save(ctx, "c", "rec", 9600, 10000)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if saved {
		t.Error("past-95% save should be cleared")
	}
}

func TestSaveJustBeforeNearEndBoundary(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	// 50% through, comfortably resumable.
	saved, err := store.Save(ctx, "c", "rec", 5000, 10000)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !saved {
		t.Error("mid-recording save should persist")
	}
}

func TestGetExpiresOldEntries(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	if _, err := store.Save(ctx, "c", "rec", 500, 3600); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// Jump the clock past the staleness window.
	store.now = func() time.Time { return time.Now().Add(31 * 24 * time.Hour) }

	if _, err := store.Get(ctx, "c", "rec"); !errors.Is(err, ErrNoProgress) {
		t.Errorf("expected expired progress to be discarded, got %v", err)
	}

	// The row is purged, not just hidden.
	store.now = time.Now
	if _, err := store.Get(ctx, "c", "rec"); !errors.Is(err, ErrNoProgress) {
		t.Errorf("expired progress came back: %v", err)
	}
}

func TestListPurgesStale(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	if _, err := store.Save(ctx, "c", "old", 500, 3600); err != nil {
		t.Fatal(err)
	}
	store.now = func() time.Time { return time.Now().Add(31 * 24 * time.Hour) }
	if _, err := store.Save(ctx, "c", "fresh", 600, 3600); err != nil {
		t.Fatal(err)
	}

	entries, err := store.List(ctx, "c")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 1 || entries[0].RecordingPath != "fresh" {
		t.Errorf("entries = %+v, want only fresh", entries)
	}
}

func setupRoutes(t *testing.T) *chi.Mux {
	t.Helper()
	r := chi.NewRouter()
	RegisterRoutes(r, setupStore(t))
	return r
}

func TestRoutesSaveGetRoundTrip(t *testing.T) {
	r := setupRoutes(t)

	body := `{"recording":"memoirs/Norm_red","position":250,"duration":3600}`
	req := httptest.NewRequest(http.MethodPut, "/api/progress/entry", strings.NewReader(body))
	req.Header.Set(clientIDHeader, "client-9")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("save status = %d, body %s", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/progress/entry?recording=memoirs%2FNorm_red", nil)
	req.Header.Set(clientIDHeader, "client-9")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}

	var entry Entry
	if err := json.Unmarshal(rec.Body.Bytes(), &entry); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if entry.Position != 250 {
		t.Errorf("position = %v, want 250", entry.Position)
	}
}

func TestRoutesIssueClientID(t *testing.T) {
	r := setupRoutes(t)

	req := httptest.NewRequest(http.MethodGet, "/api/progress/", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Header().Get(clientIDHeader) == "" {
		t.Error("expected an issued client id header")
	}
}

func TestRoutesGetMissing(t *testing.T) {
	r := setupRoutes(t)

	req := httptest.NewRequest(http.MethodGet, "/api/progress/entry?recording=never-played", nil)
	req.Header.Set(clientIDHeader, "c")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
