package search

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/achen-archive/memoirsite/internal/catalog"
)

func writeRecording(t *testing.T, root, rel, csv string) {
	t.Helper()
	dir := filepath.Join(root, rel)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "transcript.csv"), []byte(csv), 0o644); err != nil {
		t.Fatal(err)
	}
}

func buildTestIndex(t *testing.T) *Index {
	t.Helper()
	root := t.TempDir()
	writeRecording(t, root, "glynn_interview",
		"start|end|text\n0.0|4.5|We moved to Dyersville in the spring.\n4.5|9.0|   \n9.0|14.0|Father bought the Model T that year.\n")
	writeRecording(t, root, "memoirs/Norm_red",
		"start|end|text\n0.0|6.0|The one-room schoolhouse was two miles away.\n")

	cat, err := catalog.Scan(root, catalog.ScanOptions{})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	idx, err := Build(cat, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return idx
}

func TestBuildSkipsEmptySegments(t *testing.T) {
	idx := buildTestIndex(t)
	if len(idx.Entries) != 3 {
		t.Fatalf("entries = %d, want 3 (blank segment dropped)", len(idx.Entries))
	}
	for _, e := range idx.Entries {
		if e.Normalized == "" {
			t.Errorf("entry %q has empty normalized text", e.Text)
		}
	}
}

func TestBuildKeepsOriginalSegmentIndex(t *testing.T) {
	idx := buildTestIndex(t)
	for _, e := range idx.Entries {
		if e.RecordingPath == "glynn_interview" && e.Text == "Father bought the Model T that year." {
			if e.SegmentIndex != 2 {
				t.Errorf("segment index = %d, want 2 (blank rows still count)", e.SegmentIndex)
			}
			return
		}
	}
	t.Fatal("expected entry not found")
}

func TestQueryCaseInsensitiveSubstring(t *testing.T) {
	idx := buildTestIndex(t)

	results := idx.Query("MODEL t", 10)
	if len(results) != 1 {
		t.Fatalf("results = %d, want 1", len(results))
	}
	if results[0].RecordingPath != "glynn_interview" {
		t.Errorf("recording = %s", results[0].RecordingPath)
	}
}

func TestQueryLimit(t *testing.T) {
	idx := buildTestIndex(t)
	if got := idx.Query("the", 1); len(got) != 1 {
		t.Errorf("limited results = %d, want 1", len(got))
	}
}

func TestQueryEmpty(t *testing.T) {
	idx := buildTestIndex(t)
	if got := idx.Query("   ", 10); got != nil {
		t.Errorf("blank query results = %+v, want nil", got)
	}
}

func TestWriteAndLoadFile(t *testing.T) {
	idx := buildTestIndex(t)
	path := filepath.Join(t.TempDir(), "search-index.json")
	if err := WriteFile(path, idx); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if len(loaded.Entries) != len(idx.Entries) {
		t.Fatalf("loaded %d entries, want %d", len(loaded.Entries), len(idx.Entries))
	}

	// Short keys on the wire.
	raw, _ := os.ReadFile(path)
	var generic struct {
		Index []map[string]any `json:"index"`
	}
	if err := json.Unmarshal(raw, &generic); err != nil {
		t.Fatal(err)
	}
	if _, ok := generic.Index[0]["r"]; !ok {
		t.Error(`expected "r" key in serialized entries`)
	}
}

func TestSearchRoute(t *testing.T) {
	idx := buildTestIndex(t)
	path := filepath.Join(t.TempDir(), "search-index.json")
	if err := WriteFile(path, idx); err != nil {
		t.Fatal(err)
	}

	r := chi.NewRouter()
	RegisterRoutes(r, NewService(path))

	req := httptest.NewRequest(http.MethodGet, "/api/search?q=schoolhouse", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp struct {
		Query   string       `json:"query"`
		Results []IndexEntry `json:"results"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Results) != 1 || resp.Results[0].RecordingPath != "memoirs/Norm_red" {
		t.Errorf("results = %+v", resp.Results)
	}
}

func TestSearchRouteRecoversAfterIndexBuilt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "search-index.json")
	r := chi.NewRouter()
	RegisterRoutes(r, NewService(path))

	req := httptest.NewRequest(http.MethodGet, "/api/search?q=schoolhouse", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status before index = %d, want 503", rec.Code)
	}

	// The index shows up later, e.g. after `memoirsite index` runs.
	if err := WriteFile(path, buildTestIndex(t)); err != nil {
		t.Fatal(err)
	}
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/search?q=schoolhouse", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status after index built = %d, want 200", rec.Code)
	}
}

func TestSearchRouteRequiresQuery(t *testing.T) {
	r := chi.NewRouter()
	RegisterRoutes(r, NewService(filepath.Join(t.TempDir(), "missing.json")))

	req := httptest.NewRequest(http.MethodGet, "/api/search", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}
