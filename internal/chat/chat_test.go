package chat

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/achen-archive/memoirsite/internal/db"
	"github.com/achen-archive/memoirsite/internal/llm"
	"github.com/achen-archive/memoirsite/internal/vectordb"
)

// fakeStore serves canned chunks; vector search returns them in order
// with descending similarity.
type fakeStore struct {
	chunks    []vectordb.Chunk
	searchHit []int // indices returned by Search
}

func (f *fakeStore) AddChunks(ctx context.Context, chunks []vectordb.Chunk) error {
	f.chunks = append(f.chunks, chunks...)
	return nil
}

func (f *fakeStore) Search(ctx context.Context, query string, limit int, filter *vectordb.SearchFilter) ([]vectordb.SearchResult, error) {
	var out []vectordb.SearchResult
	for rank, idx := range f.searchHit {
		if rank >= limit {
			break
		}
		out = append(out, vectordb.SearchResult{
			Chunk:      f.chunks[idx],
			Similarity: float32(0.9) - float32(rank)*0.1,
		})
	}
	return out, nil
}

func (f *fakeStore) DeleteByRecording(ctx context.Context, recordingID string) error { return nil }
func (f *fakeStore) All(ctx context.Context) ([]vectordb.Chunk, error)              { return f.chunks, nil }
func (f *fakeStore) Persist(ctx context.Context, dir string) error                  { return nil }
func (f *fakeStore) Load(ctx context.Context, dir string) error                     { return nil }
func (f *fakeStore) Count() int                                                     { return len(f.chunks) }

// fakeProvider returns a fixed answer, optionally in pieces.
type fakeProvider struct {
	answer string
	deltas []string
	calls  int
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	p.calls++
	return &llm.CompletionResponse{Content: p.answer}, nil
}

func (p *fakeProvider) Stream(ctx context.Context, req llm.CompletionRequest, onDelta func(string)) (string, error) {
	p.calls++
	if len(p.deltas) == 0 {
		onDelta(p.answer)
		return p.answer, nil
	}
	var full strings.Builder
	for _, d := range p.deltas {
		onDelta(d)
		full.WriteString(d)
	}
	return full.String(), nil
}

func corpusChunks() []vectordb.Chunk {
	return []vectordb.Chunk{
		{
			ID:      "memoirs/Norm_red_0",
			Content: "We lived on the farm near Dyersville in those early days.",
			Metadata: vectordb.ChunkMetadata{
				RecordingID: "memoirs/Norm_red", StartSeconds: 0, EndSeconds: 120, Timestamp: "0:00",
			},
		},
		{
			ID:      "memoirs/Norm_red_1",
			Content: "Father bought the Model T and we drove it to town.",
			Metadata: vectordb.ChunkMetadata{
				RecordingID: "memoirs/Norm_red", StartSeconds: 60, EndSeconds: 180, Timestamp: "1:00",
			},
		},
		{
			ID:      "glynn_interview_0",
			Content: "The one-room schoolhouse was two miles from home.",
			Metadata: vectordb.ChunkMetadata{
				RecordingID: "glynn_interview", StartSeconds: 0, EndSeconds: 120, Timestamp: "0:00",
			},
		},
	}
}

func newTestRetriever(t *testing.T, store *fakeStore) *Retriever {
	t.Helper()
	r, err := NewRetriever(context.Background(), store)
	if err != nil {
		t.Fatalf("NewRetriever: %v", err)
	}
	return r
}

func TestRetrieveBoostsChunksFoundByBothMethods(t *testing.T) {
	// Vector search favors the farm chunk, but the query's keywords
	// also appear there, so the combined score should keep it on top
	// and well ahead of the vector-only schoolhouse hit.
	store := &fakeStore{chunks: corpusChunks(), searchHit: []int{2, 0}}
	r := newTestRetriever(t, store)

	got := r.Retrieve(context.Background(), "the farm near Dyersville", 10)
	if len(got) == 0 {
		t.Fatal("no results")
	}
	if got[0].ID != "memoirs/Norm_red_0" {
		t.Errorf("top result = %s, want the both-methods chunk", got[0].ID)
	}
}

func TestRetrieveKeywordOnlyStillFound(t *testing.T) {
	// Vector search misses entirely; BM25 must still surface the
	// chunk with the exact term.
	store := &fakeStore{chunks: corpusChunks(), searchHit: nil}
	r := newTestRetriever(t, store)

	got := r.Retrieve(context.Background(), "schoolhouse", 10)
	if len(got) != 1 || got[0].ID != "glynn_interview_0" {
		t.Errorf("results = %+v, want only the schoolhouse chunk", got)
	}
}

func TestRetrieveEmptyCorpus(t *testing.T) {
	r := newTestRetriever(t, &fakeStore{})
	if got := r.Retrieve(context.Background(), "anything", 10); len(got) != 0 {
		t.Errorf("results = %+v, want none", got)
	}
}

func newTestService(t *testing.T, store *fakeStore, provider llm.Provider) *Service {
	t.Helper()
	return NewService(newTestRetriever(t, store), provider, "test-model", nil)
}

func TestAskAnswersWithCitations(t *testing.T) {
	store := &fakeStore{chunks: corpusChunks(), searchHit: []int{0, 1}}
	provider := &fakeProvider{
		answer: "They lived near Dyersville [Source: memoirs/Norm_red, Time: 0:00].",
	}
	svc := newTestService(t, store, provider)

	ans, err := svc.Ask(context.Background(), "", "Where did they live?")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if len(ans.Citations) != 1 {
		t.Fatalf("citations = %+v, want 1", ans.Citations)
	}
	c := ans.Citations[0]
	if c.RecordingID != "memoirs/Norm_red" || c.Timestamp != 0 {
		t.Errorf("citation = %+v", c)
	}
	if !strings.HasPrefix(c.QuoteSnippet, "We lived on the farm") {
		t.Errorf("snippet = %q", c.QuoteSnippet)
	}
}

func TestAskEmptyQuery(t *testing.T) {
	svc := newTestService(t, &fakeStore{}, &fakeProvider{})
	if _, err := svc.Ask(context.Background(), "", "   "); err != ErrEmptyQuery {
		t.Errorf("err = %v, want ErrEmptyQuery", err)
	}
}

func TestAskNoRetrievalSkipsLLM(t *testing.T) {
	provider := &fakeProvider{answer: "should not be called"}
	svc := newTestService(t, &fakeStore{}, provider)

	ans, err := svc.Ask(context.Background(), "", "completely unrelated")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if ans.Answer != noResultsAnswer {
		t.Errorf("answer = %q", ans.Answer)
	}
	if provider.calls != 0 {
		t.Errorf("LLM called %d times on empty retrieval", provider.calls)
	}
	if len(ans.Citations) != 0 {
		t.Errorf("citations = %+v", ans.Citations)
	}
}

func TestAskStreamDeliversDeltas(t *testing.T) {
	store := &fakeStore{chunks: corpusChunks(), searchHit: []int{1}}
	provider := &fakeProvider{deltas: []string{"The Model T ", "[Source: memoirs/Norm_red, Time: 1:00]", "."}}
	svc := newTestService(t, store, provider)

	var deltas []string
	ans, err := svc.AskStream(context.Background(), "", "the model t", func(d string) {
		deltas = append(deltas, d)
	})
	if err != nil {
		t.Fatalf("AskStream: %v", err)
	}
	if len(deltas) != 3 {
		t.Errorf("deltas = %d, want 3", len(deltas))
	}
	if ans.Answer != "The Model T [Source: memoirs/Norm_red, Time: 1:00]." {
		t.Errorf("answer = %q", ans.Answer)
	}
	if len(ans.Citations) != 1 || ans.Citations[0].Timestamp != 60 {
		t.Errorf("citations = %+v", ans.Citations)
	}
}

func setupRouter(t *testing.T, svc *Service) *chi.Mux {
	t.Helper()
	r := chi.NewRouter()
	RegisterRoutes(r, svc)
	return r
}

func TestChatRoute(t *testing.T) {
	store := &fakeStore{chunks: corpusChunks(), searchHit: []int{0}}
	provider := &fakeProvider{answer: "An answer [Source: memoirs/Norm_red, Time: 0:00]."}
	r := setupRouter(t, newTestService(t, store, provider))

	req := httptest.NewRequest(http.MethodPost, "/api/chat",
		strings.NewReader(`{"query":"where was the farm"}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var ans Answer
	if err := json.Unmarshal(rec.Body.Bytes(), &ans); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(ans.Citations) != 1 {
		t.Errorf("citations = %+v", ans.Citations)
	}
}

func TestChatRouteEmptyQuery(t *testing.T) {
	r := setupRouter(t, newTestService(t, &fakeStore{}, &fakeProvider{}))

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"query":""}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestChatStreamRoute(t *testing.T) {
	store := &fakeStore{chunks: corpusChunks(), searchHit: []int{0}}
	provider := &fakeProvider{deltas: []string{"Hello ", "[Source: memoirs/Norm_red, Time: 0:00]"}}
	r := setupRouter(t, newTestService(t, store, provider))

	req := httptest.NewRequest(http.MethodPost, "/api/chat/stream",
		strings.NewReader(`{"query":"the farm"}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("content type = %q", ct)
	}

	var (
		textFrames     int
		citationFrames int
		done           bool
	)
	scanner := bufio.NewScanner(rec.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		payload := strings.TrimPrefix(line, "data: ")
		if payload == "[DONE]" {
			done = true
			continue
		}
		var frame sseFrame
		if err := json.Unmarshal([]byte(payload), &frame); err != nil {
			t.Fatalf("bad frame %q: %v", payload, err)
		}
		switch frame.Type {
		case "text":
			textFrames++
		case "citations":
			citationFrames++
			if len(frame.Citations) != 1 {
				t.Errorf("citations frame = %+v", frame.Citations)
			}
		}
	}

	if textFrames != 2 {
		t.Errorf("text frames = %d, want 2", textFrames)
	}
	if citationFrames != 1 {
		t.Errorf("citations frames = %d, want 1", citationFrames)
	}
	if !done {
		t.Error("missing [DONE] terminator")
	}
}

func TestChatStreamRouteNoResults(t *testing.T) {
	r := setupRouter(t, newTestService(t, &fakeStore{}, &fakeProvider{}))

	req := httptest.NewRequest(http.MethodPost, "/api/chat/stream",
		strings.NewReader(`{"query":"nothing indexed"}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	body := rec.Body.String()
	if !strings.Contains(body, noResultsAnswer) {
		t.Errorf("body = %q, want the fixed no-results answer", body)
	}
	if !strings.Contains(body, "data: [DONE]") {
		t.Error("missing [DONE] terminator")
	}
}

func TestHistoryRecordsConversation(t *testing.T) {
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	history := NewHistory(database)
	ctx := context.Background()

	store := &fakeStore{chunks: corpusChunks(), searchHit: []int{0}}
	provider := &fakeProvider{answer: "Near Dyersville [Source: memoirs/Norm_red, Time: 0:00]."}
	svc := NewService(newTestRetriever(t, store), provider, "test-model", history)

	sessionID, err := history.StartSession(ctx, "client-1")
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	if _, err := svc.Ask(ctx, sessionID, "Where was the farm?"); err != nil {
		t.Fatalf("Ask: %v", err)
	}

	msgs, err := history.Messages(ctx, sessionID)
	if err != nil {
		t.Fatalf("Messages: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("messages = %d, want user + assistant", len(msgs))
	}
	if msgs[0].Role != llm.RoleUser || msgs[1].Role != llm.RoleAssistant {
		t.Errorf("roles = %v, %v", msgs[0].Role, msgs[1].Role)
	}
	if len(msgs[1].Citations) != 1 {
		t.Errorf("assistant citations = %+v", msgs[1].Citations)
	}
}

func TestHistoryUnknownSession(t *testing.T) {
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	if _, err := NewHistory(database).Messages(context.Background(), "nope"); err != ErrSessionNotFound {
		t.Errorf("err = %v, want ErrSessionNotFound", err)
	}
}
