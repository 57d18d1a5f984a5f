package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/achen-archive/memoirsite/internal/llm"
)

const answerTemperature = 0.3

// ErrEmptyQuery is returned when the question is blank.
var ErrEmptyQuery = errors.New("query cannot be empty")

// Answer is a completed chat response.
type Answer struct {
	Answer    string     `json:"answer"`
	Citations []Citation `json:"citations"`
	SessionID string     `json:"session_id,omitempty"`
}

// Service answers questions over the transcript corpus.
type Service struct {
	retriever *Retriever
	provider  llm.Provider
	model     string
	// history is optional; when set, questions and answers are recorded
	// per session.
	history *History
}

// NewService wires retrieval and generation together.
func NewService(retriever *Retriever, provider llm.Provider, model string, history *History) *Service {
	return &Service{
		retriever: retriever,
		provider:  provider,
		model:     model,
		history:   history,
	}
}

func (s *Service) request(query string, context string) llm.CompletionRequest {
	return llm.CompletionRequest{
		Model: s.model,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: systemPrompt},
			{Role: llm.RoleUser, Content: context},
		},
		Temperature: answerTemperature,
	}
}

func (s *Service) record(ctx context.Context, sessionID, query string, ans *Answer) {
	if s.history == nil || sessionID == "" {
		return
	}
	// History failures never fail the answer.
	s.history.Append(ctx, sessionID, llm.RoleUser, query, nil)
	s.history.Append(ctx, sessionID, llm.RoleAssistant, ans.Answer, ans.Citations)
}

// Ask answers a question in one shot.
func (s *Service) Ask(ctx context.Context, sessionID, query string) (*Answer, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	retrieved := s.retriever.Retrieve(ctx, query, RetrieveK)
	forLLM := retrieved
	if len(forLLM) > ContextChunks {
		forLLM = forLLM[:ContextChunks]
	}

	if len(forLLM) == 0 {
		ans := &Answer{Answer: noResultsAnswer, Citations: []Citation{}, SessionID: sessionID}
		s.record(ctx, sessionID, query, ans)
		return ans, nil
	}

	resp, err := s.provider.Complete(ctx, s.request(query, buildUserMessage(query, forLLM)))
	if err != nil {
		return nil, fmt.Errorf("llm completion: %w", err)
	}

	ans := &Answer{
		Answer:    resp.Content,
		Citations: ExtractCitations(resp.Content, retrieved),
		SessionID: sessionID,
	}
	if ans.Citations == nil {
		ans.Citations = []Citation{}
	}
	s.record(ctx, sessionID, query, ans)
	return ans, nil
}

// AskStream answers a question incrementally. onDelta receives each
// content fragment as the model produces it; the full answer with
// citations is returned at the end. If the provider cannot stream, the
// whole answer arrives as a single delta.
func (s *Service) AskStream(ctx context.Context, sessionID, query string, onDelta func(delta string)) (*Answer, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	retrieved := s.retriever.Retrieve(ctx, query, RetrieveK)
	forLLM := retrieved
	if len(forLLM) > ContextChunks {
		forLLM = forLLM[:ContextChunks]
	}

	if len(forLLM) == 0 {
		onDelta(noResultsAnswer)
		ans := &Answer{Answer: noResultsAnswer, Citations: []Citation{}, SessionID: sessionID}
		s.record(ctx, sessionID, query, ans)
		return ans, nil
	}

	req := s.request(query, buildUserMessage(query, forLLM))

	var content string
	if streamer, ok := s.provider.(llm.StreamProvider); ok {
		accumulated, err := streamer.Stream(ctx, req, onDelta)
		if err != nil {
			return nil, fmt.Errorf("llm stream: %w", err)
		}
		content = accumulated
	} else {
		resp, err := s.provider.Complete(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("llm completion: %w", err)
		}
		content = resp.Content
		onDelta(content)
	}

	// Citations consider only the chunks the model actually saw.
	ans := &Answer{
		Answer:    content,
		Citations: ExtractCitations(content, forLLM),
		SessionID: sessionID,
	}
	if ans.Citations == nil {
		ans.Citations = []Citation{}
	}
	s.record(ctx, sessionID, query, ans)
	return ans, nil
}
