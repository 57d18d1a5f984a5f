package chat

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// chatHTTPRequest is the JSON body of POST /api/chat and
// POST /api/chat/stream.
type chatHTTPRequest struct {
	Query     string `json:"query"`
	SessionID string `json:"session_id"`
}

// wsRequest is the incoming WebSocket message format.
type wsRequest struct {
	Type      string `json:"type"`       // "ask"
	SessionID string `json:"session_id"` // empty for new sessions
	Query     string `json:"query"`
}

// wsResponse is the outgoing WebSocket message format. Streaming
// answers arrive as a run of "delta" frames closed by one "done" frame
// carrying the citations.
type wsResponse struct {
	Type      string     `json:"type"` // "delta", "done" or "error"
	SessionID string     `json:"session_id,omitempty"`
	Content   string     `json:"content,omitempty"`
	Citations []Citation `json:"citations,omitempty"`
}

// RegisterRoutes mounts the chat endpoints.
func RegisterRoutes(r chi.Router, svc *Service) {
	r.Post("/api/chat", handleChat(svc))
	r.Post("/api/chat/stream", handleChatStream(svc))
	r.Get("/api/chat/ws", handleChatWS(svc))
	r.Get("/api/chat/history", handleHistory(svc))
}

func decodeChatRequest(w http.ResponseWriter, r *http.Request) (*chatHTTPRequest, bool) {
	var req chatHTTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
		return nil, false
	}
	return &req, true
}

// ensureSession fills in a fresh session id when the client did not
// send one and history is enabled.
func (s *Service) ensureSession(r *http.Request, sessionID string) string {
	if sessionID != "" || s.history == nil {
		return sessionID
	}
	id, err := s.history.StartSession(r.Context(), r.Header.Get("X-Client-ID"))
	if err != nil {
		log.Printf("chat: creating session: %v", err)
		return ""
	}
	return id
}

func handleChat(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		req, ok := decodeChatRequest(w, r)
		if !ok {
			return
		}
		sessionID := svc.ensureSession(r, req.SessionID)

		answer, err := svc.Ask(r.Context(), sessionID, req.Query)
		if errors.Is(err, ErrEmptyQuery) {
			http.Error(w, `{"error":"query cannot be empty"}`, http.StatusBadRequest)
			return
		}
		if err != nil {
			log.Printf("chat: %v", err)
			http.Error(w, `{"error":"chat failed"}`, http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(answer)
	}
}

// sseFrame is the payload of one server-sent event on /api/chat/stream.
type sseFrame struct {
	Type      string     `json:"type"` // "text", "citations" or "error"
	Content   string     `json:"content,omitempty"`
	Citations []Citation `json:"citations,omitempty"`
	SessionID string     `json:"session_id,omitempty"`
}

func writeSSE(w http.ResponseWriter, flusher http.Flusher, frame sseFrame) {
	data, err := json.Marshal(frame)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "data: %s\n\n", data)
	flusher.Flush()
}

func handleChatStream(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "streaming unsupported", http.StatusInternalServerError)
			return
		}

		req, ok := decodeChatRequest(w, r)
		if !ok {
			return
		}
		sessionID := svc.ensureSession(r, req.SessionID)

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")

		answer, err := svc.AskStream(r.Context(), sessionID, req.Query, func(delta string) {
			writeSSE(w, flusher, sseFrame{Type: "text", Content: delta})
		})
		if err != nil {
			writeSSE(w, flusher, sseFrame{Type: "error", Content: err.Error()})
			fmt.Fprint(w, "data: [DONE]\n\n")
			flusher.Flush()
			return
		}

		writeSSE(w, flusher, sseFrame{
			Type:      "citations",
			Citations: answer.Citations,
			SessionID: answer.SessionID,
		})
		fmt.Fprint(w, "data: [DONE]\n\n")
		flusher.Flush()
	}
}

func handleChatWS(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("chat: websocket upgrade: %v", err)
			return
		}
		defer conn.Close()

		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Printf("chat: websocket read: %v", err)
				}
				return
			}

			var req wsRequest
			if err := json.Unmarshal(msg, &req); err != nil {
				sendWS(conn, wsResponse{Type: "error", Content: "invalid message format"})
				continue
			}
			if req.Type != "" && req.Type != "ask" {
				sendWS(conn, wsResponse{Type: "error", SessionID: req.SessionID, Content: "unknown message type: " + req.Type})
				continue
			}

			sessionID := svc.ensureSession(r, req.SessionID)

			answer, err := svc.AskStream(r.Context(), sessionID, req.Query, func(delta string) {
				sendWS(conn, wsResponse{Type: "delta", SessionID: sessionID, Content: delta})
			})
			if errors.Is(err, ErrEmptyQuery) {
				sendWS(conn, wsResponse{Type: "error", SessionID: sessionID, Content: "query cannot be empty"})
				continue
			}
			if err != nil {
				sendWS(conn, wsResponse{Type: "error", SessionID: sessionID, Content: err.Error()})
				continue
			}

			sendWS(conn, wsResponse{
				Type:      "done",
				SessionID: answer.SessionID,
				Content:   answer.Answer,
				Citations: answer.Citations,
			})
		}
	}
}

func sendWS(conn *websocket.Conn, resp wsResponse) {
	if err := conn.WriteJSON(resp); err != nil {
		log.Printf("chat: websocket write: %v", err)
	}
}

func handleHistory(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if svc.history == nil {
			http.Error(w, `{"error":"history not enabled"}`, http.StatusNotFound)
			return
		}
		sessionID := r.URL.Query().Get("session")
		if sessionID == "" {
			http.Error(w, `{"error":"session is required"}`, http.StatusBadRequest)
			return
		}

		msgs, err := svc.history.Messages(r.Context(), sessionID)
		if errors.Is(err, ErrSessionNotFound) {
			http.Error(w, `{"error":"session not found"}`, http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, `{"error":"history unavailable"}`, http.StatusInternalServerError)
			return
		}
		if msgs == nil {
			msgs = []StoredMessage{}
		}
		json.NewEncoder(w).Encode(map[string]any{"session_id": sessionID, "messages": msgs})
	}
}
