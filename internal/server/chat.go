package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/ziadkadry99/campusbot/internal/chatbot"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsResponse is the outgoing WebSocket message format.
type wsResponse struct {
	Type    string   `json:"type"` // "answer" or "error"
	Answer  string   `json:"answer,omitempty"`
	Sources []string `json:"sources,omitempty"`
	Error   string   `json:"error,omitempty"`
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade", "error", err)
		return
	}
	defer conn.Close()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("websocket read", "error", err)
			}
			return
		}

		var req chatRequest
		if err := json.Unmarshal(msg, &req); err != nil {
			s.send(conn, wsResponse{Type: "error", Error: "Invalid JSON body"})
			continue
		}

		ans, err := s.answer(r.Context(), req.Question)
		switch {
		case errors.Is(err, chatbot.ErrEmptyQuestion):
			s.send(conn, wsResponse{Type: "error", Error: "Empty question"})
		case err != nil:
			s.send(conn, wsResponse{Type: "error", Error: err.Error()})
		default:
			s.send(conn, wsResponse{Type: "answer", Answer: ans.Answer, Sources: ans.Sources})
		}
	}
}

func (s *Server) send(conn *websocket.Conn, resp wsResponse) {
	if err := conn.WriteJSON(resp); err != nil {
		s.logger.Warn("websocket write", "error", err)
	}
}
