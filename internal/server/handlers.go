package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/ziadkadry99/campusbot/internal/chatbot"
	"github.com/ziadkadry99/campusbot/internal/history"
)

// chatRequest is the body of POST /chat.
type chatRequest struct {
	Question string `json:"question"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("LLM Chatbot is running!"))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"documents": s.bot.Len(),
	})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid JSON body"})
		return
	}

	ans, err := s.answer(r.Context(), req.Question)
	if errors.Is(err, chatbot.ErrEmptyQuestion) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Empty question"})
		return
	}
	if err != nil {
		s.logger.Error("answering question", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, ans)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}

	if s.history == nil {
		writeJSON(w, http.StatusOK, []history.Exchange{})
		return
	}

	entries, err := s.history.Recent(r.Context(), history.ClampLimit(limit))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	if entries == nil {
		entries = []history.Exchange{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// answer asks the chatbot and records the exchange. Recording failures are
// logged only.
func (s *Server) answer(ctx context.Context, question string) (*chatbot.Answer, error) {
	ans, err := s.bot.Ask(ctx, question)
	if err != nil {
		return nil, err
	}

	if s.history != nil {
		_, herr := s.history.Record(ctx, history.Exchange{
			Question: question,
			Answer:   ans.Answer,
			Sources:  ans.Sources,
		})
		if herr != nil {
			s.logger.Warn("recording chat exchange", "error", herr)
		}
	}
	return ans, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
