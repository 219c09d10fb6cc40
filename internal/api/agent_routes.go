package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/kjannette/stock-researcher/internal/models"
)

// answerRequest accepts {query, context} and the older {content} shape.
type answerRequest struct {
	Query   string `json:"query"`
	Context string `json:"context"`
	Content string `json:"content"`
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	query := strings.TrimSpace(req.Query)
	if query == "" {
		query = strings.TrimSpace(req.Content)
	}
	if query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	start := time.Now()
	answer, err := s.researcher.Answer(r.Context(), query, req.Context)
	if err != nil {
		fmt.Printf("[AGENT] Error answering %q: %v\n", query, err)
		writeError(w, http.StatusInternalServerError, "failed to answer query")
		return
	}

	writeJSON(w, http.StatusOK, models.NewChatExchange(query, answer, time.Since(start)))
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	ticker, ok := validateTicker(r.PathValue("ticker"))
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid ticker")
		return
	}

	start := time.Now()
	prompt, answer, err := s.researcher.SummarizeTicker(r.Context(), ticker)
	if err != nil {
		fmt.Printf("[AGENT] Error summarizing %s: %v\n", ticker, err)
		writeError(w, http.StatusInternalServerError, "failed to summarize stock")
		return
	}

	writeJSON(w, http.StatusOK, models.NewChatExchange(prompt, answer, time.Since(start)))
}
