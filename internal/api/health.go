package api

import (
	"net/http"
	"time"
)

type healthResponse struct {
	Status    string         `json:"status"`
	Timestamp string         `json:"timestamp"`
	Services  healthServices `json:"services"`
}

type healthServices struct {
	MarketData string `json:"market_data"`
	LLM        string `json:"llm"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	services := healthServices{MarketData: "unknown", LLM: "unknown"}
	if s.marketStatus != nil {
		services.MarketData = s.marketStatus()
	}
	if s.llmStatus != nil {
		services.LLM = s.llmStatus()
	}

	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Services:  services,
	})
}
