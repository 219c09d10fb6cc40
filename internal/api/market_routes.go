package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/kjannette/stock-researcher/internal/llm"
	"github.com/kjannette/stock-researcher/internal/market"
	"github.com/kjannette/stock-researcher/internal/models"
)

type metricsResponse struct {
	Summary     string `json:"summary"`
	StockTicker string `json:"stock_ticker"`
}

type newsResponse struct {
	StockTicker string               `json:"stock_ticker"`
	Articles    []models.NewsSummary `json:"articles"`
	Skipped     int                  `json:"skipped"`
}

type historyResponse struct {
	Period  string `json:"period"`
	Ticker  string `json:"ticker"`
	History string `json:"history"`
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	ticker, ok := validateTicker(r.PathValue("ticker"))
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid ticker")
		return
	}

	ctx := r.Context()
	rec, err := s.market.FetchMetrics(ctx, ticker)
	if err != nil {
		fmt.Printf("[API] Error fetching metrics for %s: %v\n", ticker, err)
		writeError(w, http.StatusBadGateway, "failed to fetch stock data")
		return
	}
	if rec.Empty() {
		writeError(w, http.StatusNotFound, fmt.Sprintf("Stock %s is not found.", ticker))
		return
	}

	summary, err := s.summarizer.SummarizeMetrics(ctx, rec)
	if err != nil {
		fmt.Printf("[API] Error summarizing metrics for %s: %v\n", ticker, err)
		writeError(w, http.StatusBadGateway, "failed to summarize stock data")
		return
	}

	writeJSON(w, http.StatusOK, metricsResponse{
		Summary:     summary,
		StockTicker: rec.Symbol(ticker),
	})
}

func (s *Server) handleNews(w http.ResponseWriter, r *http.Request) {
	ticker, ok := validateTicker(r.PathValue("ticker"))
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid ticker")
		return
	}

	ctx := r.Context()
	items, err := s.market.FetchNews(ctx, ticker, s.maxArticles)
	if err != nil {
		fmt.Printf("[API] Error fetching news for %s: %v\n", ticker, err)
		writeError(w, http.StatusBadGateway, "failed to fetch stock news")
		return
	}
	if len(items) == 0 {
		writeError(w, http.StatusNotFound, fmt.Sprintf("No news articles are found for stock %s.", ticker))
		return
	}

	resp := newsResponse{StockTicker: ticker, Articles: make([]models.NewsSummary, 0, len(items))}
	for _, item := range items {
		summary, err := s.summarizer.SummarizeNews(ctx, item)
		if errors.Is(err, llm.ErrUnparseable) {
			fmt.Printf("[WARN] Dropping article %q for %s: %v\n", item.Title, ticker, err)
			resp.Skipped++
			continue
		}
		if err != nil {
			fmt.Printf("[API] Error summarizing news for %s: %v\n", ticker, err)
			writeError(w, http.StatusBadGateway, "failed to summarize stock news")
			return
		}
		resp.Articles = append(resp.Articles, summary)
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	ticker, ok := validateTicker(q.Get("ticker"))
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid or missing ticker")
		return
	}
	period := strings.TrimSpace(q.Get("period"))
	if period == "" {
		period = market.DefaultPeriod
	}

	series, err := s.market.FetchHistory(r.Context(), ticker, period)
	switch {
	case errors.Is(err, market.ErrInvalidPeriod):
		writeError(w, http.StatusBadRequest, "invalid period; use e.g. 5d, 1wk, 6mo, 1y, ytd or max")
		return
	case errors.Is(err, market.ErrNotFound):
		writeError(w, http.StatusBadRequest, fmt.Sprintf("No price history found for %s.", ticker))
		return
	case err != nil:
		fmt.Printf("[API] Error fetching history for %s (%s): %v\n", ticker, period, err)
		writeError(w, http.StatusBadGateway, "failed to fetch price history")
		return
	}

	encoded, err := series.Encode()
	if err != nil {
		fmt.Printf("[API] Error encoding history for %s: %v\n", ticker, err)
		writeError(w, http.StatusInternalServerError, "failed to encode price history")
		return
	}

	writeJSON(w, http.StatusOK, historyResponse{
		Period:  period,
		Ticker:  ticker,
		History: encoded,
	})
}
