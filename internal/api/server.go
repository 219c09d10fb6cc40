package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kjannette/stock-researcher/internal/models"
)

const maxBodyBytes = 1 << 20

var tickerRegexp = regexp.MustCompile(`^[A-Za-z0-9.^=-]{1,15}$`)

// MarketData is the market adapter used by the data routes.
type MarketData interface {
	FetchMetrics(ctx context.Context, ticker string) (models.MetricsRecord, error)
	FetchNews(ctx context.Context, ticker string, maxArticles int) ([]models.NewsItem, error)
	FetchHistory(ctx context.Context, ticker, period string) (models.HistorySeries, error)
}

// Summarizer produces single-completion summaries of market data.
type Summarizer interface {
	SummarizeMetrics(ctx context.Context, rec models.MetricsRecord) (string, error)
	SummarizeNews(ctx context.Context, item models.NewsItem) (models.NewsSummary, error)
}

// Researcher answers questions through a tool-calling agent.
type Researcher interface {
	Answer(ctx context.Context, query, priorContext string) (string, error)
	SummarizeTicker(ctx context.Context, ticker string) (prompt, answer string, err error)
}

type Deps struct {
	Market     MarketData
	Summarizer Summarizer
	Researcher Researcher
	// Status probes reported by /health.
	MarketStatus func() string
	LLMStatus    func() string
}

type Options struct {
	Port         int
	CORSOrigin   string
	WriteTimeout time.Duration
	MaxArticles  int
}

type Server struct {
	market       MarketData
	summarizer   Summarizer
	researcher   Researcher
	marketStatus func() string
	llmStatus    func() string
	maxArticles  int
	handler      http.Handler
	httpServer   *http.Server
}

func NewServer(deps Deps, opts Options) *Server {
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 180 * time.Second
	}
	if opts.MaxArticles <= 0 {
		opts.MaxArticles = 5
	}

	s := &Server{
		market:       deps.Market,
		summarizer:   deps.Summarizer,
		researcher:   deps.Researcher,
		marketStatus: deps.MarketStatus,
		llmStatus:    deps.LLMStatus,
		maxArticles:  opts.MaxArticles,
	}

	mux := http.NewServeMux()

	// Market data routes
	mux.HandleFunc("GET /metrics/{ticker}", s.handleMetrics)
	mux.HandleFunc("GET /news/{ticker}", s.handleNews)
	mux.HandleFunc("GET /history", s.handleHistory)

	// Agent routes
	mux.HandleFunc("POST /answer", s.handleAnswer)
	mux.HandleFunc("GET /summary/{ticker}", s.handleSummary)

	mux.HandleFunc("GET /health", s.handleHealth)

	s.handler = requestLogMiddleware(corsMiddleware(mux, opts.CORSOrigin))

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", opts.Port),
		Handler:      s.handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: opts.WriteTimeout,
	}

	return s
}

// Handler exposes the full middleware chain, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) Start() error {
	fmt.Printf("[API] REST API server started on http://localhost%s\n", s.httpServer.Addr)
	fmt.Printf("[API] Health check: http://localhost%s/health\n", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// --- middleware ---

func corsMiddleware(next http.Handler, allowOrigin string) http.Handler {
	if allowOrigin == "" {
		allowOrigin = "*"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", allowOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func requestLogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)
		fmt.Printf("[API] %s %s %s %d %s\n", id, r.Method, r.URL.Path, rec.status, time.Since(start).Round(time.Millisecond))
	})
}

// --- validation helpers ---

// validateTicker checks the symbol shape and returns it upper-cased.
func validateTicker(raw string) (string, bool) {
	t := strings.TrimSpace(raw)
	if !tickerRegexp.MatchString(t) {
		return "", false
	}
	return strings.ToUpper(t), true
}

// --- response helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
