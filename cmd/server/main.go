package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kjannette/stock-researcher/internal/agent"
	"github.com/kjannette/stock-researcher/internal/api"
	"github.com/kjannette/stock-researcher/internal/config"
	"github.com/kjannette/stock-researcher/internal/llm"
	"github.com/kjannette/stock-researcher/internal/market"
	"github.com/kjannette/stock-researcher/internal/scheduler"
)

const banner = `
╔══════════════════════════════════════╗
║       Stock Researcher API v0.3      ║
║                                      ║
╚══════════════════════════════════════╝
`

func main() {
	fmt.Print(banner)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	cfg.Print()

	prompts, err := llm.LoadPrompts(cfg.PromptsFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[LLM] Prompt load failed: %v\n", err)
		os.Exit(1)
	}

	provider := newProvider(cfg)
	fmt.Printf("\n[LLM] Using %s (%s)\n", provider.Name(), provider.Model())

	// Market data
	opts := market.DefaultOptions()
	opts.Timeout = cfg.UpstreamTimeout()
	yahoo := market.NewYahooClient(opts)

	summarizer := llm.NewSummarizer(provider, prompts)
	researcher := agent.New(provider, yahoo, prompts, agent.Options{
		MaxSteps:    cfg.AgentMaxSteps,
		MaxArticles: cfg.NewsMaxArticles,
	})

	// Graceful shutdown context
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. Yahoo session refresher
	refresher := scheduler.NewSessionRefresher(yahoo.Session(), scheduler.SessionRefresherConfig{
		Spec:    cfg.YahooSessionRefresh,
		Timeout: cfg.UpstreamTimeout(),
		Warmup:  cfg.YahooSessionWarmup,
	})
	if err := refresher.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "[SCHEDULER] Start failed: %v\n", err)
		os.Exit(1)
	}

	// 2. API server
	srv := api.NewServer(api.Deps{
		Market:     yahoo,
		Summarizer: summarizer,
		Researcher: researcher,
		MarketStatus: func() string {
			if yahoo.Session().Age() > 0 {
				return "session active"
			}
			if _, lastErr := refresher.Stats(); lastErr != nil {
				return "session error"
			}
			return "no session"
		},
		LLMStatus: func() string {
			return provider.Name() + ":" + provider.Model()
		},
	}, api.Options{
		Port:         cfg.Port,
		CORSOrigin:   cfg.CORSAllowOrigin,
		WriteTimeout: cfg.ServerWriteTimeout(),
		MaxArticles:  cfg.NewsMaxArticles,
	})
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fmt.Fprintf(os.Stderr, "[API] Server error: %v\n", err)
			os.Exit(1)
		}
	}()

	fmt.Println("\nAll services started successfully")

	// Wait for shutdown signal
	<-ctx.Done()
	fmt.Println("\nShutting down gracefully...")

	refresher.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintf(os.Stderr, "[API] Shutdown error: %v\n", err)
	}
	fmt.Println("[API] Server closed")
	fmt.Println("Shutdown complete")
}

func newProvider(cfg *config.Config) llm.Provider {
	if cfg.LLMProvider == config.ProviderAnthropic {
		return llm.NewAnthropicClient(llm.AnthropicOptions{
			APIKey:    cfg.AnthropicAPIKey,
			Model:     cfg.AnthropicModel,
			MaxTokens: cfg.LLMMaxTokens,
			Timeout:   cfg.UpstreamTimeout(),
		})
	}
	return llm.NewOpenAIClient(llm.OpenAIOptions{
		APIKey:    cfg.OpenAIAPIKey,
		Model:     cfg.OpenAIModel,
		BaseURL:   cfg.OpenAIBaseURL,
		MaxTokens: cfg.LLMMaxTokens,
		Timeout:   cfg.UpstreamTimeout(),
	})
}
