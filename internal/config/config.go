package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

type Config struct {
	// Server
	Port                      int
	CORSAllowOrigin           string
	ServerWriteTimeoutSeconds int

	// LLM
	LLMProvider     string
	OpenAIAPIKey    string
	OpenAIModel     string
	OpenAIBaseURL   string
	AnthropicAPIKey string
	AnthropicModel  string
	LLMMaxTokens    int
	AgentMaxSteps   int
	PromptsFile     string

	// Market data
	NewsMaxArticles        int
	UpstreamTimeoutSeconds int
	YahooSessionRefresh    string
	YahooSessionWarmup     bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		// Server
		Port:                      envInt("PORT", 3001),
		CORSAllowOrigin:           envStr("CORS_ALLOW_ORIGIN", "*"),
		ServerWriteTimeoutSeconds: envInt("SERVER_WRITE_TIMEOUT_SECONDS", 180),

		// LLM
		LLMProvider:     strings.ToLower(envStr("LLM_PROVIDER", ProviderOpenAI)),
		OpenAIAPIKey:    envStr("OPENAI_API_KEY", ""),
		OpenAIModel:     envStr("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL:   envStr("OPENAI_BASE_URL", ""),
		AnthropicAPIKey: envStr("ANTHROPIC_API_KEY", ""),
		AnthropicModel:  envStr("ANTHROPIC_MODEL", "claude-haiku-4-5"),
		LLMMaxTokens:    envInt("LLM_MAX_TOKENS", 2048),
		AgentMaxSteps:   envInt("AGENT_MAX_STEPS", 25),
		PromptsFile:     envStr("PROMPTS_FILE", ""),

		// Market data
		NewsMaxArticles:        envInt("NEWS_MAX_ARTICLES", 5),
		UpstreamTimeoutSeconds: envInt("UPSTREAM_TIMEOUT_SECONDS", 60),
		YahooSessionRefresh:    envStr("YAHOO_SESSION_REFRESH", "@every 30m"),
		YahooSessionWarmup:     envBool("YAHOO_SESSION_WARMUP", true),
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []string

	switch c.LLMProvider {
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			errs = append(errs, "OPENAI_API_KEY is required when LLM_PROVIDER=openai")
		}
	case ProviderAnthropic:
		if c.AnthropicAPIKey == "" {
			errs = append(errs, "ANTHROPIC_API_KEY is required when LLM_PROVIDER=anthropic")
		}
	default:
		errs = append(errs, fmt.Sprintf("LLM_PROVIDER must be %q or %q, got %q", ProviderOpenAI, ProviderAnthropic, c.LLMProvider))
	}

	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Sprintf("PORT out of range: %d", c.Port))
	}
	if c.LLMMaxTokens <= 0 {
		errs = append(errs, "LLM_MAX_TOKENS must be positive")
	}
	if c.AgentMaxSteps <= 0 {
		errs = append(errs, "AGENT_MAX_STEPS must be positive")
	}
	if c.NewsMaxArticles <= 0 {
		errs = append(errs, "NEWS_MAX_ARTICLES must be positive")
	}
	if c.UpstreamTimeoutSeconds <= 0 {
		errs = append(errs, "UPSTREAM_TIMEOUT_SECONDS must be positive")
	}
	if c.ServerWriteTimeoutSeconds <= 0 {
		errs = append(errs, "SERVER_WRITE_TIMEOUT_SECONDS must be positive")
	}
	if _, err := cron.ParseStandard(c.YahooSessionRefresh); err != nil {
		errs = append(errs, fmt.Sprintf("YAHOO_SESSION_REFRESH is not a valid schedule: %v", err))
	}

	if c.ServerWriteTimeoutSeconds > 0 && c.ServerWriteTimeoutSeconds < c.UpstreamTimeoutSeconds {
		fmt.Println("[WARN] SERVER_WRITE_TIMEOUT_SECONDS is shorter than UPSTREAM_TIMEOUT_SECONDS; slow answers may be cut off")
	}
	if c.CORSAllowOrigin == "*" {
		fmt.Println("[WARN] CORS_ALLOW_ORIGIN is * (any origin may call the API)")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}

func (c *Config) Print() {
	fmt.Println("=== Stock Researcher Configuration ===")
	fmt.Printf("Port: %d\n", c.Port)
	fmt.Printf("CORS Origin: %s\n", c.CORSAllowOrigin)
	fmt.Println("--------------------------------------")
	fmt.Println("LLM:")
	fmt.Printf("  Provider: %s\n", c.LLMProvider)
	fmt.Printf("  Model: %s\n", c.Model())
	fmt.Printf("  API Key: %s\n", maskKey(c.APIKey()))
	if c.LLMProvider == ProviderOpenAI && c.OpenAIBaseURL != "" {
		fmt.Printf("  Base URL: %s\n", c.OpenAIBaseURL)
	}
	fmt.Printf("  Max Tokens: %d\n", c.LLMMaxTokens)
	fmt.Printf("  Agent Max Steps: %d\n", c.AgentMaxSteps)
	fmt.Printf("  Prompts: %s\n", boolLabel(c.PromptsFile != "", c.PromptsFile, "built-in"))
	fmt.Println("--------------------------------------")
	fmt.Println("Market Data (Yahoo Finance):")
	fmt.Printf("  News Articles: %d\n", c.NewsMaxArticles)
	fmt.Printf("  Upstream Timeout: %ds\n", c.UpstreamTimeoutSeconds)
	fmt.Printf("  Session Refresh: %s\n", c.YahooSessionRefresh)
	fmt.Printf("  Session Warmup: %v\n", c.YahooSessionWarmup)
	fmt.Println("======================================")
}

// Model returns the model name for the selected provider.
func (c *Config) Model() string {
	if c.LLMProvider == ProviderAnthropic {
		return c.AnthropicModel
	}
	return c.OpenAIModel
}

// APIKey returns the API key for the selected provider.
func (c *Config) APIKey() string {
	if c.LLMProvider == ProviderAnthropic {
		return c.AnthropicAPIKey
	}
	return c.OpenAIAPIKey
}

func (c *Config) UpstreamTimeout() time.Duration {
	return time.Duration(c.UpstreamTimeoutSeconds) * time.Second
}

func (c *Config) ServerWriteTimeout() time.Duration {
	return time.Duration(c.ServerWriteTimeoutSeconds) * time.Second
}

// --- helpers ---

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		v = strings.ToLower(v)
		return v == "true" || v == "1" || v == "yes"
	}
	return fallback
}

func maskKey(key string) string {
	if key == "" {
		return "not set"
	}
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

func boolLabel(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}
