package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/kjannette/stock-researcher/internal/extract"
	"github.com/kjannette/stock-researcher/internal/models"
)

// Summarizer turns market data into prose through a single completion per call.
type Summarizer struct {
	provider Provider
	prompts  Prompts
}

func NewSummarizer(provider Provider, prompts Prompts) *Summarizer {
	return &Summarizer{provider: provider, prompts: prompts}
}

// SummarizeMetrics returns the model's prose summary of rec verbatim.
func (s *Summarizer) SummarizeMetrics(ctx context.Context, rec models.MetricsRecord) (string, error) {
	payload, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("encode metrics: %w", err)
	}
	out, err := s.provider.Complete(ctx, s.prompts.MetricsSummary, string(payload))
	if err != nil {
		return "", fmt.Errorf("summarize metrics: %w", err)
	}
	return out, nil
}

// SummarizeNews asks for a {summary, sentiment} object describing item.
// Output that cannot be read as that shape, including an empty completion,
// yields ErrUnparseable.
func (s *Summarizer) SummarizeNews(ctx context.Context, item models.NewsItem) (models.NewsSummary, error) {
	payload, err := json.Marshal(item)
	if err != nil {
		return models.NewsSummary{}, fmt.Errorf("encode news item: %w", err)
	}
	out, err := s.provider.Complete(ctx, s.prompts.NewsSummary, string(payload))
	if errors.Is(err, ErrEmptyCompletion) {
		return models.NewsSummary{}, fmt.Errorf("%w: %v", ErrUnparseable, err)
	}
	if err != nil {
		return models.NewsSummary{}, fmt.Errorf("summarize news: %w", err)
	}

	obj := extract.JSONObject(out)
	if len(obj) == 0 {
		return models.NewsSummary{}, fmt.Errorf("%w: no JSON object in news summary", ErrUnparseable)
	}
	summary, _ := obj["summary"].(string)
	if strings.TrimSpace(summary) == "" {
		return models.NewsSummary{}, fmt.Errorf("%w: missing summary", ErrUnparseable)
	}
	label, _ := obj["sentiment"].(string)
	sentiment, err := models.ParseSentiment(label)
	if err != nil {
		return models.NewsSummary{}, fmt.Errorf("%w: %v", ErrUnparseable, err)
	}

	return models.NewsSummary{
		Title:     item.Title,
		URL:       item.URL,
		Summary:   summary,
		Sentiment: sentiment,
	}, nil
}
