package models

import (
	"fmt"
	"strings"
	"time"
)

type NewsItem struct {
	ID          string     `json:"id,omitempty"`
	Title       string     `json:"title"`
	Summary     string     `json:"summary"`
	URL         string     `json:"url"`
	Publisher   string     `json:"publisher,omitempty"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

type Sentiment string

const (
	Bullish Sentiment = "Bullish"
	Bearish Sentiment = "Bearish"
	Neutral Sentiment = "Neutral"
)

// ParseSentiment accepts the three labels case-insensitively and returns the
// canonical spelling.
func ParseSentiment(s string) (Sentiment, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bullish":
		return Bullish, nil
	case "bearish":
		return Bearish, nil
	case "neutral":
		return Neutral, nil
	default:
		return "", fmt.Errorf("invalid sentiment %q, expected Bullish|Bearish|Neutral", s)
	}
}

// NewsSummary is the per-article result returned to clients.
type NewsSummary struct {
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	Summary   string    `json:"summary"`
	Sentiment Sentiment `json:"sentiment"`
}
