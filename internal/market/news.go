package market

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kjannette/stock-researcher/internal/httputil"
	"github.com/kjannette/stock-researcher/internal/models"
)

// The stream mixes in sponsored entries; ask for a few extra so the cap can
// still be met after they are dropped.
const sponsoredHeadroom = 5

type newsStreamResponse struct {
	Data struct {
		TickerStream struct {
			Stream []newsStreamEntry `json:"stream"`
		} `json:"tickerStream"`
	} `json:"data"`
}

type newsStreamEntry struct {
	ID      string          `json:"id"`
	Ad      json.RawMessage `json:"ad"`
	Content *struct {
		ID          string `json:"id"`
		Title       string `json:"title"`
		Summary     string `json:"summary"`
		Description string `json:"description"`
		PubDate     string `json:"pubDate"`
		Provider    *struct {
			DisplayName string `json:"displayName"`
		} `json:"provider"`
		CanonicalURL *struct {
			URL string `json:"url"`
		} `json:"canonicalUrl"`
		ClickThroughURL *struct {
			URL string `json:"url"`
		} `json:"clickThroughUrl"`
	} `json:"content"`
}

// FetchNews returns at most maxArticles recent items for ticker in provider
// order. maxArticles <= 0 means DefaultMaxArticles.
func (c *YahooClient) FetchNews(ctx context.Context, ticker string, maxArticles int) ([]models.NewsItem, error) {
	ticker = normalizeTicker(ticker)
	if maxArticles <= 0 {
		maxArticles = DefaultMaxArticles
	}

	crumb, err := c.session.Crumb(ctx)
	if err != nil {
		return nil, fmt.Errorf("yahoo session: %w", err)
	}

	body, _ := json.Marshal(map[string]any{
		"serviceConfig": map[string]any{
			"snippetCount": maxArticles + sponsoredHeadroom,
			"s":            []string{ticker},
		},
	})

	q := url.Values{}
	q.Set("queryRef", "latestNews")
	q.Set("serviceKey", "ncp_fin")
	q.Set("crumb", crumb)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.newsURL+"?"+q.Encode(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build news request: %w", err)
	}
	c.decorate(req)
	req.Header.Set("Content-Type", "application/json")

	var data newsStreamResponse
	if err := httputil.DoJSON(ctx, c.httpClient, req, &data); err != nil {
		c.invalidateOnAuth(httputil.StatusCode(err))
		return nil, fmt.Errorf("yahoo news %s: %w", ticker, err)
	}

	items := make([]models.NewsItem, 0, maxArticles)
	for _, entry := range data.Data.TickerStream.Stream {
		if len(items) == maxArticles {
			break
		}
		item, ok := entry.toItem()
		if !ok {
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

func (e newsStreamEntry) sponsored() bool {
	raw := strings.TrimSpace(string(e.Ad))
	return raw != "" && raw != "null" && raw != "[]" && raw != "false"
}

func (e newsStreamEntry) toItem() (models.NewsItem, bool) {
	if e.sponsored() || e.Content == nil || e.Content.Title == "" {
		return models.NewsItem{}, false
	}
	ct := e.Content

	item := models.NewsItem{
		ID:      e.ID,
		Title:   ct.Title,
		Summary: ct.Summary,
	}
	if item.ID == "" {
		item.ID = ct.ID
	}
	if item.Summary == "" {
		item.Summary = ct.Description
	}
	if ct.ClickThroughURL != nil && ct.ClickThroughURL.URL != "" {
		item.URL = ct.ClickThroughURL.URL
	} else if ct.CanonicalURL != nil {
		item.URL = ct.CanonicalURL.URL
	}
	if ct.Provider != nil {
		item.Publisher = ct.Provider.DisplayName
	}
	if ts, err := time.Parse(time.RFC3339, ct.PubDate); err == nil {
		ts = ts.UTC()
		item.PublishedAt = &ts
	}
	return item, true
}
