package market

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/kjannette/stock-researcher/internal/httputil"
	"github.com/kjannette/stock-researcher/internal/models"
)

// quoteSummary modules that together carry every allow-listed field. Later
// modules win on key collisions.
var summaryModules = []string{"price", "summaryDetail", "defaultKeyStatistics", "financialData"}

type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []map[string]map[string]any `json:"result"`
		Error  *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteSummary"`
}

// FetchMetrics returns the allow-listed metrics for ticker. An unknown symbol
// yields an empty record and a nil error.
func (c *YahooClient) FetchMetrics(ctx context.Context, ticker string) (models.MetricsRecord, error) {
	ticker = normalizeTicker(ticker)

	crumb, err := c.session.Crumb(ctx)
	if err != nil {
		return nil, fmt.Errorf("yahoo session: %w", err)
	}

	q := url.Values{}
	q.Set("modules", strings.Join(summaryModules, ","))
	q.Set("crumb", crumb)
	u := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?%s", c.queryURL, url.PathEscape(ticker), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build quoteSummary request: %w", err)
	}
	c.decorate(req)

	var data quoteSummaryResponse
	if err := httputil.DoJSON(ctx, c.httpClient, req, &data); err != nil {
		status := httputil.StatusCode(err)
		if status == http.StatusNotFound {
			return models.MetricsRecord{}, nil
		}
		c.invalidateOnAuth(status)
		return nil, fmt.Errorf("yahoo quoteSummary %s: %w", ticker, err)
	}

	if data.QuoteSummary.Error != nil {
		if data.QuoteSummary.Error.Code == "Not Found" {
			return models.MetricsRecord{}, nil
		}
		return nil, fmt.Errorf("yahoo quoteSummary %s: %s", ticker, data.QuoteSummary.Error.Description)
	}
	if len(data.QuoteSummary.Result) == 0 {
		return models.MetricsRecord{}, nil
	}

	return models.ProjectMetrics(flattenModules(data.QuoteSummary.Result[0], summaryModules)), nil
}

// flattenModules merges the named modules into one flat map, unwrapping
// {"raw": x, "fmt": "..."} values to x and dropping empty objects, which is
// how the provider marks a missing value.
func flattenModules(result map[string]map[string]any, order []string) map[string]any {
	flat := make(map[string]any)
	for _, name := range order {
		for key, v := range result[name] {
			if val, ok := unwrapValue(v); ok {
				flat[key] = val
			}
		}
	}
	return flat
}

func unwrapValue(v any) (any, bool) {
	switch val := v.(type) {
	case nil:
		return nil, false
	case map[string]any:
		raw, ok := val["raw"]
		if !ok || raw == nil {
			return nil, false
		}
		return raw, true
	default:
		return val, true
	}
}
