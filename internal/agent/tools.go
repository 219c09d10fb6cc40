package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kjannette/stock-researcher/internal/llm"
	"github.com/kjannette/stock-researcher/internal/market"
	"github.com/kjannette/stock-researcher/internal/models"
)

type ToolName string

const (
	ToolFetchStockData    ToolName = "fetch_stock_data"
	ToolFetchStockNews    ToolName = "fetch_stock_news"
	ToolFetchStockHistory ToolName = "fetch_stock_history"
)

// MarketData is the subset of the market adapter the tools call into.
type MarketData interface {
	FetchMetrics(ctx context.Context, ticker string) (models.MetricsRecord, error)
	FetchNews(ctx context.Context, ticker string, maxArticles int) ([]models.NewsItem, error)
	FetchHistory(ctx context.Context, ticker, period string) (models.HistorySeries, error)
}

type tickerArgs struct {
	Ticker string `json:"ticker"`
}

type newsArgs struct {
	Ticker         string `json:"ticker"`
	NumArticlesMax int    `json:"num_articles_max"`
}

type historyArgs struct {
	Ticker string `json:"ticker"`
	Period string `json:"period"`
}

var tickerProperty = map[string]any{
	"type":        "string",
	"description": "Stock ticker symbol, e.g. AAPL",
}

// Tools lists the callable tools in a fixed order.
func Tools() []llm.ToolSpec {
	return []llm.ToolSpec{
		{
			Name:        string(ToolFetchStockData),
			Description: "Fetch key stock metrics (price, targets, earnings, dividends, market cap, analyst recommendation) from Yahoo Finance for a given ticker symbol.",
			Parameters: map[string]any{
				"type":       "object",
				"properties": map[string]any{"ticker": tickerProperty},
				"required":   []string{"ticker"},
			},
		},
		{
			Name:        string(ToolFetchStockNews),
			Description: "Fetch recent news articles from Yahoo Finance for a given ticker symbol.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"ticker": tickerProperty,
					"num_articles_max": map[string]any{
						"type":        "integer",
						"description": "Maximum number of articles to return (default 5)",
					},
				},
				"required": []string{"ticker"},
			},
		},
		{
			Name:        string(ToolFetchStockHistory),
			Description: "Fetch daily OHLCV price history from Yahoo Finance for a given ticker symbol.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"ticker": tickerProperty,
					"period": map[string]any{
						"type":        "string",
						"description": "Lookback period such as 5d, 1mo, 6mo, 1y, ytd or max (default 1y)",
					},
				},
				"required": []string{"ticker"},
			},
		},
	}
}

// toolbox dispatches tool calls to the market adapter.
type toolbox struct {
	market      MarketData
	maxArticles int
}

func (tb *toolbox) Invoke(ctx context.Context, call llm.ToolCall) (string, error) {
	switch ToolName(call.Name) {
	case ToolFetchStockData:
		var args tickerArgs
		if err := decodeArgs(call.Arguments, &args); err != nil {
			return "", err
		}
		rec, err := tb.market.FetchMetrics(ctx, args.Ticker)
		if err != nil {
			return "", err
		}
		if rec.Empty() {
			return "", fmt.Errorf("no data found for %s", strings.ToUpper(args.Ticker))
		}
		return encode(rec)

	case ToolFetchStockNews:
		var args newsArgs
		if err := decodeArgs(call.Arguments, &args); err != nil {
			return "", err
		}
		n := args.NumArticlesMax
		if n <= 0 {
			n = tb.maxArticles
		}
		items, err := tb.market.FetchNews(ctx, args.Ticker, n)
		if err != nil {
			return "", err
		}
		return encode(items)

	case ToolFetchStockHistory:
		var args historyArgs
		if err := decodeArgs(call.Arguments, &args); err != nil {
			return "", err
		}
		if args.Period == "" {
			args.Period = market.DefaultPeriod
		}
		series, err := tb.market.FetchHistory(ctx, args.Ticker, args.Period)
		if err != nil {
			return "", err
		}
		return series.Encode()

	default:
		return "", fmt.Errorf("unknown tool %q", call.Name)
	}
}

// argsWithTicker is satisfied by every argument struct.
type argsWithTicker interface {
	ticker() string
}

func (a tickerArgs) ticker() string  { return a.Ticker }
func (a newsArgs) ticker() string    { return a.Ticker }
func (a historyArgs) ticker() string { return a.Ticker }

func decodeArgs[T argsWithTicker](raw json.RawMessage, out *T) error {
	if len(raw) == 0 {
		raw = json.RawMessage("{}")
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	if strings.TrimSpace((*out).ticker()) == "" {
		return fmt.Errorf("invalid arguments: ticker is required")
	}
	return nil
}

func encode(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode tool result: %w", err)
	}
	return string(b), nil
}
