package agent

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/kjannette/stock-researcher/internal/llm"
	"github.com/kjannette/stock-researcher/internal/market"
	"github.com/kjannette/stock-researcher/internal/models"
)

type fakeMarket struct {
	metrics   models.MetricsRecord
	news      []models.NewsItem
	history   models.HistorySeries
	err       error
	newsMax   int
	period    string
	lastQuery string
}

func (f *fakeMarket) FetchMetrics(ctx context.Context, ticker string) (models.MetricsRecord, error) {
	f.lastQuery = ticker
	return f.metrics, f.err
}

func (f *fakeMarket) FetchNews(ctx context.Context, ticker string, maxArticles int) ([]models.NewsItem, error) {
	f.lastQuery, f.newsMax = ticker, maxArticles
	return f.news, f.err
}

func (f *fakeMarket) FetchHistory(ctx context.Context, ticker, period string) (models.HistorySeries, error) {
	f.lastQuery, f.period = ticker, period
	return f.history, f.err
}

// scriptedProvider issues the given tool calls in order, then answers with
// the collected tool results joined together.
type scriptedProvider struct {
	calls      []llm.ToolCall
	system     string
	user       string
	tools      []llm.ToolSpec
	maxSteps   int
	results    []string
	failOnCall error
}

func (p *scriptedProvider) Name() string  { return "scripted" }
func (p *scriptedProvider) Model() string { return "scripted-1" }

func (p *scriptedProvider) Complete(ctx context.Context, system, user string) (string, error) {
	return "", errors.New("not used")
}

func (p *scriptedProvider) RunTools(ctx context.Context, system, user string, tools []llm.ToolSpec, handle llm.ToolHandler, maxSteps int) (string, error) {
	p.system, p.user, p.tools, p.maxSteps = system, user, tools, maxSteps
	if p.failOnCall != nil {
		return "", p.failOnCall
	}
	for _, c := range p.calls {
		out, err := handle(ctx, c)
		if err != nil {
			out = "error: " + err.Error()
		}
		p.results = append(p.results, out)
	}
	return "final answer", nil
}

func call(name ToolName, args string) llm.ToolCall {
	return llm.ToolCall{ID: "id-" + string(name), Name: string(name), Arguments: json.RawMessage(args)}
}

func TestToolsRegistry(t *testing.T) {
	tools := Tools()
	want := []ToolName{ToolFetchStockData, ToolFetchStockNews, ToolFetchStockHistory}
	if len(tools) != len(want) {
		t.Fatalf("expected %d tools, got %d", len(want), len(tools))
	}
	for i, tool := range tools {
		if tool.Name != string(want[i]) {
			t.Errorf("tool %d: got %s, want %s", i, tool.Name, want[i])
		}
		if tool.Parameters["type"] != "object" {
			t.Errorf("%s: schema must be an object", tool.Name)
		}
		req, _ := tool.Parameters["required"].([]string)
		if len(req) != 1 || req[0] != "ticker" {
			t.Errorf("%s: ticker must be required, got %v", tool.Name, req)
		}
	}
}

func TestAnswerDispatchesTools(t *testing.T) {
	md := &fakeMarket{
		metrics: models.MetricsRecord{"symbol": "AAPL", "currentPrice": 190.5},
		news:    []models.NewsItem{{ID: "1", Title: "Apple beats"}},
		history: models.HistorySeries{{Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Close: 185}},
	}
	p := &scriptedProvider{calls: []llm.ToolCall{
		call(ToolFetchStockData, `{"ticker":"AAPL"}`),
		call(ToolFetchStockNews, `{"ticker":"AAPL"}`),
		call(ToolFetchStockHistory, `{"ticker":"AAPL","period":"5d"}`),
	}}
	a := New(p, md, llm.DefaultPrompts(), Options{MaxSteps: 7, MaxArticles: 4})

	out, err := a.Answer(context.Background(), "How is Apple doing?", "")
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if out != "final answer" {
		t.Fatalf("unexpected answer %q", out)
	}
	if p.system != llm.DefaultPrompts().QuestionAnswer {
		t.Error("question-answer prompt not used")
	}
	if p.user != "How is Apple doing?" {
		t.Errorf("unexpected user message %q", p.user)
	}
	if p.maxSteps != 7 || len(p.tools) != 3 {
		t.Errorf("unexpected run config: steps=%d tools=%d", p.maxSteps, len(p.tools))
	}

	if !strings.Contains(p.results[0], `"currentPrice":190.5`) {
		t.Errorf("metrics result: %s", p.results[0])
	}
	if !strings.Contains(p.results[1], "Apple beats") || md.newsMax != 4 {
		t.Errorf("news result: %s (max %d)", p.results[1], md.newsMax)
	}
	if !strings.Contains(p.results[2], `"Close":185`) || md.period != "5d" {
		t.Errorf("history result: %s (period %s)", p.results[2], md.period)
	}
}

func TestAnswerWithPriorContext(t *testing.T) {
	p := &scriptedProvider{}
	a := New(p, &fakeMarket{}, llm.DefaultPrompts(), Options{})

	if _, err := a.Answer(context.Background(), "And its dividend?", "We discussed MSFT."); err != nil {
		t.Fatalf("Answer: %v", err)
	}
	want := "Context:\nWe discussed MSFT.\n\nQuestion: And its dividend?"
	if p.user != want {
		t.Fatalf("got %q, want %q", p.user, want)
	}
	if p.maxSteps != llm.DefaultMaxSteps {
		t.Fatalf("default step budget not applied: %d", p.maxSteps)
	}
}

func TestToolErrorsGoBackToModel(t *testing.T) {
	md := &fakeMarket{metrics: models.MetricsRecord{}}
	p := &scriptedProvider{calls: []llm.ToolCall{
		call(ToolFetchStockData, `{"ticker":"zzzz"}`),
		call("delete_everything", `{}`),
		call(ToolFetchStockNews, `{"ticker":`),
		call(ToolFetchStockHistory, `{}`),
	}}
	a := New(p, md, llm.DefaultPrompts(), Options{})

	if _, err := a.Answer(context.Background(), "q", ""); err != nil {
		t.Fatalf("tool failures must not fail the run: %v", err)
	}
	wants := []string{"no data found for ZZZZ", "unknown tool", "invalid arguments", "ticker is required"}
	for i, w := range wants {
		if !strings.Contains(p.results[i], w) {
			t.Errorf("result %d: %q does not mention %q", i, p.results[i], w)
		}
	}
}

func TestHistoryToolDefaultsPeriod(t *testing.T) {
	md := &fakeMarket{history: models.HistorySeries{{Close: 1}}}
	tb := &toolbox{market: md, maxArticles: 5}

	if _, err := tb.Invoke(context.Background(), call(ToolFetchStockHistory, `{"ticker":"MSFT"}`)); err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if md.period != market.DefaultPeriod {
		t.Fatalf("expected default period %s, got %s", market.DefaultPeriod, md.period)
	}
}

func TestHistoryToolPropagatesNotFound(t *testing.T) {
	md := &fakeMarket{err: market.ErrNotFound}
	tb := &toolbox{market: md, maxArticles: 5}

	_, err := tb.Invoke(context.Background(), call(ToolFetchStockHistory, `{"ticker":"ZZZZ","period":"1mo"}`))
	if !errors.Is(err, market.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSummarizeTicker(t *testing.T) {
	p := &scriptedProvider{}
	a := New(p, &fakeMarket{}, llm.DefaultPrompts(), Options{})

	prompt, answer, err := a.SummarizeTicker(context.Background(), " nvda ")
	if err != nil {
		t.Fatalf("SummarizeTicker: %v", err)
	}
	if prompt != "provide a summary of NVDA" || p.user != prompt {
		t.Fatalf("unexpected prompt %q / %q", prompt, p.user)
	}
	if answer != "final answer" {
		t.Fatalf("unexpected answer %q", answer)
	}
	if p.system != llm.DefaultPrompts().TickerSummary {
		t.Fatal("ticker summary prompt not used")
	}
}

func TestAnswerPropagatesStepLimit(t *testing.T) {
	p := &scriptedProvider{failOnCall: llm.ErrStepLimit}
	a := New(p, &fakeMarket{}, llm.DefaultPrompts(), Options{})

	if _, err := a.Answer(context.Background(), "q", ""); !errors.Is(err, llm.ErrStepLimit) {
		t.Fatalf("expected ErrStepLimit, got %v", err)
	}
}
