package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/kjannette/stock-researcher/internal/llm"
	"github.com/kjannette/stock-researcher/internal/market"
)

// Agent answers free-form questions by letting the model call market tools.
// Each call runs an independent session; nothing is kept between calls.
type Agent struct {
	provider llm.Provider
	prompts  llm.Prompts
	tools    *toolbox
	maxSteps int
}

type Options struct {
	MaxSteps    int
	MaxArticles int
}

func New(provider llm.Provider, md MarketData, prompts llm.Prompts, opts Options) *Agent {
	if opts.MaxSteps <= 0 {
		opts.MaxSteps = llm.DefaultMaxSteps
	}
	if opts.MaxArticles <= 0 {
		opts.MaxArticles = market.DefaultMaxArticles
	}
	return &Agent{
		provider: provider,
		prompts:  prompts,
		tools:    &toolbox{market: md, maxArticles: opts.MaxArticles},
		maxSteps: opts.MaxSteps,
	}
}

// Answer responds to query, optionally grounded by priorContext from earlier
// turns of the conversation.
func (a *Agent) Answer(ctx context.Context, query, priorContext string) (string, error) {
	return a.run(ctx, a.prompts.QuestionAnswer, userMessage(query, priorContext))
}

// SummarizeTicker produces a structured overview of ticker. It returns the
// synthesized prompt alongside the answer.
func (a *Agent) SummarizeTicker(ctx context.Context, ticker string) (string, string, error) {
	prompt := "provide a summary of " + strings.ToUpper(strings.TrimSpace(ticker))
	answer, err := a.run(ctx, a.prompts.TickerSummary, prompt)
	return prompt, answer, err
}

func (a *Agent) run(ctx context.Context, system, user string) (string, error) {
	answer, err := a.provider.RunTools(ctx, system, user, Tools(), a.tools.Invoke, a.maxSteps)
	if err != nil {
		return "", fmt.Errorf("agent run (%s): %w", a.provider.Name(), err)
	}
	return answer, nil
}

func userMessage(query, priorContext string) string {
	priorContext = strings.TrimSpace(priorContext)
	if priorContext == "" {
		return query
	}
	return "Context:\n" + priorContext + "\n\nQuestion: " + query
}
