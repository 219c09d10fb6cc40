package llm

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Prompts holds the system instructions used for every LLM call.
type Prompts struct {
	MetricsSummary string `yaml:"metrics_summary"`
	NewsSummary    string `yaml:"news_summary"`
	QuestionAnswer string `yaml:"question_answer"`
	TickerSummary  string `yaml:"ticker_summary"`
}

const markdownRules = "Generate a response that avoids unintended Markdown formatting issues. Ensure that: " +
	"1. Any special characters (such as dollar character ($), underscores _, asterisks *, or backticks `) that could be misinterpreted by Markdown are properly escaped using a backslash (\\). " +
	"2. Avoid unnecessary Markdown syntax unless explicitly required. " +
	"3. Any dollar amount larger than 1 million should be formatted in millions (e.g. $1.5M). "

func DefaultPrompts() Prompts {
	return Prompts{
		MetricsSummary: "You are an expert in stock market analysis. " +
			"You will receive a JSON object with key metrics for a single stock. " +
			"Summarize them in short prose grouped as: price and 52-week range, analyst targets and recommendation, " +
			"earnings and revenue, dividends, and market capitalization. " +
			"Skip any group whose metrics are missing; never invent values. " +
			"Make sure any dollar value starts with a '$' symbol. " +
			markdownRules +
			"Close with a one-sentence recommendation based only on the data provided.",

		NewsSummary: "You are an expert in stock market analysis. " +
			"You will receive a JSON object describing one news article about a stock. " +
			"Respond with ONLY a JSON object and no other text, code fences or commentary, in exactly this shape: " +
			`{"summary": "<two or three sentence summary of the article>", "sentiment": "<Bullish|Bearish|Neutral>"}. ` +
			"The sentiment must be exactly one of Bullish, Bearish or Neutral and reflect the likely effect on the stock price.",

		QuestionAnswer: "You are an expert in stock market analysis. " +
			"Your task is to answer questions about a particular stock. " +
			"Try to be as informative as possible and provide detailed explanations. " +
			"Make sure any dollar value starts with a '$' symbol, do not try to apply formatting on the numbers. " +
			markdownRules +
			"4. Do not use LaTeX. ",

		TickerSummary: "You are an expert in stock market analysis. " +
			"Your task is to summarize the stock data for a given ticker symbol. " +
			"Provide a brief overview of the stock, including key metrics and recent news. " +
			"Make sure to include relevant information and avoid unnecessary details. " +
			"Ensure that the summary is concise and informative, highlighting the most important aspects of the stock. " +
			"Try to keep the summary under 250 words. " +
			"Be sure to specify the current price, target price (percent upside/downside), analyst recommendation and any relevant news you can find. " +
			markdownRules +
			"Follow the following format: " +
			"The current price of <ticker> is $<current price>. The target price range is $<target low> - $<target high>, with an upside/downside of <upside/downside according to median target>. The analyst recommendation is <recommendation>. " +
			"The revenue for the last fiscal year was $<revenue> with a earnings per share of $<earnings per share>. The market capitalization is $<market cap>. " +
			"Dividend yield is <dividend yield>, amounting to a dividend per share of $<dividend per share>. " +
			"**Recent related news:** <list of news in bullet points including: brief summary and link to original news website> ",
	}
}

// LoadPrompts returns the default prompts with any non-empty entries from the
// YAML file at path applied on top. An empty path yields the defaults.
func LoadPrompts(path string) (Prompts, error) {
	p := DefaultPrompts()
	if path == "" {
		return p, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("read prompts: %w", err)
	}

	var override Prompts
	if err := yaml.Unmarshal(data, &override); err != nil {
		return p, fmt.Errorf("parse prompts: %w", err)
	}

	if override.MetricsSummary != "" {
		p.MetricsSummary = override.MetricsSummary
	}
	if override.NewsSummary != "" {
		p.NewsSummary = override.NewsSummary
	}
	if override.QuestionAnswer != "" {
		p.QuestionAnswer = override.QuestionAnswer
	}
	if override.TickerSummary != "" {
		p.TickerSummary = override.TickerSummary
	}
	return p, nil
}
