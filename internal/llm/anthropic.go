package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const defaultAnthropicMaxTokens = 2048

type AnthropicOptions struct {
	APIKey    string
	Model     string
	BaseURL   string
	MaxTokens int
	Timeout   time.Duration
}

type AnthropicClient struct {
	client    *anthropic.Client
	model     anthropic.Model
	maxTokens int64
}

func NewAnthropicClient(opts AnthropicOptions) *AnthropicClient {
	model := anthropic.Model(opts.Model)
	if model == "" {
		model = anthropic.ModelClaudeHaiku4_5
	}
	maxTokens := int64(opts.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = defaultAnthropicMaxTokens
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(opts.APIKey),
		option.WithMaxRetries(0),
	}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}
	if opts.Timeout > 0 {
		reqOpts = append(reqOpts, option.WithHTTPClient(&http.Client{Timeout: opts.Timeout}))
	}

	client := anthropic.NewClient(reqOpts...)
	return &AnthropicClient{
		client:    &client,
		model:     model,
		maxTokens: maxTokens,
	}
}

func (c *AnthropicClient) Name() string  { return "anthropic" }
func (c *AnthropicClient) Model() string { return string(c.model) }

func (c *AnthropicClient) Complete(ctx context.Context, system, user string) (string, error) {
	resp, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		System:    []anthropic.TextBlockParam{{Text: system}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic API error: %w", err)
	}
	text := messageText(resp)
	if text == "" {
		return "", ErrEmptyCompletion
	}
	return text, nil
}

func (c *AnthropicClient) RunTools(ctx context.Context, system, user string, tools []ToolSpec, handle ToolHandler, maxSteps int) (string, error) {
	if maxSteps <= 0 {
		maxSteps = DefaultMaxSteps
	}

	defs := make([]anthropic.ToolUnionParam, 0, len(tools))
	for _, t := range tools {
		schema := anthropic.ToolInputSchemaParam{Properties: t.Parameters["properties"]}
		if req, ok := t.Parameters["required"].([]string); ok {
			schema.Required = req
		}
		defs = append(defs, anthropic.ToolUnionParam{
			OfTool: &anthropic.ToolParam{
				Name:        t.Name,
				Description: anthropic.String(t.Description),
				InputSchema: schema,
			},
		})
	}

	messages := []anthropic.MessageParam{
		anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
	}

	for step := 0; step < maxSteps; step++ {
		resp, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
			Model:     c.model,
			MaxTokens: c.maxTokens,
			System:    []anthropic.TextBlockParam{{Text: system}},
			Messages:  messages,
			Tools:     defs,
		})
		if err != nil {
			return "", fmt.Errorf("anthropic API error: %w", err)
		}

		var results []anthropic.ContentBlockParamUnion
		for _, block := range resp.Content {
			if block.Type != "tool_use" {
				continue
			}
			fmt.Printf("[LLM] anthropic step %d: tool %s\n", step+1, block.Name)
			out, isErr := toolResult(ctx, handle, ToolCall{
				ID:        block.ID,
				Name:      block.Name,
				Arguments: block.Input,
			})
			results = append(results, anthropic.NewToolResultBlock(block.ID, out, isErr))
		}
		if len(results) == 0 {
			text := messageText(resp)
			if text == "" {
				return "", ErrEmptyCompletion
			}
			return text, nil
		}

		messages = append(messages, resp.ToParam(), anthropic.NewUserMessage(results...))
	}
	return "", fmt.Errorf("%w after %d steps", ErrStepLimit, maxSteps)
}

func messageText(resp *anthropic.Message) string {
	var parts []string
	for _, block := range resp.Content {
		if block.Type == "text" && block.Text != "" {
			parts = append(parts, block.Text)
		}
	}
	return strings.Join(parts, "\n")
}
