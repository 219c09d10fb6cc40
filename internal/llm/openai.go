package llm

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// DefaultMaxSteps bounds a tool-calling run when the caller passes no limit.
const DefaultMaxSteps = 25

type OpenAIOptions struct {
	APIKey    string
	Model     string
	BaseURL   string // optional, for compatible gateways
	MaxTokens int
	Timeout   time.Duration
}

type OpenAIClient struct {
	client    *openai.Client
	model     openai.ChatModel
	maxTokens int64
}

func NewOpenAIClient(opts OpenAIOptions) *OpenAIClient {
	if opts.Model == "" {
		opts.Model = openai.ChatModelGPT4oMini
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

	client := openai.NewClient(reqOpts...)
	return &OpenAIClient{
		client:    &client,
		model:     opts.Model,
		maxTokens: int64(opts.MaxTokens),
	}
}

func (c *OpenAIClient) Name() string  { return "openai" }
func (c *OpenAIClient) Model() string { return c.model }

func (c *OpenAIClient) params(messages []openai.ChatCompletionMessageParamUnion) openai.ChatCompletionNewParams {
	p := openai.ChatCompletionNewParams{
		Model:    c.model,
		Messages: messages,
	}
	if c.maxTokens > 0 {
		p.MaxCompletionTokens = openai.Int(c.maxTokens)
	}
	return p
}

func (c *OpenAIClient) Complete(ctx context.Context, system, user string) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, c.params([]openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(system),
		openai.UserMessage(user),
	}))
	if err != nil {
		return "", fmt.Errorf("openai API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *OpenAIClient) RunTools(ctx context.Context, system, user string, tools []ToolSpec, handle ToolHandler, maxSteps int) (string, error) {
	if maxSteps <= 0 {
		maxSteps = DefaultMaxSteps
	}

	defs := make([]openai.ChatCompletionToolParam, 0, len(tools))
	for _, t := range tools {
		defs = append(defs, openai.ChatCompletionToolParam{
			Function: openai.FunctionDefinitionParam{
				Name:        t.Name,
				Description: openai.String(t.Description),
				Parameters:  openai.FunctionParameters(t.Parameters),
			},
		})
	}

	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(system),
		openai.UserMessage(user),
	}

	for step := 0; step < maxSteps; step++ {
		params := c.params(messages)
		params.Tools = defs

		resp, err := c.client.Chat.Completions.New(ctx, params)
		if err != nil {
			return "", fmt.Errorf("openai API error: %w", err)
		}
		if len(resp.Choices) == 0 {
			return "", ErrEmptyCompletion
		}

		msg := resp.Choices[0].Message
		if len(msg.ToolCalls) == 0 {
			return msg.Content, nil
		}

		messages = append(messages, msg.ToParam())
		for _, tc := range msg.ToolCalls {
			fmt.Printf("[LLM] openai step %d: tool %s\n", step+1, tc.Function.Name)
			out, _ := toolResult(ctx, handle, ToolCall{
				ID:        tc.ID,
				Name:      tc.Function.Name,
				Arguments: []byte(tc.Function.Arguments),
			})
			messages = append(messages, openai.ToolMessage(out, tc.ID))
		}
	}
	return "", fmt.Errorf("%w after %d steps", ErrStepLimit, maxSteps)
}
