// Package prose generates the gentle narrative text shown to patients:
// photo stories, memory hints, chat replies, and reply suggestions. The
// numeric pipeline never depends on anything produced here.
package prose

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

// Client is the interface for text-generation providers.
type Client interface {
	// Complete returns plain prose for a system/user prompt pair.
	Complete(ctx context.Context, system, prompt string) (string, error)
	// CompleteJSON is like Complete but requests a JSON object response.
	CompleteJSON(ctx context.Context, system, prompt string) (string, error)
}

// OpenAI calls the OpenAI chat completions API.
type OpenAI struct {
	client    openai.Client
	model     string
	maxTokens int64
}

// NewOpenAI creates an OpenAI-backed client.
func NewOpenAI(apiKey, model string, maxTokens int) *OpenAI {
	if model == "" {
		model = "gpt-4o"
	}
	if maxTokens <= 0 {
		maxTokens = 200
	}
	return &OpenAI{
		client:    openai.NewClient(option.WithAPIKey(apiKey)),
		model:     model,
		maxTokens: int64(maxTokens),
	}
}

func (o *OpenAI) complete(ctx context.Context, system, prompt string, jsonMode bool) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model:     openai.ChatModel(o.model),
		MaxTokens: openai.Int(o.maxTokens),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(prompt),
		},
	}
	if jsonMode {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}

	completion, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("openai completion: empty response")
	}
	return completion.Choices[0].Message.Content, nil
}

// Complete implements Client.
func (o *OpenAI) Complete(ctx context.Context, system, prompt string) (string, error) {
	return o.complete(ctx, system, prompt, false)
}

// CompleteJSON implements Client.
func (o *OpenAI) CompleteJSON(ctx context.Context, system, prompt string) (string, error) {
	return o.complete(ctx, system, prompt, true)
}
