// Package gateway implements the language-model provider contract over an
// OpenAI-compatible chat/embeddings API.
package gateway

import (
	"context"
	"fmt"
	"strings"

	openaisdk "github.com/openai/openai-go"
	contractx "github.com/thanakit-dev/leadpilot/engine/contract"
	statex "github.com/thanakit-dev/leadpilot/engine/state"
	openrouterx "github.com/thanakit-dev/leadpilot/pkg/openrouter"
)

// Classification runs cooler than reply generation so the JSON output stays
// stable.
const classifyTemperature = 0.1

type Client struct {
	api         *openaisdk.Client
	chatModel   string
	embedModel  string
	temperature float64
	maxTokens   int64
}

var _ contractx.Gateway = (*Client)(nil)

func New(api *openaisdk.Client, cfg openrouterx.Config) (*Client, error) {
	if api == nil {
		return nil, fmt.Errorf("%w: openai client is required", contractx.ErrValidation)
	}
	chatModel := strings.TrimSpace(cfg.ChatModel)
	if chatModel == "" {
		return nil, fmt.Errorf("%w: chat model is required", contractx.ErrValidation)
	}
	embedModel := strings.TrimSpace(cfg.EmbedModel)
	if embedModel == "" {
		return nil, fmt.Errorf("%w: embed model is required", contractx.ErrValidation)
	}

	maxTokens := int64(cfg.MaxCompletionToken)
	if maxTokens <= 0 {
		maxTokens = 2000
	}

	return &Client{
		api:         api,
		chatModel:   chatModel,
		embedModel:  embedModel,
		temperature: cfg.Temperature,
		maxTokens:   maxTokens,
	}, nil
}

// Classify sends one message through the classification prompt and returns
// the raw model text. Parsing and fallback live with the caller.
func (c *Client) Classify(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	resp, err := c.api.Chat.Completions.New(ctx, openaisdk.ChatCompletionNewParams{
		Model: openaisdk.ChatModel(c.chatModel),
		Messages: []openaisdk.ChatCompletionMessageParamUnion{
			openaisdk.SystemMessage(systemPrompt),
			openaisdk.UserMessage(userMessage),
		},
		Temperature: openaisdk.Float(classifyTemperature),
		MaxTokens:   openaisdk.Int(c.maxTokens),
	})
	if err != nil {
		return "", fmt.Errorf("%w: classify: %v", contractx.ErrModelInvoke, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: classify returned no choices", contractx.ErrModelInvoke)
	}
	return resp.Choices[0].Message.Content, nil
}

// Embed returns the embedding vector for one text.
func (c *Client) Embed(ctx context.Context, text string) ([]float64, error) {
	resp, err := c.api.Embeddings.New(ctx, openaisdk.EmbeddingNewParams{
		Model: openaisdk.EmbeddingModel(c.embedModel),
		Input: openaisdk.EmbeddingNewParamsInputUnion{
			OfString: openaisdk.String(text),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contractx.ErrEmbedding, err)
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("%w: empty embedding response", contractx.ErrEmbedding)
	}
	return resp.Data[0].Embedding, nil
}

// Complete generates the free-text reply seeded with the system prompt and
// recent history.
func (c *Client) Complete(ctx context.Context, systemPrompt string, history []statex.Message, userMessage string) (string, error) {
	messages := make([]openaisdk.ChatCompletionMessageParamUnion, 0, len(history)+2)
	messages = append(messages, openaisdk.SystemMessage(systemPrompt))
	for _, msg := range history {
		switch msg.Role {
		case statex.RoleAssistant:
			messages = append(messages, openaisdk.AssistantMessage(msg.Content))
		case statex.RoleUser:
			messages = append(messages, openaisdk.UserMessage(msg.Content))
		}
	}
	messages = append(messages, openaisdk.UserMessage(userMessage))

	resp, err := c.api.Chat.Completions.New(ctx, openaisdk.ChatCompletionNewParams{
		Model:       openaisdk.ChatModel(c.chatModel),
		Messages:    messages,
		Temperature: openaisdk.Float(c.temperature),
		MaxTokens:   openaisdk.Int(c.maxTokens),
	})
	if err != nil {
		return "", fmt.Errorf("%w: complete: %v", contractx.ErrModelInvoke, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: complete returned no choices", contractx.ErrModelInvoke)
	}

	reply := strings.TrimSpace(resp.Choices[0].Message.Content)
	if reply == "" {
		return "", fmt.Errorf("%w: complete returned empty message", contractx.ErrModelInvoke)
	}
	return reply, nil
}
