package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"hotelix/internal/config"
)

// OpenAICompleter talks to any OpenAI-compatible chat completions endpoint (Groq by default)
type OpenAICompleter struct {
	cfg    config.LLMConfig
	client *openai.Client
}

// NewOpenAICompleter creates a completer. Without an API key the client is not built
// and every call fails with ErrNotConfigured.
func NewOpenAICompleter(cfg config.LLMConfig) *OpenAICompleter {
	c := &OpenAICompleter{cfg: cfg}
	if !cfg.Enabled {
		return c
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.APIBase != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.APIBase, "/")
	}
	clientCfg.HTTPClient = &http.Client{
		Timeout: time.Duration(cfg.Timeout) * time.Second,
	}
	c.client = openai.NewClientWithConfig(clientCfg)
	return c
}

// Enabled returns whether the client is configured and ready
func (c *OpenAICompleter) Enabled() bool {
	return c.cfg.Enabled && c.client != nil
}

// Complete performs one non-streaming chat completion and returns the first choice
func (c *OpenAICompleter) Complete(ctx context.Context, system, user string) (string, error) {
	if !c.Enabled() {
		return "", ErrNotConfigured
	}

	req := openai.ChatCompletionRequest{
		Model: c.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: float32(c.cfg.Temperature),
		MaxTokens:   c.cfg.MaxTokens,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrNoChoices
	}

	return resp.Choices[0].Message.Content, nil
}
