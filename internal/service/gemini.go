package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"hotelix/internal/config"
)

// GeminiCompleter implements Completer using Google's Gemini models
type GeminiCompleter struct {
	cfg    config.LLMConfig
	client *genai.Client
}

// NewGeminiCompleter initializes a Gemini client when an API key is configured
func NewGeminiCompleter(ctx context.Context, cfg config.LLMConfig) (*GeminiCompleter, error) {
	c := &GeminiCompleter{cfg: cfg}
	if !cfg.Enabled {
		return c, nil
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	c.client = client
	return c, nil
}

// Close cleans up the Gemini client resources
func (c *GeminiCompleter) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}

// Enabled returns whether the client is configured and ready
func (c *GeminiCompleter) Enabled() bool {
	return c.cfg.Enabled && c.client != nil
}

// Complete generates a JSON answer for the user message under the given system instruction
func (c *GeminiCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	if !c.Enabled() {
		return "", ErrNotConfigured
	}

	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(c.cfg.Timeout)*time.Second)
		defer cancel()
	}

	// a fresh model per call, the system instruction is per request
	model := c.client.GenerativeModel(c.cfg.Model)
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	model.ResponseMIMEType = "application/json"
	model.SetTemperature(float32(c.cfg.Temperature))
	if c.cfg.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(c.cfg.MaxTokens))
	}

	resp, err := model.GenerateContent(ctx, genai.Text(user))
	if err != nil {
		return "", fmt.Errorf("gemini generation error: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrNoChoices
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			text.WriteString(string(txt))
		}
	}
	return text.String(), nil
}
