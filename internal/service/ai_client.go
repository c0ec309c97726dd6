package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"hotelix/internal/config"
)

var (
	// ErrNotConfigured is returned when no credential is available for the completion service
	ErrNotConfigured = errors.New("completion service not configured")
	// ErrNoChoices is returned when the service answered without any candidate
	ErrNoChoices = errors.New("completion returned no choices")
)

// Completer is the interface for language model providers
type Completer interface {
	// Complete sends a system instruction and a user message and returns the raw text answer
	Complete(ctx context.Context, system, user string) (string, error)

	// Enabled returns whether the provider is configured and ready
	Enabled() bool
}

// NewCompleter builds the provider selected by cfg.Provider
func NewCompleter(ctx context.Context, cfg config.LLMConfig, logger *zap.Logger) (Completer, error) {
	switch cfg.Provider {
	case "openai", "":
		logger.Info("Using OpenAI-compatible completion provider",
			zap.String("base_url", cfg.APIBase), zap.String("model", cfg.Model), zap.Bool("enabled", cfg.Enabled))
		return NewOpenAICompleter(cfg), nil
	case "gemini":
		logger.Info("Using Gemini completion provider",
			zap.String("model", cfg.Model), zap.Bool("enabled", cfg.Enabled))
		return NewGeminiCompleter(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported completion provider %q", cfg.Provider)
	}
}

var (
	_ Completer = (*OpenAICompleter)(nil)
	_ Completer = (*GeminiCompleter)(nil)
)
