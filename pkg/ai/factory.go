package ai

import (
	"context"
	"fmt"
	"log"
)

// Config holds AI provider configuration
type Config struct {
	Provider ProviderType // "gemini", "ollama" or "auto"

	// Gemini config
	GeminiAPIKey string
	GeminiModel  string

	// Ollama config, read on every call so it can change at runtime
	GetOllamaBaseURL func() string
	GetOllamaModel   func() string
}

// NewTextGenerator creates a TextGenerator based on the config.
// Switch provider by changing cfg.Provider.
func NewTextGenerator(ctx context.Context, cfg Config) (TextGenerator, error) {
	newOllama := func() *OllamaService {
		getBaseURL, getModel := cfg.GetOllamaBaseURL, cfg.GetOllamaModel
		if getBaseURL == nil || getModel == nil {
			return NewOllamaService("", "")
		}
		return NewOllamaServiceWithGetters(getBaseURL, getModel)
	}

	switch cfg.Provider {
	case ProviderGemini:
		return NewGeminiService(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)

	case ProviderOllama:
		return newOllama(), nil

	case ProviderAuto, "":
		if cfg.GeminiAPIKey == "" {
			log.Println("[AI] No Gemini API key, using Ollama only")
			return newOllama(), nil
		}
		gemini, err := NewGeminiService(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, err
		}
		return NewFallbackService(gemini, newOllama()), nil

	default:
		return nil, fmt.Errorf("unknown AI provider %q", cfg.Provider)
	}
}
