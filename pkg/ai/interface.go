package ai

import (
	"context"
	"fmt"
)

// TextGenerator sends one prompt to a language model and returns its text.
// Implement this interface to add new providers.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// ProviderType represents the AI provider type
type ProviderType string

const (
	ProviderGemini ProviderType = "gemini"
	ProviderOllama ProviderType = "ollama"
	ProviderAuto   ProviderType = "auto"
)

// ProviderError is a non-success answer from a provider.
// StatusCode is the provider's HTTP status; Detail is its raw error payload.
type ProviderError struct {
	Provider   ProviderType
	StatusCode int
	Message    string
	Detail     any
}

func (e *ProviderError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s API error (%d)", e.Provider, e.StatusCode)
	}
	return fmt.Sprintf("%s API error (%d): %s", e.Provider, e.StatusCode, e.Message)
}

// BlockedError means the provider answered but withheld the text
type BlockedError struct {
	Provider     ProviderType
	FinishReason string
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("%s returned no text (finishReason: %s)", e.Provider, e.FinishReason)
}
