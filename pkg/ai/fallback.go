package ai

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"strings"
)

// FallbackService routes prompts to Gemini first (better quality) and falls
// back to Ollama when Gemini is unreachable or out of quota.
type FallbackService struct {
	gemini TextGenerator
	ollama TextGenerator
}

// NewFallbackService creates a new fallback service with both providers.
// Either provider may be nil.
func NewFallbackService(gemini, ollama TextGenerator) *FallbackService {
	return &FallbackService{
		gemini: gemini,
		ollama: ollama,
	}
}

// isConnectionError checks if the error is a network/connection error
func isConnectionError(err error) bool {
	if err == nil {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	errStr := strings.ToLower(err.Error())
	connectionIndicators := []string{
		"connection refused",
		"no such host",
		"network is unreachable",
		"connection reset",
		"timeout",
		"dial tcp",
		"eof",
	}
	for _, indicator := range connectionIndicators {
		if strings.Contains(errStr, indicator) {
			return true
		}
	}
	return false
}

// isQuotaError checks if the error indicates API quota exhaustion (429)
func isQuotaError(err error) bool {
	if err == nil {
		return false
	}

	var provErr *ProviderError
	if errors.As(err, &provErr) && provErr.StatusCode == 429 {
		return true
	}

	errStr := strings.ToLower(err.Error())
	quotaIndicators := []string{
		"quota",
		"rate limit",
		"too many requests",
		"resource_exhausted",
		"resource exhausted",
	}
	for _, indicator := range quotaIndicators {
		if strings.Contains(errStr, indicator) {
			return true
		}
	}
	return false
}

// GenerateText implements TextGenerator
func (f *FallbackService) GenerateText(ctx context.Context, prompt string) (string, error) {
	var geminiErr error
	if f.gemini != nil {
		result, err := f.gemini.GenerateText(ctx, prompt)
		if err == nil {
			return result, nil
		}
		// A block or a bad request would fail the same way on the other provider.
		if !isQuotaError(err) && !isConnectionError(err) {
			return "", err
		}
		log.Printf("[AI] Gemini unavailable: %v, falling back to Ollama", err)
		geminiErr = err
	}

	if f.ollama != nil {
		result, err := f.ollama.GenerateText(ctx, prompt)
		if err == nil {
			log.Println("[AI] Ollama generation successful")
			return result, nil
		}
		if geminiErr != nil {
			log.Printf("[AI] Ollama fallback failed: %v", err)
			return "", geminiErr
		}
		return "", fmt.Errorf("ollama generation failed: %w", err)
	}

	if geminiErr != nil {
		return "", geminiErr
	}
	return "", fmt.Errorf("no AI provider available")
}
