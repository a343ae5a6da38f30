package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// DefaultGeminiModel is used when no model is configured
const DefaultGeminiModel = "gemini-2.0-flash"

// safetySettings disables blocking for the four adjustable categories.
var safetySettings = []*genai.SafetySetting{
	{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockThresholdBlockNone},
	{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockThresholdBlockNone},
	{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockThresholdBlockNone},
	{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockThresholdBlockNone},
}

// GeminiService implements TextGenerator using the Gemini API SDK
type GeminiService struct {
	client *genai.Client
	model  string
}

// NewGeminiService creates a Gemini-backed TextGenerator
func NewGeminiService(ctx context.Context, apiKey, model string) (*GeminiService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required for Gemini provider")
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiService{client: client, model: model}, nil
}

// GenerateText implements TextGenerator
func (g *GeminiService) GenerateText(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		SafetySettings: safetySettings,
	})
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			return "", &ProviderError{
				Provider:   ProviderGemini,
				StatusCode: apiErr.Code,
				Message:    apiErr.Message,
				Detail:     apiErr.Details,
			}
		}
		return "", fmt.Errorf("gemini request failed: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text != "" {
		return text, nil
	}

	reason := "UNKNOWN"
	if len(resp.Candidates) > 0 && resp.Candidates[0].FinishReason != "" {
		reason = string(resp.Candidates[0].FinishReason)
	} else if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		reason = string(resp.PromptFeedback.BlockReason)
	}
	return "", &BlockedError{Provider: ProviderGemini, FinishReason: reason}
}
