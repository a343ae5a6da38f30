package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// DefaultBaseURL is the public Generative Language endpoint
const DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// harmCategories are relayed with threshold BLOCK_NONE on every request
var harmCategories = []string{
	"HARM_CATEGORY_HARASSMENT",
	"HARM_CATEGORY_HATE_SPEECH",
	"HARM_CATEGORY_SEXUALLY_EXPLICIT",
	"HARM_CATEGORY_DANGEROUS_CONTENT",
}

// GeminiService calls generateContent over REST and hands back the provider's
// response untouched
type GeminiService struct {
	ApiKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

func NewGeminiService(apiKey, model string) *GeminiService {
	if model == "" {
		model = "gemini-2.0-flash"
	}
	return &GeminiService{
		ApiKey:     apiKey,
		Model:      model,
		BaseURL:    DefaultBaseURL,
		HTTPClient: &http.Client{},
	}
}

// GenerateRaw sends prompt and returns the provider's status and body as-is.
// err is set only when no response was received. The key travels in a header
// so it never appears in a URL or in a transport error.
func (g *GeminiService) GenerateRaw(ctx context.Context, prompt string) (int, []byte, error) {
	endpoint := fmt.Sprintf("%s/models/%s:generateContent", strings.TrimRight(g.BaseURL, "/"), g.Model)

	safety := make([]map[string]string, 0, len(harmCategories))
	for _, category := range harmCategories {
		safety = append(safety, map[string]string{"category": category, "threshold": "BLOCK_NONE"})
	}
	payload := map[string]interface{}{
		"contents": []map[string]interface{}{
			{"role": "user", "parts": []map[string]string{{"text": prompt}}},
		},
		"safetySettings": safety,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewBuffer(body))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.ApiKey)

	resp, err := g.HTTPClient.Do(req)
	if err != nil {
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return 0, nil, fmt.Errorf("gemini request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response: %w", err)
	}
	return resp.StatusCode, respBody, nil
}

// ExtractText pulls the first candidate's text out of a generateContent body.
// When there is no text the finish reason (or prompt block reason) is returned.
func ExtractText(body []byte) (text string, finishReason string, err error) {
	var result struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
			FinishReason string `json:"finishReason"`
		} `json:"candidates"`
		PromptFeedback struct {
			BlockReason string `json:"blockReason"`
		} `json:"promptFeedback"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", "", fmt.Errorf("failed to parse gemini response: %w", err)
	}

	if len(result.Candidates) == 0 {
		reason := result.PromptFeedback.BlockReason
		if reason == "" {
			reason = "UNKNOWN"
		}
		return "", reason, nil
	}

	cand := result.Candidates[0]
	var sb strings.Builder
	for _, part := range cand.Content.Parts {
		sb.WriteString(part.Text)
	}
	return sb.String(), cand.FinishReason, nil
}

// ErrorMessage returns error.message from a provider error body, if present
func ErrorMessage(body []byte) string {
	var payload struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return payload.Error.Message
}
