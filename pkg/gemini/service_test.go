package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateRaw_PassesBodyThrough(t *testing.T) {
	const reply = `{"candidates":[{"content":{"parts":[{"text":"こんにちは"}]},"finishReason":"STOP"}]}`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/gemini-2.0-flash:generateContent", r.URL.Path)
		assert.Empty(t, r.URL.RawQuery)
		assert.Equal(t, "k", r.Header.Get("x-goog-api-key"))

		var body struct {
			Contents []struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"contents"`
			SafetySettings []struct {
				Category  string `json:"category"`
				Threshold string `json:"threshold"`
			} `json:"safetySettings"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "hi", body.Contents[0].Parts[0].Text)
		assert.Len(t, body.SafetySettings, 4)
		for _, s := range body.SafetySettings {
			assert.Equal(t, "BLOCK_NONE", s.Threshold)
		}
		_, _ = w.Write([]byte(reply))
	}))
	defer srv.Close()

	svc := NewGeminiService("k", "")
	svc.BaseURL = srv.URL

	status, body, err := svc.GenerateRaw(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, reply, string(body))

	text, reason, err := ExtractText(body)
	require.NoError(t, err)
	assert.Equal(t, "こんにちは", text)
	assert.Equal(t, "STOP", reason)
}

func TestGenerateRaw_ProviderErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"code":429,"message":"Resource has been exhausted"}}`))
	}))
	defer srv.Close()

	svc := NewGeminiService("k", "m")
	svc.BaseURL = srv.URL

	status, body, err := svc.GenerateRaw(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, http.StatusTooManyRequests, status)
	assert.Equal(t, "Resource has been exhausted", ErrorMessage(body))
}

func TestGenerateRaw_TransportErrorHidesKey(t *testing.T) {
	svc := NewGeminiService("SECRET-API-KEY-123", "m")
	svc.BaseURL = "http://127.0.0.1:1"

	_, _, err := svc.GenerateRaw(context.Background(), "hi")
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "SECRET-API-KEY-123")
	assert.NotContains(t, err.Error(), "127.0.0.1:1/models")
}

func TestExtractText_Blocked(t *testing.T) {
	text, reason, err := ExtractText([]byte(`{"promptFeedback":{"blockReason":"SAFETY"}}`))
	require.NoError(t, err)
	assert.Empty(t, text)
	assert.Equal(t, "SAFETY", reason)

	text, reason, err = ExtractText([]byte(`{"candidates":[{"finishReason":"MAX_TOKENS","content":{}}]}`))
	require.NoError(t, err)
	assert.Empty(t, text)
	assert.Equal(t, "MAX_TOKENS", reason)

	_, _, err = ExtractText([]byte(`not json`))
	assert.Error(t, err)
}
