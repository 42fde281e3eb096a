package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bizpulse/internal/config"
	apierrors "bizpulse/internal/errors"
)

type staticContext string

func (s staticContext) AnalysisContext() (string, error) { return string(s), nil }

func qaConfig() config.QAConfig {
	cfg := config.Default().QA
	return cfg
}

func TestAskWithoutProviders(t *testing.T) {
	svc := NewQAService(qaConfig(), staticContext("ctx"), testLogger())
	assert.False(t, svc.Available())

	_, err := svc.Ask(context.Background(), "총 매출은?")
	require.Error(t, err)
	var apiErr *apierrors.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "QA_UNAVAILABLE", apiErr.ErrorCode)
}

func TestAskRejectsEmptyQuestion(t *testing.T) {
	cfg := qaConfig()
	cfg.GeminiAPIKey = "key"
	svc := NewQAService(cfg, staticContext("ctx"), testLogger())

	_, err := svc.Ask(context.Background(), "   ")
	require.Error(t, err)
	var apiErr *apierrors.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "VALIDATION_FAILED", apiErr.ErrorCode)
}

func TestAskGemini(t *testing.T) {
	var gotPrompt string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "gemini-2.5-flash")
		assert.Equal(t, "secret", r.URL.Query().Get("key"))

		var req geminiRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		gotPrompt = req.Contents[0].Parts[0].Text

		json.NewEncoder(w).Encode(map[string]interface{}{
			"candidates": []map[string]interface{}{
				{"content": map[string]interface{}{
					"parts": []map[string]string{{"text": "총 매출은 2,500,000원입니다."}},
				}},
			},
		})
	}))
	defer server.Close()

	cfg := qaConfig()
	cfg.GeminiAPIKey = "secret"
	cfg.GeminiBaseURL = server.URL
	svc := NewQAService(cfg, staticContext("Dataset summary: rows 4"), testLogger())

	answer, err := svc.Ask(context.Background(), "총 매출은?")
	require.NoError(t, err)
	assert.Equal(t, "gemini", answer.Provider)
	assert.Equal(t, "총 매출은 2,500,000원입니다.", answer.Answer)
	assert.Contains(t, gotPrompt, "Dataset summary: rows 4")
	assert.Contains(t, gotPrompt, "총 매출은?")
}

func TestAskFallsBackToOpenAI(t *testing.T) {
	gemini := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer gemini.Close()

	openai := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": "fallback answer"}},
			},
		})
	}))
	defer openai.Close()

	cfg := qaConfig()
	cfg.GeminiAPIKey = "secret"
	cfg.GeminiBaseURL = gemini.URL
	cfg.OpenAIAPIKey = "sk-test"
	cfg.OpenAIBaseURL = openai.URL
	svc := NewQAService(cfg, staticContext("ctx"), testLogger())

	answer, err := svc.Ask(context.Background(), "question")
	require.NoError(t, err)
	assert.Equal(t, "openai", answer.Provider)
	assert.Equal(t, "fallback answer", answer.Answer)
}

func TestAskAllProvidersFail(t *testing.T) {
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer down.Close()

	cfg := qaConfig()
	cfg.GeminiAPIKey = "secret"
	cfg.GeminiBaseURL = down.URL
	cfg.OpenAIAPIKey = "sk-test"
	cfg.OpenAIBaseURL = down.URL
	svc := NewQAService(cfg, staticContext("ctx"), testLogger())

	_, err := svc.Ask(context.Background(), "question")
	require.Error(t, err)
	var apiErr *apierrors.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "QA_UNAVAILABLE", apiErr.ErrorCode)
}
