package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"bizpulse/internal/config"
	apierrors "bizpulse/internal/errors"
)

// ContextProvider supplies the dataset description included in every
// question-answering prompt.
type ContextProvider interface {
	AnalysisContext() (string, error)
}

// Answer is a question-answering result.
type Answer struct {
	Answer   string `json:"answer"`
	Provider string `json:"provider"`
	Model    string `json:"model"`
}

// QAService answers natural-language questions about the loaded dataset
// by calling an external language model. Gemini is the primary provider;
// OpenAI is the fallback when Gemini is unconfigured or fails.
type QAService struct {
	cfg      config.QAConfig
	client   *http.Client
	provider ContextProvider
	logger   *slog.Logger
}

// NewQAService creates a question-answering service.
func NewQAService(cfg config.QAConfig, provider ContextProvider, logger *slog.Logger) *QAService {
	if logger == nil {
		logger = slog.Default()
	}
	return &QAService{
		cfg:      cfg,
		client:   &http.Client{Timeout: cfg.RequestTimeout},
		provider: provider,
		logger:   logger.With(slog.String("component", "qa_service")),
	}
}

// Available reports whether at least one provider has an API key.
func (s *QAService) Available() bool {
	return s.cfg.GeminiAPIKey != "" || s.cfg.OpenAIAPIKey != ""
}

// Ask answers a question about the current dataset.
func (s *QAService) Ask(ctx context.Context, question string) (*Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, apierrors.ErrValidation("question", "question must not be empty")
	}
	if !s.Available() {
		return nil, apierrors.QAUnavailableError("no question-answering provider is configured")
	}

	datasetContext, err := s.provider.AnalysisContext()
	if err != nil {
		return nil, err
	}
	prompt := buildPrompt(datasetContext, question)

	var lastErr error
	if s.cfg.GeminiAPIKey != "" {
		answer, err := s.askGemini(ctx, prompt)
		if err == nil {
			return answer, nil
		}
		lastErr = err
		s.logger.WarnContext(ctx, "gemini request failed, trying fallback",
			slog.String("error", err.Error()))
	}

	if s.cfg.OpenAIAPIKey != "" {
		answer, err := s.askOpenAI(ctx, prompt)
		if err == nil {
			return answer, nil
		}
		lastErr = err
		s.logger.ErrorContext(ctx, "openai request failed",
			slog.String("error", err.Error()))
	}

	return nil, apierrors.QAUnavailableError(fmt.Sprintf("all providers failed: %v", lastErr))
}

func buildPrompt(datasetContext, question string) string {
	var b strings.Builder
	b.WriteString("You are a sales analyst answering questions about a B2B sales dataset.\n")
	b.WriteString("Answer concisely in the language of the question. Base every number on the data below.\n\n")
	b.WriteString(datasetContext)
	b.WriteString("\nQuestion: ")
	b.WriteString(question)
	return b.String()
}

// Gemini generateContent request and response shapes.

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (s *QAService) askGemini(ctx context.Context, prompt string) (*Answer, error) {
	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		strings.TrimSuffix(s.cfg.GeminiBaseURL, "/"), s.cfg.GeminiModel, s.cfg.GeminiAPIKey)

	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode gemini request: %w", err)
	}

	respBody, err := s.post(ctx, url, nil, body)
	if err != nil {
		return nil, err
	}

	var resp geminiResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode gemini response: %w", err)
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("gemini error: %s", resp.Error.Message)
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("gemini returned no candidates")
	}

	return &Answer{
		Answer:   strings.TrimSpace(resp.Candidates[0].Content.Parts[0].Text),
		Provider: "gemini",
		Model:    s.cfg.GeminiModel,
	}, nil
}

// OpenAI chat completion request and response shapes.

type openAIRequest struct {
	Model    string          `json:"model"`
	Messages []openAIMessage `json:"messages"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIResponse struct {
	Choices []struct {
		Message openAIMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (s *QAService) askOpenAI(ctx context.Context, prompt string) (*Answer, error) {
	url := strings.TrimSuffix(s.cfg.OpenAIBaseURL, "/") + "/chat/completions"

	body, err := json.Marshal(openAIRequest{
		Model:    s.cfg.OpenAIModel,
		Messages: []openAIMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode openai request: %w", err)
	}

	headers := map[string]string{
		"Authorization": "Bearer " + s.cfg.OpenAIAPIKey,
	}
	respBody, err := s.post(ctx, url, headers, body)
	if err != nil {
		return nil, err
	}

	var resp openAIResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode openai response: %w", err)
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("openai error: %s", resp.Error.Message)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai returned no choices")
	}

	return &Answer{
		Answer:   strings.TrimSpace(resp.Choices[0].Message.Content),
		Provider: "openai",
		Model:    s.cfg.OpenAIModel,
	}, nil
}

func (s *QAService) post(ctx context.Context, url string, headers map[string]string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("provider returned status %d: %s", resp.StatusCode, truncate(string(respBody), 300))
	}
	return respBody, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
