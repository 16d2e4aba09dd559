// Package services provides business logic services for the quiz service.
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"quizgen/internal/config"
	"quizgen/internal/observability"
	contextutils "quizgen/internal/utils"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// CompletionServiceInterface is the single-turn completion contract used by
// quiz generation and feedback. Implementations may fail or return content
// that is not parseable; callers own the parsing.
type CompletionServiceInterface interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// CompletionService calls an OpenAI-compatible chat completions endpoint
type CompletionService struct {
	httpClient *http.Client
	cfg        *config.Config
	logger     *observability.Logger
}

// Ensure CompletionService implements the interface
var _ CompletionServiceInterface = (*CompletionService)(nil)

// NewCompletionService creates a new CompletionService instance
func NewCompletionService(cfg *config.Config, logger *observability.Logger) *CompletionService {
	httpClient := &http.Client{
		Timeout: config.CompletionRequestTimeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport,
			otelhttp.WithSpanOptions(trace.WithSpanKind(trace.SpanKindClient)),
		),
	}

	return &CompletionService{
		httpClient: httpClient,
		cfg:        cfg,
		logger:     logger,
	}
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Choices []chatChoice `json:"choices"`
	Error   *apiError    `json:"error,omitempty"`
}

type chatChoice struct {
	Message chatMessage `json:"message"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// Complete sends a single-turn completion request and returns the raw
// response text.
func (s *CompletionService) Complete(ctx context.Context, prompt string) (result0 string, err error) {
	ctx, span := observability.TraceCompletionFunction(ctx, "complete",
		attribute.String("completion.model", s.cfg.Completion.Model),
		attribute.Int("prompt.length", len(prompt)),
	)
	defer observability.FinishSpan(span, &err)

	if s.cfg.Completion.URL == "" {
		return "", contextutils.WrapError(contextutils.ErrCompletionConfigInvalid, "no completion endpoint configured")
	}
	if s.cfg.Completion.Model == "" {
		return "", contextutils.WrapError(contextutils.ErrCompletionConfigInvalid, "model is required")
	}
	if prompt == "" {
		return "", contextutils.WrapError(contextutils.ErrCompletionConfigInvalid, "prompt cannot be empty")
	}

	reqBody := chatCompletionRequest{
		Model:       s.cfg.Completion.Model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: config.CompletionTemperature,
		MaxTokens:   s.cfg.Completion.MaxTokens,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", contextutils.WrapErrorf(err, "failed to marshal request body")
	}

	url := s.cfg.Completion.URL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", contextutils.WrapErrorf(err, "failed to create HTTP request")
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "quizgen/1.0")
	if s.cfg.Completion.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.cfg.Completion.APIKey)
	}

	startTime := time.Now()
	resp, err := s.httpClient.Do(req)
	duration := time.Since(startTime)

	if err != nil {
		s.logger.Error(ctx, "Completion HTTP request failed", err, map[string]interface{}{
			"duration": duration.String(),
		})
		return "", contextutils.WrapErrorf(contextutils.ErrCompletionRequestFailed, "HTTP request failed after %v: %v", duration, err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			s.logger.Warn(ctx, "Failed to close response body", map[string]interface{}{
				"error": closeErr.Error(),
			})
		}
	}()

	s.logger.Info(ctx, "Completion request finished", map[string]interface{}{
		"duration":    duration.String(),
		"status_code": resp.StatusCode,
	})

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", contextutils.WrapErrorf(err, "failed to read response body")
	}

	if resp.StatusCode != http.StatusOK {
		return "", contextutils.WrapErrorf(contextutils.ErrCompletionRequestFailed, "API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var completionResp chatCompletionResponse
	if err := json.Unmarshal(body, &completionResp); err != nil {
		return "", contextutils.WrapErrorf(contextutils.ErrCompletionResponseInvalid, "failed to parse completion response: %v", err)
	}

	if completionResp.Error != nil {
		return "", contextutils.WrapErrorf(contextutils.ErrCompletionRequestFailed, "provider error: %s", completionResp.Error.Message)
	}

	if len(completionResp.Choices) == 0 {
		return "", contextutils.WrapError(contextutils.ErrCompletionResponseInvalid, "no choices in completion response")
	}

	content := completionResp.Choices[0].Message.Content
	if content == "" {
		return "", contextutils.WrapError(contextutils.ErrCompletionResponseInvalid, "completion returned empty content")
	}

	span.SetAttributes(attribute.Int("content_length", len(content)))
	return content, nil
}
