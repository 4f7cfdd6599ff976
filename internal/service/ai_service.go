package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"study_plan_backend/internal/config"
	"study_plan_backend/internal/util"
	"study_plan_backend/pkg/logger"
	"study_plan_backend/pkg/monitoring"
	"study_plan_backend/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// 响应体读取上限，防止异常服务商返回超大内容
const maxResponseBytes = 8 << 20

type AIChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type ChatCompletionRequest struct {
	Model          string          `json:"model"`
	Messages       []AIChatMessage `json:"messages"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type ChatCompletionResponse struct {
	Choices []struct {
		Message AIChatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// ProviderError 单个服务商在用尽重试次数后的失败
type ProviderError struct {
	Provider   string
	Attempts   int
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("provider %s failed after %d attempt(s) (status %d): %v", e.Provider, e.Attempts, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("provider %s failed after %d attempt(s): %v", e.Provider, e.Attempts, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// IsTimeout 超时或调用方取消
func (e *ProviderError) IsTimeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) || errors.Is(e.Err, context.Canceled) {
		return true
	}
	var netErr net.Error
	return errors.As(e.Err, &netErr) && netErr.Timeout()
}

// ProviderClient 对单个服务商发起一次带超时和重试的调用
type ProviderClient interface {
	Call(ctx context.Context, provider config.ProviderConfig, messages []AIChatMessage) (string, error)
}

type AIService struct {
	client      *http.Client
	credentials config.CredentialProvider
}

func NewAIService(credentials config.CredentialProvider) *AIService {
	return &AIService{
		client:      &http.Client{},
		credentials: credentials,
	}
}

// Call 依次尝试 1..MaxAttempts 次，第 n 次失败后等待 n*RetryDelay 再重试。
// 传输错误、非 2xx、超时以及缺少 choices[0].message.content 的响应都视为失败。
func (s *AIService) Call(ctx context.Context, provider config.ProviderConfig, messages []AIChatMessage) (string, error) {
	apiKey, err := s.credentials.Credential(provider)
	if err != nil {
		return "", &ProviderError{Provider: provider.Name, Err: err}
	}

	body, err := json.Marshal(newChatRequest(provider, messages))
	if err != nil {
		return "", &ProviderError{Provider: provider.Name, Err: err}
	}

	ctx, span := tracing.Start(ctx, "ai.provider.call")
	span.SetAttributes(attribute.String("ai.provider", provider.Name), attribute.String("ai.model", provider.Model))
	defer span.End()

	maxAttempts := provider.Attempts()
	var (
		lastErr    error
		lastStatus int
		attempts   int
	)
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		attempts = attempt
		text, status, err := s.attempt(ctx, provider, apiKey, body)
		if err == nil {
			monitoring.ProviderAttempts.WithLabelValues(provider.Name, "success").Inc()
			span.SetAttributes(attribute.Int("ai.attempts", attempt))
			return text, nil
		}

		lastErr, lastStatus = err, status
		monitoring.ProviderAttempts.WithLabelValues(provider.Name, attemptOutcome(err)).Inc()
		logger.Log.Warn("AI服务调用失败",
			zap.String("provider", provider.Name),
			zap.Int("attempt", attempt),
			zap.Int("maxAttempts", maxAttempts),
			zap.Int("status", status),
			zap.Error(err))

		if ctx.Err() != nil || attempt == maxAttempts {
			break
		}
		if err := sleepContext(ctx, time.Duration(attempt)*provider.RetryDelay()); err != nil {
			lastErr = err
			break
		}
	}

	perr := &ProviderError{Provider: provider.Name, Attempts: attempts, StatusCode: lastStatus, Err: lastErr}
	span.RecordError(perr)
	span.SetStatus(codes.Error, "provider exhausted")
	return "", perr
}

func (s *AIService) attempt(ctx context.Context, provider config.ProviderConfig, apiKey string, body []byte) (string, int, error) {
	ctx, cancel := context.WithTimeout(ctx, provider.Timeout())
	defer cancel()

	start := time.Now()
	defer func() {
		monitoring.ProviderDuration.WithLabelValues(provider.Name).Observe(time.Since(start).Seconds())
	}()

	url := strings.TrimRight(provider.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", 0, err
	}
	req.Header.Set("Content-Type", util.MimeJSON)
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %w", util.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", resp.StatusCode, fmt.Errorf("%w: read body: %w", util.ErrProviderUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", resp.StatusCode, fmt.Errorf("%w: %s", util.ErrProviderStatus, truncate(string(data), 512))
	}

	var result ChatCompletionResponse
	if err := json.Unmarshal(data, &result); err != nil {
		return "", resp.StatusCode, fmt.Errorf("%w: %w", util.ErrProviderEnvelope, err)
	}
	if len(result.Choices) == 0 || result.Choices[0].Message.Content == "" {
		if result.Error != nil {
			return "", resp.StatusCode, fmt.Errorf("%w: %s", util.ErrProviderEnvelope, result.Error.Message)
		}
		return "", resp.StatusCode, fmt.Errorf("%w: no choices[0].message.content", util.ErrProviderEnvelope)
	}

	return result.Choices[0].Message.Content, resp.StatusCode, nil
}

func newChatRequest(provider config.ProviderConfig, messages []AIChatMessage) ChatCompletionRequest {
	maxTokens := provider.MaxTokens
	if maxTokens <= 0 {
		maxTokens = config.DefaultMaxTokens
	}
	temperature := provider.Temperature
	if temperature <= 0 {
		temperature = config.DefaultTemperature
	}
	req := ChatCompletionRequest{
		Model:       provider.Model,
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}
	if provider.ResponseFormat != "" {
		req.ResponseFormat = &responseFormat{Type: provider.ResponseFormat}
	}
	return req
}

func attemptOutcome(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return "timeout"
	case errors.Is(err, util.ErrProviderStatus):
		return "status"
	case errors.Is(err, util.ErrProviderEnvelope):
		return "envelope"
	default:
		return "transport"
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
