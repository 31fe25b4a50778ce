package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/krishanki/PhonePixie/internal/config"
	"github.com/krishanki/PhonePixie/internal/middleware"
	"github.com/krishanki/PhonePixie/internal/services/cache"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

var (
	// ErrNotConfigured is returned when no endpoint or key is set
	ErrNotConfigured = errors.New("generation endpoint not configured")
	// ErrThrottled is returned when the process-wide call budget is spent
	ErrThrottled = errors.New("generation throttled")
	// ErrEmptyResponse is returned when the endpoint answers with no text
	ErrEmptyResponse = errors.New("empty response from model")
)

const maxErrorBody = 512

// Generator turns a prompt and system instructions into text. Output is
// untrusted and must be validated by the caller.
type Generator interface {
	Generate(ctx context.Context, prompt, system string) (string, error)
}

// Client talks to an OpenAI-compatible chat completions endpoint.
// Calls are never retried.
type Client struct {
	cfg        config.GenerationConfig
	httpClient *http.Client
	limiter    *rate.Limiter
	cache      cache.Service
	metrics    *middleware.Metrics
	logger     *logrus.Logger
}

// NewClient creates a generation client. cache and metrics may be nil.
func NewClient(cfg config.GenerationConfig, cache cache.Service, metrics *middleware.Metrics, logger *logrus.Logger) *Client {
	rps := float64(cfg.RequestsPerMinute) / 60.0
	limiter := rate.NewLimiter(rate.Limit(rps), cfg.Burst)
	if cfg.RequestsPerMinute <= 0 {
		limiter = rate.NewLimiter(rate.Inf, 0)
	}

	logger.WithFields(logrus.Fields{
		"model":   cfg.Model,
		"enabled": cfg.GenerationEnabled(),
	}).Info("Generation client initialized")

	return &Client{
		cfg: cfg,
		// per-call deadlines come from the request context
		httpClient: &http.Client{},
		limiter:    limiter,
		cache:      cache,
		metrics:    metrics,
		logger:     logger,
	}
}

// Generate runs one completion. The call is detached from ctx cancellation
// so a disconnecting client does not abort it, but an earlier ctx deadline
// still bounds it.
func (c *Client) Generate(ctx context.Context, prompt, system string) (string, error) {
	if !c.cfg.GenerationEnabled() {
		return "", ErrNotConfigured
	}

	if c.cache != nil {
		if text, ok := c.cache.Get(ctx, c.cfg.Model, system, prompt); ok {
			c.metrics.RecordCacheHit()
			return text, nil
		}
		c.metrics.RecordCacheMiss()
	}

	if !c.limiter.Allow() {
		c.metrics.RecordAIRequest(c.cfg.Model, "throttled", 0)
		return "", ErrThrottled
	}

	timeout := c.cfg.Timeout
	if deadline, ok := ctx.Deadline(); ok {
		left := time.Until(deadline)
		if left <= 0 {
			return "", context.DeadlineExceeded
		}
		if timeout <= 0 || left < timeout {
			timeout = left
		}
	}
	reqCtx := context.WithoutCancel(ctx)
	if timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(reqCtx, timeout)
		defer cancel()
	}

	start := time.Now()
	text, err := c.complete(reqCtx, prompt, system)
	duration := time.Since(start)
	if err != nil {
		c.metrics.RecordAIRequest(c.cfg.Model, "error", duration)
		c.logger.WithError(err).WithFields(logrus.Fields{
			"model":    c.cfg.Model,
			"duration": duration,
		}).Warn("Generation request failed")
		return "", err
	}
	c.metrics.RecordAIRequest(c.cfg.Model, "ok", duration)

	if c.cache != nil {
		c.cache.Set(ctx, c.cfg.Model, system, prompt, text)
	}
	return text, nil
}

func (c *Client) complete(ctx context.Context, prompt, system string) (string, error) {
	messages := make([]map[string]string, 0, 2)
	if system != "" {
		messages = append(messages, map[string]string{"role": "system", "content": system})
	}
	messages = append(messages, map[string]string{"role": "user", "content": prompt})

	reqBody := map[string]interface{}{
		"model":       c.cfg.Model,
		"messages":    messages,
		"temperature": c.cfg.Temperature,
	}
	if c.cfg.MaxTokens > 0 {
		reqBody["max_tokens"] = c.cfg.MaxTokens
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/chat/completions", strings.TrimSuffix(c.cfg.BaseURL, "/"))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.cfg.APIKey))

	c.logger.WithFields(logrus.Fields{
		"model": c.cfg.Model,
		"url":   url,
	}).Debug("Sending generation request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		snippet := string(body)
		if len(snippet) > maxErrorBody {
			snippet = snippet[:maxErrorBody]
		}
		return "", fmt.Errorf("generation request failed with status %d: %s", resp.StatusCode, snippet)
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}

	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	if result.Error.Message != "" {
		return "", fmt.Errorf("generation error: %s", result.Error.Message)
	}

	if len(result.Choices) == 0 || strings.TrimSpace(result.Choices[0].Message.Content) == "" {
		return "", ErrEmptyResponse
	}

	return result.Choices[0].Message.Content, nil
}
