package terminal

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/jafarshop/shopgateway/internal/config"
	"github.com/jafarshop/shopgateway/pkg/errors"
)

// maxResponseBytes bounds how much of an upstream body is read.
const maxResponseBytes = 4 << 20

type Client struct {
	baseURL     string
	bearerToken string
	timeout     time.Duration
	retry       RetryPolicy
	limiter     *rate.Limiter
	httpClient  *http.Client
	logger      *zap.Logger
}

// NewClient creates a new Terminal REST client
func NewClient(cfg config.TerminalConfig, logger *zap.Logger) *Client {
	// Normalize base URL - drop trailing slashes so paths can be appended
	baseURL := strings.TrimSuffix(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = config.DefaultTerminalBaseURL
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	return &Client{
		baseURL:     baseURL,
		bearerToken: cfg.BearerToken,
		timeout:     timeout,
		retry:       NewRetryPolicy(cfg.MaxAttempts, cfg.RetryBase, cfg.RetryMax),
		limiter:     limiter,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// envelope is the wrapper every successful upstream response uses
type envelope struct {
	Data json.RawMessage `json:"data"`
}

// Call performs one logical request against the upstream API and decodes the
// envelope's data field into out. A nil out discards the payload.
//
// GET requests are retried on transient failures. Mutating requests are sent
// once unless the context carries an idempotency key.
func (c *Client) Call(ctx context.Context, method, path string, body, out interface{}) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
	}

	idempotencyKey := IdempotencyKeyFrom(ctx)
	attempts := 1
	if method == http.MethodGet || idempotencyKey != "" {
		attempts = c.retry.MaxAttempts
	}

	var lastErr *errors.TransportError
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			delay := c.retry.Backoff(attempt)
			c.logger.Warn("Retrying upstream request",
				zap.String("method", method),
				zap.String("path", path),
				zap.Int("attempt", attempt+1),
				zap.Duration("delay", delay),
				zap.Error(lastErr),
			)
			if err := sleep(ctx, delay); err != nil {
				return contextError(method, path, err)
			}
		}

		err := c.do(ctx, method, path, payload, idempotencyKey, out)
		if err == nil {
			return nil
		}
		lastErr = err
		if !err.Temporary() || ctx.Err() != nil {
			break
		}
	}

	c.logger.Debug("Upstream request failed",
		zap.String("method", method),
		zap.String("path", path),
		zap.String("reason", string(lastErr.Reason)),
		zap.Int("status", lastErr.StatusCode),
	)
	return lastErr
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte, idempotencyKey string, out interface{}) *errors.TransportError {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				return contextError(method, path, ctx.Err())
			}
			return &errors.TransportError{Reason: errors.ReasonNetwork, Method: method, Path: path, Message: err.Error(), Err: err}
		}
	}

	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(attemptCtx, method, c.baseURL+path, reader)
	if err != nil {
		return &errors.TransportError{Reason: errors.ReasonNetwork, Method: method, Path: path, Message: "failed to create request", Err: err}
	}

	req.Header.Set("Authorization", "Bearer "+c.bearerToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if idempotencyKey != "" {
		req.Header.Set(IdempotencyHeader, idempotencyKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return classify(ctx, attemptCtx, method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return classify(ctx, attemptCtx, method, path, err)
	}

	c.logger.Debug("Upstream response",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &errors.TransportError{
			Reason:     errors.ReasonStatus,
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Message:    upstreamMessage(resp.StatusCode, body),
		}
	}

	if out == nil {
		return nil
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return &errors.TransportError{Reason: errors.ReasonDecode, Method: method, Path: path, Message: "failed to unmarshal response", Err: err}
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return &errors.TransportError{Reason: errors.ReasonDecode, Method: method, Path: path, Message: "response has no data"}
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return &errors.TransportError{Reason: errors.ReasonDecode, Method: method, Path: path, Message: "failed to unmarshal data", Err: err}
	}

	return nil
}

// classify turns a failed round trip into a TransportError, separating
// caller cancellation from per-attempt timeouts and plain network failures.
func classify(parent, attempt context.Context, method, path string, err error) *errors.TransportError {
	if parent.Err() != nil {
		return contextError(method, path, parent.Err())
	}

	var netErr net.Error
	if stderrors.Is(attempt.Err(), context.DeadlineExceeded) || (stderrors.As(err, &netErr) && netErr.Timeout()) {
		return &errors.TransportError{Reason: errors.ReasonTimeout, Method: method, Path: path, Message: "request timed out", Err: err}
	}

	return &errors.TransportError{Reason: errors.ReasonNetwork, Method: method, Path: path, Message: err.Error(), Err: err}
}

func contextError(method, path string, err error) *errors.TransportError {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return &errors.TransportError{Reason: errors.ReasonTimeout, Method: method, Path: path, Message: "deadline exceeded", Err: err}
	}
	return &errors.TransportError{Reason: errors.ReasonCancelled, Method: method, Path: path, Message: "request cancelled", Err: err}
}

// upstreamMessage pulls a readable message out of an error body
func upstreamMessage(status int, body []byte) string {
	var parsed struct {
		Message string          `json:"message"`
		Error   json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil {
		if parsed.Message != "" {
			return parsed.Message
		}
		if len(parsed.Error) > 0 {
			var text string
			if err := json.Unmarshal(parsed.Error, &text); err == nil && text != "" {
				return text
			}
			var nested struct {
				Message string `json:"message"`
			}
			if err := json.Unmarshal(parsed.Error, &nested); err == nil && nested.Message != "" {
				return nested.Message
			}
		}
	}

	text := strings.TrimSpace(string(body))
	if text == "" {
		return http.StatusText(status)
	}
	if len(text) > 200 {
		text = text[:200] + "..."
	}
	return text
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
