// Package client is the JSON/bearer-token client of the warehouse REST API. Error
// responses are decoded back into *internal.AppError so callers can branch on
// status and code exactly as the server produced them.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	apperrors "github.com/frahmantamala/warehouse-management/internal"
)

// ErrUnavailable wraps transport failures: refused connections, timeouts, bad bodies.
var ErrUnavailable = &apperrors.AppError{
	Type:    apperrors.ErrorTypeExternal,
	Code:    apperrors.ErrCodeRemoteUnavailable,
	Message: "warehouse service unavailable",
}

type Config struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
}

type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger

	mu    sync.RWMutex
	token string
}

func New(cfg Config, logger *slog.Logger) *Client {
	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    hc,
		logger:  logger,
	}
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Do sends in as JSON (when non-nil) and decodes a 2xx body into out (when non-nil).
func (c *Client) Do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("request failed", "method", method, "path", path, "error", err)
		return ErrUnavailable.WithCause(err)
	}
	defer resp.Body.Close()

	c.logger.Debug("request done",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return ErrUnavailable.WithMessage("unreadable response from warehouse service").WithCause(err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	var envelope struct {
		Error *apperrors.AppError `json:"error"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil || envelope.Error == nil || envelope.Error.Message == "" {
		return apperrors.NewErrorFromStatus(resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	envelope.Error.StatusCode = resp.StatusCode
	return envelope.Error
}

// StatusOf returns the HTTP status carried by err, or 0 for transport failures.
func StatusOf(err error) int {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}
	return 0
}
