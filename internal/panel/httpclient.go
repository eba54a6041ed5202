package panel

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/meshguard/panelctl/internal/log"
)

// LoggingHTTPClient wraps an HTTP client to add trace logging
type LoggingHTTPClient struct {
	wrapped *http.Client
	logger  *slog.Logger
}

// NewLoggingHTTPClientWithClient wraps an existing HTTP client
func NewLoggingHTTPClientWithClient(client *http.Client, logger *slog.Logger) *LoggingHTTPClient {
	return &LoggingHTTPClient{
		wrapped: client,
		logger:  logger,
	}
}

// Do implements the HTTPClient interface with logging. Every outgoing
// request gets an X-Request-ID so panel-side logs can be correlated with
// trace output.
func (c *LoggingHTTPClient) Do(req *http.Request) (*http.Response, error) {
	if req.Header.Get("X-Request-ID") == "" {
		req.Header.Set("X-Request-ID", uuid.NewString())
	}

	// Only log if trace level is enabled
	if !c.logger.Enabled(req.Context(), log.LevelTrace) {
		return c.wrapped.Do(req)
	}

	start := time.Now()

	c.logRequest(req)

	resp, err := c.wrapped.Do(req)

	duration := time.Since(start)
	if err != nil {
		c.logger.LogAttrs(req.Context(), log.LevelTrace, "HTTP request failed",
			slog.String("method", req.Method),
			slog.String("url", req.URL.String()),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	c.logResponse(resp, duration)

	return resp, nil
}

// credentialHeaders are the panel's auth surfaces: the admin bearer token,
// session cookies either direction, and the per-user subscription token
// the panel hands out on user endpoints.
var credentialHeaders = map[string]bool{
	"authorization":       true,
	"proxy-authorization": true,
	"cookie":              true,
	"set-cookie":          true,
	"x-api-key":           true,
}

func redactHeader(key string) bool {
	k := strings.ToLower(key)
	return credentialHeaders[k] ||
		strings.Contains(k, "token") ||
		strings.Contains(k, "subscription")
}

func headerAttr(h http.Header) slog.Attr {
	headers := make(map[string]string, len(h))
	for k, v := range h {
		if redactHeader(k) {
			headers[k] = "[REDACTED]"
		} else {
			headers[k] = strings.Join(v, ", ")
		}
	}
	return slog.Any("headers", headers)
}

func (c *LoggingHTTPClient) logRequest(req *http.Request) {
	attrs := []slog.Attr{
		slog.String("method", req.Method),
		slog.String("url", req.URL.String()),
		slog.String("host", req.Host),
		headerAttr(req.Header),
	}

	if req.Body != nil && req.ContentLength > 0 {
		attrs = append(attrs, slog.Int64("content_length", req.ContentLength))
	}

	c.logger.LogAttrs(req.Context(), log.LevelTrace, "HTTP request", attrs...)
}

func (c *LoggingHTTPClient) logResponse(resp *http.Response, duration time.Duration) {
	attrs := []slog.Attr{
		slog.Int("status", resp.StatusCode),
		slog.String("status_text", resp.Status),
		slog.Duration("duration", duration),
		headerAttr(resp.Header),
	}

	if resp.ContentLength > 0 {
		attrs = append(attrs, slog.Int64("content_length", resp.ContentLength))
	}

	// For trace logging of error responses, try to read and log the body
	if resp.StatusCode >= 400 && c.logger.Enabled(resp.Request.Context(), log.LevelTrace) {
		body, err := c.peekResponseBody(resp)
		if err == nil && len(body) > 0 {
			maxLen := 1000
			if len(body) > maxLen {
				body = fmt.Sprintf("%s... [truncated, total %d bytes]", body[:maxLen], len(body))
			}
			attrs = append(attrs, slog.String("error_body", body))
		}
	}

	c.logger.LogAttrs(resp.Request.Context(), log.LevelTrace, "HTTP response", attrs...)
}

// peekResponseBody reads the response body without consuming it
func (c *LoggingHTTPClient) peekResponseBody(resp *http.Response) (string, error) {
	if resp.Body == nil {
		return "", nil
	}

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	// Restore the body for the caller to read
	resp.Body = io.NopCloser(bytes.NewReader(bodyBytes))

	return string(bodyBytes), nil
}
