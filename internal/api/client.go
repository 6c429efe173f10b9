// Package api talks to the ConstructSync REST API. Every call goes through
// Client.Request, which attaches credentials, encodes JSON bodies and turns
// non-2xx responses into *errors.RequestError.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	apperrors "github.com/constructsync/dashboard/internal/errors"
	"github.com/constructsync/dashboard/internal/logger"
)

// Client is the HTTP Request Helper.
type Client struct {
	http *resty.Client
}

type Option func(*resty.Client)

// WithTimeout bounds each request.
func WithTimeout(d time.Duration) Option {
	return func(c *resty.Client) {
		if d > 0 {
			c.SetTimeout(d)
		}
	}
}

// WithSessionCookie seeds the cookie jar with a "name=value" session cookie.
func WithSessionCookie(raw string) Option {
	return func(c *resty.Client) {
		name, value, ok := strings.Cut(strings.TrimSpace(raw), "=")
		if !ok || name == "" {
			return
		}
		c.SetCookie(&http.Cookie{Name: name, Value: value, Path: "/"})
	}
}

// WithTransport replaces the underlying round tripper.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *resty.Client) {
		c.SetTransport(rt)
	}
}

// New creates a client for the API served at baseURL.
func New(baseURL string, opts ...Option) *Client {
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(30*time.Second).
		SetHeader("Accept", "application/json").
		SetLogger(logger.New().WithField("component", "api").Entry)

	for _, opt := range opts {
		opt(client)
	}

	return &Client{http: client}
}

// Request issues method against path. A non-nil body is sent as JSON. When the
// response is JSON it is decoded into out; otherwise, if out is a *string, the
// raw text is stored there.
func (c *Client) Request(ctx context.Context, method, path string, body, out interface{}) error {
	log := logger.WithContext(ctx).WithFields(map[string]interface{}{
		"method": method,
		"path":   path,
	})

	req := c.http.R().
		SetContext(ctx).
		SetHeader("X-Request-ID", uuid.NewString())
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}

	started := time.Now()
	resp, err := req.Execute(method, path)
	if err != nil {
		log.Warnf("API request failed: %v", err)
		return &apperrors.NetworkError{Method: method, Path: path, Err: err}
	}

	log = log.WithFields(map[string]interface{}{
		"status":   resp.StatusCode(),
		"duration": time.Since(started).String(),
	})

	raw := resp.Body()
	if !resp.IsSuccess() {
		msg := errorMessage(raw, resp.Status())
		log.Warnf("API request returned error: %s", msg)
		return &apperrors.RequestError{
			Method:  method,
			Path:    path,
			Status:  resp.StatusCode(),
			Message: msg,
		}
	}
	log.Debug("API request completed")

	if out == nil || len(raw) == 0 {
		return nil
	}

	if isJSON(resp.Header().Get("Content-Type")) {
		if err := json.Unmarshal(raw, out); err != nil {
			return apperrors.NewValidationError(path, "malformed JSON response: "+err.Error())
		}
		return nil
	}

	if text, ok := out.(*string); ok {
		*text = string(raw)
	}
	return nil
}

func isJSON(contentType string) bool {
	return strings.Contains(strings.ToLower(contentType), "json")
}

// errorMessage picks the most useful description of a failed response: the
// body's message, then its error, then the raw text, then the status line.
func errorMessage(raw []byte, status string) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}

	if text := strings.TrimSpace(string(raw)); text != "" && !strings.HasPrefix(text, "{") {
		return text
	}

	if status == "" {
		return "request failed"
	}
	return status
}
