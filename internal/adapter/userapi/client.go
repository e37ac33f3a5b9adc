package userapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	domain "user-view/internal/domain/user"
	pkgerrors "user-view/pkg/errors"
	"user-view/pkg/logger"
)

// maxBodyBytes caps how much of an upstream response is read
const maxBodyBytes = 1 << 20

// maxErrorBodyBytes caps how much of a non-2xx body is kept on a StatusError
const maxErrorBodyBytes = 512

// Client fetches the user record over HTTP.
// It issues a bare GET: no query parameters, no custom headers, no body.
type Client struct {
	http *http.Client
	url  string
	log  *zap.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithTimeout sets the HTTP client timeout. Zero or negative keeps the
// request unbounded, leaving cancellation to the caller's context.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying *http.Client entirely.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.http = hc
	}
}

// NewClient creates a new user endpoint client for the given URL.
func NewClient(url string, log *zap.Logger, opts ...ClientOption) *Client {
	c := &Client{
		http: &http.Client{},
		url:  url,
		log:  log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// URL returns the endpoint the client reads from.
func (c *Client) URL() string {
	return c.url
}

// FetchUser performs exactly one GET against the user endpoint.
// It returns (nil, nil) for a null, empty or falsy payload.
func (c *Client) FetchUser(ctx context.Context) (*domain.User, error) {
	log := logger.WithContext(ctx, c.log)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, pkgerrors.NewInternalError("failed to create request", err)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		log.Warn("user request failed", zap.String("url", c.url), zap.Error(err))
		return nil, pkgerrors.NewTransportError(c.url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		log.Warn("failed to read user response", zap.String("url", c.url), zap.Error(err))
		return nil, pkgerrors.NewTransportError(c.url, err)
	}

	log.Debug("user response received",
		zap.String("url", c.url),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(body)),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		if len(body) > maxErrorBodyBytes {
			body = body[:maxErrorBodyBytes]
		}
		return nil, pkgerrors.NewStatusError(resp.StatusCode, string(bytes.TrimSpace(body)))
	}

	return decodeUser(body)
}

// decodeUser turns a response body into a user.
// Objects decode to a user; null, empty and falsy scalars mean "no user";
// anything else is a DecodeError.
func decodeUser(body []byte) (*domain.User, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, nil
	}

	if trimmed[0] == '{' {
		var u domain.User
		if err := json.Unmarshal(trimmed, &u); err != nil {
			return nil, pkgerrors.NewDecodeError(err)
		}
		return &u, nil
	}

	var v any
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return nil, pkgerrors.NewDecodeError(err)
	}
	if isFalsy(v) {
		return nil, nil
	}
	return nil, pkgerrors.NewDecodeError(fmt.Errorf("expected a JSON object, got %T", v))
}

// isFalsy mirrors JSON values that carry no user: null, false, 0 and "".
func isFalsy(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case bool:
		return !t
	case float64:
		return t == 0
	case string:
		return t == ""
	default:
		return false
	}
}
