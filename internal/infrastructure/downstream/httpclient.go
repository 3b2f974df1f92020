package downstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	appCtx "github.com/baechuer/real-time-ressys/services/syndication-service/internal/pkg/context"
)

// ClientConfig holds configuration for the HTTP client wrapper
type ClientConfig struct {
	// ReadTimeout is used for GET requests
	ReadTimeout time.Duration
	// WriteTimeout is used for POST, PUT, PATCH, DELETE requests
	WriteTimeout time.Duration
}

// DefaultClientConfig returns sensible defaults for third-party APIs.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 15 * time.Second,
	}
}

// EnvelopeFunc extracts the human readable message from a platform's error body.
// It returns "" when the body is not in the platform's format.
type EnvelopeFunc func(body []byte) string

// Client is the outbound HTTP wrapper shared by every platform publisher:
// 1. Injects X-Request-Id from context
// 2. Enforces timeouts based on HTTP method (read vs write)
// 3. Turns non-2xx responses into *RemoteError
// 4. Logs requests with the platform name and correlation id
type Client struct {
	platform   string
	baseClient *http.Client
	config     ClientConfig
	envelope   EnvelopeFunc
	log        zerolog.Logger
}

// NewClient creates a client for one platform. A nil httpClient uses a fresh one.
func NewClient(platform string, httpClient *http.Client, config ClientConfig, envelope EnvelopeFunc) *Client {
	if httpClient == nil {
		// No global timeout - we set per-request timeouts
		httpClient = &http.Client{Timeout: 0}
	}
	if config.ReadTimeout <= 0 || config.WriteTimeout <= 0 {
		config = DefaultClientConfig()
	}
	return &Client{
		platform:   platform,
		baseClient: httpClient,
		config:     config,
		envelope:   envelope,
		log:        zlog.Logger.With().Str("component", "downstream").Str("platform", platform).Logger(),
	}
}

// Do executes req and returns the response body of a 2xx response.
func (c *Client) Do(ctx context.Context, req *http.Request) ([]byte, error) {
	if reqID := appCtx.GetRequestID(ctx); reqID != "" {
		req.Header.Set("X-Request-Id", reqID)
	}

	timeout := c.config.ReadTimeout
	if isWriteMethod(req.Method) {
		timeout = c.config.WriteTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	req = req.WithContext(ctx)

	log := c.log.With().
		Str("method", req.Method).
		Str("path", req.URL.Path).
		Str("request_id", appCtx.GetRequestID(ctx)).
		Logger()

	start := time.Now()
	resp, err := c.baseClient.Do(req)
	duration := time.Since(start)
	if err != nil {
		log.Warn().Err(err).Dur("duration", duration).Msg("downstream_request_failed")
		return nil, c.mapError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%s: read response: %w", c.platform, err)
	}

	log.Debug().
		Int("status", resp.StatusCode).
		Dur("duration", duration).
		Msg("downstream_request_completed")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := ""
		if c.envelope != nil {
			msg = c.envelope(body)
		}
		if msg == "" {
			msg = UnknownErrorMessage
		}
		return nil, &RemoteError{Platform: c.platform, StatusCode: resp.StatusCode, Message: msg}
	}
	return body, nil
}

// JSON sends in (when non-nil) as a JSON body and decodes a 2xx body into out (when non-nil).
func (c *Client) JSON(ctx context.Context, method, url string, headers map[string]string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", c.platform, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	raw, err := c.Do(ctx, req)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", c.platform, err)
	}
	return nil
}

// mapError converts low-level errors to downstream errors
func (c *Client) mapError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w", c.platform, ErrTimeout)
	}
	// Connection refused, DNS errors, etc.
	return fmt.Errorf("%s: %w: %v", c.platform, ErrUnavailable, err)
}

// isWriteMethod returns true for HTTP methods that modify state
func isWriteMethod(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	default:
		return false
	}
}
