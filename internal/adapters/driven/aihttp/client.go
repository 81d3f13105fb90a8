// Package aihttp is the JSON-over-HTTP transport shared by the AI provider adapters.
//
// It maps transport failures onto the domain provider errors so the core can
// tell a timeout from a rate limit from an unreachable host without knowing
// which provider it talks to.
package aihttp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/ragdesk/internal/core/domain"
	"github.com/custodia-labs/ragdesk/internal/logger"
)

// maxErrorBody caps how much of an error response is quoted back.
const maxErrorBody = 512

// DefaultBackoff is the first retry delay; it doubles per attempt.
const DefaultBackoff = 500 * time.Millisecond

// Client sends JSON requests to one provider.
type Client struct {
	// Provider prefixes error messages, e.g. "ollama".
	Provider string

	// Unavailable is the domain error wrapped into every failure,
	// domain.ErrLLMUnavailable or domain.ErrEmbeddingUnavailable.
	Unavailable error

	// HTTP performs the requests.
	HTTP *http.Client

	// Headers are set on every request.
	Headers map[string]string

	// Retries is how many extra attempts a 429 or 5xx response gets.
	Retries int

	// Backoff is the delay before the first retry.
	Backoff time.Duration
}

// PostJSON encodes in, posts it to url and decodes the response into out.
func (c *Client) PostJSON(ctx context.Context, url string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("%s: marshal request: %w", c.Provider, err)
	}

	data, err := c.do(ctx, http.MethodPost, url, body)
	if err != nil {
		return err
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s: %w: decode response: %w", c.Provider, c.Unavailable, err)
	}
	return nil
}

// Get issues a GET and discards the body. It backs Ping.
func (c *Client) Get(ctx context.Context, url string) error {
	_, err := c.do(ctx, http.MethodGet, url, nil)
	return err
}

func (c *Client) do(ctx context.Context, method, url string, body []byte) ([]byte, error) {
	backoff := c.Backoff
	if backoff <= 0 {
		backoff = DefaultBackoff
	}

	for attempt := 0; ; attempt++ {
		data, retryAfter, err := c.once(ctx, method, url, body)
		if err == nil {
			return data, nil
		}
		if retryAfter < 0 || attempt >= c.Retries {
			return nil, err
		}

		wait := backoff
		if retryAfter > 0 {
			wait = retryAfter
		}
		logger.Debug("%s: attempt %d failed (%v), retrying in %s", c.Provider, attempt+1, err, wait)

		select {
		case <-ctx.Done():
			return nil, c.contextError(ctx.Err())
		case <-time.After(wait):
		}
		backoff *= 2
	}
}

// once performs a single request. A negative retryAfter marks the error final;
// zero means retry with the default backoff.
func (c *Client) once(ctx context.Context, method, url string, body []byte) ([]byte, time.Duration, error) {
	var reader io.Reader = http.NoBody
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, -1, fmt.Errorf("%s: create request: %w", c.Provider, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range c.Headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, -1, c.contextError(ctx.Err())
		}
		if isTimeout(err) {
			return nil, -1, fmt.Errorf("%s: %w: %w", c.Provider, c.Unavailable, domain.ErrProviderTimeout)
		}
		return nil, -1, fmt.Errorf("%s: %w: %w", c.Provider, c.Unavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, -1, fmt.Errorf("%s: %w: read response: %w", c.Provider, c.Unavailable, err)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return data, 0, nil
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, parseRetryAfter(resp.Header.Get("Retry-After")),
			fmt.Errorf("%s: %w: %w: %s", c.Provider, c.Unavailable, domain.ErrRateLimited, snippet(data))
	case resp.StatusCode >= 500:
		return nil, 0, fmt.Errorf("%s: %w: status %d: %s", c.Provider, c.Unavailable, resp.StatusCode, snippet(data))
	default:
		return nil, -1, fmt.Errorf("%s: %w: status %d: %s", c.Provider, c.Unavailable, resp.StatusCode, snippet(data))
	}
}

func (c *Client) httpClient() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return http.DefaultClient
}

func (c *Client) contextError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w: %w", c.Provider, domain.ErrProviderTimeout, err)
	}
	return fmt.Errorf("%s: %w", c.Provider, err)
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func parseRetryAfter(v string) time.Duration {
	secs, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

func snippet(data []byte) string {
	s := strings.TrimSpace(string(data))
	if len(s) > maxErrorBody {
		s = s[:maxErrorBody] + "..."
	}
	return s
}
