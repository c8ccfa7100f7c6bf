package prompush

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// RetryConfig controls how pushes to the gateway are retried.
//
// Zero values fall back to:
//   - Timeout:        10s
//   - InitialBackoff: 200ms
//   - MaxBackoff:     5s
//
// MaxRetries=0 means only the initial attempt is made.
type RetryConfig struct {
	Timeout        time.Duration
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration

	// Transport is an optional custom RoundTripper.
	Transport http.RoundTripper
}

// retryDoer satisfies push.HTTPDoer, replaying the buffered request body on
// transient failures (transport errors, 429, 5xx).
type retryDoer struct {
	httpClient     *http.Client
	maxRetries     int
	initialBackoff time.Duration
	maxBackoff     time.Duration

	// sleep is injectable to keep tests fast.
	sleep func(ctx context.Context, d time.Duration) error
}

func newRetryDoer(cfg RetryConfig) *retryDoer {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = 200 * time.Millisecond
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = 5 * time.Second
	}
	transport := cfg.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	return &retryDoer{
		httpClient:     &http.Client{Timeout: cfg.Timeout, Transport: transport},
		maxRetries:     cfg.MaxRetries,
		initialBackoff: cfg.InitialBackoff,
		maxBackoff:     cfg.MaxBackoff,
		sleep:          sleepContext,
	}
}

// Do sends req, retrying with exponential backoff. The returned response
// body must be closed by the caller.
func (d *retryDoer) Do(req *http.Request) (*http.Response, error) {
	var body []byte
	if req.Body != nil {
		b, err := io.ReadAll(req.Body)
		_ = req.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("prompush: read push body: %w", err)
		}
		body = b
	}

	ctx := req.Context()
	attempts := d.maxRetries + 1
	var lastErr error

	for attempt := 0; attempt < attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		r := req.Clone(ctx)
		r.Body = io.NopCloser(bytes.NewReader(body))
		r.ContentLength = int64(len(body))

		resp, err := d.httpClient.Do(r)
		if err != nil {
			lastErr = err
		} else {
			if !retryableStatus(resp.StatusCode) {
				return resp, nil
			}
			_ = resp.Body.Close()
			lastErr = fmt.Errorf("prompush: retryable status %d from %s %s", resp.StatusCode, req.Method, req.URL)
		}

		if attempt+1 >= attempts {
			break
		}
		if err := d.sleep(ctx, backoff(d.initialBackoff, attempt, d.maxBackoff)); err != nil {
			return nil, err
		}
	}
	return nil, lastErr
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || (code >= 500 && code <= 599)
}

// backoff returns initial*2^attempt clamped to max.
func backoff(initial time.Duration, attempt int, max time.Duration) time.Duration {
	d := initial << attempt
	if d > max || d <= 0 {
		return max
	}
	return d
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
