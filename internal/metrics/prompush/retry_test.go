package prompush

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"bankmarketing/internal/metrics"
)

func noSleep(ctx context.Context, _ time.Duration) error { return ctx.Err() }

func TestRetryDoer_RetriesTransientStatus(t *testing.T) {
	t.Parallel()

	var hits int32
	var lastBody atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		lastBody.Store(string(b))
		if atomic.AddInt32(&hits, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	d := newRetryDoer(RetryConfig{MaxRetries: 3})
	d.sleep = noSleep

	req, err := http.NewRequest(http.MethodPut, srv.URL, bytes.NewBufferString("payload"))
	if err != nil {
		t.Fatal(err)
	}
	resp, err := d.Do(req)
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if got := atomic.LoadInt32(&hits); got != 3 {
		t.Fatalf("hits = %d, want 3", got)
	}
	if got := lastBody.Load(); got != "payload" {
		t.Fatalf("body on final attempt = %q, want payload", got)
	}
}

func TestRetryDoer_GivesUp(t *testing.T) {
	t.Parallel()

	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	d := newRetryDoer(RetryConfig{MaxRetries: 2})
	d.sleep = noSleep

	req, _ := http.NewRequest(http.MethodPut, srv.URL, nil)
	if _, err := d.Do(req); err == nil {
		t.Fatalf("Do() expected error after exhausting retries")
	}
	if got := atomic.LoadInt32(&hits); got != 3 {
		t.Fatalf("hits = %d, want 3", got)
	}
}

func TestRetryDoer_NonRetryableStatusReturned(t *testing.T) {
	t.Parallel()

	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	d := newRetryDoer(RetryConfig{MaxRetries: 5})
	d.sleep = noSleep

	req, _ := http.NewRequest(http.MethodPut, srv.URL, nil)
	resp, err := d.Do(req)
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest || atomic.LoadInt32(&hits) != 1 {
		t.Fatalf("status=%d hits=%d; want 400 after a single attempt", resp.StatusCode, hits)
	}
}

func TestRetryDoer_ContextCanceledDuringBackoff(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	d := newRetryDoer(RetryConfig{MaxRetries: 3})
	d.sleep = func(ctx context.Context, _ time.Duration) error {
		cancel()
		return ctx.Err()
	}

	req, _ := http.NewRequestWithContext(ctx, http.MethodPut, srv.URL, nil)
	if _, err := d.Do(req); !errors.Is(err, context.Canceled) {
		t.Fatalf("Do() error = %v, want context.Canceled", err)
	}
}

func TestBackoff(t *testing.T) {
	t.Parallel()

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 100 * time.Millisecond},
		{1, 200 * time.Millisecond},
		{2, 400 * time.Millisecond},
		{5, time.Second},
	}
	for _, tt := range tests {
		if got := backoff(100*time.Millisecond, tt.attempt, time.Second); got != tt.want {
			t.Errorf("backoff(attempt=%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestFlush_RetriesGateway(t *testing.T) {
	t.Parallel()

	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		if atomic.AddInt32(&hits, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	b, err := NewBackend("bank", srv.URL, RetryConfig{MaxRetries: 1, InitialBackoff: time.Millisecond})
	if err != nil {
		t.Fatal(err)
	}
	b.IncCounter(metrics.StepTotal, 1, metrics.Labels{"step": "emit", "status": "success"})

	if err := b.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
	if got := atomic.LoadInt32(&hits); got != 2 {
		t.Fatalf("hits = %d, want 2", got)
	}
}
