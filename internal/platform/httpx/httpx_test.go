package httpx

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"
)

type statusErr struct{ code int }

func (e *statusErr) Error() string       { return fmt.Sprintf("upstream http %d", e.code) }
func (e *statusErr) HTTPStatusCode() int { return e.code }

func TestIsRetryableHTTPStatus(t *testing.T) {
	tests := []struct {
		code int
		want bool
	}{
		{http.StatusRequestTimeout, true},
		{http.StatusTooManyRequests, true},
		{http.StatusInternalServerError, true},
		{http.StatusServiceUnavailable, true},
		{599, true},
		{http.StatusOK, false},
		{http.StatusBadRequest, false},
		{http.StatusNotFound, false},
	}
	for _, tt := range tests {
		if got := IsRetryableHTTPStatus(tt.code); got != tt.want {
			t.Errorf("IsRetryableHTTPStatus(%d) = %v, want %v", tt.code, got, tt.want)
		}
	}
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"deadline", context.DeadlineExceeded, true},
		{"status 503", &statusErr{code: 503}, true},
		{"status 429", &statusErr{code: 429}, true},
		{"status 404", &statusErr{code: 404}, false},
		{"wrapped status", fmt.Errorf("send: %w", &statusErr{code: 500}), true},
		{"plain", errors.New("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryableError(tt.err); got != tt.want {
				t.Errorf("IsRetryableError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestRetryAfterDuration(t *testing.T) {
	withHeader := func(v string) *http.Response {
		resp := &http.Response{Header: http.Header{}}
		resp.Header.Set("Retry-After", v)
		return resp
	}

	tests := []struct {
		name     string
		resp     *http.Response
		fallback time.Duration
		max      time.Duration
		want     time.Duration
	}{
		{"nil response", nil, 2 * time.Second, 10 * time.Second, 2 * time.Second},
		{"header honored", withHeader("3"), 1 * time.Second, 10 * time.Second, 3 * time.Second},
		{"header capped", withHeader("3600"), 1 * time.Second, 10 * time.Second, 10 * time.Second},
		{"header garbage", withHeader("soon"), 2 * time.Second, 10 * time.Second, 2 * time.Second},
		{"header negative", withHeader("-5"), 2 * time.Second, 10 * time.Second, 2 * time.Second},
		{"fallback capped", nil, 30 * time.Second, 10 * time.Second, 10 * time.Second},
		{"no cap", withHeader("3600"), 1 * time.Second, 0, 3600 * time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RetryAfterDuration(tt.resp, tt.fallback, tt.max); got != tt.want {
				t.Errorf("RetryAfterDuration() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestJitterSleepBounds(t *testing.T) {
	if got := JitterSleep(0); got != 0 {
		t.Errorf("JitterSleep(0) = %v, want 0", got)
	}
	base := 1 * time.Second
	low := 800 * time.Millisecond
	high := 1200 * time.Millisecond
	for i := 0; i < 100; i++ {
		got := JitterSleep(base)
		if got < low || got > high {
			t.Fatalf("JitterSleep(%v) = %v, outside [%v, %v]", base, got, low, high)
		}
	}
}

func TestSleepCtx(t *testing.T) {
	t.Run("elapses", func(t *testing.T) {
		if err := SleepCtx(context.Background(), time.Millisecond); err != nil {
			t.Fatalf("SleepCtx() = %v, want nil", err)
		}
	})

	t.Run("zero duration reports context state", func(t *testing.T) {
		if err := SleepCtx(context.Background(), 0); err != nil {
			t.Fatalf("SleepCtx(0) = %v, want nil", err)
		}
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if err := SleepCtx(ctx, 0); !errors.Is(err, context.Canceled) {
			t.Fatalf("SleepCtx(canceled, 0) = %v, want context.Canceled", err)
		}
	})

	t.Run("cancel cuts the wait short", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			time.Sleep(10 * time.Millisecond)
			cancel()
		}()
		start := time.Now()
		err := SleepCtx(ctx, 5*time.Second)
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("SleepCtx() = %v, want context.Canceled", err)
		}
		if elapsed := time.Since(start); elapsed > 2*time.Second {
			t.Fatalf("SleepCtx() took %v, want well under the full wait", elapsed)
		}
	})
}
