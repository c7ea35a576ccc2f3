package server

import (
	"context"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ulule/limiter/v3"
)

func reached(t *testing.T, l *limiter.Limiter, key string) bool {
	t.Helper()
	budget, err := l.Get(context.Background(), key)
	require.NoError(t, err)
	return budget.Reached
}

func TestRouteLimiter(t *testing.T) {
	l := newRouteLimiter("analyze", 5, time.Minute, false)

	for i := 0; i < 5; i++ {
		assert.False(t, reached(t, l, "10.0.0.1"), "request %d", i+1)
	}

	budget, err := l.Get(context.Background(), "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, budget.Reached)
	assert.Zero(t, budget.Remaining)
	retry := retryAfterSeconds(budget.Reset, time.Now())
	assert.GreaterOrEqual(t, retry, 1)
	assert.LessOrEqual(t, retry, 60)

	// Other clients have their own budget
	assert.False(t, reached(t, l, "10.0.0.2"))
}

func TestRouteLimiter_WindowResets(t *testing.T) {
	l := newRouteLimiter("pdf", 1, 200*time.Millisecond, false)

	assert.False(t, reached(t, l, "c"))
	assert.True(t, reached(t, l, "c"))

	time.Sleep(250 * time.Millisecond)
	assert.False(t, reached(t, l, "c"))
}

func TestRouteLimiter_RejectedRequestsDoNotExtendWindow(t *testing.T) {
	l := newRouteLimiter("analyze", 1, 300*time.Millisecond, false)

	start := time.Now()
	assert.False(t, reached(t, l, "c"))
	for i := 0; i < 4; i++ {
		time.Sleep(50 * time.Millisecond)
		assert.True(t, reached(t, l, "c"))
	}

	time.Sleep(350*time.Millisecond - time.Since(start))
	assert.False(t, reached(t, l, "c"))
}

func TestRouteLimiter_Concurrent(t *testing.T) {
	l := newRouteLimiter("analyze", 50, time.Hour, false)

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			budget, err := l.Get(context.Background(), "shared")
			if err == nil && !budget.Reached {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, allowed)
}

func TestRetryAfterSeconds(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		reset time.Time
		want  int
	}{
		{"full window", now.Add(time.Minute), 60},
		{"partial second rounds up", now.Add(40*time.Second + 200*time.Millisecond), 41},
		{"already reset", now.Add(-time.Second), 1},
		{"now", now, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, retryAfterSeconds(tt.reset.Unix(), now))
		})
	}
}

func TestClientKey(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		forwarded  string
		trust      bool
		want       string
	}{
		{"remote host", "192.0.2.1:5555", "", false, "192.0.2.1"},
		{"forwarded ignored", "192.0.2.1:5555", "203.0.113.9", false, "192.0.2.1"},
		{"forwarded trusted", "192.0.2.1:5555", "203.0.113.9, 10.0.0.1", true, "203.0.113.9"},
		{"trusted but absent", "192.0.2.1:5555", "", true, "192.0.2.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newRouteLimiter("analyze", 5, time.Minute, tt.trust)
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remoteAddr
			if tt.forwarded != "" {
				r.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			assert.Equal(t, tt.want, l.GetIPKey(r))
		})
	}
}
