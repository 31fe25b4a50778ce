package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/krishanki/PhonePixie/internal/config"
	"github.com/krishanki/PhonePixie/pkg/logger"
)

type mapStore struct {
	mu      sync.Mutex
	windows map[string]Window
	err     error
}

func newMapStore() *mapStore {
	return &mapStore{windows: make(map[string]Window)}
}

func (s *mapStore) Take(ctx context.Context, key string, limit int, window time.Duration, now time.Time) (Window, bool, error) {
	if s.err != nil {
		return Window{}, false, s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.windows[key].Take(limit, window, now)
	s.windows[key] = w
	return w, ok, nil
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newLimiter(limit int, store WindowStore) (*FixedWindowLimiter, *clock) {
	c := &clock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	l := NewRateLimiter(&config.RateLimitConfig{Enabled: true, Limit: limit, Window: time.Minute}, store, nil, logger.Discard())
	l.now = c.Now
	return l, c
}

func TestLimitWithinWindow(t *testing.T) {
	l, c := newLimiter(3, newMapStore())
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		d := l.Check(ctx, "1.2.3.4")
		if !d.Allowed {
			t.Fatalf("request %d refused", i)
		}
		if d.Remaining != 3-i {
			t.Errorf("request %d remaining = %d, want %d", i, d.Remaining, 3-i)
		}
		if !d.ResetAt.Equal(c.Now().Add(time.Minute)) {
			t.Errorf("reset = %v", d.ResetAt)
		}
	}
	for i := 0; i < 3; i++ {
		d := l.Check(ctx, "1.2.3.4")
		if d.Allowed || d.Remaining != 0 {
			t.Errorf("over-limit request: %+v", d)
		}
	}
	if d := l.Check(ctx, "5.6.7.8"); !d.Allowed {
		t.Error("other client refused")
	}
}

func TestWindowResetsAtBoundary(t *testing.T) {
	l, c := newLimiter(2, newMapStore())
	ctx := context.Background()
	l.Check(ctx, "k")
	l.Check(ctx, "k")

	c.Advance(59 * time.Second)
	if d := l.Check(ctx, "k"); d.Allowed {
		t.Fatal("allowed before the window elapsed")
	}

	c.Advance(time.Second)
	d := l.Check(ctx, "k")
	if !d.Allowed || d.Remaining != 1 {
		t.Fatalf("after reset: %+v", d)
	}
	if !d.ResetAt.Equal(c.Now().Add(time.Minute)) {
		t.Errorf("new window reset = %v", d.ResetAt)
	}
}

func TestConcurrentRequestsCountedOnce(t *testing.T) {
	l, _ := newLimiter(50, newMapStore())
	var allowed int
	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Check(context.Background(), "same").Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if allowed != 50 {
		t.Errorf("allowed = %d, want 50", allowed)
	}
}

func TestStoreFailureAllows(t *testing.T) {
	store := newMapStore()
	store.err = errors.New("connection refused")
	l, _ := newLimiter(1, store)
	for i := 0; i < 3; i++ {
		if d := l.Check(context.Background(), "k"); !d.Allowed {
			t.Fatal("store failure refused the request")
		}
	}
}

func TestMiddlewareHeaders(t *testing.T) {
	l, _ := newLimiter(1, newMapStore())
	rejected := 0
	h := l.Middleware(func(w http.ResponseWriter, r *http.Request, d Decision) {
		rejected++
		w.WriteHeader(http.StatusTooManyRequests)
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/chat", nil)
	req.RemoteAddr = "10.0.0.1:5555"

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Header().Get("X-RateLimit-Limit") != "1" || rec.Header().Get("X-RateLimit-Remaining") != "0" || rec.Header().Get("X-RateLimit-Reset") == "" {
		t.Errorf("headers = %v", rec.Header())
	}
	if rec.Header().Get("Retry-After") != "" {
		t.Error("Retry-After on allowed request")
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests || rejected != 1 {
		t.Fatalf("status = %d, rejected = %d", rec.Code, rejected)
	}
	if rec.Header().Get("X-RateLimit-Remaining") != "0" {
		t.Errorf("remaining = %q", rec.Header().Get("X-RateLimit-Remaining"))
	}
	if secs, err := strconv.Atoi(rec.Header().Get("Retry-After")); err != nil || secs < 1 || secs > 60 {
		t.Errorf("Retry-After = %q", rec.Header().Get("Retry-After"))
	}
}

func TestDisabledLimiterPassesThrough(t *testing.T) {
	l := NewRateLimiter(&config.RateLimitConfig{Enabled: false, Limit: 1, Window: time.Minute}, newMapStore(), nil, logger.Discard())
	h := l.Middleware(func(w http.ResponseWriter, r *http.Request, d Decision) {
		t.Error("reject called")
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/chat", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		if got := rec.Header().Get("X-RateLimit-Limit"); got != "1" {
			t.Errorf("X-RateLimit-Limit = %q", got)
		}
		if got := rec.Header().Get("X-RateLimit-Remaining"); got != "1" {
			t.Errorf("X-RateLimit-Remaining = %q", got)
		}
		if rec.Header().Get("X-RateLimit-Reset") == "" || rec.Header().Get("Retry-After") != "" {
			t.Errorf("headers = %v", rec.Header())
		}
	}
}

func TestWindowTake(t *testing.T) {
	now := time.Unix(1000, 0)
	var w Window
	w, ok := w.Take(1, time.Minute, now)
	if !ok || w.Count != 1 || !w.Start.Equal(now) {
		t.Fatalf("first take = %+v %v", w, ok)
	}
	w, ok = w.Take(1, time.Minute, now.Add(time.Second))
	if ok || w.Count != 1 {
		t.Fatalf("second take = %+v %v", w, ok)
	}
	w, ok = w.Take(1, time.Minute, now.Add(time.Minute))
	if !ok || w.Count != 1 || !w.Start.Equal(now.Add(time.Minute)) {
		t.Fatalf("take after window = %+v %v", w, ok)
	}
	if _, ok := (Window{}).Take(0, time.Minute, now); ok {
		t.Error("zero limit allowed a request")
	}
}

func TestClientKey(t *testing.T) {
	cases := []struct {
		headers map[string]string
		remote  string
		want    string
	}{
		{map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1"}, "10.0.0.1:80", "203.0.113.7"},
		{map[string]string{"X-Real-IP": "198.51.100.2"}, "10.0.0.1:80", "198.51.100.2"},
		{nil, "192.0.2.1:4242", "192.0.2.1"},
		{nil, "pipe", "pipe"},
	}
	for _, tc := range cases {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.RemoteAddr = tc.remote
		for k, v := range tc.headers {
			r.Header.Set(k, v)
		}
		if got := ClientKey(r); got != tc.want {
			t.Errorf("ClientKey = %q, want %q", got, tc.want)
		}
	}
}
