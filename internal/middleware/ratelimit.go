package middleware

import (
	"context"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/krishanki/PhonePixie/internal/config"
	"github.com/sirupsen/logrus"
)

// Window is one client's fixed-window counter
type Window struct {
	Count int
	Start time.Time
}

// Take starts a new window when w has elapsed (or was never started), then
// consumes one request if Count is below limit. Count never exceeds limit.
func (w Window) Take(limit int, window time.Duration, now time.Time) (Window, bool) {
	if w.Start.IsZero() || !now.Before(w.Start.Add(window)) {
		w = Window{Start: now}
	}
	if w.Count >= limit {
		return w, false
	}
	w.Count++
	return w, true
}

// WindowStore owns the per-client windows. Take must apply Window.Take
// atomically per key.
type WindowStore interface {
	Take(ctx context.Context, key string, limit int, window time.Duration, now time.Time) (Window, bool, error)
}

// Decision is the outcome of a rate limit check
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// RetryAfter is the whole number of seconds until the window resets, at
// least one
func (d Decision) RetryAfter(now time.Time) int {
	secs := int(math.Ceil(d.ResetAt.Sub(now).Seconds()))
	if secs < 1 {
		secs = 1
	}
	return secs
}

// FixedWindowLimiter counts requests per client key in fixed windows
type FixedWindowLimiter struct {
	enabled bool
	limit   int
	window  time.Duration
	store   WindowStore
	metrics *Metrics
	logger  *logrus.Logger
	now     func() time.Time
}

// NewRateLimiter creates a new rate limiter. metrics may be nil.
func NewRateLimiter(cfg *config.RateLimitConfig, store WindowStore, metrics *Metrics, logger *logrus.Logger) *FixedWindowLimiter {
	return &FixedWindowLimiter{
		enabled: cfg.Enabled && store != nil,
		limit:   cfg.Limit,
		window:  cfg.Window,
		store:   store,
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
	}
}

// Enabled reports whether requests are counted at all
func (l *FixedWindowLimiter) Enabled() bool {
	return l.enabled
}

// Check consumes one request for key. A store failure lets the request
// through.
func (l *FixedWindowLimiter) Check(ctx context.Context, key string) Decision {
	now := l.now()
	if !l.enabled {
		return Decision{Allowed: true, Limit: l.limit, Remaining: l.limit, ResetAt: now.Add(l.window)}
	}

	start := time.Now()
	w, allowed, err := l.store.Take(ctx, key, l.limit, l.window, now)
	status := "success"
	if err != nil {
		status = "error"
	}
	l.metrics.RecordStorageOperation("take", status, time.Since(start))

	if err != nil {
		l.logger.WithError(err).WithField("client", key).Warn("Rate limit store failed, allowing request")
		return Decision{Allowed: true, Limit: l.limit, Remaining: l.limit, ResetAt: now.Add(l.window)}
	}

	remaining := l.limit - w.Count
	if remaining < 0 {
		remaining = 0
	}
	d := Decision{
		Allowed:   allowed,
		Limit:     l.limit,
		Remaining: remaining,
		ResetAt:   w.Start.Add(l.window),
	}

	if !allowed {
		l.metrics.RecordRateLimitExceeded()
		l.logger.WithFields(logrus.Fields{
			"client":   key,
			"reset_at": d.ResetAt.Unix(),
		}).Warn("Rate limit exceeded")
	}
	return d
}

// Middleware sets the X-RateLimit headers on every response and hands
// refused requests to reject instead of next.
func (l *FixedWindowLimiter) Middleware(reject func(w http.ResponseWriter, r *http.Request, d Decision)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d := l.Check(r.Context(), ClientKey(r))
			h := w.Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(d.ResetAt.Unix(), 10))

			if !d.Allowed {
				h.Set("Retry-After", strconv.Itoa(d.RetryAfter(l.now())))
				reject(w, r, d)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClientKey identifies the caller: the first X-Forwarded-For hop, then
// X-Real-IP, then the connection's remote address
func ClientKey(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if first := strings.TrimSpace(strings.Split(fwd, ",")[0]); first != "" {
			return first
		}
	}
	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
		return realIP
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
