package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/krishanki/PhonePixie/internal/config"
	"github.com/krishanki/PhonePixie/internal/services/cache"
	"github.com/krishanki/PhonePixie/pkg/logger"
)

func testConfig(url string) config.GenerationConfig {
	return config.GenerationConfig{
		BaseURL:           url,
		APIKey:            "test-key",
		Model:             "test-model",
		Timeout:           2 * time.Second,
		RequestsPerMinute: 600,
		Burst:             10,
	}
}

func completionServer(t *testing.T, content string, calls *int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("authorization = %q", got)
		}
		var body struct {
			Model    string              `json:"model"`
			Messages []map[string]string `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if body.Model != "test-model" || len(body.Messages) != 2 || body.Messages[0]["role"] != "system" {
			t.Errorf("unexpected request body: %+v", body)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": content}},
			},
		})
	}))
}

func TestGenerate(t *testing.T) {
	var calls int32
	srv := completionServer(t, "hello there", &calls)
	defer srv.Close()

	c := NewClient(testConfig(srv.URL), nil, nil, logger.Discard())
	got, err := c.Generate(context.Background(), "prompt", "system")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != "hello there" {
		t.Errorf("got %q", got)
	}
}

func TestGenerateUsesCache(t *testing.T) {
	var calls int32
	srv := completionServer(t, "cached answer", &calls)
	defer srv.Close()

	cc := cache.NewCache(&config.CacheConfig{Enabled: true, TTL: time.Minute, MaxSize: 10}, logger.Discard())
	c := NewClient(testConfig(srv.URL), cc, nil, logger.Discard())
	for i := 0; i < 3; i++ {
		if _, err := c.Generate(context.Background(), "same prompt", "system"); err != nil {
			t.Fatalf("Generate: %v", err)
		}
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("upstream calls = %d, want 1", n)
	}
}

func TestGenerateNotConfigured(t *testing.T) {
	c := NewClient(config.GenerationConfig{Model: "m"}, nil, nil, logger.Discard())
	if _, err := c.Generate(context.Background(), "p", "s"); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("err = %v, want ErrNotConfigured", err)
	}
}

func TestGenerateEmptyResponse(t *testing.T) {
	var calls int32
	srv := completionServer(t, "   ", &calls)
	defer srv.Close()

	c := NewClient(testConfig(srv.URL), nil, nil, logger.Discard())
	if _, err := c.Generate(context.Background(), "p", "s"); !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("err = %v, want ErrEmptyResponse", err)
	}
}

func TestGenerateUpstreamErrorNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL), nil, nil, logger.Discard())
	if _, err := c.Generate(context.Background(), "p", "s"); err == nil {
		t.Fatal("expected error")
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("upstream calls = %d, want 1", n)
	}
}

func TestGenerateThrottled(t *testing.T) {
	var calls int32
	srv := completionServer(t, "ok", &calls)
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.RequestsPerMinute = 1
	cfg.Burst = 1
	c := NewClient(cfg, nil, nil, logger.Discard())
	if _, err := c.Generate(context.Background(), "p1", "s"); err != nil {
		t.Fatalf("first call: %v", err)
	}
	if _, err := c.Generate(context.Background(), "p2", "s"); !errors.Is(err, ErrThrottled) {
		t.Fatalf("err = %v, want ErrThrottled", err)
	}
}

func TestGenerateHonorsDeadline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL), nil, nil, logger.Discard())
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	start := time.Now()
	if _, err := c.Generate(ctx, "p", "s"); err == nil {
		t.Fatal("expected timeout error")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("call took %s, deadline not honored", elapsed)
	}
}

func TestGenerateSurvivesCallerCancel(t *testing.T) {
	var calls int32
	srv := completionServer(t, "finished", &calls)
	defer srv.Close()

	c := NewClient(testConfig(srv.URL), nil, nil, logger.Discard())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	got, err := c.Generate(ctx, "p", "s")
	if err != nil || got != "finished" {
		t.Fatalf("Generate = %q, %v; cancellation must not abort the call", got, err)
	}
}
