package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func TestRateLimiter(t *testing.T) {
	limiter := NewRateLimiter(1, 2, zap.NewNop())
	router := gin.New()
	router.Use(limiter.Middleware())
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	send := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = ip + ":1234"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w.Code
	}

	for i := 0; i < 2; i++ {
		if code := send("10.0.0.1"); code != http.StatusOK {
			t.Fatalf("request %d within burst: status %d", i, code)
		}
	}
	if code := send("10.0.0.1"); code != http.StatusTooManyRequests {
		t.Errorf("over burst: status %d, want 429", code)
	}
	if code := send("10.0.0.2"); code != http.StatusOK {
		t.Errorf("other client should not be limited: status %d", code)
	}
}

func TestRateLimiter_Disabled(t *testing.T) {
	limiter := NewRateLimiter(0, 0, zap.NewNop())
	router := gin.New()
	router.Use(limiter.Middleware())
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 50; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("request %d: status %d", i, w.Code)
		}
	}
}

func TestRecovery(t *testing.T) {
	router := gin.New()
	router.Use(Recovery(zap.NewNop()))
	router.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
}

func TestRateLimiter_SweepDropsIdleClients(t *testing.T) {
	limiter := NewRateLimiter(60, 5, zap.NewNop())
	now := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	limiter.get("10.0.0.1")
	now = now.Add(5 * time.Minute)
	limiter.get("10.0.0.2")
	now = now.Add(6 * time.Minute)

	if removed := limiter.sweep(); removed != 1 {
		t.Errorf("sweep() removed %d, want 1", removed)
	}
	if _, ok := limiter.limiters["10.0.0.1"]; ok {
		t.Error("idle client should be dropped")
	}
	if _, ok := limiter.limiters["10.0.0.2"]; !ok {
		t.Error("recent client should be kept")
	}

	now = now.Add(clientIdleTTL)
	limiter.sweep()
	if len(limiter.limiters) != 0 {
		t.Errorf("%d clients left, want 0", len(limiter.limiters))
	}
}

func TestRateLimiter_IdleCoversRefill(t *testing.T) {
	limiter := NewRateLimiter(1, 30, zap.NewNop())
	if limiter.idle != 30*time.Minute {
		t.Errorf("idle = %v, want 30m", limiter.idle)
	}
}

func TestRateLimiter_JanitorSweeps(t *testing.T) {
	limiter := NewRateLimiter(60, 5, zap.NewNop())
	limiter.get("10.0.0.1")
	limiter.idle = 0

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	limiter.StartJanitor(ctx, 10*time.Millisecond)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		limiter.mu.Lock()
		n := len(limiter.limiters)
		limiter.mu.Unlock()
		if n == 0 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Error("janitor did not sweep the idle client")
}
