package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestLimiterStoreAllow(t *testing.T) {
	// allow 5 events immediately then the 6th should be rejected
	s := NewLimiterStore(5, 5, 100*time.Millisecond)
	defer s.Stop()

	key := "test@example.com"
	for i := 0; i < 5; i++ {
		if !s.Allow(key) {
			t.Fatalf("expected allow at iteration %d", i)
		}
	}

	if s.Allow(key) {
		t.Fatal("expected limiter to block after burst consumed")
	}

	// A different key has its own budget.
	if !s.Allow("other@example.com") {
		t.Fatal("expected independent key to be allowed")
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	store := NewLimiterStore(1, 2, time.Minute)
	defer store.Stop()

	r := gin.New()
	r.POST("/login", RateLimit(store), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	status := func() int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		r.ServeHTTP(w, req)
		return w.Code
	}

	if got := status(); got != http.StatusOK {
		t.Fatalf("first request = %d; want 200", got)
	}
	if got := status(); got != http.StatusOK {
		t.Fatalf("second request = %d; want 200", got)
	}
	if got := status(); got != http.StatusTooManyRequests {
		t.Fatalf("third request = %d; want 429", got)
	}
}
