package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shibaleo/repomcp/internal/jsonrpc"
)

func TestRateLimiterAllow(t *testing.T) {
	rl := NewRateLimiter(3)

	// The bucket starts full: first 3 requests pass
	for i := 0; i < 3; i++ {
		if !rl.Allow("10.0.0.1") {
			t.Errorf("request %d should be allowed", i+1)
		}
	}

	// 4th request within the same second should be denied
	if rl.Allow("10.0.0.1") {
		t.Error("request 4 should be denied")
	}
}

func TestRateLimiterDisabled(t *testing.T) {
	rl := NewRateLimiter(0)

	for i := 0; i < 100; i++ {
		if !rl.Allow("10.0.0.1") {
			t.Fatal("limit 0 must disable enforcement")
		}
	}
}

func TestRateLimiterClientIsolation(t *testing.T) {
	rl := NewRateLimiter(1)

	if !rl.Allow("10.0.0.1") {
		t.Error("first client's first request should be allowed")
	}
	if rl.Allow("10.0.0.1") {
		t.Error("first client's second request should be denied")
	}

	// Second client has an independent bucket
	if !rl.Allow("10.0.0.2") {
		t.Error("second client should be allowed")
	}
}

func TestRateLimiterMiddleware(t *testing.T) {
	rl := NewRateLimiter(1)
	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/mcp", nil)
	req.RemoteAddr = "10.0.0.1:51234"

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("first request status = %d, want 200", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request status = %d, want 429", rec.Code)
	}

	var resp jsonrpc.Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response is not JSON-RPC: %v", err)
	}
	if resp.Error == nil || resp.Error.Code != jsonrpc.ErrRateLimited {
		t.Errorf("error = %+v, want code %d", resp.Error, jsonrpc.ErrRateLimited)
	}
	if rec.Header().Get("Retry-After") != "1" {
		t.Errorf("Retry-After = %q", rec.Header().Get("Retry-After"))
	}
}
