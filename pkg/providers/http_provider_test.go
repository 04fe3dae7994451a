package providers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

// ============================================================================
// Retry behavior
// ============================================================================

func TestHTTPProvider_RetryOn5xx(t *testing.T) {
	attemptCount := int32(0)

	// Fails twice with 500, then succeeds
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		count := atomic.AddInt32(&attemptCount, 1)
		if count <= 2 {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error": "internal server error"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"message": "success"}`))
	}))
	defer server.Close()

	provider := NewHTTPProvider(Config{
		Name:       "test-provider",
		BaseURL:    server.URL,
		Timeout:    5 * time.Second,
		MaxRetries: 3,
	})
	defer provider.Close()

	resp, err := provider.DoRequest(context.Background(), "POST", server.URL+"/test", []byte(`{"test": true}`), nil)
	if err != nil {
		t.Fatalf("expected request to succeed after retries, got error: %v", err)
	}
	defer resp.Body.Close()

	if finalCount := atomic.LoadInt32(&attemptCount); finalCount != 3 {
		t.Errorf("expected 3 attempts (2 retries), got %d", finalCount)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected status 200, got %d", resp.StatusCode)
	}
}

func TestHTTPProvider_NoRetryOnAuthError(t *testing.T) {
	attemptCount := int32(0)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attemptCount, 1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": "invalid api key"}`))
	}))
	defer server.Close()

	provider := NewHTTPProvider(Config{
		Name:       "test-provider",
		BaseURL:    server.URL,
		Timeout:    5 * time.Second,
		MaxRetries: 3,
	})
	defer provider.Close()

	_, err := provider.DoRequest(context.Background(), "POST", server.URL, []byte(`{}`), nil)

	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected AuthError, got %T: %v", err, err)
	}
	if count := atomic.LoadInt32(&attemptCount); count != 1 {
		t.Errorf("auth errors must not be retried, got %d attempts", count)
	}
}

func TestHTTPProvider_NoRetryOnBadRequest(t *testing.T) {
	attemptCount := int32(0)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attemptCount, 1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": "malformed"}`))
	}))
	defer server.Close()

	provider := NewHTTPProvider(Config{
		Name:       "test-provider",
		BaseURL:    server.URL,
		Timeout:    5 * time.Second,
		MaxRetries: 3,
	})
	defer provider.Close()

	_, err := provider.DoRequest(context.Background(), "POST", server.URL, []byte(`{}`), nil)

	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("expected TransportError, got %T: %v", err, err)
	}
	if transportErr.StatusCode != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", transportErr.StatusCode)
	}
	if count := atomic.LoadInt32(&attemptCount); count != 1 {
		t.Errorf("bad requests must not be retried, got %d attempts", count)
	}
}

func TestHTTPProvider_RateLimitWithRetryAfter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": "rate limited"}`))
	}))
	defer server.Close()

	provider := NewHTTPProvider(Config{
		Name:       "test-provider",
		BaseURL:    server.URL,
		Timeout:    5 * time.Second,
		MaxRetries: 3,
	})
	defer provider.Close()

	_, err := provider.DoRequest(context.Background(), "POST", server.URL, []byte(`{}`), nil)

	var rateLimitErr *RateLimitError
	if !errors.As(err, &rateLimitErr) {
		t.Fatalf("expected RateLimitError, got %T: %v", err, err)
	}
	if rateLimitErr.RetryAfter != 30*time.Second {
		t.Errorf("expected retry-after 30s, got %s", rateLimitErr.RetryAfter)
	}
}

func TestHTTPProvider_RetriesExhausted(t *testing.T) {
	attemptCount := int32(0)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attemptCount, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	provider := NewHTTPProvider(Config{
		Name:       "test-provider",
		BaseURL:    server.URL,
		Timeout:    5 * time.Second,
		MaxRetries: 1,
	})
	defer provider.Close()

	_, err := provider.DoRequest(context.Background(), "POST", server.URL, []byte(`{}`), nil)

	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("expected TransportError, got %T: %v", err, err)
	}
	if count := atomic.LoadInt32(&attemptCount); count != 2 {
		t.Errorf("expected 2 attempts (1 retry), got %d", count)
	}
}

// ============================================================================
// JSON round trip
// ============================================================================

func TestHTTPProvider_DoJSONRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("expected application/json content type, got %q", got)
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"answer": 42}`))
	}))
	defer server.Close()

	provider := NewHTTPProvider(Config{
		Name:    "test-provider",
		BaseURL: server.URL,
		Timeout: 5 * time.Second,
	})
	defer provider.Close()

	var out struct {
		Answer int `json:"answer"`
	}
	err := provider.DoJSONRequest(context.Background(), "POST", server.URL,
		map[string]string{"q": "?"}, &out, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Answer != 42 {
		t.Errorf("expected answer 42, got %d", out.Answer)
	}
}

func TestHTTPProvider_DoJSONRequest_MalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`not json`))
	}))
	defer server.Close()

	provider := NewHTTPProvider(Config{
		Name:    "test-provider",
		BaseURL: server.URL,
		Timeout: 5 * time.Second,
	})
	defer provider.Close()

	var out map[string]interface{}
	err := provider.DoJSONRequest(context.Background(), "POST", server.URL, nil, &out, nil)

	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected ParseError, got %T: %v", err, err)
	}
	if parseErr.RawResponse != "not json" {
		t.Errorf("expected raw response preserved, got %q", parseErr.RawResponse)
	}
}

// ============================================================================
// Health tracking
// ============================================================================

func TestHTTPProvider_HealthCircuitBreaker(t *testing.T) {
	provider := NewHTTPProvider(Config{Name: "test-provider", Timeout: time.Second})
	defer provider.Close()

	if !provider.IsHealthy() {
		t.Fatal("provider should start healthy")
	}

	failure := errors.New("boom")
	provider.updateHealth(false, failure)
	provider.updateHealth(false, failure)
	if !provider.IsHealthy() {
		t.Error("provider should stay healthy below the failure threshold")
	}

	provider.updateHealth(false, failure)
	if provider.IsHealthy() {
		t.Error("provider should be unhealthy after 3 consecutive failures")
	}

	provider.updateHealth(true, nil)
	if !provider.IsHealthy() {
		t.Error("a single success should restore health")
	}
	if got := provider.Health().ConsecutiveFailures; got != 0 {
		t.Errorf("consecutive failures should reset on success, got %d", got)
	}
}

func TestHealthBackoff(t *testing.T) {
	base := 30 * time.Second

	tests := []struct {
		failures int
		want     time.Duration
	}{
		{0, 30 * time.Second},
		{1, 60 * time.Second},
		{2, 120 * time.Second},
		{3, 240 * time.Second},
		{4, 300 * time.Second}, // capped at 5 minutes
		{10, 300 * time.Second},
	}

	for _, tt := range tests {
		if got := healthBackoff(tt.failures, base); got != tt.want {
			t.Errorf("healthBackoff(%d) = %s, want %s", tt.failures, got, tt.want)
		}
	}
}

func TestParseRetryAfter(t *testing.T) {
	tests := []struct {
		value string
		want  time.Duration
	}{
		{"", 0},
		{"30", 30 * time.Second},
		{"0", 0},
		{"garbage", 0},
	}

	for _, tt := range tests {
		if got := parseRetryAfter(tt.value); got != tt.want {
			t.Errorf("parseRetryAfter(%q) = %s, want %s", tt.value, got, tt.want)
		}
	}
}
