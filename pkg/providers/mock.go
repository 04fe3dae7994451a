package providers

import (
	"context"
	"sync"
	"time"
)

// MockProvider is a scriptable in-memory Provider for tests. It records
// every request it receives and replies with a fixed response or error.
type MockProvider struct {
	mu sync.Mutex

	// ProviderName is returned by Name. Defaults to "mock".
	ProviderName string

	// Response is returned by Generate when Err is nil. When nil, a
	// minimal response echoing the last turn is synthesized.
	Response *GenerateResponse

	// Err, when set, is returned by Generate instead of a response.
	Err error

	// Healthy controls IsHealthy and HealthCheck. Defaults to healthy.
	Unhealthy bool

	// Requests holds every request passed to Generate, in order.
	Requests []*GenerateRequest
}

var _ Provider = (*MockProvider)(nil)

// Generate records the request and returns the scripted response or error.
func (m *MockProvider) Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Requests = append(m.Requests, req)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Response != nil {
		resp := *m.Response
		return &resp, nil
	}

	content := "ok"
	if n := len(req.Turns); n > 0 {
		content = "echo: " + req.Turns[n-1].Content
	}
	return &GenerateResponse{
		Model:        req.Model,
		Content:      content,
		FinishReason: FinishReasonStop,
		Usage:        TokenUsage{PromptTokens: 1, CompletionTokens: 1, TotalTokens: 2},
		Created:      time.Now().Unix(),
	}, nil
}

// HealthCheck reports the scripted health state.
func (m *MockProvider) HealthCheck(ctx context.Context) error {
	if m.Unhealthy {
		return &TransportError{Provider: m.Name(), Message: "mock unhealthy"}
	}
	return nil
}

// Name returns the configured mock name.
func (m *MockProvider) Name() string {
	if m.ProviderName == "" {
		return "mock"
	}
	return m.ProviderName
}

// Config returns a minimal configuration.
func (m *MockProvider) Config() Config {
	return Config{Name: m.Name()}
}

// IsHealthy reports the scripted health state.
func (m *MockProvider) IsHealthy() bool {
	return !m.Unhealthy
}

// Health reports the scripted health state.
func (m *MockProvider) Health() HealthStatus {
	return HealthStatus{IsHealthy: !m.Unhealthy, LastCheck: time.Now()}
}

// Close is a no-op.
func (m *MockProvider) Close() error {
	return nil
}

// RequestCount returns the number of Generate calls observed.
func (m *MockProvider) RequestCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Requests)
}
