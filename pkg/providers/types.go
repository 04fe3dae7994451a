package providers

import "time"

// Default sampling parameters, applied when a request leaves them zero.
const (
	// DefaultTemperature is the sampling temperature used for every
	// exchange unless overridden.
	DefaultTemperature = 0.9

	// DefaultMaxOutputTokens is the generation cap per exchange.
	DefaultMaxOutputTokens = 8192
)

// Turn represents a single turn in a conversation.
// It is provider-agnostic and is transformed to vendor-specific formats.
type Turn struct {
	// Role identifies the turn author (user or assistant)
	Role string `json:"role"`

	// Content is the turn text
	Content string `json:"content"`
}

// TokenUsage tracks token consumption for a request.
type TokenUsage struct {
	// PromptTokens is the number of tokens in the prompt
	PromptTokens int `json:"prompt_tokens"`

	// CompletionTokens is the number of tokens in the completion
	CompletionTokens int `json:"completion_tokens"`

	// TotalTokens is the total number of tokens used (prompt + completion)
	TotalTokens int `json:"total_tokens"`
}

// GenerateRequest represents a provider-agnostic generation request.
// It is transformed to the vendor wire format by each adapter.
type GenerateRequest struct {
	// Model is the model identifier (e.g., "gemini-2.0-flash")
	Model string `json:"model"`

	// SystemPrompt is the system instruction framing the conversation.
	// The governance layer sets this from the active mode.
	SystemPrompt string `json:"system_prompt,omitempty"`

	// Turns is the conversation history including the current user turn
	Turns []Turn `json:"turns"`

	// Temperature controls randomness. Zero means DefaultTemperature.
	Temperature float64 `json:"temperature,omitempty"`

	// MaxOutputTokens caps generation length. Zero means DefaultMaxOutputTokens.
	MaxOutputTokens int `json:"max_output_tokens,omitempty"`

	// DisableSafetyFilter requests that the vendor's content safety
	// filtering be turned off for this call. Adapters that cannot honor
	// it must return a ConfigError at construction time, not silently
	// filter.
	DisableSafetyFilter bool `json:"disable_safety_filter,omitempty"`
}

// GenerateResponse represents a provider-agnostic generation response,
// normalized from the vendor format.
type GenerateResponse struct {
	// Model is the model that generated the response
	Model string `json:"model"`

	// Content is the generated text
	Content string `json:"content"`

	// FinishReason indicates why generation stopped (stop, length, other)
	FinishReason string `json:"finish_reason"`

	// Usage contains token consumption information
	Usage TokenUsage `json:"usage"`

	// Created is the Unix timestamp when the response was received
	Created int64 `json:"created"`
}

// HealthStatus tracks the health of a provider.
type HealthStatus struct {
	// IsHealthy indicates whether the provider is currently healthy
	IsHealthy bool

	// LastCheck is the timestamp of the last health update
	LastCheck time.Time

	// LastError is the most recent error encountered (nil if healthy)
	LastError error

	// ConsecutiveFailures counts sequential request failures
	ConsecutiveFailures int

	// LastSuccessfulRequest is the timestamp of the last successful request
	LastSuccessfulRequest time.Time

	// TotalRequests is the total number of requests sent to this provider
	TotalRequests int64

	// FailedRequests is the total number of failed requests
	FailedRequests int64
}

// Config contains configuration for a single provider instance.
type Config struct {
	// Name is the provider identifier (e.g., "gemini")
	Name string

	// BaseURL is the API endpoint base URL
	BaseURL string

	// APIKey is the authentication key
	APIKey string

	// Model is the default model identifier for requests that omit one
	Model string

	// Timeout is the request timeout duration
	Timeout time.Duration

	// MaxRetries is the maximum number of retry attempts
	MaxRetries int

	// MaxIdleConns is the maximum number of idle connections in the pool
	MaxIdleConns int

	// MaxIdleConnsPerHost is the maximum idle connections per host
	MaxIdleConnsPerHost int

	// IdleConnTimeout is how long an idle connection remains in the pool
	IdleConnTimeout time.Duration
}

// Turn role constants
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Finish reason constants
const (
	FinishReasonStop   = "stop"
	FinishReasonLength = "length"
	FinishReasonOther  = "other"
)
