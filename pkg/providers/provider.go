package providers

import "context"

// Provider is the interface all model transport adapters implement.
//
// All methods accept a context.Context for cancellation and timeout control.
// Implementations must respect context cancellation and return immediately
// when the context is cancelled.
//
// Example usage:
//
//	req := &GenerateRequest{
//	    Model:        "gemini-2.0-flash",
//	    SystemPrompt: sysPrompt,
//	    Turns:        []Turn{{Role: RoleUser, Content: "Hello"}},
//	}
//
//	resp, err := provider.Generate(ctx, req)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(resp.Content)
type Provider interface {
	// Generate sends a single generation request and returns the normalized
	// response. The request is transformed to the vendor wire format,
	// transient failures are retried with exponential backoff, and the
	// response is normalized back.
	//
	// Any returned error is a transport failure from the engine's point of
	// view: the budget charge for the exchange is already committed and is
	// not rolled back.
	Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error)

	// HealthCheck verifies the provider is reachable and responding.
	// Returns nil if healthy, or an error describing the issue.
	HealthCheck(ctx context.Context) error

	// Name returns the provider's configured name (e.g., "gemini").
	Name() string

	// Config returns the provider's configuration.
	Config() Config

	// IsHealthy returns the current health status.
	IsHealthy() bool

	// Health returns detailed health information.
	Health() HealthStatus

	// Close releases provider resources (idle connections, background
	// health checking). The provider must not be used after Close.
	Close() error
}
