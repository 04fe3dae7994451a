package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"oecs-hq/lusaka/pkg/providers"
)

const (
	// DefaultBaseURL is the Gemini API endpoint.
	DefaultBaseURL = "https://generativelanguage.googleapis.com"

	// DefaultModel is used when a request does not name a model.
	DefaultModel = "gemini-1.5-pro"

	// apiVersion is the REST API version path segment.
	apiVersion = "v1beta"
)

// Provider is the Gemini adapter. It implements providers.Provider for the
// generateContent API.
type Provider struct {
	*providers.HTTPProvider
}

var _ providers.Provider = (*Provider)(nil)

// NewProvider creates a new Gemini provider instance.
func NewProvider(config providers.Config) (*Provider, error) {
	if config.Name == "" {
		config.Name = "gemini"
	}
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.Model == "" {
		config.Model = DefaultModel
	}

	if config.APIKey == "" {
		return nil, &providers.ConfigError{
			Provider: config.Name,
			Field:    "api_key",
			Message:  "API key is required for Gemini",
		}
	}

	if config.MaxRetries == 0 {
		config.MaxRetries = 3
	}
	if config.MaxIdleConns == 0 {
		config.MaxIdleConns = 100
	}
	if config.MaxIdleConnsPerHost == 0 {
		config.MaxIdleConnsPerHost = 10
	}
	if config.Timeout == 0 {
		config.Timeout = 60 * time.Second
	}

	p := &Provider{
		HTTPProvider: providers.NewHTTPProvider(config),
	}

	slog.Info("Gemini provider initialized",
		"provider", config.Name,
		"base_url", config.BaseURL,
		"model", config.Model,
	)

	return p, nil
}

// Generate sends a generation request to Gemini.
func (p *Provider) Generate(ctx context.Context, req *providers.GenerateRequest) (*providers.GenerateResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	model := req.Model
	if model == "" {
		model = p.Config().Model
	}

	geminiReq := transformRequest(req)

	url := fmt.Sprintf("%s/%s/models/%s:generateContent",
		p.Config().BaseURL, apiVersion, model)
	headers := map[string]string{
		"x-goog-api-key": p.Config().APIKey,
		"Content-Type":   "application/json",
	}

	var geminiResp generateContentResponse
	if err := p.DoJSONRequest(ctx, "POST", url, geminiReq, &geminiResp, headers); err != nil {
		return nil, err
	}

	resp, err := transformResponse(model, &geminiResp)
	if err != nil {
		return nil, &providers.ParseError{
			Provider: p.Name(),
			Cause:    err,
		}
	}

	slog.Debug("generation request succeeded",
		"provider", p.Name(),
		"model", model,
		"tokens", resp.Usage.TotalTokens,
		"finish_reason", resp.FinishReason,
	)

	return resp, nil
}

// HealthCheck verifies the API is reachable by listing the configured model.
func (p *Provider) HealthCheck(ctx context.Context) error {
	url := fmt.Sprintf("%s/%s/models/%s",
		p.Config().BaseURL, apiVersion, p.Config().Model)
	headers := map[string]string{
		"x-goog-api-key": p.Config().APIKey,
	}

	resp, err := p.DoRequest(ctx, "GET", url, nil, headers)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return nil
}

// validateRequest validates the generation request.
func validateRequest(req *providers.GenerateRequest) error {
	if req == nil {
		return &providers.ValidationError{
			Field:   "request",
			Message: "request cannot be nil",
		}
	}

	if len(req.Turns) == 0 {
		return &providers.ValidationError{
			Field:   "turns",
			Message: "at least one turn is required",
		}
	}

	for i, turn := range req.Turns {
		if turn.Role != providers.RoleUser && turn.Role != providers.RoleAssistant {
			return &providers.ValidationError{
				Field:   "turns",
				Message: fmt.Sprintf("turn %d has unknown role %q", i, turn.Role),
			}
		}
	}

	return nil
}
