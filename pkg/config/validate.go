package config

import (
	"fmt"
	"strings"

	"oecs-hq/lusaka/pkg/modes"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field
	// (e.g., "server.listen_address").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a
// configuration. All field errors are collected and reported together.
type ValidationError struct {
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a
// ValidationError if any rules fail.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateServer(&cfg.Server)...)
	errs = append(errs, validateProvider(&cfg.Provider)...)
	errs = append(errs, validateGovernance(&cfg.Governance)...)
	errs = append(errs, validateAudit(&cfg.Audit)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

func validateServer(cfg *ServerConfig) []FieldError {
	var errs []FieldError

	if cfg.ListenAddress == "" {
		errs = append(errs, FieldError{
			Field:   "server.listen_address",
			Message: "listen address is required",
		})
	}
	if cfg.ReadTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.read_timeout",
			Message: "read timeout must be positive",
		})
	}
	if cfg.WriteTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.write_timeout",
			Message: "write timeout must be positive",
		})
	}
	if cfg.MaxSessions < 0 {
		errs = append(errs, FieldError{
			Field:   "server.max_sessions",
			Message: "max sessions must be non-negative",
		})
	}

	return errs
}

func validateProvider(cfg *ProviderConfig) []FieldError {
	var errs []FieldError

	if cfg.APIKey == "" {
		errs = append(errs, FieldError{
			Field:   "provider.api_key",
			Message: "API key is required (set OECS_PROVIDER_API_KEY)",
		})
	}
	if cfg.Model == "" {
		errs = append(errs, FieldError{
			Field:   "provider.model",
			Message: "model is required",
		})
	}
	if cfg.Timeout < 0 {
		errs = append(errs, FieldError{
			Field:   "provider.timeout",
			Message: "timeout must be positive",
		})
	}
	if cfg.MaxRetries < 0 {
		errs = append(errs, FieldError{
			Field:   "provider.max_retries",
			Message: "max retries must be non-negative",
		})
	}

	return errs
}

func validateGovernance(cfg *GovernanceConfig) []FieldError {
	var errs []FieldError

	if cfg.DefaultAllocation <= 0 {
		errs = append(errs, FieldError{
			Field:   "governance.default_allocation",
			Message: "default allocation must be positive",
		})
	}
	if _, err := modes.Parse(cfg.DefaultMode); err != nil {
		errs = append(errs, FieldError{
			Field:   "governance.default_mode",
			Message: fmt.Sprintf("unknown mode %q", cfg.DefaultMode),
		})
	}
	if cfg.TicketTTL < 0 {
		errs = append(errs, FieldError{
			Field:   "governance.ticket_ttl",
			Message: "ticket TTL must be non-negative",
		})
	}
	if cfg.ConsentSecret == "" {
		errs = append(errs, FieldError{
			Field:   "governance.consent_secret",
			Message: "consent secret is required (set OECS_GOVERNANCE_CONSENT_SECRET)",
		})
	} else if len(cfg.ConsentSecret) < 16 {
		errs = append(errs, FieldError{
			Field:   "governance.consent_secret",
			Message: "consent secret must be at least 16 bytes",
		})
	}
	if len(cfg.Modes) > 0 {
		if _, err := modes.NewCatalog(cfg.Modes); err != nil {
			errs = append(errs, FieldError{
				Field:   "governance.modes",
				Message: err.Error(),
			})
		}
	}

	return errs
}

// Catalog builds the mode catalog from the governance section. It
// assumes the config has been validated.
func (c *GovernanceConfig) Catalog() (*modes.Catalog, error) {
	if len(c.Modes) == 0 {
		return modes.DefaultCatalog(), nil
	}
	return modes.NewCatalog(c.Modes)
}

func validateAudit(cfg *AuditConfig) []FieldError {
	var errs []FieldError

	switch cfg.Backend {
	case "sqlite", "memory":
	default:
		errs = append(errs, FieldError{
			Field:   "audit.backend",
			Message: fmt.Sprintf("unknown backend %q (expected \"sqlite\" or \"memory\")", cfg.Backend),
		})
	}
	if cfg.Backend == "sqlite" && cfg.Path == "" {
		errs = append(errs, FieldError{
			Field:   "audit.path",
			Message: "path is required for the sqlite backend",
		})
	}
	if cfg.Retention.Enabled {
		if cfg.Retention.MaxAge <= 0 {
			errs = append(errs, FieldError{
				Field:   "audit.retention.max_age",
				Message: "max age must be positive when retention is enabled",
			})
		}
		if cfg.Retention.Schedule == "" {
			errs = append(errs, FieldError{
				Field:   "audit.retention.schedule",
				Message: "schedule is required when retention is enabled",
			})
		}
	}

	return errs
}

func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	switch strings.ToLower(cfg.Logging.Level) {
	case "debug", "info", "warn", "warning", "error", "":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("unknown level %q", cfg.Logging.Level),
		})
	}
	switch strings.ToLower(cfg.Logging.Format) {
	case "json", "text", "console", "":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("unknown format %q", cfg.Logging.Format),
		})
	}
	if cfg.Metrics.Enabled && !strings.HasPrefix(cfg.Metrics.Path, "/") {
		errs = append(errs, FieldError{
			Field:   "telemetry.metrics.path",
			Message: "path must start with /",
		})
	}
	if cfg.Tracing.Enabled {
		if cfg.Tracing.Endpoint == "" {
			errs = append(errs, FieldError{
				Field:   "telemetry.tracing.endpoint",
				Message: "endpoint is required when tracing is enabled",
			})
		}
		if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1 {
			errs = append(errs, FieldError{
				Field:   "telemetry.tracing.sample_ratio",
				Message: "sample ratio must be between 0.0 and 1.0",
			})
		}
	}

	return errs
}
