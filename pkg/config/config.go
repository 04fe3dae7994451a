package config

import (
	"time"

	"oecs-hq/lusaka/pkg/modes"
)

// Config is the root configuration structure for the governance engine.
type Config struct {
	// Server contains HTTP server configuration including listen address
	// and timeouts.
	Server ServerConfig `yaml:"server"`

	// Provider contains configuration for the upstream model transport.
	Provider ProviderConfig `yaml:"provider"`

	// Governance contains session defaults: allocation, starting mode,
	// and consent ticket settings.
	Governance GovernanceConfig `yaml:"governance"`

	// Audit contains configuration for audit trail storage and retention.
	Audit AuditConfig `yaml:"audit"`

	// Archive contains configuration for ended-session archival.
	Archive ArchiveConfig `yaml:"archive"`

	// Telemetry contains configuration for observability including
	// logging, metrics, and distributed tracing.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig contains configuration for the HTTP server.
type ServerConfig struct {
	// ListenAddress is the address and port to listen on.
	// Format: "host:port" (e.g., "127.0.0.1:8080").
	// Default: "127.0.0.1:8080"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out response
	// writes. Model calls happen inside the handler, so this must exceed
	// the provider timeout.
	// Default: 120s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the maximum time to wait for the next request on a
	// kept-alive connection.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for graceful
	// shutdown before in-flight requests are dropped.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxSessions caps concurrently live sessions. Zero means unlimited.
	// Default: 0
	MaxSessions int `yaml:"max_sessions"`
}

// ProviderConfig contains configuration for the upstream model API.
type ProviderConfig struct {
	// APIKey authenticates with the model API. Required. Prefer setting
	// it via OECS_PROVIDER_API_KEY rather than the config file.
	APIKey string `yaml:"api_key"`

	// BaseURL overrides the API endpoint. Empty uses the provider default.
	BaseURL string `yaml:"base_url"`

	// Model is the model identifier for generation requests.
	// Default: "gemini-1.5-pro"
	Model string `yaml:"model"`

	// Timeout bounds a single generation call.
	// Default: 60s
	Timeout time.Duration `yaml:"timeout"`

	// MaxRetries is the retry count for transient transport failures.
	// Default: 3
	MaxRetries int `yaml:"max_retries"`
}

// GovernanceConfig contains session governance defaults.
type GovernanceConfig struct {
	// DefaultAllocation is the risk budget granted to a session that
	// does not specify one. Must be positive.
	// Default: 100
	DefaultAllocation float64 `yaml:"default_allocation"`

	// DefaultMode is the mode assigned to a session that does not
	// specify one. Must name a catalog mode.
	// Default: "EXPLORATORY"
	DefaultMode string `yaml:"default_mode"`

	// TicketTTL bounds consent ticket validity. Zero means tickets do
	// not expire.
	// Default: 0
	TicketTTL time.Duration `yaml:"ticket_ttl"`

	// ConsentSecret signs consent tickets. Required, minimum 16 bytes.
	// Prefer setting it via OECS_GOVERNANCE_CONSENT_SECRET.
	ConsentSecret string `yaml:"consent_secret"`

	// Modes optionally overrides the built-in mode catalog. Each entry
	// must carry a positive base cost and an escalation factor >= 1.
	// Empty uses the default catalog.
	Modes []modes.Descriptor `yaml:"modes"`
}

// AuditConfig contains configuration for audit trail storage.
type AuditConfig struct {
	// Backend selects the storage backend: "sqlite" or "memory".
	// Default: "sqlite"
	Backend string `yaml:"backend"`

	// Path is the SQLite database file for the sqlite backend.
	// Default: "oecs-audit.db"
	Path string `yaml:"path"`

	// Retention controls pruning of old audit records.
	Retention RetentionConfig `yaml:"retention"`
}

// RetentionConfig controls audit record pruning.
type RetentionConfig struct {
	// Enabled turns scheduled pruning on.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// MaxAge is the age past which records are pruned.
	// Default: 2160h (90 days)
	MaxAge time.Duration `yaml:"max_age"`

	// Schedule is a cron expression for prune runs.
	// Default: "0 3 * * *"
	Schedule string `yaml:"schedule"`
}

// ArchiveConfig contains configuration for ended-session archival.
type ArchiveConfig struct {
	// Enabled turns archival of ended sessions on.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the SQLite database file holding archived snapshots.
	// Default: "oecs-archive.db"
	Path string `yaml:"path"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	// Logging controls structured log output.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics controls the Prometheus endpoint.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing controls OpenTelemetry trace export.
	Tracing TracingConfig `yaml:"tracing"`
}

// LoggingConfig controls structured logging.
type LoggingConfig struct {
	// Level is one of "debug", "info", "warn", "error".
	// Default: "info"
	Level string `yaml:"level"`

	// Format is "json" or "text".
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file:line in log records.
	// Default: false
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig controls the Prometheus metrics endpoint.
type MetricsConfig struct {
	// Enabled exposes the metrics endpoint.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path serving metrics.
	// Default: "/metrics"
	Path string `yaml:"path"`
}

// TracingConfig controls OpenTelemetry trace export.
type TracingConfig struct {
	// Enabled turns span export on.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// ServiceName identifies this process in the trace backend.
	// Default: "oecs"
	ServiceName string `yaml:"service_name"`

	// Endpoint is the OTLP/gRPC collector address.
	// Default: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// Insecure disables TLS on the exporter connection.
	// Default: false
	Insecure bool `yaml:"insecure"`

	// SampleRatio is the fraction of traces to sample, 0.0 to 1.0.
	// Default: 1.0
	SampleRatio float64 `yaml:"sample_ratio"`
}
