package config

import "time"

// Default values applied to zero-valued fields after parsing.
const (
	DefaultListenAddress   = "127.0.0.1:8080"
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 120 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultModel           = "gemini-1.5-pro"
	DefaultProviderTimeout = 60 * time.Second
	DefaultMaxRetries      = 3

	DefaultAllocation = 100.0
	DefaultMode       = "EXPLORATORY"

	DefaultAuditBackend      = "sqlite"
	DefaultAuditPath         = "oecs-audit.db"
	DefaultRetentionMaxAge   = 90 * 24 * time.Hour
	DefaultRetentionSchedule = "0 3 * * *"

	DefaultArchivePath = "oecs-archive.db"

	DefaultMetricsPath = "/metrics"
)

// ApplyDefaults fills zero-valued fields with default values.
// It never overwrites a value the file or environment already set.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}

	if cfg.Provider.Model == "" {
		cfg.Provider.Model = DefaultModel
	}
	if cfg.Provider.Timeout == 0 {
		cfg.Provider.Timeout = DefaultProviderTimeout
	}
	if cfg.Provider.MaxRetries == 0 {
		cfg.Provider.MaxRetries = DefaultMaxRetries
	}

	if cfg.Governance.DefaultAllocation == 0 {
		cfg.Governance.DefaultAllocation = DefaultAllocation
	}
	if cfg.Governance.DefaultMode == "" {
		cfg.Governance.DefaultMode = DefaultMode
	}

	if cfg.Audit.Backend == "" {
		cfg.Audit.Backend = DefaultAuditBackend
	}
	if cfg.Audit.Path == "" {
		cfg.Audit.Path = DefaultAuditPath
	}
	if cfg.Audit.Retention.MaxAge == 0 {
		cfg.Audit.Retention.MaxAge = DefaultRetentionMaxAge
	}
	if cfg.Audit.Retention.Schedule == "" {
		cfg.Audit.Retention.Schedule = DefaultRetentionSchedule
	}

	if cfg.Archive.Path == "" {
		cfg.Archive.Path = DefaultArchivePath
	}

	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = "info"
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = "json"
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Telemetry.Tracing.ServiceName == "" {
		cfg.Telemetry.Tracing.ServiceName = "oecs"
	}
	if cfg.Telemetry.Tracing.Endpoint == "" {
		cfg.Telemetry.Tracing.Endpoint = "localhost:4317"
	}
	if cfg.Telemetry.Tracing.SampleRatio == 0 {
		cfg.Telemetry.Tracing.SampleRatio = 1.0
	}
}

// NewDefault returns a configuration with every default applied.
// The provider API key and consent secret are left empty and must be
// supplied before the config validates.
func NewDefault() *Config {
	cfg := &Config{
		Archive: ArchiveConfig{Enabled: true},
		Telemetry: TelemetryConfig{
			Metrics: MetricsConfig{Enabled: true},
		},
	}
	ApplyDefaults(cfg)
	return cfg
}
