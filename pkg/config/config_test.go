package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const minimalYAML = `
provider:
  api_key: test-api-key
governance:
  consent_secret: config-test-secret-key
`

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "oecs.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing config file: %v", err)
	}
	return path
}

// ============================================================================
// Loading
// ============================================================================

func TestLoadConfigAppliesDefaults(t *testing.T) {
	path := writeConfigFile(t, minimalYAML)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Server.ListenAddress != DefaultListenAddress {
		t.Errorf("listen address = %q, want %q", cfg.Server.ListenAddress, DefaultListenAddress)
	}
	if cfg.Provider.Model != DefaultModel {
		t.Errorf("model = %q, want %q", cfg.Provider.Model, DefaultModel)
	}
	if cfg.Governance.DefaultAllocation != DefaultAllocation {
		t.Errorf("default allocation = %v, want %v", cfg.Governance.DefaultAllocation, DefaultAllocation)
	}
	if cfg.Governance.DefaultMode != DefaultMode {
		t.Errorf("default mode = %q, want %q", cfg.Governance.DefaultMode, DefaultMode)
	}
	if !cfg.Archive.Enabled {
		t.Error("archive not enabled by default")
	}
	if !cfg.Telemetry.Metrics.Enabled {
		t.Error("metrics not enabled by default")
	}
	if cfg.Audit.Retention.MaxAge != DefaultRetentionMaxAge {
		t.Errorf("retention max age = %v, want %v", cfg.Audit.Retention.MaxAge, DefaultRetentionMaxAge)
	}
}

func TestLoadConfigFileValuesWin(t *testing.T) {
	path := writeConfigFile(t, `
provider:
  api_key: test-api-key
server:
  listen_address: "0.0.0.0:9090"
  max_sessions: 50
governance:
  default_allocation: 250
  default_mode: SIMULATION
  consent_secret: config-test-secret-key
archive:
  enabled: false
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Server.ListenAddress != "0.0.0.0:9090" {
		t.Errorf("listen address = %q", cfg.Server.ListenAddress)
	}
	if cfg.Server.MaxSessions != 50 {
		t.Errorf("max sessions = %d, want 50", cfg.Server.MaxSessions)
	}
	if cfg.Governance.DefaultAllocation != 250 {
		t.Errorf("default allocation = %v, want 250", cfg.Governance.DefaultAllocation)
	}
	if cfg.Governance.DefaultMode != "SIMULATION" {
		t.Errorf("default mode = %q, want SIMULATION", cfg.Governance.DefaultMode)
	}
	if cfg.Archive.Enabled {
		t.Error("archive explicitly disabled in file but still enabled")
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadConfigMalformedYAML(t *testing.T) {
	path := writeConfigFile(t, "provider: [not a map")
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected error for malformed YAML")
	}
}

// ============================================================================
// Environment overrides
// ============================================================================

func TestLoadEnvOverrides(t *testing.T) {
	path := writeConfigFile(t, minimalYAML)

	t.Setenv("OECS_PROVIDER_API_KEY", "env-api-key")
	t.Setenv("OECS_PROVIDER_MODEL", "gemini-1.5-flash")
	t.Setenv("OECS_SERVER_LISTEN_ADDRESS", "127.0.0.1:7000")
	t.Setenv("OECS_GOVERNANCE_DEFAULT_ALLOCATION", "500")
	t.Setenv("OECS_GOVERNANCE_TICKET_TTL", "2h")
	t.Setenv("OECS_AUDIT_BACKEND", "memory")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Provider.APIKey != "env-api-key" {
		t.Errorf("api key = %q, want env override", cfg.Provider.APIKey)
	}
	if cfg.Provider.Model != "gemini-1.5-flash" {
		t.Errorf("model = %q", cfg.Provider.Model)
	}
	if cfg.Server.ListenAddress != "127.0.0.1:7000" {
		t.Errorf("listen address = %q", cfg.Server.ListenAddress)
	}
	if cfg.Governance.DefaultAllocation != 500 {
		t.Errorf("default allocation = %v, want 500", cfg.Governance.DefaultAllocation)
	}
	if cfg.Governance.TicketTTL != 2*time.Hour {
		t.Errorf("ticket TTL = %v, want 2h", cfg.Governance.TicketTTL)
	}
	if cfg.Audit.Backend != "memory" {
		t.Errorf("audit backend = %q, want memory", cfg.Audit.Backend)
	}
}

func TestLoadEnvOverrideInvalidValueIgnored(t *testing.T) {
	path := writeConfigFile(t, minimalYAML)

	t.Setenv("OECS_GOVERNANCE_DEFAULT_ALLOCATION", "not-a-number")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Governance.DefaultAllocation != DefaultAllocation {
		t.Errorf("default allocation = %v, want default retained", cfg.Governance.DefaultAllocation)
	}
}

// ============================================================================
// Validation
// ============================================================================

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := NewDefault()
	cfg.Provider.APIKey = ""
	cfg.Governance.ConsentSecret = ""
	cfg.Governance.DefaultMode = "RECKLESS"
	cfg.Audit.Backend = "parchment"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error")
	}

	var verr ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error type = %T, want ValidationError", err)
	}
	if len(verr.Errors) != 4 {
		t.Errorf("collected %d errors, want 4: %v", len(verr.Errors), verr)
	}

	fields := make(map[string]bool)
	for _, fe := range verr.Errors {
		fields[fe.Field] = true
	}
	for _, want := range []string{
		"provider.api_key",
		"governance.consent_secret",
		"governance.default_mode",
		"audit.backend",
	} {
		if !fields[want] {
			t.Errorf("missing field error for %s", want)
		}
	}
}

func TestValidateShortConsentSecret(t *testing.T) {
	cfg := NewDefault()
	cfg.Provider.APIKey = "k"
	cfg.Governance.ConsentSecret = "short"

	err := Validate(cfg)
	if err == nil || !strings.Contains(err.Error(), "at least 16 bytes") {
		t.Errorf("short secret not rejected: %v", err)
	}
}

func TestValidateRetentionRequiresMaxAge(t *testing.T) {
	cfg := NewDefault()
	cfg.Provider.APIKey = "k"
	cfg.Governance.ConsentSecret = "config-test-secret-key"
	cfg.Audit.Retention.Enabled = true
	cfg.Audit.Retention.MaxAge = -time.Hour

	err := Validate(cfg)
	if err == nil || !strings.Contains(err.Error(), "audit.retention.max_age") {
		t.Errorf("invalid retention max age not rejected: %v", err)
	}
}

func TestValidateTracingSampleRatio(t *testing.T) {
	cfg := NewDefault()
	cfg.Provider.APIKey = "k"
	cfg.Governance.ConsentSecret = "config-test-secret-key"
	cfg.Telemetry.Tracing.Enabled = true
	cfg.Telemetry.Tracing.SampleRatio = 1.5

	err := Validate(cfg)
	if err == nil || !strings.Contains(err.Error(), "sample_ratio") {
		t.Errorf("out-of-range sample ratio not rejected: %v", err)
	}
}

func TestValidDefaultConfigPasses(t *testing.T) {
	cfg := NewDefault()
	cfg.Provider.APIKey = "test-api-key"
	cfg.Governance.ConsentSecret = "config-test-secret-key"

	if err := Validate(cfg); err != nil {
		t.Errorf("default config with credentials failed validation: %v", err)
	}
}

func TestValidateMalformedModeCatalog(t *testing.T) {
	path := writeConfigFile(t, minimalYAML+`
  modes:
    - name: SIMULATION
      base_cost: 40
      escalation_factor: 0.5
`)

	_, err := LoadConfig(path)
	if err == nil || !strings.Contains(err.Error(), "governance.modes") {
		t.Errorf("malformed catalog not rejected: %v", err)
	}
}

func TestGovernanceCatalogOverride(t *testing.T) {
	path := writeConfigFile(t, minimalYAML+`
  modes:
    - name: DIAGNOSTIC
      base_cost: 2
      escalation_factor: 1
    - name: EXPLORATORY
      base_cost: 8
      escalation_factor: 1.2
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	catalog, err := cfg.Governance.Catalog()
	if err != nil {
		t.Fatalf("Catalog: %v", err)
	}
	if got := catalog.CostOf("DIAGNOSTIC"); got != 2 {
		t.Errorf("DIAGNOSTIC base cost = %v, want 2", got)
	}
	if catalog.Has("SIMULATION") {
		t.Error("override catalog should not contain SIMULATION")
	}
}

func TestGovernanceCatalogDefault(t *testing.T) {
	cfg := NewDefault()
	catalog, err := cfg.Governance.Catalog()
	if err != nil {
		t.Fatalf("Catalog: %v", err)
	}
	if !catalog.Has("SIMULATION") {
		t.Error("default catalog missing SIMULATION")
	}
}
