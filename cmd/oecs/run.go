package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"oecs-hq/lusaka/pkg/audit"
	"oecs-hq/lusaka/pkg/audit/retention"
	"oecs-hq/lusaka/pkg/audit/storage"
	"oecs-hq/lusaka/pkg/cli"
	"oecs-hq/lusaka/pkg/config"
	"oecs-hq/lusaka/pkg/consent"
	"oecs-hq/lusaka/pkg/providers"
	"oecs-hq/lusaka/pkg/providers/gemini"
	"oecs-hq/lusaka/pkg/server"
	"oecs-hq/lusaka/pkg/session"
	"oecs-hq/lusaka/pkg/session/archive"
	"oecs-hq/lusaka/pkg/telemetry/logging"
	"oecs-hq/lusaka/pkg/telemetry/metrics"
	"oecs-hq/lusaka/pkg/telemetry/tracing"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	watch         bool
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the governance engine server",
	Long: `Start the governance engine server with the specified configuration.

The server exposes the session API, proxies admitted exchanges to the
configured model, and records every governance decision in the audit
trail.

Examples:
  # Start with default config
  oecs run

  # Start with custom config
  oecs run --config /etc/oecs/oecs.yaml

  # Override listen address
  oecs run --listen 0.0.0.0:8080

  # Reload governance defaults when the config file changes
  oecs run --watch

  # Validate config without starting the server
  oecs run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.watch, "watch", false, "reload governance defaults on config changes")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting server")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return cli.NewConfigError(cfgFile, err.Error())
	}

	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	logging.Setup(logging.Config{
		Level:     cfg.Telemetry.Logging.Level,
		Format:    cfg.Telemetry.Logging.Format,
		AddSource: cfg.Telemetry.Logging.AddSource,
	})

	if runFlags.dryRun {
		fmt.Println("✓ Configuration valid")
		return nil
	}

	fmt.Printf("oecs v%s\n", Version)
	fmt.Printf("Loading configuration from: %s\n", cfgFile)
	fmt.Println("✓ Configuration loaded")

	ctx, cancel := cli.SignalContext()
	defer cancel()

	// Tracing
	tracer, err := tracing.New(tracing.Config{
		Enabled:     cfg.Telemetry.Tracing.Enabled,
		ServiceName: cfg.Telemetry.Tracing.ServiceName,
		Endpoint:    cfg.Telemetry.Tracing.Endpoint,
		Insecure:    cfg.Telemetry.Tracing.Insecure,
		SampleRatio: cfg.Telemetry.Tracing.SampleRatio,
	})
	if err != nil {
		return cli.NewCommandError("run", fmt.Errorf("initializing tracing: %w", err))
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = tracer.Shutdown(shutdownCtx)
	}()
	if tracer.Enabled() {
		fmt.Println("✓ Tracing enabled")
	}

	// Model transport
	provider, err := gemini.NewProvider(providers.Config{
		APIKey:     cfg.Provider.APIKey,
		BaseURL:    cfg.Provider.BaseURL,
		Model:      cfg.Provider.Model,
		Timeout:    cfg.Provider.Timeout,
		MaxRetries: cfg.Provider.MaxRetries,
	})
	if err != nil {
		return cli.NewCommandError("run", fmt.Errorf("initializing provider: %w", err))
	}
	defer provider.Close()
	provider.StartHealthChecker(ctx, 30*time.Second)
	fmt.Printf("✓ Provider initialized (%s)\n", cfg.Provider.Model)

	// Audit storage
	var auditStorage audit.Storage
	switch cfg.Audit.Backend {
	case "sqlite":
		sqliteCfg := storage.DefaultSQLiteConfig()
		sqliteCfg.Path = cfg.Audit.Path
		auditStorage, err = storage.NewSQLiteStorage(sqliteCfg)
		if err != nil {
			return cli.NewCommandError("run", fmt.Errorf("opening audit storage: %w", err))
		}
	case "memory":
		auditStorage = storage.NewMemoryStorage()
	default:
		return cli.NewConfigError(cfgFile, fmt.Sprintf("unsupported audit backend: %s", cfg.Audit.Backend))
	}
	defer auditStorage.Close()
	fmt.Printf("✓ Audit storage initialized (%s)\n", cfg.Audit.Backend)

	// Retention scheduler
	if cfg.Audit.Retention.Enabled {
		pruner := retention.NewPruner(auditStorage, &retention.Config{
			RetentionDays: int(cfg.Audit.Retention.MaxAge.Hours() / 24),
			PruneSchedule: cfg.Audit.Retention.Schedule,
		})
		scheduler := retention.NewScheduler(pruner)
		if err := scheduler.Start(ctx); err != nil {
			slog.Warn("failed to start retention scheduler", "error", err)
		} else {
			defer scheduler.Stop()
			fmt.Println("✓ Audit retention scheduler started")
		}
	}

	// Session archive
	var archiveStore *archive.Store
	if cfg.Archive.Enabled {
		archiveStore, err = archive.NewStore(archive.Config{Path: cfg.Archive.Path})
		if err != nil {
			return cli.NewCommandError("run", fmt.Errorf("opening session archive: %w", err))
		}
		defer archiveStore.Close()
		fmt.Println("✓ Session archive initialized")
	}

	// Consent signer
	signer, err := consent.NewSigner(cfg.Governance.ConsentSecret)
	if err != nil {
		return cli.NewConfigError(cfgFile, err.Error())
	}

	// Metrics
	var m *metrics.Metrics
	var metricsHandler http.Handler
	if cfg.Telemetry.Metrics.Enabled {
		m = metrics.NewMetrics()
		metricsHandler = promhttp.Handler()
	}

	catalog, err := cfg.Governance.Catalog()
	if err != nil {
		return cli.NewConfigError(cfgFile, err.Error())
	}

	// Session manager
	manager, err := session.NewManager(session.Config{
		Catalog:      catalog,
		Provider:     provider,
		Signer:       signer,
		Model:        cfg.Provider.Model,
		TicketTTL:    cfg.Governance.TicketTTL,
		AuditStorage: auditStorage,
		Archive:      archiveStore,
		Metrics:      m,
		MaxSessions:  cfg.Server.MaxSessions,
	})
	if err != nil {
		return cli.NewCommandError("run", err)
	}

	srv := server.NewServer(cfg, manager, metricsHandler)

	// Config watcher: governance defaults apply to new sessions only.
	if runFlags.watch {
		watcher, err := config.NewWatcher(cfgFile, slog.Default())
		if err != nil {
			return cli.NewCommandError("run", fmt.Errorf("starting config watcher: %w", err))
		}
		go func() {
			_ = watcher.Watch(ctx, srv.ApplyConfig)
		}()
		defer watcher.Stop()
		fmt.Println("✓ Configuration watcher started")
	}

	fmt.Println()
	fmt.Printf("✓ Server listening on %s\n", cfg.Server.ListenAddress)
	fmt.Printf("✓ Health endpoint: http://%s/healthz\n", cfg.Server.ListenAddress)
	if cfg.Telemetry.Metrics.Enabled {
		fmt.Printf("✓ Metrics endpoint: http://%s%s\n", cfg.Server.ListenAddress, cfg.Telemetry.Metrics.Path)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	if err := srv.Start(ctx); err != nil {
		return cli.NewCommandError("run", err)
	}

	fmt.Println("✓ Server stopped")
	return nil
}
