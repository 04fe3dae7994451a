package providers

import (
	"context"
	"log/slog"
	"time"
)

// defaultHealthInterval is used when no interval is configured.
const defaultHealthInterval = 30 * time.Second

// StartHealthChecker starts a background goroutine that periodically checks
// the provider's health. It runs until Close is called or the context is
// cancelled, backing off while the provider is unhealthy.
func (p *HTTPProvider) StartHealthChecker(ctx context.Context, interval time.Duration) {
	go p.runHealthChecker(ctx, interval)
}

func (p *HTTPProvider) runHealthChecker(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = defaultHealthInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	slog.Info("health checker started",
		"provider", p.config.Name,
		"interval", interval,
	)

	for {
		select {
		case <-ctx.Done():
			slog.Debug("health checker stopped (context cancelled)", "provider", p.config.Name)
			return

		case <-p.stopHealthCheck:
			slog.Debug("health checker stopped (provider closed)", "provider", p.config.Name)
			return

		case <-ticker.C:
			p.performHealthCheck(ctx)

			if !p.IsHealthy() {
				health := p.Health()
				ticker.Reset(healthBackoff(health.ConsecutiveFailures, interval))
			} else {
				ticker.Reset(interval)
			}
		}
	}
}

// performHealthCheck executes a single health check.
func (p *HTTPProvider) performHealthCheck(ctx context.Context) {
	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	start := time.Now()
	err := p.healthCheckImpl(checkCtx)
	latency := time.Since(start)

	if err != nil {
		p.updateHealth(false, err)
		slog.Error("health check failed",
			"provider", p.config.Name,
			"error", err,
			"latency", latency,
		)
		return
	}

	wasFailing := p.Health().ConsecutiveFailures > 0
	p.updateHealth(true, nil)
	slog.Debug("health check passed",
		"provider", p.config.Name,
		"latency", latency,
	)

	if wasFailing {
		slog.Info("provider recovered", "provider", p.config.Name)
	}
}

// healthCheckImpl performs a lightweight GET against the base URL to verify
// the provider is reachable. Adapters with a dedicated health endpoint
// override HealthCheck.
func (p *HTTPProvider) healthCheckImpl(ctx context.Context) error {
	resp, err := p.DoRequest(ctx, "GET", p.config.BaseURL, nil, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return nil
}

// healthBackoff stretches the check interval based on consecutive failures,
// capped at 10x the base interval and 5 minutes absolute.
func healthBackoff(consecutiveFailures int, baseInterval time.Duration) time.Duration {
	if consecutiveFailures <= 0 {
		return baseInterval
	}

	multiplier := 1 << uint(consecutiveFailures)
	if multiplier > 10 {
		multiplier = 10
	}

	backoff := baseInterval * time.Duration(multiplier)
	if backoff > 5*time.Minute {
		backoff = 5 * time.Minute
	}
	return backoff
}

// HealthCheck performs a synchronous on-demand health check.
func (p *HTTPProvider) HealthCheck(ctx context.Context) error {
	return p.healthCheckImpl(ctx)
}
