// Package main implements the entry point for fusionview, a terminal
// client for the fused telemetry stream. It maintains the WebSocket link
// to the backend, keeps a bounded display window of recent samples, and
// raises anomaly alerts from the scores riding on the stream.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/c360/fusionstream/alert"
	"github.com/c360/fusionstream/config"
	"github.com/c360/fusionstream/health"
	"github.com/c360/fusionstream/metric"
	"github.com/c360/fusionstream/stream"
	"github.com/c360/fusionstream/telemetry"
	"github.com/c360/fusionstream/window"
)

// Build information constants
const (
	Version = "0.1.0"
	appName = "fusionview"
)

func main() {
	// Add panic recovery
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := run(); err != nil {
		slog.Error("Application failed", "error", err, "exit_code", 1)
		os.Exit(1)
	}
}

func run() error {
	cliCfg := parseFlags()

	if cliCfg.ShowVersion {
		fmt.Printf("%s %s\n", appName, Version)
		return nil
	}

	if err := validateFlags(cliCfg); err != nil {
		return err
	}

	logger := setupLogger(cliCfg.LogLevel, cliCfg.LogFormat)
	slog.SetDefault(logger)

	cfg, err := loadConfig(cliCfg)
	if err != nil {
		return err
	}

	if cliCfg.Validate {
		logger.Info("configuration is valid")
		return nil
	}

	// Pipeline pieces share one metrics registry and one health monitor.
	registry := metric.NewRegistry()
	healthMon := health.NewMonitor(appName)

	win := window.New(cfg.Window, registry)
	alerts := alert.NewMonitor(cfg.Alert, logger, registry)

	client, err := stream.NewClient(cfg.Stream, logger, registry)
	if err != nil {
		return err
	}

	wireObservers(client, win, alerts, healthMon)

	var metricsServer *metric.Server
	if cfg.Metrics.Enabled {
		metricsServer = metric.NewServer(cfg.Metrics.Port, cfg.Metrics.Path, registry)
		metricsServer.MountHealth(healthMon.Handler())
		go func() {
			if err := metricsServer.Start(); err != nil {
				logger.Error("metrics server failed", "error", err)
			}
		}()
		defer func() { _ = metricsServer.Stop() }()
		logger.Info("metrics server started", "address", metricsServer.Address())
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client.Connect(ctx)

	// SIGCONT doubles as the became-active-again signal: a suspended
	// process whose link timed out reconnects on resume.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGCONT)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	// Keep-alive cadence matches the backend's idle timeout expectations.
	heartbeat := time.NewTicker(30 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case sig := <-sigCh:
			if sig == syscall.SIGCONT {
				client.Resume(ctx)
				continue
			}
			logger.Info("shutdown signal received", "signal", sig.String())
			cancel()
			return client.Close(cliCfg.ShutdownTimeout)

		case <-ticker.C:
			logSummary(logger, client, win, alerts)
			updatePipelineHealth(healthMon, win, alerts)

		case <-heartbeat.C:
			// Skipped while disconnected so stale keep-alives do not
			// queue up behind real commands.
			if client.State() == stream.StateOpen {
				if payload, err := telemetry.EncodeHeartbeat(); err == nil {
					client.Send(payload)
				}
			}
		}
	}
}

// loadConfig layers the optional config file over defaults and applies
// CLI overrides.
func loadConfig(cliCfg *CLIConfig) (config.Config, error) {
	var cfg config.Config
	var err error

	if cliCfg.ConfigPath != "" {
		cfg, err = config.LoadFile(cliCfg.ConfigPath)
		if err != nil {
			return cfg, err
		}
	} else {
		cfg = config.Default()
	}

	if cliCfg.Endpoint != "" {
		cfg.Stream.Endpoint = cliCfg.Endpoint
		if err := cfg.Validate(); err != nil {
			return cfg, err
		}
	}

	return cfg, nil
}

// wireObservers connects the stream client to the window, the alert
// monitor, and the health monitor.
func wireObservers(client *stream.Client, win *window.Buffer, alerts *alert.Monitor, healthMon *health.Monitor) {
	client.OnSample(func(s *telemetry.Sample) {
		win.Ingest(s)
		if s.HasAnomalyScore() {
			alerts.Observe(s.Score())
		}
	})

	client.OnControl(func(ctrl *telemetry.Control) {
		if ctrl.Type == telemetry.ControlAnomalyPrediction && ctrl.Score != nil {
			alerts.Observe(*ctrl.Score)
		}
	})

	client.OnStatus(func(st stream.State) {
		switch st {
		case stream.StateOpen:
			healthMon.UpdateHealthy("stream", "connected")
		case stream.StateConnecting, stream.StateReconnectScheduled:
			healthMon.UpdateDegraded("stream", "reconnecting")
		case stream.StateExhausted:
			healthMon.UpdateUnhealthy("stream", "reconnect retries exhausted")
		default:
			healthMon.UpdateDegraded("stream", "disconnected")
		}
	})
}

// logSummary emits the once-per-second display line: connection status,
// latest reading, window depth, and the current alert if any.
func logSummary(logger *slog.Logger, client *stream.Client, win *window.Buffer, alerts *alert.Monitor) {
	stats := client.Stats()

	attrs := []any{
		"state", client.State().Coarse(),
		"received", stats.MessagesReceived,
		"window_depth", win.Len(),
	}

	if latest := win.Latest(); latest != nil {
		attrs = append(attrs,
			"roll", fmt.Sprintf("%.1f", latest.EulerDegrees[0]),
			"pitch", fmt.Sprintf("%.1f", latest.EulerDegrees[1]),
			"yaw", fmt.Sprintf("%.1f", latest.EulerDegrees[2]),
			"speed", fmt.Sprintf("%.2f", latest.SpeedMagnitude()),
			"confidence", fmt.Sprintf("%.2f", latest.Confidence),
		)
	}

	if rec := alerts.Current(); rec != nil {
		attrs = append(attrs,
			"alert", rec.Severity.String(),
			"alert_score", fmt.Sprintf("%.2f", rec.Score),
		)
	}

	logger.Info("telemetry", attrs...)
}

func updatePipelineHealth(healthMon *health.Monitor, win *window.Buffer, alerts *alert.Monitor) {
	healthMon.Update("window", health.NewHealthy("window", "ingesting").
		WithMetrics(&health.Metrics{SamplesProcessed: win.Accepted()}))

	if alerts.Active() {
		healthMon.UpdateDegraded("alert", "anomaly alert active")
	} else {
		healthMon.UpdateHealthy("alert", "no active alert")
	}
}
