// Package config defines the client configuration, its defaults, and
// YAML file loading with validation.
package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/c360/fusionstream/errors"
	"github.com/c360/fusionstream/pkg/tlsutil"
)

// Config is the complete client configuration.
type Config struct {
	Stream  StreamConfig  `yaml:"stream"`
	Window  WindowConfig  `yaml:"window"`
	Alert   AlertConfig   `yaml:"alert"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// StreamConfig configures the connection manager.
type StreamConfig struct {
	// Endpoint is the WebSocket URL of the telemetry backend.
	Endpoint string `yaml:"endpoint"`

	// ReconnectInterval is the fixed backoff before a reconnect attempt.
	ReconnectInterval time.Duration `yaml:"reconnect_interval"`

	// MaxRetries bounds automatic reconnect attempts before the client
	// gives up and waits for a resume signal or a manual Connect.
	MaxRetries int `yaml:"max_retries"`

	// HandshakeTimeout bounds the WebSocket dial.
	HandshakeTimeout time.Duration `yaml:"handshake_timeout"`

	// TLS applies to wss endpoints.
	TLS tlsutil.Config `yaml:"tls"`
}

// WindowConfig configures the display sample buffer.
type WindowConfig struct {
	// Size is the maximum number of samples kept for display.
	Size int `yaml:"size"`

	// MinInterval is the minimum wall-clock gap between accepted samples.
	// Samples arriving sooner are dropped from the window, not from delivery.
	MinInterval time.Duration `yaml:"min_interval"`
}

// AlertConfig configures the anomaly alert state machine.
type AlertConfig struct {
	// RaiseThreshold is the score above which (strictly) an alert is raised.
	RaiseThreshold float64 `yaml:"raise_threshold"`

	// HighThreshold and CriticalThreshold classify severity; boundary
	// values take the higher-severity branch.
	HighThreshold     float64 `yaml:"high_threshold"`
	CriticalThreshold float64 `yaml:"critical_threshold"`

	// AutoDismiss is how long an alert stays current without an
	// explicit dismissal.
	AutoDismiss time.Duration `yaml:"auto_dismiss"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Port    int    `yaml:"port"`
	Path    string `yaml:"path"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Stream: StreamConfig{
			Endpoint:          "ws://127.0.0.1:8080",
			ReconnectInterval: 3 * time.Second,
			MaxRetries:        10,
			HandshakeTimeout:  10 * time.Second,
		},
		Window: WindowConfig{
			Size:        100,
			MinInterval: 100 * time.Millisecond,
		},
		Alert: AlertConfig{
			RaiseThreshold:    0.7,
			HighThreshold:     0.8,
			CriticalThreshold: 0.9,
			AutoDismiss:       5 * time.Second,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Port:    9090,
			Path:    "/metrics",
		},
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.Stream.Endpoint == "" {
		return errors.WrapInvalid(errors.ErrMissingConfig,
			"config", "Validate", "check stream endpoint")
	}

	u, err := url.Parse(c.Stream.Endpoint)
	if err != nil {
		return errors.WrapInvalid(err, "config", "Validate", "parse stream endpoint")
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return errors.WrapInvalid(
			fmt.Errorf("%w: endpoint scheme must be ws or wss, got %q",
				errors.ErrInvalidConfig, u.Scheme),
			"config", "Validate", "check endpoint scheme")
	}

	if c.Stream.ReconnectInterval <= 0 {
		return errors.WrapInvalid(
			fmt.Errorf("%w: reconnect_interval must be positive", errors.ErrInvalidConfig),
			"config", "Validate", "check reconnect interval")
	}
	if c.Stream.MaxRetries < 0 {
		return errors.WrapInvalid(
			fmt.Errorf("%w: max_retries must not be negative", errors.ErrInvalidConfig),
			"config", "Validate", "check max retries")
	}

	if c.Window.Size <= 0 {
		return errors.WrapInvalid(
			fmt.Errorf("%w: window size must be positive", errors.ErrInvalidConfig),
			"config", "Validate", "check window size")
	}
	if c.Window.MinInterval < 0 {
		return errors.WrapInvalid(
			fmt.Errorf("%w: window min_interval must not be negative", errors.ErrInvalidConfig),
			"config", "Validate", "check window interval")
	}

	a := c.Alert
	if a.RaiseThreshold < 0 || a.RaiseThreshold > 1 {
		return errors.WrapInvalid(
			fmt.Errorf("%w: raise_threshold must be in [0,1]", errors.ErrInvalidConfig),
			"config", "Validate", "check raise threshold")
	}
	if !(a.RaiseThreshold <= a.HighThreshold && a.HighThreshold <= a.CriticalThreshold) {
		return errors.WrapInvalid(
			fmt.Errorf("%w: thresholds must be ordered raise <= high <= critical",
				errors.ErrInvalidConfig),
			"config", "Validate", "check threshold ordering")
	}
	if a.AutoDismiss <= 0 {
		return errors.WrapInvalid(
			fmt.Errorf("%w: auto_dismiss must be positive", errors.ErrInvalidConfig),
			"config", "Validate", "check auto dismiss")
	}

	return nil
}

// LoadFile reads a YAML config file, layered over defaults, and validates it.
func LoadFile(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.WrapInvalid(err, "config", "LoadFile", "read config file")
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.WrapInvalid(err, "config", "LoadFile", "parse config file")
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}
