package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/fusionstream/errors"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "ws://127.0.0.1:8080", cfg.Stream.Endpoint)
	assert.Equal(t, 3*time.Second, cfg.Stream.ReconnectInterval)
	assert.Equal(t, 10, cfg.Stream.MaxRetries)
	assert.Equal(t, 100, cfg.Window.Size)
	assert.Equal(t, 100*time.Millisecond, cfg.Window.MinInterval)
	assert.InDelta(t, 0.7, cfg.Alert.RaiseThreshold, 1e-9)
	assert.InDelta(t, 0.8, cfg.Alert.HighThreshold, 1e-9)
	assert.InDelta(t, 0.9, cfg.Alert.CriticalThreshold, 1e-9)
	assert.Equal(t, 5*time.Second, cfg.Alert.AutoDismiss)
}

func TestValidateRejectsBadEndpoint(t *testing.T) {
	cfg := Default()
	cfg.Stream.Endpoint = "http://127.0.0.1:8080"

	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))

	cfg.Stream.Endpoint = ""
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsBadWindow(t *testing.T) {
	cfg := Default()
	cfg.Window.Size = 0
	require.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Window.MinInterval = -time.Second
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsUnorderedThresholds(t *testing.T) {
	cfg := Default()
	cfg.Alert.HighThreshold = 0.95 // above critical
	require.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Alert.RaiseThreshold = 1.5
	require.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Alert.AutoDismiss = 0
	require.Error(t, cfg.Validate())
}

func TestLoadFileLayersOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fusionstream.yaml")

	content := `
stream:
  endpoint: wss://telemetry.example.com/stream
  max_retries: 3
alert:
  auto_dismiss: 2s
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "wss://telemetry.example.com/stream", cfg.Stream.Endpoint)
	assert.Equal(t, 3, cfg.Stream.MaxRetries)
	assert.Equal(t, 2*time.Second, cfg.Alert.AutoDismiss)

	// Untouched sections keep defaults
	assert.Equal(t, 100, cfg.Window.Size)
	assert.InDelta(t, 0.7, cfg.Alert.RaiseThreshold, 1e-9)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))
}

func TestLoadFileInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("stream: ["), 0o600))

	_, err := LoadFile(path)
	require.Error(t, err)
}

func TestLoadFileValidates(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("window:\n  size: -1\n"), 0o600))

	_, err := LoadFile(path)
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))
}
