// Package tlsutil builds the client TLS configuration for wss endpoints.
package tlsutil

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"

	"github.com/c360/fusionstream/errors"
)

// Config holds client-side TLS settings for the stream link.
type Config struct {
	// CAFiles are additional trusted CA certificates, appended to the
	// system pool.
	CAFiles []string `yaml:"ca_files"`

	// InsecureSkipVerify disables server certificate verification.
	// Intentional via config; operators know the security implications.
	InsecureSkipVerify bool `yaml:"insecure_skip_verify"`

	// MinVersion is "1.2" or "1.3"; anything else falls back to 1.2.
	MinVersion string `yaml:"min_version"`
}

// LoadClientTLSConfig creates a tls.Config for WebSocket clients.
// The system CA bundle is always trusted; CAFiles add to it.
func LoadClientTLSConfig(cfg Config) (*tls.Config, error) {
	tlsConfig := &tls.Config{
		MinVersion: parseTLSVersion(cfg.MinVersion),
	}

	rootCAs, err := x509.SystemCertPool()
	if err != nil {
		rootCAs = x509.NewCertPool()
	}

	for _, caFile := range cfg.CAFiles {
		caPEM, err := os.ReadFile(caFile)
		if err != nil {
			return nil, errors.WrapFatal(err, "tlsutil", "LoadClientTLSConfig",
				fmt.Sprintf("read CA file %s", caFile))
		}
		if !rootCAs.AppendCertsFromPEM(caPEM) {
			return nil, errors.WrapFatal(
				fmt.Errorf("invalid PEM data"),
				"tlsutil", "LoadClientTLSConfig",
				fmt.Sprintf("parse CA certificate from %s", caFile))
		}
	}
	tlsConfig.RootCAs = rootCAs

	if cfg.InsecureSkipVerify {
		tlsConfig.InsecureSkipVerify = true
	}

	return tlsConfig, nil
}

// parseTLSVersion converts version string to crypto/tls constant
// Returns tls.VersionTLS12 if empty or invalid
func parseTLSVersion(version string) uint16 {
	switch version {
	case "1.3":
		return tls.VersionTLS13
	case "1.2":
		return tls.VersionTLS12
	default:
		return tls.VersionTLS12
	}
}
