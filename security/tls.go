package security

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"

	apperrors "github.com/kbukum/kvbridge/errors"
)

// TLSConfig describes the client side of a TLS connection to the store.
type TLSConfig struct {
	// Enabled turns TLS on with system roots. Any file or SkipVerify also
	// turns it on.
	Enabled bool

	// ServerName is verified against the server certificate.
	ServerName string

	// SkipVerify disables server certificate verification.
	SkipVerify bool

	// CAFile replaces the system roots with the PEM certificates it holds.
	CAFile string

	// CertFile and KeyFile hold the client certificate for mutual TLS.
	CertFile string
	KeyFile  string

	// MinVersion defaults to TLS 1.2.
	MinVersion uint16
}

// IsEnabled reports whether a TLS connection is requested.
func (c *TLSConfig) IsEnabled() bool {
	if c == nil {
		return false
	}
	return c.Enabled || c.SkipVerify || c.CAFile != "" || c.CertFile != ""
}

// Validate checks that the certificate and key are given together.
func (c *TLSConfig) Validate() error {
	if c == nil {
		return nil
	}
	if (c.CertFile != "") != (c.KeyFile != "") {
		return apperrors.InvalidInput("tls", "cert file and key file must be set together")
	}
	return nil
}

// Build returns the *tls.Config, or nil when TLS is not enabled.
func (c *TLSConfig) Build() (*tls.Config, error) {
	if !c.IsEnabled() {
		return nil, nil
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	minVersion := c.MinVersion
	if minVersion == 0 {
		minVersion = tls.VersionTLS12
	}
	cfg := &tls.Config{
		ServerName:         c.ServerName,
		InsecureSkipVerify: c.SkipVerify, //nolint:gosec // opt-in for self-signed development stores
		MinVersion:         minVersion,
	}

	if c.CAFile != "" {
		pem, err := os.ReadFile(c.CAFile)
		if err != nil {
			return nil, fmt.Errorf("read CA file: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("parse CA file %s: no certificates found", c.CAFile)
		}
		cfg.RootCAs = pool
	}

	if c.CertFile != "" {
		cert, err := tls.LoadX509KeyPair(c.CertFile, c.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("load client certificate: %w", err)
		}
		cfg.Certificates = []tls.Certificate{cert}
	}
	return cfg, nil
}
