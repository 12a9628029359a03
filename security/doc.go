// Package security builds the TLS client configuration used to reach Redis.
//
//	cfg := security.TLSConfig{
//	    Enabled:    true,
//	    ServerName: "cache.internal",
//	    CAFile:     "/etc/redis/ca.pem",
//	}
//	tlsConfig, err := cfg.Build() // nil when TLS is off
package security
