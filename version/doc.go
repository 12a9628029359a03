// Package version reports kvbridge build information.
//
// Version, commit and build time are set at link time and fall back to the
// VCS stamp the Go toolchain embeds:
//
//	go build -ldflags "-X github.com/kbukum/kvbridge/version.Version=1.2.0" ./cmd/kvbridge
package version
