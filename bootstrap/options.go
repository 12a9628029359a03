package bootstrap

import (
	"io"
	"time"

	"github.com/kbukum/kvbridge/logger"
)

// DefaultGracefulTimeout bounds shutdown and each component's Stop.
const DefaultGracefulTimeout = 15 * time.Second

// Option configures NewApp.
type Option func(*appOptions)

type appOptions struct {
	logger          *logger.Logger
	gracefulTimeout time.Duration
	summaryOut      io.Writer
	quiet           bool
}

// WithLogger uses l instead of initializing the global logger.
func WithLogger(l *logger.Logger) Option {
	return func(o *appOptions) { o.logger = l }
}

// WithGracefulTimeout bounds shutdown. Non-positive values keep the default.
func WithGracefulTimeout(d time.Duration) Option {
	return func(o *appOptions) {
		if d > 0 {
			o.gracefulTimeout = d
		}
	}
}

// WithSummaryOutput writes the startup summary to w instead of stderr.
func WithSummaryOutput(w io.Writer) Option {
	return func(o *appOptions) { o.summaryOut = w }
}

// WithoutSummary suppresses the startup summary, for one-shot commands.
func WithoutSummary() Option {
	return func(o *appOptions) { o.quiet = true }
}
