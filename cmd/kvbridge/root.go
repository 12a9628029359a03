package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/kbukum/kvbridge/bootstrap"
	"github.com/kbukum/kvbridge/bridge"
	"github.com/kbukum/kvbridge/config"
	apperrors "github.com/kbukum/kvbridge/errors"
	"github.com/kbukum/kvbridge/logger"
	"github.com/kbukum/kvbridge/resolve"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configFile string
	envFile    string
	logLevel   string
	options    string
	varsJSON   string
	vars       map[string]string
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}

	root := &cobra.Command{
		Use:   "kvbridge",
		Short: "kvbridge - JSON values and log records over Redis",
		Long: `kvbridge reads and writes JSON values in Redis, appends structured log
records to Redis lists and checks store liveness. Redis is configured with
REDIS_HOST, REDIS_PORT, REDIS_DB, REDIS_USER, REDIS_PASSWORD and REDIS_TLS.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&g.configFile, "config", "", "config file (default: first config.yml found)")
	pf.StringVar(&g.envFile, "env-file", "", ".env file to load (default: first .env found)")
	pf.StringVar(&g.logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	pf.StringVar(&g.options, "options", "", "options bag as a JSON object; flags override its members")
	pf.StringVar(&g.varsJSON, "vars", "", "template variables as a JSON object")
	pf.StringToStringVar(&g.vars, "var", nil, "template variable name=value (repeatable)")

	root.AddCommand(
		newQueryCmd(g),
		newPingCmd(g),
		newInsertCmd(g),
		newLogInsertCmd(g),
		newServeCmd(g),
		newVersionCmd(),
	)
	return root
}

// loadConfig reads configuration for the current invocation.
func (g *globalFlags) loadConfig() (*AppConfig, error) {
	var opts []config.LoaderOption
	if g.configFile != "" {
		opts = append(opts, config.WithConfigFile(g.configFile))
	}
	if g.envFile != "" {
		opts = append(opts, config.WithEnvFile(g.envFile))
	}

	cfg := &AppConfig{}
	if err := config.LoadConfig(serviceName, cfg, opts...); err != nil {
		return nil, err
	}
	if g.logLevel != "" {
		cfg.Logging.Level = g.logLevel
	}
	return cfg, nil
}

// resolver builds the template resolver from --vars and --var. Without
// variables values pass through unchanged.
func (g *globalFlags) resolver() (resolve.Resolver, error) {
	vars := map[string]any{}
	if g.varsJSON != "" {
		if err := json.Unmarshal([]byte(g.varsJSON), &vars); err != nil {
			return nil, apperrors.InvalidFormat("vars", "JSON object").WithCause(err)
		}
	}
	for k, v := range g.vars {
		vars[k] = v
	}
	if len(vars) == 0 {
		return resolve.Identity, nil
	}
	return resolve.NewTemplate(vars), nil
}

// baseOptions parses --options.
func (g *globalFlags) baseOptions() (bridge.Options, error) {
	opts := bridge.Options{}
	if g.options == "" {
		return opts, nil
	}
	if err := json.Unmarshal([]byte(g.options), &opts); err != nil {
		return nil, apperrors.InvalidFormat("options", "JSON object").WithCause(err)
	}
	if opts == nil {
		opts = bridge.Options{}
	}
	return opts, nil
}

// operation is one bridge call made by a one-shot command.
type operation func(ctx context.Context, b *bridge.Bridge, res resolve.Resolver, opts bridge.Options, out io.Writer) error

// runOperation loads config, boots a quiet app and runs op with a fresh
// invocation ID attached to the context.
func (g *globalFlags) runOperation(cmd *cobra.Command, opts bridge.Options, op operation) error {
	res, err := g.resolver()
	if err != nil {
		return err
	}
	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}

	ctx := logger.ContextWithRequestID(cmd.Context(), uuid.NewString())
	rt, err := newRuntime(ctx, cfg, bootstrap.WithoutSummary())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	return rt.runOnce(ctx, func(ctx context.Context, b *bridge.Bridge) error {
		return op(ctx, b, res, opts, out)
	})
}

// Exit codes by error kind.
const (
	exitFailure     = 1
	exitInvalid     = 2
	exitUnavailable = 3
	exitTimeout     = 4
	exitStore       = 5
)

func exitCode(err error) int {
	appErr, ok := apperrors.AsAppError(err)
	if !ok {
		return exitFailure
	}
	switch appErr.Code {
	case apperrors.ErrCodeInvalidInput, apperrors.ErrCodeInvalidFormat, apperrors.ErrCodeMissingField, apperrors.ErrCodePayloadTooLarge:
		return exitInvalid
	case apperrors.ErrCodeServiceUnavailable:
		return exitUnavailable
	case apperrors.ErrCodeTimeout:
		return exitTimeout
	case apperrors.ErrCodeStore:
		return exitStore
	default:
		return exitFailure
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
