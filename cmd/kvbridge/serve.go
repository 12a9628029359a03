package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/kbukum/kvbridge/component"
	"github.com/kbukum/kvbridge/redis"
	"github.com/kbukum/kvbridge/server"
	"github.com/kbukum/kvbridge/version"
)

func newServeCmd(g *globalFlags) *cobra.Command {
	var addrPort int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the bridge operations over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = addrPort
			}

			rt, err := newRuntime(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), rt)
		},
	}
	cmd.Flags().IntVar(&addrPort, "port", 0, "listen port (default from server.port, 8080)")
	return cmd
}

// serve registers the redis and http components and runs until signalled.
func serve(ctx context.Context, rt *runtime) error {
	app := rt.app

	srv := server.New(app.Cfg.Server, app.Logger)
	srv.ApplyMiddleware(rt.metrics)
	srv.RegisterDefaultEndpoints(app.Name, app.Version, func(ctx context.Context) []component.Health {
		return app.Components.HealthAll(ctx)
	})
	server.NewBridgeHandler(rt.bridge).Register(srv.Engine())

	if err := app.RegisterComponent(redis.NewComponent(rt.handle, app.Logger)); err != nil {
		return err
	}
	if err := app.RegisterComponent(server.NewComponent(srv)); err != nil {
		return err
	}

	app.Logger.Info("Serving kvbridge", map[string]interface{}{
		"version": version.Get().String(),
	})
	return app.Run(ctx)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return writeJSON(cmd.OutOrStdout(), version.Get())
		},
	}
}
