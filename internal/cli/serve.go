package cli

import (
	"github.com/spf13/cobra"

	"github.com/doyel/gantt/internal/server"
)

// serveCommand creates the serve command for the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
		lf      layoutFlags
		rf      renderFlags
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the layout API over HTTP",
		Long: `Serve the layout API over HTTP.

Endpoints:
  POST /v1/layout           dataset in, layout JSON out
  POST /v1/render?format=   dataset in, svg, json or dot out
  POST /v1/bounds           dataset in, {start, end, empty} out
  GET  /healthz             liveness

Layout and render settings from the config and flags are the defaults;
each request may override them in its "config" object.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lf.apply(cmd, c.Config)
			rf.apply(cmd, c.Config)
			if cmd.Flags().Changed("addr") {
				c.Config.Server.Addr = addr
			}
			opts, err := pipelineOptions(c.Config, nil, &rf)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			srv := server.New(runner, opts, c.Logger)
			printInfo("Listening on %s", StyleHighlight.Render(c.Config.Server.Addr))
			return srv.ListenAndServe(ctx, c.Config.Server.Addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", c.Config.Server.Addr, "listen address")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	lf.register(cmd, false)
	rf.register(cmd, true)

	return cmd
}
