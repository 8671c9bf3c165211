package cli

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/canicai/canicai/pkg/api"
	"github.com/canicai/canicai/pkg/observability/prom"
)

// serveCommand creates the serve command that runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr   string
		origin string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serve exposes the catalog and the workflow store over HTTP until
interrupted. Address, timeouts and metrics are read from [server] in the
config file; --addr overrides the address.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)
			sc := c.cfg.Server
			if addr != "" {
				sc.Addr = addr
			}

			src, closeCatalog, err := openCatalog(ctx, c.cfg.Catalog)
			if err != nil {
				return err
			}
			defer closeCatalog()

			st, err := openStore(ctx, c.cfg.Store)
			if err != nil {
				return err
			}
			defer st.Close()

			renders, err := openRenderCache(ctx, c.cfg)
			if err != nil {
				return err
			}
			defer renders.Close()

			opts := []api.Option{
				api.WithLogger(logger),
				api.WithSpacing(c.cfg.Layout.Spacing),
				api.WithRenderCache(renders, sc.RenderCacheTTL),
			}
			if origin != "" {
				opts = append(opts, api.WithCORSOrigin(origin))
			}
			if sc.Metrics {
				reg := prometheus.NewRegistry()
				reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
				prom.Register(reg)
				opts = append(opts, api.WithMetrics(reg))
			}

			logger.Info("starting API",
				"catalog", c.cfg.Catalog.Source, "store", c.cfg.Store.Backend,
				"renderCache", sc.RenderCache, "metrics", sc.Metrics)
			return api.New(src, st, opts...).ListenAndServe(ctx, sc.Addr, api.Timeouts{
				Read:     sc.ReadTimeout,
				Write:    sc.WriteTimeout,
				Shutdown: sc.ShutdownTimeout,
			})
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().StringVar(&origin, "cors-origin", "", `allowed CORS origin, e.g. "*" or "https://app.example.com"`)

	return cmd
}
