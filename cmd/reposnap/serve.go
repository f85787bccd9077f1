package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/quantmind-br/reposnap/internal/domain"
	"github.com/quantmind-br/reposnap/internal/output"
	"github.com/quantmind-br/reposnap/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	Long: `Serves GET /{org}/{repo}, which answers with the aggregated text of the
repository root, plus /healthz and /history.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (default 0.0.0.0:3000)")
	serveCmd.Flags().Bool("save", false, "Also write every snapshot to the output directory")

	_ = viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
	_ = viper.BindPFlag("output.enabled", serveCmd.Flags().Lookup("save"))
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := setup(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	var writer domain.Writer
	if cfg.Output.Enabled {
		writer = output.NewWriter(output.WriterOptions{BaseDir: cfg.Output.Directory})
	}

	d, err := buildDeps(ctx, cfg, writer)
	if err != nil {
		return err
	}
	defer d.close()

	srv := server.New(server.Options{
		Addr:            cfg.Server.Addr,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		Handler: server.NewHandler(server.HandlerOptions{
			Fetcher: d.service,
			Journal: d.journal,
			Timeout: cfg.Fetch.Timeout,
			Logger:  log.WithComponent("http"),
		}),
		Tracing:     cfg.Telemetry.Enabled,
		ServiceName: cfg.Telemetry.ServiceName,
		Logger:      log,
	})

	log.Info().
		Str("addr", cfg.Server.Addr).
		Dur("timeout", cfg.Fetch.Timeout).
		Str("git_backend", cfg.Fetch.GitBackend).
		Bool("save", cfg.Output.Enabled).
		Bool("journal", d.journal != nil).
		Msg("Starting reposnap server")

	return srv.Run(ctx)
}
