package main

import (
	"fmt"
	"net"

	"github.com/spf13/cobra"

	"github.com/nao1215/agencydash/internal/config"
	"github.com/nao1215/agencydash/internal/server"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the agency dashboard in the browser",
		Long: `Serve starts the dashboard web server.

The page shows the searchable agency table, the profit bar chart with
losses drawn in red, and a map of head offices connected to Brussels.
The dataset is read again on every request, so edits to the CSV file
show up on reload.

Endpoints:
  /                 dashboard page (?q=search&sort=column&desc=1)
  /chart.svg        profit chart (also /chart.png)
  /map.geojson      map markers and connectors
  /api/agencies     full dashboard as JSON
  /health           health check

Examples:
  # Serve the shipped dataset on 127.0.0.1:8501
  agencydash serve

  # Serve another file on every interface
  agencydash serve -d agencies.csv -a :8080`,
		Args: cobra.NoArgs,
		RunE: runServeCmd,
	}

	cmd.Flags().StringP("addr", "a", "",
		"Listen address in host:port format (default: "+config.DefaultAddr+")")

	return cmd
}

// runServeCmd executes the serve command.
func runServeCmd(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}

	addr, err := cmd.Flags().GetString("addr")
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.Addr = addr
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("configuration error: %w", err)
		}
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", cfg.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.Addr, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Dashboard running at http://%s/ (press Ctrl+C to stop)\n", ln.Addr())

	srv := server.New(cfg,
		server.WithLogger(logger),
		server.WithVersion(getVersion()),
	)
	return srv.Serve(ctx, ln)
}
