package cli

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/depsight/depsight/internal/api"
	"github.com/depsight/depsight/pkg/inventory"
	"github.com/depsight/depsight/pkg/manifest"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr     string
		interval time.Duration
		dir      string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dependency inventory over HTTP",
		Long: `Serve the inventory as a JSON API.

The report refreshes on a fixed cadence and whenever package.json changes
on disk. Endpoints:

  GET  /healthz                  liveness and breaker states
  GET  /api/v1/report            latest completed report
  POST /api/v1/refresh           refresh now and return the report
  GET  /api/v1/packages/{name}   one package row
  GET  /metrics                  Prometheus metrics`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), dir, addr, interval)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, \":8080\")")
	cmd.Flags().DurationVar(&interval, "interval", 0, "refresh cadence (default from config, 15m)")
	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "project directory")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, dir, addr string, interval time.Duration) error {
	cfg, err := c.loadConfig(dir)
	if err != nil {
		return err
	}
	if addr == "" {
		addr = cfg.Serve.Addr
	}
	if interval == 0 {
		interval = cfg.Serve.Interval.Duration
	}

	reg := prometheus.NewRegistry()
	metrics := api.NewMetrics(reg)
	engine, svc := c.newEngine(ctx, cfg, metrics.ObserveLookup)

	tracker := inventory.NewTracker()
	manifestPath := filepath.Join(dir, manifest.FileName)
	refresh := func(ctx context.Context) (*inventory.Report, error) {
		ticket := tracker.Begin()
		report, err := engine.Refresh(ctx, manifestPath, dir)
		if err != nil {
			return nil, err
		}
		tracker.Record(ticket, report)
		return report, nil
	}

	server := api.New(api.Options{
		Tracker:  tracker,
		Refresh:  refresh,
		Breakers: svc.BreakerStates,
		Logger:   c.Logger,
		Metrics:  metrics,
		Gatherer: reg,
	})
	go server.Poll(ctx, manifestPath, interval)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- httpServer.ListenAndServe() }()
	c.Logger.Infof("Listening on %s (refresh every %s)", addr, interval)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
