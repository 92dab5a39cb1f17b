package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aretw0/storefront"
	"github.com/aretw0/storefront/internal/cli"
	"github.com/aretw0/storefront/internal/presentation/html"
	httpAdapter "github.com/aretw0/storefront/pkg/adapters/http"
	"github.com/aretw0/storefront/pkg/domain"
	"github.com/aretw0/storefront/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the catalog view over HTTP",
	Long: `Connects to the configured host and serves the catalog page.
The page re-renders live whenever the host context changes.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Listen address (overrides http.addr)")
	serveCmd.Flags().String("host", "", "Host transport: memory, stdio or redis (overrides host.transport)")
	serveCmd.Flags().Bool("seed", false, "Publish host.initial to redis before connecting")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.HTTP.Addr = addr
	}

	sigCtx := cli.NewSignalContext(context.Background())
	defer sigCtx.Cancel()

	host, err := cli.OpenHost(cfg, logger)
	if err != nil {
		return err
	}
	defer host.Close()

	if seed, _ := cmd.Flags().GetBool("seed"); seed && host.Seed != nil {
		if err := host.Seed(sigCtx); err != nil {
			return fmt.Errorf("seed host context: %w", err)
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := observability.NewMetrics(reg)

	doc := html.NewDocument()
	app := storefront.New(host.Transport,
		storefront.WithIdentity(cfg.App),
		storefront.WithDocument(doc),
		storefront.WithMetrics(metrics),
		storefront.WithLogger(logger),
		storefront.WithSessionHooks(domain.SessionHooks{
			OnError: func(_ context.Context, e *domain.ErrorEvent) {
				logger.Warn("Host session error", "session_id", e.SessionID, "error", e.Err)
			},
		}),
	)
	defer app.Close()

	opts := []httpAdapter.Option{
		httpAdapter.WithGatherer(reg),
		httpAdapter.WithLogger(logger),
	}
	if host.Pusher != nil {
		opts = append(opts, httpAdapter.WithHostPusher(host.Pusher))
	}
	handler := httpAdapter.NewServer(app, doc, opts...)

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("Starting Storefront Server", "address", srv.Addr, "host", cfg.Host.Transport)
		serverErrors <- srv.ListenAndServe()
	}()

	go func() {
		if err := app.Start(sigCtx); err != nil {
			logger.Error("Host connection failed", "error", err)
			handler.Refresh()
			return
		}
		logger.Info("Connected to host", "session_id", app.Session().ID)
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case <-sigCtx.Done():
		logger.Info("Start shutdown...", "signal", sigCtx.Signal())

		// Give outstanding requests a deadline for completion.
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Warn("Graceful shutdown did not complete", "timeout", 5*time.Second, "error", err)
			if err := srv.Close(); err != nil {
				return fmt.Errorf("error killing server: %w", err)
			}
		}
		logger.Info("Storefront Server stopped gracefully")
		return nil
	}
}
