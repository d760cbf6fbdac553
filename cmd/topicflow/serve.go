package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/topicflow/internal/presentation/tui"
	httpadapter "github.com/aretw0/topicflow/pkg/adapters/http"
	"github.com/aretw0/topicflow/pkg/adapters/render"
	"github.com/aretw0/topicflow/pkg/ports"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newServeCmd() *cobra.Command {
	var noBanner bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long:  `Serves the editor API over JSON/HTTP until interrupted, then shuts down gracefully.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := appFrom(cmd)
			if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
				a.cfg.HTTP.Addr = addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			ed, closeStore, err := a.editor(ctx)
			if err != nil {
				return err
			}
			defer func() {
				if err := closeStore(); err != nil {
					a.logger.Warn("Failed to close store", "err", err)
				}
			}()

			var renderer ports.Renderer
			if a.cfg.Render.URL != "" {
				client, err := render.New(a.cfg.Render.URL,
					render.WithDiagramType(a.cfg.Render.DiagramType),
					render.WithFormat(a.cfg.Render.Format),
					render.WithCacheSize(a.cfg.Render.CacheSize),
					render.WithMetrics(a.metrics),
					render.WithLogger(a.logger),
				)
				if err != nil {
					return err
				}
				renderer = client
			}

			srv := &http.Server{
				Addr: a.cfg.HTTP.Addr,
				Handler: httpadapter.NewHandler(&httpadapter.Server{
					Projects: ed.Projects,
					Fields:   ed.Fields,
					Renderer: renderer,
					Metrics:  a.metrics,
					Logger:   a.logger,
				}),
				ReadHeaderTimeout: 10 * time.Second,
			}

			if !noBanner {
				tui.PrintBanner(cmd.ErrOrStderr())
			}

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				a.logger.Info("Starting topicflow server", "addr", srv.Addr, "store", a.cfg.Store.Driver)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
			g.Go(func() error {
				<-gctx.Done()
				a.logger.Info("Shutdown signal received, shutting down server")

				shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.HTTP.ShutdownTimeout)
				defer cancel()
				if err := srv.Shutdown(shutdownCtx); err != nil {
					a.logger.Error("Graceful shutdown did not complete", "timeout", a.cfg.HTTP.ShutdownTimeout, "err", err)
					return srv.Close()
				}
				a.logger.Info("Topicflow server stopped gracefully")
				return nil
			})
			return g.Wait()
		},
	}
	cmd.Flags().String("addr", "", "Listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&noBanner, "no-banner", false, "Do not print the startup banner")
	return cmd
}
