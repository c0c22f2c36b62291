package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/upb/voice-admin/app"
	"github.com/upb/voice-admin/routes"
	"go.uber.org/zap"
)

func newServeCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			deps, err := app.NewDependencies(ctx, c.cfg, c.logger)
			if err != nil {
				return fmt.Errorf("failed to initialize dependencies: %w", err)
			}

			srv := &http.Server{
				Addr:         c.cfg.Server.Address(),
				Handler:      routes.SetupRoutes(deps),
				ReadTimeout:  c.cfg.Server.ReadTimeout,
				WriteTimeout: c.cfg.Server.WriteTimeout,
			}

			errCh := make(chan error, 1)
			go func() {
				c.logger.Info("server listening",
					zap.String("addr", srv.Addr),
					zap.String("environment", c.cfg.Environment))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			var serveErr error
			select {
			case <-ctx.Done():
				c.logger.Info("shutdown signal received")
			case serveErr = <-errCh:
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), c.cfg.Server.ShutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				c.logger.Error("server shutdown failed", zap.Error(err))
			}
			if err := deps.Close(shutdownCtx); err != nil {
				c.logger.Error("dependency shutdown failed", zap.Error(err))
			}

			if serveErr != nil {
				return fmt.Errorf("server error: %w", serveErr)
			}
			c.logger.Info("server stopped")
			return nil
		},
	}
}
