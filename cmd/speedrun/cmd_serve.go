package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/persistorai/speedrun/internal/api"
	"github.com/persistorai/speedrun/internal/config"
	"github.com/persistorai/speedrun/internal/db"
)

// Server timeouts.
const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 15 * time.Second
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve path searches over HTTP",
		Args:  noArgs,
		RunE:  runServe,
	}

	cmd.Flags().String("port", "", "Listen port (env: PORT)")
	cmd.Flags().String("host", "", "Listen host (env: LISTEN_HOST)")

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	log := newLogger(cfg, cmd.ErrOrStderr())
	if log.IsLevelEnabled(logrus.DebugLevel) {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := cmd.Context()

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.close()

	handler, err := api.NewRouter(&api.RouterDeps{
		Log:           log,
		Paths:         a.paths,
		Probe:         db.Probe{Pool: a.pool},
		SchemaVersion: db.SchemaVersion(),
		CORSOrigins:   cfg.CORSOrigins,
		RateLimit:     cfg.RateLimit,
		SearchTimeout: searchTimeout(cfg),
		Version:       config.Version,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      searchTimeout(cfg) + 5*time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		log.WithFields(logrus.Fields{"addr": srv.Addr, "version": config.Version}).Info("speedrun listening")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}

		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}

		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down http server: %w", err)
	}

	return nil
}

// searchTimeout bounds one HTTP search to a query timeout per attempt, capped at two minutes.
func searchTimeout(cfg *config.Config) time.Duration {
	return min(2*time.Minute, cfg.QueryTimeout*time.Duration(cfg.StoreRetries+1))
}
