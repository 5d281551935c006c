package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bnema/tabbridge/internal/adapters/httpapi"
	"github.com/bnema/tabbridge/internal/adapters/memstore"
	"github.com/bnema/tabbridge/internal/adapters/wsbridge"
	"github.com/bnema/tabbridge/internal/application"
	"github.com/bnema/tabbridge/internal/version"
)

const shutdownGrace = 5 * time.Second

func newServeCmd(app *app) *cobra.Command {
	var (
		listen string
		debug  bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the hub daemon",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := buildLogger(debug)
			if err != nil {
				return fmt.Errorf("build logger: %w", err)
			}
			defer func() { _ = logger.Sync() }()

			addr := app.settings.Listen
			if listen != "" {
				addr = listen
			}

			return runServe(cmd.Context(), app, addr, logger)
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "listen address (host:port), overrides config")
	cmd.Flags().BoolVar(&debug, "debug", false, "enable debug logging")

	return cmd
}

func buildLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func runServe(ctx context.Context, app *app, addr string, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store := memstore.New(nil)
	hub := application.NewHub(application.HubConfig{
		Store:          store,
		Logger:         logger,
		RequestTimeout: app.settings.RequestTimeout,
	})
	peerSocket := wsbridge.NewHandler(hub, logger, wsbridge.Config{
		PingInterval:    app.settings.Peer.PingInterval,
		PongWait:        app.settings.Peer.PongWait,
		MaxMessageBytes: app.settings.Peer.MaxMessageBytes,
	})
	api := httpapi.NewServer(hub, store, peerSocket, logger, httpapi.Config{
		Model:   app.settings.Model,
		Version: version.Version,
	})

	srv := &http.Server{
		Addr:              addr,
		Handler:           api.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("hub listening",
			zap.String("addr", addr),
			zap.String("version", version.Version),
			zap.Duration("request_timeout", app.settings.RequestTimeout),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen on %s: %w", addr, err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")

		// Detaching peers first releases every suspended call, so the
		// HTTP drain below does not have to wait out request timeouts.
		hub.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("http shutdown", zap.Error(err))
		}
		return nil
	})

	return g.Wait()
}
