package commands

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fortuna/hoops/internal/api/rest"
	"github.com/fortuna/hoops/internal/api/websocket"
	"github.com/fortuna/hoops/internal/backfill"
	"github.com/fortuna/hoops/internal/publisher"
)

var serveNoRedis bool

func init() {
	serveCmd.Flags().BoolVar(&serveNoRedis, "no-redis", false, "Serve queries only; backfill routes are disabled.")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the query API over HTTP and websocket, plus backfill jobs when Redis is reachable.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		logger := app.logger

		opts := rest.Options{
			Port:    app.cfg.REST.Port,
			Scraper: app.scraper,
			Stream:  websocket.NewServer(app.scraper, logger),
			Logger:  logger,
		}

		var backfillSvc *backfill.Service
		if !serveNoRedis {
			client, err := publisher.Connect(ctx, app.cfg.Redis.URL)
			if err != nil {
				return err
			}
			pub := publisher.NewStreamPublisher(client, app.cfg.Redis.StreamPrefix)
			defer pub.Close()

			backfillSvc = backfill.NewService(backfill.NewRunner(app.scraper, pub), 16, logger)
			backfillSvc.Start()
			opts.Backfill = backfillSvc
			logger.Info("backfill service started", zap.String("redis", app.cfg.Redis.URL))
		}

		server := rest.NewServer(opts)
		errCh := make(chan error, 1)
		go func() { errCh <- server.Start() }()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("REST server shutdown error", zap.Error(err))
		}
		if backfillSvc != nil {
			if err := backfillSvc.Shutdown(shutdownCtx); err != nil {
				logger.Warn("backfill shutdown error", zap.Error(err))
			}
		}
		return nil
	},
}
