package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"financas/internal/amqp"
	"financas/internal/cli"
	apphttp "financas/internal/http"
	applog "financas/internal/log"
	"financas/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentApp)

	cfg := cli.LoadAndValidateConfig(logger)

	sqliteRepo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer sqliteRepo.Close()

	// AMQP is optional: without it imports still work, only the mirror sync
	// is skipped.
	var publisher services.SyncPublisher
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		var err error
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without sync", "error", err)
		} else {
			publisher = amqpClient
			defer amqpClient.Close()
			logger.Info("Initialized AMQP client",
				"exchange", cfg.AMQPExchange,
				"queue", cfg.AMQPQueue)
		}
	}

	imports := services.NewImportService(sqliteRepo, publisher)
	summaries := services.NewSummaryService(sqliteRepo)
	defer summaries.Close()
	imports.OnChange(summaries.Invalidate)

	// Republish sync messages for rows that never made it to the broker.
	var poller *services.SyncPoller
	if publisher != nil {
		pollerCfg := services.DefaultSyncPollerConfig()
		pollerCfg.PollInterval = cfg.SyncInterval
		pollerCfg.BatchSize = cfg.SyncBatchSize
		poller = services.NewSyncPoller(sqliteRepo, publisher, pollerCfg)
		if err := poller.Start(context.Background()); err != nil {
			logger.Error("Failed to start sync poller", "error", err)
			os.Exit(1)
		}
	}

	srv := apphttp.NewServer(":"+cfg.Port, imports, summaries)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if poller != nil {
			if err := poller.Stop(shutdownCtx); err != nil {
				logger.Error("Sync poller shutdown error", "error", err)
			}
		}
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
	})

	logger.Info("Starting financas server", "port", cfg.Port, "amqp_enabled", publisher != nil)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
