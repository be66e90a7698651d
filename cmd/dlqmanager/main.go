package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/dev0919/Fitness-App1/internal/config"
	"github.com/dev0919/Fitness-App1/internal/logging"
	"github.com/dev0919/Fitness-App1/internal/outbox"
	httptransport "github.com/dev0919/Fitness-App1/internal/transport/http"
)

const dlqBatchSize = 50

func main() {
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel, cfg.LogFormat, "fitness-dlqmanager")
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.PostgresURL)
	if err != nil {
		logger.Error("connect to postgres failed", zap.Error(err))
		os.Exit(1)
	}
	defer pool.Close()

	manager := outbox.NewDLQManager(pool, cfg.DLQMaxRetries, cfg.DLQBaseDelay, logger.Named("dlq"))

	scheduler := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := scheduler.AddFunc("@every "+cfg.DLQPollInterval.String(), func() {
		processed, err := manager.RunOnce(ctx, dlqBatchSize)
		if err != nil {
			logger.Warn("dlq pass finished with errors", zap.Int("processed", processed), zap.Error(err))
			return
		}
		if processed > 0 {
			logger.Info("dlq pass finished", zap.Int("processed", processed))
		}
	}); err != nil {
		logger.Error("schedule dlq pass failed", zap.Error(err))
		os.Exit(1)
	}
	scheduler.Start()
	logger.Info("dlq manager started",
		zap.Duration("interval", cfg.DLQPollInterval),
		zap.Int("max_retries", cfg.DLQMaxRetries),
	)

	metricsCfg := httptransport.DefaultServerConfig(cfg.MetricsAddress)
	if err := httptransport.Serve(ctx, metricsCfg, httptransport.NewServer(metricsCfg, promhttp.Handler()), logger); err != nil {
		logger.Error("metrics server failed", zap.Error(err))
	}
	<-scheduler.Stop().Done()
}
