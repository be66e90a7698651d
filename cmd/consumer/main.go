package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/dev0919/Fitness-App1/internal/config"
	"github.com/dev0919/Fitness-App1/internal/consumer"
	"github.com/dev0919/Fitness-App1/internal/events"
	"github.com/dev0919/Fitness-App1/internal/logging"
	"github.com/dev0919/Fitness-App1/internal/store/postgres"
	httptransport "github.com/dev0919/Fitness-App1/internal/transport/http"
)

func main() {
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel, cfg.LogFormat, "fitness-consumer")
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := postgres.Migrate(cfg.PostgresURL); err != nil {
		logger.Error("migrate failed", zap.Error(err))
		os.Exit(1)
	}
	pool, err := pgxpool.New(ctx, cfg.PostgresURL)
	if err != nil {
		logger.Error("connect to postgres failed", zap.Error(err))
		os.Exit(1)
	}
	defer pool.Close()

	handler := consumer.NewPersistenceHandler(pool)

	topics := cfg.ConsumerTopics
	if len(topics) == 0 {
		topics = events.Topics()
	}

	var wg sync.WaitGroup
	for _, topic := range topics {
		reader := kafka.NewReader(kafka.ReaderConfig{
			Brokers:         cfg.KafkaBrokers,
			GroupID:         cfg.ConsumerGroupID,
			Topic:           topic,
			MinBytes:        1e3,
			MaxBytes:        10e6,
			CommitInterval:  time.Second,
			RetentionTime:   24 * time.Hour,
			ReadLagInterval: -1,
		})
		log := logger.With(zap.String("topic", topic), zap.String("group", cfg.ConsumerGroupID))
		proc := consumer.NewProcessor(reader, handler, consumer.WithLogger(log))

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer reader.Close()

			log.Info("consumer started")
			if err := proc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("consumer stopped", zap.Error(err))
			}
		}()
	}

	metricsCfg := httptransport.DefaultServerConfig(cfg.MetricsAddress)
	if err := httptransport.Serve(ctx, metricsCfg, httptransport.NewServer(metricsCfg, promhttp.Handler()), logger); err != nil {
		logger.Error("metrics server failed", zap.Error(err))
		stop()
	}
	wg.Wait()
}
