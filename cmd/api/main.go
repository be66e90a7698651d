package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/dev0919/Fitness-App1/internal/api"
	"github.com/dev0919/Fitness-App1/internal/auth"
	"github.com/dev0919/Fitness-App1/internal/catalog"
	"github.com/dev0919/Fitness-App1/internal/config"
	"github.com/dev0919/Fitness-App1/internal/domain"
	"github.com/dev0919/Fitness-App1/internal/logging"
	"github.com/dev0919/Fitness-App1/internal/outbox"
	"github.com/dev0919/Fitness-App1/internal/service"
	"github.com/dev0919/Fitness-App1/internal/store/memory"
	"github.com/dev0919/Fitness-App1/internal/store/postgres"
	httptransport "github.com/dev0919/Fitness-App1/internal/transport/http"
)

func main() {
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel, cfg.LogFormat, "fitness-api")
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("fitness api stopped", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	var (
		store      domain.Store
		dispatcher *outbox.Dispatcher
	)

	switch cfg.StoreBackend {
	case config.BackendPostgres:
		if err := postgres.Migrate(cfg.PostgresURL); err != nil {
			return err
		}
		pool, err := pgxpool.New(ctx, cfg.PostgresURL)
		if err != nil {
			return err
		}
		defer pool.Close()
		store = postgres.NewStore(pool)

		producer := outbox.NewKafkaProducer(cfg.KafkaBrokers)
		defer producer.Close()
		registry := outbox.NewSchemaRegistryClient(cfg.SchemaRegistryURL)
		dispatcher = outbox.NewDispatcher(pool, producer, registry, cfg.OutboxPollInterval, cfg.OutboxBatchSize,
			outbox.WithDispatcherLogger(logger.Named("outbox")))
		go dispatcher.Start(ctx)
	default:
		logger.Info("using in-memory store; data is lost on restart")
		store = memory.NewStore()
	}

	if cfg.SeedTemplates {
		created, err := catalog.Seed(ctx, store)
		if err != nil {
			return err
		}
		logger.Info("workout templates ready", zap.Int("created", created))
	}

	tokens := auth.Config{Secret: cfg.JWTSecret, Issuer: cfg.JWTIssuer, TTL: cfg.TokenTTL}
	opts := []api.Option{api.WithLogger(logger.Named("http"))}
	if cfg.RedisAddr != "" {
		rdb, err := auth.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			return err
		}
		defer rdb.Close()
		opts = append(opts, api.WithRevocations(auth.NewRedisRevocations(rdb)))
	}

	svc := service.New(store, service.WithLogger(logger.Named("service")))
	handler := api.NewHandler(svc, tokens, opts...).Routes(api.RouterConfig{
		CORSOrigins:    cfg.CORSOrigins,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	})

	serverCfg := httptransport.DefaultServerConfig(cfg.HTTPAddress)
	err := httptransport.Serve(ctx, serverCfg, httptransport.NewServer(serverCfg, handler), logger)
	if dispatcher != nil {
		dispatcher.Wait()
	}
	return err
}
