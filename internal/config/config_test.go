package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	require.Equal(t, ":8080", cfg.HTTPAddress)
	require.Equal(t, BackendMemory, cfg.StoreBackend)
	require.Equal(t, []string{"kafka:9092"}, cfg.KafkaBrokers)
	require.Equal(t, 2*time.Second, cfg.OutboxPollInterval)
	require.Equal(t, 24*time.Hour, cfg.TokenTTL)
	require.Equal(t, []string{"social_activity_events", "achievement_events"}, cfg.ConsumerTopics)
	require.True(t, cfg.SeedTemplates)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("STORE_BACKEND", "Postgres")
	t.Setenv("KAFKA_BROKERS", "a:9092, b:9092 ,")
	t.Setenv("OUTBOX_POLL_INTERVAL", "500ms")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("DLQ_MAX_RETRIES", "9")
	t.Setenv("SEED_TEMPLATES", "false")

	cfg := Load()
	require.Equal(t, BackendPostgres, cfg.StoreBackend)
	require.Equal(t, []string{"a:9092", "b:9092"}, cfg.KafkaBrokers)
	require.Equal(t, 500*time.Millisecond, cfg.OutboxPollInterval)
	require.Equal(t, 2.5, cfg.RateLimitRPS)
	require.Equal(t, 9, cfg.DLQMaxRetries)
	require.False(t, cfg.SeedTemplates)
}
