package app

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/tour-inventory/internal/config"
)

func TestTaskRedisParsesURL(t *testing.T) {
	opt, err := TaskRedis(&config.Config{RedisURL: "redis://:pw@cache:6380/2"})
	require.NoError(t, err)
	client, ok := opt.(asynq.RedisClientOpt)
	require.True(t, ok)
	require.Equal(t, "cache:6380", client.Addr)
	require.Equal(t, 2, client.DB)

	_, err = TaskRedis(&config.Config{RedisURL: "http://cache"})
	require.Error(t, err)
}

func TestNewCatalogServiceWiresDependencies(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	deps := &Dependencies{Redis: client, Log: zerolog.Nop()}
	svc, err := deps.NewCatalogService(&config.Config{CatalogDefaultLimit: 10, CatalogMaxLimit: 20})
	require.NoError(t, err)
	require.NotNil(t, svc)
	require.Error(t, svc.Ready(context.Background()))
}
