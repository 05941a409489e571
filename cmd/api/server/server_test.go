package server

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"users-api/cmd/api/di"
	"users-api/internal/config"
)

func newTestContainer(t *testing.T) (*config.Config, *di.Container) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_SQLITE_PATH", filepath.Join(t.TempDir(), "users.db"))
	t.Setenv("DB_AUTO_MIGRATE", "true")
	t.Setenv("HTTP_PORT", "0")
	t.Setenv("GRPC_PORT", "0")
	t.Setenv("SHUTDOWN_TIMEOUT_SECONDS", "2")

	cfg, err := config.LoadConfig(t.TempDir())
	require.NoError(t, err)

	c, err := di.NewContainer(context.Background(), cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	return cfg, c
}

func TestServer_RunStopsOnCancel(t *testing.T) {
	cfg, c := newTestContainer(t)
	s := New(cfg, zaptest.NewLogger(t), c)
	require.NotNil(t, s.GRPC)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop after cancel")
	}
}

func TestNew_WiresRateLimiterWithoutRedis(t *testing.T) {
	cfg, c := newTestContainer(t)
	s := New(cfg, zaptest.NewLogger(t), c)

	assert.Nil(t, c.RedisClient)
	assert.False(t, c.RateLimiter.Enabled())
	assert.Equal(t, ":0", s.HTTP.Addr)
}
