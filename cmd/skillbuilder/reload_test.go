package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillbuilder/skillbuilder/pkg/config"
	"github.com/skillbuilder/skillbuilder/pkg/ratelimit"
)

func writeRateLimitConfig(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestReloadRateLimits(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeRateLimitConfig(t, path, `
ratelimit:
  general:
    max: 1
    window: 1m
  generate:
    max: 1
    window: 1h
`)

	v := viper.New()
	require.NoError(t, config.Init(v, path))
	cfg, err := config.Load(v)
	require.NoError(t, err)

	general := ratelimit.NewMemoryLimiter(cfg.RateLimit.General)
	generate := ratelimit.NewMemoryLimiter(cfg.RateLimit.Generate)

	writeRateLimitConfig(t, path, `
ratelimit:
  general:
    max: 10
    window: 1m
  generate:
    max: 4
    window: 1h
`)
	require.NoError(t, v.ReadInConfig())
	require.NoError(t, reloadRateLimits(ctx, v, fsnotify.Event{Name: path, Op: fsnotify.Write}, general, generate))

	result, err := general.Allow(ctx, "client")
	require.NoError(t, err)
	assert.Equal(t, 10, result.Limit)
	result, err = generate.Allow(ctx, "client")
	require.NoError(t, err)
	assert.Equal(t, 4, result.Limit)

	t.Run("invalid rules keep the previous ones", func(t *testing.T) {
		writeRateLimitConfig(t, path, `
ratelimit:
  general:
    max: 0
    window: 1m
`)
		require.NoError(t, v.ReadInConfig())
		err := reloadRateLimits(ctx, v, fsnotify.Event{Name: path, Op: fsnotify.Write}, general, generate)
		require.Error(t, err)

		result, err := general.Allow(ctx, "client")
		require.NoError(t, err)
		assert.Equal(t, 10, result.Limit)
	})

	t.Run("non write events are ignored", func(t *testing.T) {
		err := reloadRateLimits(ctx, v, fsnotify.Event{Name: path, Op: fsnotify.Chmod}, general, generate)
		assert.NoError(t, err)
	})
}

func TestWatchRateLimitsWithoutConfigFile(t *testing.T) {
	general := ratelimit.NewMemoryLimiter(ratelimit.Rule{Max: 1, Window: time.Minute})
	generate := ratelimit.NewMemoryLimiter(ratelimit.Rule{Max: 1, Window: time.Minute})

	v := viper.New()
	watchRateLimits(context.Background(), v, general, generate)
	assert.Empty(t, v.ConfigFileUsed())
}
