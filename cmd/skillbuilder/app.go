package main

import (
	"context"

	"github.com/pkg/errors"

	"github.com/skillbuilder/skillbuilder/pkg/catalog"
	"github.com/skillbuilder/skillbuilder/pkg/config"
	"github.com/skillbuilder/skillbuilder/pkg/library"
	"github.com/skillbuilder/skillbuilder/pkg/llm"
	"github.com/skillbuilder/skillbuilder/pkg/logger"
	"github.com/skillbuilder/skillbuilder/pkg/ratelimit"
	"github.com/skillbuilder/skillbuilder/pkg/skills"
)

// openStore opens the configured skill library
func openStore(ctx context.Context) (library.Store, error) {
	store, err := library.NewStore(ctx, appConfig.Library)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open skill library")
	}
	return store, nil
}

// withCatalog opens the library, runs f against a catalog service and
// closes the library afterwards
func withCatalog(ctx context.Context, f func(*catalog.Service) error) error {
	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.G(ctx).WithError(err).Warn("failed to close skill library")
		}
	}()

	return f(catalog.NewService(store))
}

// newBuilder wires the configured generation client to store
func newBuilder(store library.Store) (*skills.Builder, error) {
	generator, err := llm.NewGenerator(appConfig.LLM)
	if err != nil {
		return nil, err
	}
	return skills.NewBuilder(generator, store, skills.WithUniqueIDs(appConfig.Library.UniqueIDs)), nil
}

// newRateLimiters builds the general and generation limiters. The
// returned close function releases the Redis connection, if any.
func newRateLimiters(ctx context.Context, cfg config.RateLimitConfig) (general, generate ratelimit.Adjustable, closeFn func() error, err error) {
	switch cfg.Backend {
	case ratelimit.BackendRedis:
		client, err := ratelimit.NewRedisClient(ctx, cfg.RedisAddr)
		if err != nil {
			return nil, nil, nil, err
		}
		general = ratelimit.NewRedisLimiter(client, "skillbuilder:ratelimit:general:", cfg.General)
		generate = ratelimit.NewRedisLimiter(client, "skillbuilder:ratelimit:generate:", cfg.Generate)
		return general, generate, client.Close, nil
	default:
		general = ratelimit.NewMemoryLimiter(cfg.General)
		generate = ratelimit.NewMemoryLimiter(cfg.Generate)
		return general, generate, func() error { return nil }, nil
	}
}
