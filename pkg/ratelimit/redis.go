package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/pkg/errors"
	goredis "github.com/redis/go-redis/v9"

	"github.com/skillbuilder/skillbuilder/pkg/logger"
)

// fixedWindowScript increments the counter and starts the window on the
// first hit. It returns the count and the remaining window in ms.
var fixedWindowScript = goredis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
if ttl < 0 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
	ttl = tonumber(ARGV[1])
end
return {current, ttl}
`)

// RedisLimiter keeps fixed-window counters in Redis so limits are shared
// between server instances
type RedisLimiter struct {
	client goredis.UniversalClient
	prefix string
	now    func() time.Time

	mu   sync.RWMutex
	rule Rule
}

// NewRedisLimiter creates a limiter storing counters under prefix
func NewRedisLimiter(client goredis.UniversalClient, prefix string, rule Rule) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		rule:   rule,
		prefix: prefix,
		now:    time.Now,
	}
}

// Allow counts a hit for key
func (l *RedisLimiter) Allow(ctx context.Context, key string) (Result, error) {
	l.mu.RLock()
	rule := l.rule
	l.mu.RUnlock()

	values, err := fixedWindowScript.Run(ctx, l.client, []string{l.prefix + key}, rule.Window.Milliseconds()).Int64Slice()
	if err != nil {
		return Result{}, errors.Wrap(err, "failed to increment rate limit counter")
	}
	if len(values) != 2 {
		return Result{}, errors.Errorf("unexpected rate limit script reply: %v", values)
	}

	count, ttl := values[0], values[1]
	return newResult(rule, int(count), l.now().Add(time.Duration(ttl)*time.Millisecond)), nil
}

// SetRule replaces the enforced rule. Counters keep their current expiry.
func (l *RedisLimiter) SetRule(rule Rule) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rule = rule
}

// NewRedisClient connects to addr, retrying the initial ping a few times
// while Redis starts up
func NewRedisClient(ctx context.Context, addr string) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	err := retry.Do(
		func() error {
			return client.Ping(ctx).Err()
		},
		retry.Attempts(3),
		retry.Delay(200*time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, err error) {
			logger.G(ctx).WithError(err).WithField("attempt", n+1).Warn("retrying redis ping")
		}),
	)
	if err != nil {
		client.Close()
		return nil, errors.Wrapf(err, "failed to connect to redis at %s", addr)
	}

	return client, nil
}
