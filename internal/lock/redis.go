package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/rccmquiz/rccm/internal/logger"
)

// releaseScript deletes the key only if it still holds our token, so an
// expired lock re-taken by someone else is left alone.
var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisOptions configures a Redis lock manager.
type RedisOptions struct {
	// TTL bounds how long a crashed holder blocks others.
	TTL time.Duration
	// RetryInterval is the polling delay while the key is taken.
	RetryInterval time.Duration
	// Prefix namespaces lock keys.
	Prefix string
}

// Redis is a Manager backed by SET NX PX with a random token.
type Redis struct {
	rdb  goredis.UniversalClient
	opts RedisOptions
	log  *logger.Logger
}

// NewRedis connects to addr and verifies it with a ping.
func NewRedis(ctx context.Context, addr string, opts RedisOptions, log *logger.Logger) (*Redis, error) {
	if addr == "" {
		return nil, fmt.Errorf("missing redis address")
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewRedisFromClient(rdb, opts, log), nil
}

// NewRedisFromClient wraps an existing client.
func NewRedisFromClient(rdb goredis.UniversalClient, opts RedisOptions, log *logger.Logger) *Redis {
	if opts.TTL <= 0 {
		opts.TTL = 30 * time.Second
	}
	if opts.RetryInterval <= 0 {
		opts.RetryInterval = 50 * time.Millisecond
	}
	if opts.Prefix == "" {
		opts.Prefix = "rccm:lock:"
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Redis{rdb: rdb, opts: opts, log: log.With("service", "RedisLock")}
}

// Close closes the underlying client.
func (r *Redis) Close() error {
	return r.rdb.Close()
}

// Acquire implements Manager.
func (r *Redis) Acquire(ctx context.Context, key string) (Release, error) {
	full := r.opts.Prefix + key
	token := uuid.NewString()

	ticker := time.NewTicker(r.opts.RetryInterval)
	defer ticker.Stop()
	for {
		ok, err := r.rdb.SetNX(ctx, full, token, r.opts.TTL).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil, notAcquired(key, ctx.Err())
			}
			return nil, fmt.Errorf("acquire %s: %w", key, err)
		}
		if ok {
			return r.releaser(full, token), nil
		}
		select {
		case <-ctx.Done():
			return nil, notAcquired(key, ctx.Err())
		case <-ticker.C:
		}
	}
}

func (r *Redis) releaser(key, token string) Release {
	return func() error {
		// The caller's context may already be done; release regardless.
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		n, err := releaseScript.Run(ctx, r.rdb, []string{key}, token).Int()
		if err != nil && !errors.Is(err, goredis.Nil) {
			return fmt.Errorf("release %s: %w", key, err)
		}
		if n == 0 {
			r.log.Warn("lock expired before release", "key", key, "ttl", r.opts.TTL)
		}
		return nil
	}
}
