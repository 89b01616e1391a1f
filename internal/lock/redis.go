package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/abhisek/skilltrack/internal/logger"
)

// ErrNotAcquired is returned when the lock could not be taken before the
// context ended.
var ErrNotAcquired = errors.New("lock not acquired")

// releaseScript deletes the key only if it still holds our token.
var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Redis serializes keys across processes sharing one Redis. Locks expire
// after TTL so a crashed holder cannot wedge a learner forever.
type Redis struct {
	rdb    goredis.UniversalClient
	prefix string
	ttl    time.Duration
	retry  time.Duration
	log    *logger.Logger
}

// RedisOptions configures a Redis locker.
type RedisOptions struct {
	Prefix        string
	TTL           time.Duration
	RetryInterval time.Duration
}

// NewRedis creates a Redis locker on an existing client.
func NewRedis(rdb goredis.UniversalClient, opts RedisOptions, log *logger.Logger) *Redis {
	if opts.Prefix == "" {
		opts.Prefix = "skilltrack:lock:"
	}
	if opts.TTL <= 0 {
		opts.TTL = 10 * time.Second
	}
	if opts.RetryInterval <= 0 {
		opts.RetryInterval = 25 * time.Millisecond
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Redis{
		rdb:    rdb,
		prefix: opts.Prefix,
		ttl:    opts.TTL,
		retry:  opts.RetryInterval,
		log:    log.With("service", "RedisLocker"),
	}
}

// Dial connects to Redis at addr and verifies the connection.
func Dial(ctx context.Context, addr string) (*goredis.Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

// Lock polls until the key is taken or ctx is done.
func (r *Redis) Lock(ctx context.Context, key string) (func(), error) {
	k := r.prefix + key
	token := uuid.NewString()

	ticker := time.NewTicker(r.retry)
	defer ticker.Stop()
	for {
		ok, err := r.rdb.SetNX(ctx, k, token, r.ttl).Result()
		if err != nil && ctx.Err() == nil {
			return nil, fmt.Errorf("redis lock %s: %w", key, err)
		}
		if ok {
			return func() { r.unlock(k, token) }, nil
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %s: %w", ErrNotAcquired, key, ctx.Err())
		case <-ticker.C:
		}
	}
}

func (r *Redis) unlock(key, token string) {
	// The caller's context may already be cancelled; release regardless.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := releaseScript.Run(ctx, r.rdb, []string{key}, token).Err(); err != nil {
		r.log.Warn("redis unlock failed", "key", key, "error", err)
	}
}
