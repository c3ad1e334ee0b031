package tilecache

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// Redis shares tiles between hosts. Entries expire after ttl; zero keeps
// them forever.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

func NewRedis(addr, password string, database int, ttl time.Duration) *Redis {
	return &Redis{
		client: redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: database}),
		ttl:    ttl,
		prefix: "locatormap:tile:",
	}
}

func (r *Redis) Name() string {
	return "redis"
}

func (r *Redis) key(k Key) string {
	return r.prefix + k.String()
}

func (r *Redis) Ping(ctx context.Context) error {
	return errors.Wrap(r.client.Ping(ctx).Err(), "error connecting to redis")
}

func (r *Redis) Get(ctx context.Context, key Key) ([]byte, bool, error) {
	data, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrapf(err, "error reading tile %v from redis", key)
	}
	return data, true, nil
}

func (r *Redis) Put(ctx context.Context, key Key, data []byte) error {
	if err := r.client.Set(ctx, r.key(key), data, r.ttl).Err(); err != nil {
		return errors.Wrapf(err, "error writing tile %v to redis", key)
	}
	return nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}
