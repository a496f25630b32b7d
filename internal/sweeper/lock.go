package sweeper

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseLock deletes the key only while it still holds our token, so an
// instance never frees a lock that expired and was taken by someone else.
var releaseLock = redis.NewScript(`
	if redis.call("GET", KEYS[1]) == ARGV[1] then
		return redis.call("DEL", KEYS[1])
	end
	return 0
`)

type RedisLocker struct {
	client redis.UniversalClient
}

func NewRedisLocker(client redis.UniversalClient) *RedisLocker {
	return &RedisLocker{
		client: client,
	}
}

func (l *RedisLocker) TryLock(
	ctx context.Context,
	key string,
	ttl time.Duration) (func(context.Context) error, bool, error) {

	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, false, err
	}

	if !ok {
		return nil, false, nil
	}

	unlock := func(ctx context.Context) error {
		return releaseLock.Run(ctx, l.client, []string{key}, token).Err()
	}

	return unlock, true, nil
}
