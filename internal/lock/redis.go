package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrNotHeld ключ уже истёк или принадлежит другому владельцу
var ErrNotHeld = errors.New("lock is not held")

// Locker кратковременная блокировка по ключу между экземплярами сервиса.
// Lock возвращает токен владельца; снять блокировку можно только с ним.
type Locker interface {
	Lock(ctx context.Context, key string, ttl time.Duration) (token string, ok bool, err error)
	Unlock(ctx context.Context, key, token string) error
}

// releaseScript удаляет ключ, только если в нём наш токен
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

var _ Locker = (*RedisLock)(nil)

type RedisLock struct {
	client *redis.Client
	prefix string
}

func NewRedisLock(redisAddr string) (*RedisLock, error) {
	const op = "lock.NewRedisLock"

	client := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%s: ping %s: %w", op, redisAddr, err)
	}

	return &RedisLock{client: client, prefix: "lock:"}, nil
}

// Lock ставит ключ с TTL, если он свободен. ok=false значит, что ключ держит кто-то другой.
func (r *RedisLock) Lock(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	const op = "lock.RedisLock.Lock"

	token := uuid.NewString()

	acquired, err := r.client.SetNX(ctx, r.prefix+key, token, ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("%s: %w", op, err)
	}
	if !acquired {
		return "", false, nil
	}

	return token, true, nil
}

// Unlock снимает блокировку владельца. Если TTL истёк и ключ занял другой,
// чужая блокировка не трогается и возвращается ErrNotHeld.
func (r *RedisLock) Unlock(ctx context.Context, key, token string) error {
	const op = "lock.RedisLock.Unlock"

	deleted, err := releaseScript.Run(ctx, r.client, []string{r.prefix + key}, token).Int64()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if deleted == 0 {
		return fmt.Errorf("%s: %s: %w", op, key, ErrNotHeld)
	}

	return nil
}

func (r *RedisLock) Close() error {
	return r.client.Close()
}
