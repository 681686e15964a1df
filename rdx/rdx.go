package rdx

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"outfitorbit/globals"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Conn is the shared Redis client, set by Connect.
var Conn *redis.Client

// ErrLocked is returned when a lock is already held by someone else.
var ErrLocked = errors.New("resource is locked")

// Connect dials Redis and checks the connection.
func Connect(ctx context.Context, addr, password string) error {
	Conn = redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	if err := Conn.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis at %s: %w", addr, err)
	}
	return nil
}

// Locker hands out short-lived exclusive locks keyed by string.
type Locker interface {
	Lock(ctx context.Context, key string, ttl time.Duration) (unlock func(), err error)
}

// RedisLocker implements Locker with SET NX and a token checked on release.
type RedisLocker struct {
	Client *redis.Client
}

// NewLocker returns a RedisLocker on the shared connection.
func NewLocker() *RedisLocker {
	return &RedisLocker{Client: Conn}
}

// only delete the key if we still own it
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

func (l *RedisLocker) Lock(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	token := uuid.NewString()
	ok, err := l.Client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire %s: %w", key, err)
	}
	if !ok {
		return nil, ErrLocked
	}
	return func() {
		// the request context may already be done; release on a fresh one
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := releaseScript.Run(ctx, l.Client, []string{key}, token).Err(); err != nil && !errors.Is(err, redis.Nil) {
			globals.Log.Warn("lock release failed", zap.String("key", key), zap.Error(err))
		}
	}, nil
}

// LocalLocker is an in-process Locker for single-instance runs and tests.
type LocalLocker struct {
	mu   sync.Mutex
	seq  uint64
	held map[string]localLock
}

type localLock struct {
	id      uint64
	expires time.Time
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{held: make(map[string]localLock)}
}

func (l *LocalLocker) Lock(_ context.Context, key string, ttl time.Duration) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if cur, ok := l.held[key]; ok && time.Now().Before(cur.expires) {
		return nil, ErrLocked
	}
	l.seq++
	id := l.seq
	l.held[key] = localLock{id: id, expires: time.Now().Add(ttl)}
	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		// an expired lock may have been taken over since
		if cur, ok := l.held[key]; ok && cur.id == id {
			delete(l.held, key)
		}
	}, nil
}
