package draft

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	// SessionTTL bounds how long an abandoned draft survives. Every write
	// refreshes the TTL on the touched key.
	SessionTTL time.Duration
}

// RedisStore is the Store used when the API runs replicated, so a wizard
// session is not pinned to one process. Keys are namespaced per session.
type RedisStore struct {
	rdb       *redis.Client
	sessionID string
	ttl       time.Duration
}

func NewRedisClient(cfg RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
}

func NewRedisStore(rdb *redis.Client, sessionID string, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}

	return &RedisStore{
		rdb:       rdb,
		sessionID: sessionID,
		ttl:       ttl,
	}
}

func (s *RedisStore) redisKey(key string) string {
	return "planhub:draft:" + s.sessionID + ":" + key
}

func (s *RedisStore) Get(ctx context.Context, key string, out any) bool {
	raw, err := s.rdb.Get(ctx, s.redisKey(key)).Bytes()

	if err != nil {
		// redis.Nil and transport errors both fall back, a draft we cannot
		// read is a draft that is not there
		return false
	}

	if json.Unmarshal(raw, out) != nil {
		return false
	}

	return true
}

func (s *RedisStore) Set(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)

	if err != nil {
		return err
	}

	return s.rdb.Set(ctx, s.redisKey(key), raw, s.ttl).Err()
}

func (s *RedisStore) Remove(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, s.redisKey(key)).Err()
}

func (s *RedisStore) ClearAll(ctx context.Context) error {
	keys := make([]string, 0, len(WellKnownKeys()))

	for _, key := range WellKnownKeys() {
		keys = append(keys, s.redisKey(key))
	}

	// one DEL for the whole set so a subsequent read never observes a
	// partially cleared draft
	return s.rdb.Del(ctx, keys...).Err()
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}
