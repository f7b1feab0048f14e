package session

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/NextShop-AI/assistant-go/model"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// sessionTTL keeps abandoned histories from accumulating forever.
const sessionTTL = 30 * 24 * time.Hour

// RedisBackend stores each user's session array as a single JSON blob under
// one key. Two writers on the same key race last-write-wins.
type RedisBackend struct {
	rdb *redis.Client
}

// NewRedisBackend connects to redis and fails fast when it is unreachable.
func NewRedisBackend(addr, password string, db int) *RedisBackend {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatal().Err(err).
			Str("addr", addr).
			Int("db", db).
			Msg("Redis connection failed")
	}
	log.Info().
		Str("addr", addr).
		Int("db", db).
		Msg("Redis connected successfully")

	return &RedisBackend{rdb: rdb}
}

func (b *RedisBackend) key(userID string) string {
	return fmt.Sprintf("assistant_sessions:%s", userID)
}

// Load reads the user's session blob. A missing key is an empty history.
func (b *RedisBackend) Load(ctx context.Context, userID string) ([]model.ChatSession, error) {
	raw, err := b.rdb.Get(ctx, b.key(userID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session blob: %w", err)
	}

	var sessions []model.ChatSession
	if err := json.Unmarshal([]byte(raw), &sessions); err != nil {
		return nil, fmt.Errorf("failed to decode session blob: %w", err)
	}
	return sessions, nil
}

// Save overwrites the user's session blob. Memory-limit rejections map to
// ErrQuotaExceeded so the store can run its reduced-set retry.
func (b *RedisBackend) Save(ctx context.Context, userID string, sessions []model.ChatSession) error {
	data, err := json.Marshal(sessions)
	if err != nil {
		return fmt.Errorf("failed to encode session blob: %w", err)
	}

	if err := b.rdb.Set(ctx, b.key(userID), data, sessionTTL).Err(); err != nil {
		if strings.Contains(err.Error(), "OOM") {
			return fmt.Errorf("%w: %s", ErrQuotaExceeded, err)
		}
		return fmt.Errorf("failed to write session blob: %w", err)
	}
	return nil
}

// Ping reports backend reachability for health checks.
func (b *RedisBackend) Ping(ctx context.Context) error {
	return b.rdb.Ping(ctx).Err()
}
