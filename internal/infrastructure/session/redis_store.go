package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"chatpress/internal/config"
	"chatpress/internal/domain/conversation"
)

const keyPrefix = "chatpress:session:"

// RedisStore persists sessions in Redis with a TTL-backed retention window.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	log    zerolog.Logger
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(cfg *config.Config, log zerolog.Logger) (*RedisStore, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	logger := log.With().Str("component", "redis-session-store").Logger()
	logger.Info().Msg("connected to redis session store")
	return &RedisStore{client: client, ttl: cfg.SessionTTL, log: logger}, nil
}

var _ conversation.SessionStore = (*RedisStore)(nil)

func sessionKey(userID string) string {
	return keyPrefix + userID
}

func (r *RedisStore) Get(ctx context.Context, userID string) (*conversation.State, error) {
	payload, err := r.client.Get(ctx, sessionKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	var st conversation.State
	if err := json.Unmarshal(payload, &st); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &st, nil
}

// Set writes the whole record inside a WATCH transaction so a write that
// raced another invocation fails with ErrVersionConflict instead of silently
// clobbering it.
func (r *RedisStore) Set(ctx context.Context, userID string, state *conversation.State) error {
	key := sessionKey(userID)

	err := r.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, key).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
			// Absent record: first writer wins.
		case err != nil:
			return fmt.Errorf("read current session: %w", err)
		default:
			var stored conversation.State
			if err := json.Unmarshal(current, &stored); err != nil {
				return fmt.Errorf("decode current session: %w", err)
			}
			if stored.Version != state.Version {
				return conversation.ErrVersionConflict
			}
		}

		next := state.Clone()
		next.Version = state.Version + 1
		payload, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("encode session: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, r.ttl)
			return nil
		})
		return err
	}, key)

	if errors.Is(err, redis.TxFailedErr) {
		return conversation.ErrVersionConflict
	}
	return err
}

func (r *RedisStore) ResetToIdle(ctx context.Context, userID string) error {
	fresh := conversation.NewState(time.Now())
	fresh.Version = 1
	payload, err := json.Marshal(fresh)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := r.client.Set(ctx, sessionKey(userID), payload, r.ttl).Err(); err != nil {
		return fmt.Errorf("reset session: %w", err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, userID string) error {
	if err := r.client.Del(ctx, sessionKey(userID)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Stats is not supported by the Redis backend; counting sessions would mean
// scanning the keyspace.
func (r *RedisStore) Stats(context.Context) (conversation.StoreStats, error) {
	return conversation.StoreStats{}, conversation.ErrStatsUnsupported
}
