package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/replysight/server/internal/agent/model"
	errx "github.com/replysight/server/internal/core/errx"
	logx "github.com/replysight/server/pkg/logger"
)

// RedisStore persists checkpoints as JSON values with a TTL.
type RedisStore struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewRedisStore(rdb redis.Cmdable, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func (s *RedisStore) key(sessionID string) string {
	return fmt.Sprintf("session:%s:state", sessionID)
}

func (s *RedisStore) Get(ctx context.Context, sessionID string) (*model.RunState, error) {
	b, err := s.rdb.Get(ctx, s.key(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, errx.WrapRedis(err)
	}

	var state model.RunState
	if err := json.Unmarshal(b, &state); err != nil {
		logx.Error().Err(err).Str("session_id", sessionID).Msg("failed to unmarshal checkpoint")
		return nil, fmt.Errorf("unmarshal checkpoint: %w", err)
	}
	return &state, nil
}

func (s *RedisStore) Put(ctx context.Context, sessionID string, state *model.RunState) error {
	b, err := json.Marshal(state)
	if err != nil {
		logx.Error().Err(err).Str("session_id", sessionID).Msg("failed to marshal checkpoint")
		return fmt.Errorf("marshal checkpoint: %w", err)
	}

	if err := s.rdb.Set(ctx, s.key(sessionID), b, s.ttl).Err(); err != nil {
		logx.Error().Err(err).Str("session_id", sessionID).Msg("failed to write checkpoint")
		return errx.WrapRedis(err)
	}
	return nil
}

func (s *RedisStore) Evict(ctx context.Context, sessionID string) error {
	if err := s.rdb.Del(ctx, s.key(sessionID)).Err(); err != nil {
		return errx.WrapRedis(err)
	}
	return nil
}
