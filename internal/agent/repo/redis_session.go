package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Chative-core-poc-v1/frontdesk/internal/agent/model"
	errx "github.com/Chative-core-poc-v1/frontdesk/internal/core/error"
	logx "github.com/Chative-core-poc-v1/frontdesk/pkg/logger"
)

// RedisSessionStore keeps each session as a JSON value whose TTL is reset on Put.
type RedisSessionStore struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewRedisSessionStore(rdb redis.Cmdable, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{rdb: rdb, ttl: ttl}
}

func (r *RedisSessionStore) key(sessionID string) string {
	return fmt.Sprintf("frontdesk:session:%s", sessionID)
}

func (r *RedisSessionStore) Get(ctx context.Context, sessionID string) (*model.Session, error) {
	key := r.key(sessionID)
	b, err := r.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		logx.Error().Err(err).Str("key", key).Msg("failed to load session from redis")
		return nil, errx.WrapRedis(err)
	}

	var s model.Session
	if err := json.Unmarshal(b, &s); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to unmarshal session")
		return nil, fmt.Errorf("unmarshal session %s: %w", sessionID, err)
	}
	s.Normalize()
	return &s, nil
}

func (r *RedisSessionStore) Put(ctx context.Context, sessionID string, session *model.Session) error {
	b, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session %s: %w", sessionID, err)
	}
	key := r.key(sessionID)
	if err := r.rdb.Set(ctx, key, b, r.ttl).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to store session in redis")
		return errx.WrapRedis(err)
	}
	return nil
}

func (r *RedisSessionStore) Evict(ctx context.Context, sessionID string) error {
	key := r.key(sessionID)
	if err := r.rdb.Del(ctx, key).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to evict session from redis")
		return errx.WrapRedis(err)
	}
	return nil
}

var _ model.SessionStore = (*RedisSessionStore)(nil)
