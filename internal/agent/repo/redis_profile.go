package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Chative-core-poc-v1/frontdesk/internal/agent/model"
	errx "github.com/Chative-core-poc-v1/frontdesk/internal/core/error"
	logx "github.com/Chative-core-poc-v1/frontdesk/pkg/logger"
)

// RedisProfileStore keeps profiles as Redis hashes keyed by user and session.
type RedisProfileStore struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewRedisProfileStore(rdb redis.Cmdable, ttl time.Duration) *RedisProfileStore {
	return &RedisProfileStore{rdb: rdb, ttl: ttl}
}

func (r *RedisProfileStore) key(userID, sessionID string) string {
	return fmt.Sprintf("frontdesk:profile:%s:%s", userID, sessionID)
}

func (r *RedisProfileStore) Get(ctx context.Context, userID, sessionID string) (*model.Profile, error) {
	key := r.key(userID, sessionID)
	fields, err := r.rdb.HGetAll(ctx, key).Result()
	if err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to load profile from redis")
		return nil, errx.WrapRedis(err)
	}
	if len(fields) == 0 {
		return nil, nil
	}

	p := &model.Profile{
		UserID:    userID,
		SessionID: sessionID,
		Name:      fields["name"],
		Email:     fields["email"],
		Phone:     fields["phone"],
	}
	if ts, err := time.Parse(time.RFC3339Nano, fields["updated_at"]); err == nil {
		p.UpdatedAt = ts
	}
	return p, nil
}

// Upsert writes only the non-empty fields, so earlier details survive.
func (r *RedisProfileStore) Upsert(ctx context.Context, p model.Profile) error {
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now()
	}
	values := map[string]any{"updated_at": p.UpdatedAt.Format(time.RFC3339Nano)}
	if p.Name != "" {
		values["name"] = p.Name
	}
	if p.Email != "" {
		values["email"] = p.Email
	}
	if p.Phone != "" {
		values["phone"] = p.Phone
	}

	key := r.key(p.UserID, p.SessionID)
	pipe := r.rdb.TxPipeline()
	pipe.HSet(ctx, key, values)
	if r.ttl > 0 {
		pipe.Expire(ctx, key, r.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to upsert profile in redis")
		return errx.WrapRedis(err)
	}
	return nil
}

var _ model.ProfileStore = (*RedisProfileStore)(nil)
