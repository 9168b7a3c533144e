package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Chative-core-poc-v1/frontdesk/internal/agent/model"
	errx "github.com/Chative-core-poc-v1/frontdesk/internal/core/error"
	logx "github.com/Chative-core-poc-v1/frontdesk/pkg/logger"
)

// RedisTurnLog appends turns to per-session and per-user Redis lists.
type RedisTurnLog struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewRedisTurnLog(rdb redis.Cmdable, ttl time.Duration) *RedisTurnLog {
	return &RedisTurnLog{rdb: rdb, ttl: ttl}
}

func (r *RedisTurnLog) sessionKey(sessionID string) string {
	return fmt.Sprintf("frontdesk:turns:session:%s", sessionID)
}

func (r *RedisTurnLog) userKey(userID string) string {
	return fmt.Sprintf("frontdesk:turns:user:%s", userID)
}

func (r *RedisTurnLog) Append(ctx context.Context, turn model.TurnRecord) error {
	if turn.CreatedAt.IsZero() {
		turn.CreatedAt = time.Now()
	}
	b, err := json.Marshal(turn)
	if err != nil {
		logx.Error().Err(err).Str("session_id", turn.SessionID).Msg("failed to marshal turn")
		return fmt.Errorf("marshal turn: %w", err)
	}

	keys := []string{r.sessionKey(turn.SessionID)}
	if turn.UserID != "" {
		keys = append(keys, r.userKey(turn.UserID))
	}

	pipe := r.rdb.TxPipeline()
	for _, key := range keys {
		pipe.RPush(ctx, key, b)
		// extend TTL on touch
		if r.ttl > 0 {
			pipe.Expire(ctx, key, r.ttl)
		}
	}
	if _, err := pipe.Exec(ctx); err != nil {
		logx.Error().Err(err).Strs("keys", keys).Msg("failed to append turn to redis")
		return errx.WrapRedis(err)
	}
	return nil
}

func (r *RedisTurnLog) BySession(ctx context.Context, sessionID string) ([]model.TurnRecord, error) {
	return r.load(ctx, r.sessionKey(sessionID))
}

func (r *RedisTurnLog) ByUser(ctx context.Context, userID string) ([]model.TurnRecord, error) {
	return r.load(ctx, r.userKey(userID))
}

func (r *RedisTurnLog) load(ctx context.Context, key string) ([]model.TurnRecord, error) {
	rows, err := r.rdb.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		if err == redis.Nil {
			return []model.TurnRecord{}, nil
		}
		logx.Error().Err(err).Str("key", key).Msg("failed to load turns from redis")
		return nil, errx.WrapRedis(err)
	}

	turns := make([]model.TurnRecord, 0, len(rows))
	for i, s := range rows {
		var t model.TurnRecord
		if err := json.Unmarshal([]byte(s), &t); err != nil {
			logx.Error().Err(err).Str("key", key).Int("index", i).Msg("failed to unmarshal turn")
			return nil, fmt.Errorf("unmarshal turn at index %d: %w", i, err)
		}
		turns = append(turns, t)
	}
	return turns, nil
}

var _ model.TurnLog = (*RedisTurnLog)(nil)
