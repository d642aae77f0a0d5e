package redisstore

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type Store struct {
	Client *redis.Client
}

func New(addr, password string, db int) *Store {
	return &Store{
		Client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
	}
}

// Allow implements a sliding-window rate limit keyed by session id: a
// sorted set of event timestamps trimmed to the window on every check.
// One policy everywhere; no fixed-window boundary bursts.
//
// The count and the add are separate round trips, so racing checks for
// one session can each pass at the boundary and admit slightly over
// limit. The throttle is a coarse abuse guard, not an exact quota.
func (s *Store) Allow(ctx context.Context, sessionID string, limit int, window time.Duration) (bool, error) {
	now := time.Now()
	key := "rl:events:" + sessionID
	cutoff := now.Add(-window).UnixMicro()

	pipe := s.Client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", fmt.Sprintf("%d", cutoff))
	count := pipe.ZCard(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}

	if count.Val() >= int64(limit) {
		return false, nil
	}

	pipe = s.Client.TxPipeline()
	pipe.ZAdd(ctx, key, redis.Z{
		Score:  float64(now.UnixMicro()),
		Member: fmt.Sprintf("%d", now.UnixNano()),
	})
	pipe.Expire(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}
	return true, nil
}
