package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"football-pulse/internal/model"
	"football-pulse/internal/scores"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps short-lived state: which feed links were processed and
// cached scoreboard views.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func seenKey(source, key string) string {
	return fmt.Sprintf("news:seen:%s:%s", source, key)
}

func scoresKey(provider string, kind scores.Kind) string {
	return fmt.Sprintf("scores:%s:%s", provider, kind)
}

// IsSeen reports whether a feed entry was already processed for the source.
func (s *RedisStore) IsSeen(ctx context.Context, source, key string) (bool, error) {
	n, err := s.rdb.Exists(ctx, seenKey(source, key)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// MarkSeen records a processed feed entry for the given duration.
func (s *RedisStore) MarkSeen(ctx context.Context, source, key string, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	return s.rdb.Set(ctx, seenKey(source, key), "1", d).Err()
}

// CachedMatches returns a cached view. ok is false on a miss.
func (s *RedisStore) CachedMatches(ctx context.Context, provider string, kind scores.Kind) ([]model.Match, bool, error) {
	b, err := s.rdb.Get(ctx, scoresKey(provider, kind)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var ms []model.Match
	if err := json.Unmarshal(b, &ms); err != nil {
		return nil, false, err
	}
	if ms == nil {
		ms = []model.Match{}
	}
	return ms, true, nil
}

// CacheMatches stores a view for ttl.
func (s *RedisStore) CacheMatches(ctx context.Context, provider string, kind scores.Kind, matches []model.Match, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if matches == nil {
		matches = []model.Match{}
	}
	b, err := json.Marshal(matches)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, scoresKey(provider, kind), b, ttl).Err()
}

// Ping checks connectivity.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}
