package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/agenium/postgate/internal/model"
)

const (
	redisCountPrefix = "postgate/count/"
	redisFpPrefix    = "postgate/fp/"
	redisLogKey      = "postgate/log"
	redisLogCap      = 10000
)

// RedisStore backs the gate with Redis for deployments where several workers
// share one gate state. SET NX on the fingerprint key gives the atomic
// check-and-insert the in-core dedupe read cannot.
type RedisStore struct {
	client *redis.Client
	// fingerprint TTL, derived from the dedupe window at construction
	fpTTL time.Duration
}

// NewRedisStore connects to redisURL and verifies the connection.
// dedupeWindowDays bounds how long fingerprints are retained.
func NewRedisStore(redisURL string, dedupeWindowDays int) (*RedisStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("store: parse redis url: %w", err)
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		return nil, fmt.Errorf("store: redis ping: %w", err)
	}
	if dedupeWindowDays < 1 {
		dedupeWindowDays = 1
	}
	return &RedisStore{
		client: rdb,
		fpTTL:  time.Duration(dedupeWindowDays) * 24 * time.Hour,
	}, nil
}

func (s *RedisStore) GetTodayCount(ctx context.Context, platform model.Platform, kind model.ActionKind) (int, error) {
	key := redisCountPrefix + dayKey(platform, kind, time.Now())
	c, err := s.client.Get(ctx, key).Int()
	if err == redis.Nil {
		return 0, nil
	} else if err != nil {
		return 0, err
	}
	return c, nil
}

func (s *RedisStore) IsDuplicate(ctx context.Context, fingerprint string, windowDays int) (bool, error) {
	// key expiry enforces the window; anything still present is a duplicate
	n, err := s.client.Exists(ctx, redisFpPrefix+fingerprint).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *RedisStore) IncrementCounter(ctx context.Context, platform model.Platform, kind model.ActionKind) error {
	key := redisCountPrefix + dayKey(platform, kind, time.Now())

	// increment and refresh expiry in a single round-trip
	multi := s.client.Pipeline()
	multi.Incr(ctx, key)
	multi.Expire(ctx, key, 48*time.Hour)
	_, err := multi.Exec(ctx)
	return err
}

func (s *RedisStore) AddFingerprint(ctx context.Context, fingerprint string, platform model.Platform) error {
	return s.client.SetNX(ctx, redisFpPrefix+fingerprint, string(platform), s.fpTTL).Err()
}

func (s *RedisStore) LogAction(ctx context.Context, action *model.CandidateAction, decision *model.Decision, textPreview string) error {
	entry, err := json.Marshal(map[string]any{
		"ts":           time.Now().UTC().Format(time.RFC3339),
		"platform":     action.Platform,
		"kind":         action.Kind,
		"fingerprint":  decision.Fingerprint,
		"allow":        decision.Allow,
		"reason_codes": decision.ReasonStrings(),
		"risk_score":   decision.RiskScore,
		"text_preview": textPreview,
	})
	if err != nil {
		return fmt.Errorf("store: marshal log entry: %w", err)
	}

	multi := s.client.Pipeline()
	multi.LPush(ctx, redisLogKey, entry)
	multi.LTrim(ctx, redisLogKey, 0, redisLogCap-1)
	_, err = multi.Exec(ctx)
	return err
}

// Close releases the Redis client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
