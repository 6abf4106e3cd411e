package worker

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"docqa/internal/config"
	"docqa/internal/domain"
	"docqa/internal/logger"
)

const cacheKeyPrefix = "answer:"

// AnswerCache is an optional Redis-backed cache of final answers keyed on
// the normalized question. Cache failures degrade to computing the answer.
type AnswerCache struct {
	client *redis.Client
	ttl    time.Duration
	group  singleflight.Group
	logger *slog.Logger
	hits   atomic.Int64
	misses atomic.Int64
}

// NewAnswerCache connects to Redis and verifies the connection with a PING.
func NewAnswerCache(cfg config.CacheConfig) (*AnswerCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	ttl := time.Duration(cfg.TTLSecs) * time.Second
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &AnswerCache{
		client: rdb,
		ttl:    ttl,
		logger: logger.WithComponent("answer-cache"),
	}, nil
}

// GetOrCompute returns the cached answer for the question, or computes and
// stores it. Concurrent requests for the same question share one compute,
// which runs detached from the initiating request's context: a waiter must
// not get a degraded answer because the first client disconnected.
// Degraded answers (failed generation, missing credentials) are never
// cached, so recovery of the AI dependency is visible immediately.
func (c *AnswerCache) GetOrCompute(ctx context.Context, question string, compute func(ctx context.Context) domain.Answer) (domain.Answer, bool) {
	key := buildCacheKey(question)
	if answer, ok := c.get(ctx, key); ok {
		c.hits.Add(1)
		return answer, true
	}
	c.misses.Add(1)

	detached := context.WithoutCancel(ctx)
	val, _, _ := c.group.Do(key, func() (any, error) {
		if answer, ok := c.get(detached, key); ok {
			return answer, nil
		}
		answer := compute(detached)
		if answer.Outcome == domain.OutcomeGenerated || answer.Outcome == domain.OutcomeNoResults {
			c.set(detached, key, answer)
		}
		return answer, nil
	})
	return val.(domain.Answer), false
}

// Invalidate removes every cached answer.
func (c *AnswerCache) Invalidate(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, cacheKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("deleting key %s: %w", iter.Val(), err)
		}
	}
	return iter.Err()
}

// Stats returns hit and miss counts since startup.
func (c *AnswerCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// Close releases the Redis connection.
func (c *AnswerCache) Close() error {
	return c.client.Close()
}

func (c *AnswerCache) get(ctx context.Context, key string) (domain.Answer, bool) {
	data, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			c.logger.Error("cache get failed", "key", key, "error", err)
		}
		return domain.Answer{}, false
	}
	var answer domain.Answer
	if err := json.Unmarshal([]byte(data), &answer); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		return domain.Answer{}, false
	}
	return answer, true
}

func (c *AnswerCache) set(ctx context.Context, key string, answer domain.Answer) {
	data, err := json.Marshal(answer)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Error("cache set failed", "key", key, "error", err)
	}
}

func buildCacheKey(question string) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(question)), " ")
	hash := sha256.Sum256([]byte(normalized))
	return fmt.Sprintf("%s%x", cacheKeyPrefix, hash[:16])
}
