// Package cache holds the redis-backed timeline page cache.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"chirper/social-service/internal/models"
)

// pages go stale quickly as follows and likes mutate the feed
const pageTTL = 30 * time.Second

type RedisTimelineCache struct {
	client *redis.Client
}

func NewRedisTimelineCache(client *redis.Client) *RedisTimelineCache {
	return &RedisTimelineCache{client: client}
}

func pageKey(userID uint64, page int) string {
	return fmt.Sprintf("timeline:%d:page:%d", userID, page)
}

func (c *RedisTimelineCache) GetPage(ctx context.Context, userID uint64, page int) ([]*models.Tweet, error) {
	payload, err := c.client.Get(ctx, pageKey(userID, page)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read timeline page from redis: %w", err)
	}

	var tweets []*models.Tweet
	if err := json.Unmarshal(payload, &tweets); err != nil {
		return nil, fmt.Errorf("failed to decode cached timeline page: %w", err)
	}
	return tweets, nil
}

func (c *RedisTimelineCache) SetPage(ctx context.Context, userID uint64, page int, tweets []*models.Tweet) error {
	payload, err := json.Marshal(tweets)
	if err != nil {
		return fmt.Errorf("failed to encode timeline page: %w", err)
	}
	if err := c.client.Set(ctx, pageKey(userID, page), payload, pageTTL).Err(); err != nil {
		return fmt.Errorf("failed to write timeline page to redis: %w", err)
	}
	return nil
}

// InvalidateUser drops every cached page for one user. Called after
// mutations that change what the user's feed should contain.
func (c *RedisTimelineCache) InvalidateUser(ctx context.Context, userID uint64) error {
	pattern := fmt.Sprintf("timeline:%d:page:*", userID)
	iter := c.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("failed to invalidate timeline page: %w", err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan timeline pages: %w", err)
	}
	return nil
}
