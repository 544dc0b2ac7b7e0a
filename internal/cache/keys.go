package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"piazza/internal/observability"

	"github.com/redis/go-redis/v9"
)

const (
	UserKeyPrefix    = "user:%d"
	PostKeyPrefix    = "post:%d"
	TopicKeyPrefix   = "topic:%s"
	TopPostKeyPrefix = "topic:%s:top"
)

const (
	UserTTL  = 5 * time.Minute
	PostTTL  = 30 * time.Second
	TopicTTL = 15 * time.Second
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func PostKey(postID uint) string {
	return fmt.Sprintf(PostKeyPrefix, postID)
}

// TopicKey is case-insensitive so "Tech" and "tech" share one entry.
func TopicKey(topic string) string {
	return fmt.Sprintf(TopicKeyPrefix, strings.ToLower(topic))
}

func TopPostKey(topic string) string {
	return fmt.Sprintf(TopPostKeyPrefix, strings.ToLower(topic))
}

// Get loads the cached JSON payload for key into dest. Returns false on a
// miss or when the cache is unavailable.
func Get(ctx context.Context, key string, dest interface{}) bool {
	if client == nil {
		return false
	}
	raw, err := client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			observability.RedisErrorRate.WithLabelValues("get").Inc()
		}
		observability.CacheRequests.WithLabelValues("miss").Inc()
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		observability.CacheRequests.WithLabelValues("miss").Inc()
		return false
	}
	observability.CacheRequests.WithLabelValues("hit").Inc()
	return true
}

// Set stores value as JSON under key. Failures are swallowed; the cache is
// best-effort.
func Set(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if client == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := client.Set(ctx, key, raw, ttl).Err(); err != nil {
		observability.RedisErrorRate.WithLabelValues("set").Inc()
	}
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

// InvalidatePost drops the cached post along with the listings of every
// topic it appears in.
func InvalidatePost(ctx context.Context, postID uint, topics []string) {
	Invalidate(ctx, PostKey(postID))
	for _, topic := range topics {
		Invalidate(ctx, TopicKey(topic))
		Invalidate(ctx, TopPostKey(topic))
	}
}
