package data

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	statsKey = "claimsight:stats:summary"
	statsTTL = 30 * time.Second
)

func MustRedis(url string) *redis.Client {
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	return redis.NewClient(opt)
}

// CacheStats stores a rendered stats summary for a short window so the
// dashboard poll does not hammer the aggregate queries.
func CacheStats(ctx context.Context, rdb *redis.Client, payload []byte) error {
	return rdb.Set(ctx, statsKey, payload, statsTTL).Err()
}

func CachedStats(ctx context.Context, rdb *redis.Client) ([]byte, error) {
	return rdb.Get(ctx, statsKey).Bytes()
}

// DropStatsCache is called after any write that changes the distributions.
func DropStatsCache(ctx context.Context, rdb *redis.Client) {
	_ = rdb.Del(ctx, statsKey).Err()
}
