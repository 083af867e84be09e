package rdx

import (
	"context"
	"log"
	"time"

	"evently/globals"

	"github.com/redis/go-redis/v9"
)

var Conn *redis.Client

func init() {
	Conn = redis.NewClient(&redis.Options{
		Addr:     globals.Getenv("REDIS_ADDR", "localhost:6379"),
		Password: globals.Getenv("REDIS_PASSWORD", ""),
	})

	if err := Conn.Ping(context.Background()).Err(); err != nil {
		log.Printf("Redis ping failed: %v", err)
	}
}

// AcquireLock takes a best-effort distributed lock via SetNX. Returns false
// when another holder owns the key.
func AcquireLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := Conn.SetNX(ctx, "lock:"+key, "1", ttl).Result()
	if err != nil {
		return false, err
	}
	return ok, nil
}

// ReleaseLock releases a lock taken by AcquireLock.
func ReleaseLock(ctx context.Context, key string) {
	if err := Conn.Del(ctx, "lock:"+key).Err(); err != nil {
		log.Printf("ReleaseLock: failed for key %s, err=%v", key, err)
	}
}
