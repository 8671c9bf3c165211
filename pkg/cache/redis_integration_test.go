//go:build integration

package cache

import (
	"context"
	"os"
	"testing"

	"github.com/redis/go-redis/v9"
)

func TestRedis(t *testing.T) {
	addr := os.Getenv("CANICAI_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("CANICAI_TEST_REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("redis unavailable: %v", err)
	}

	exercise(t, NewScoped(NewRedis(client), "canicai-test:"+t.Name()+":"))
}
