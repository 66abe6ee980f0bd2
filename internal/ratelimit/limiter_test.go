package ratelimit

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestLimiter_SlidingWindow(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL не задан, пропускаем тест лимитера")
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		t.Fatal(err)
	}
	client := redis.NewClient(opts)
	defer client.Close()

	limiter := NewLimiter(client, 3, time.Minute, "test_limit")
	key := fmt.Sprintf("key-%d", time.Now().UnixNano())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, err := limiter.Allow(ctx, key)
		if err != nil {
			t.Fatal(err)
		}
		if !allowed {
			t.Fatalf("попытка %d должна проходить", i+1)
		}
	}

	allowed, err := limiter.Allow(ctx, key)
	if err != nil {
		t.Fatal(err)
	}
	if allowed {
		t.Error("четвёртая попытка должна упереться в лимит")
	}
}
