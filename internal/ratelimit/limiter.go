// Package ratelimit реализует лимит попыток входа на основе скользящего окна в Redis.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter ограничивает количество событий на ключ в пределах окна
type Limiter struct {
	client *redis.Client
	limit  int
	window time.Duration
	prefix string
}

// NewLimiter создаёт новый лимитер
func NewLimiter(client *redis.Client, limit int, window time.Duration, prefix string) *Limiter {
	return &Limiter{
		client: client,
		limit:  limit,
		window: window,
		prefix: prefix,
	}
}

// Скрипт выполняется атомарно: чистим записи за пределами окна,
// считаем оставшиеся, при недоборе лимита добавляем новую.
var slidingWindowScript = redis.NewScript(`
	local key = KEYS[1]
	local now = tonumber(ARGV[1])
	local window_start = tonumber(ARGV[2])
	local limit = tonumber(ARGV[3])
	local window_ms = tonumber(ARGV[4])

	redis.call('ZREMRANGEBYSCORE', key, '-inf', window_start)
	local count = redis.call('ZCARD', key)

	if count < limit then
		redis.call('ZADD', key, now, now .. ':' .. count)
		redis.call('PEXPIRE', key, window_ms)
		return 1
	end
	return 0
`)

// Allow сообщает, разрешено ли очередное событие для данного ключа
func (l *Limiter) Allow(ctx context.Context, key string) (bool, error) {
	now := time.Now()
	redisKey := l.prefix + key

	res, err := slidingWindowScript.Run(ctx, l.client, []string{redisKey},
		now.UnixMilli(),
		now.Add(-l.window).UnixMilli(),
		l.limit,
		l.window.Milliseconds(),
	).Int()
	if err != nil {
		return false, fmt.Errorf("ошибка выполнения скрипта лимитера: %w", err)
	}

	return res == 1, nil
}
