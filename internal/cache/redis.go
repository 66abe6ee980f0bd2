package cache

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/rajivgeraev/barterhub-api/internal/config"
	"github.com/redis/go-redis/v9"
)

// Client представляет клиент Redis, используемый для лимитов и refresh-сессий
var Client *redis.Client

// InitRedis инициализирует соединение с Redis
func InitRedis(cfg *config.Config) error {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("ошибка при разборе URL Redis: %w", err)
	}

	Client = redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := Client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ошибка при проверке соединения с Redis: %w", err)
	}

	log.Println("✅ Успешное подключение к Redis")
	return nil
}

// CloseRedis закрывает соединение с Redis
func CloseRedis() {
	if Client != nil {
		Client.Close()
	}
}
