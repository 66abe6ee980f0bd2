package main

import (
	"log"

	"github.com/rajivgeraev/barterhub-api/internal/app"
	"github.com/rajivgeraev/barterhub-api/internal/cache"
	"github.com/rajivgeraev/barterhub-api/internal/config"
	"github.com/rajivgeraev/barterhub-api/internal/db"
)

func main() {
	// Загружаем конфигурацию
	cfg := config.LoadConfig()

	// Инициализируем базу данных
	if err := db.InitDB(cfg); err != nil {
		log.Fatalf("❌ Ошибка при инициализации базы данных: %v", err)
	}
	defer db.CloseDB()

	// Инициализируем Redis
	if err := cache.InitRedis(cfg); err != nil {
		log.Fatalf("❌ Ошибка при инициализации Redis: %v", err)
	}
	defer cache.CloseRedis()

	// Собираем приложение
	application := app.New(cfg)

	// Запускаем сервер
	log.Println("✅ BarterHub API запущен на порту 8080")
	log.Fatal(application.Listen(":8080"))
}
