package chat

import (
	"github.com/gofiber/fiber/v3"
	"github.com/rajivgeraev/barterhub-api/internal/middleware"
)

// SetupRoutes настраивает маршруты для API чатов
func (s *ChatService) SetupRoutes(app *fiber.App) {
	api := app.Group("/api/chats")

	// Защищенные маршруты (требуют авторизации)
	api.Use(middleware.AuthMiddleware(s.jwtService))

	api.Get("/", s.GetChats)
	api.Get("/:id", s.GetChat)
	api.Get("/:id/messages", s.GetChatMessages)
	api.Post("/:id/messages", s.SendMessage)
}
