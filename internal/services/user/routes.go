package user

import (
	"github.com/gofiber/fiber/v3"
	"github.com/rajivgeraev/barterhub-api/internal/middleware"
)

// SetupRoutes настраивает маршруты для API профилей
func (s *UserService) SetupRoutes(app *fiber.App) {
	api := app.Group("/api/users")

	// Защищенные маршруты (требуют авторизации)
	api.Use(middleware.AuthMiddleware(s.jwtService))

	api.Get("/me", s.GetMe)
	api.Get("/:id", s.GetUser)
}
