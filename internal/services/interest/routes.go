package interest

import (
	"github.com/gofiber/fiber/v3"
	"github.com/rajivgeraev/barterhub-api/internal/middleware"
)

// SetupRoutes настраивает маршруты для API интересов
func (s *InterestService) SetupRoutes(app *fiber.App) {
	api := app.Group("/api/interests")

	// Защищенные маршруты (требуют авторизации)
	api.Use(middleware.AuthMiddleware(s.jwtService))

	api.Post("/", s.ExpressInterest)
	api.Get("/my", s.GetMyInterests)
	api.Delete("/:id", s.CancelInterest)
	api.Patch("/:id", s.Realize)
	api.Patch("/:id/unrealize", s.Unrealize)
}
