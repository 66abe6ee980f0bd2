package offer

import (
	"github.com/gofiber/fiber/v3"
	"github.com/rajivgeraev/barterhub-api/internal/middleware"
)

// SetupRoutes настраивает маршруты для API объявлений
func (s *OfferService) SetupRoutes(app *fiber.App) {
	api := app.Group("/api/offers")

	// Защищенные маршруты (требуют авторизации)
	api.Use(middleware.AuthMiddleware(s.jwtService))

	api.Get("/", s.GetOffers)
	api.Get("/my", s.GetMyOffers)
	api.Get("/:id", s.GetOffer)
	api.Post("/", s.CreateOffer)
	api.Patch("/:id", s.UpdateOffer)
	api.Delete("/:id", s.DeleteOffer)
}
