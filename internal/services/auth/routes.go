package auth

import (
	"github.com/gofiber/fiber/v3"
	"github.com/rajivgeraev/barterhub-api/internal/middleware"
)

// SetupRoutes регистрирует маршруты в Fiber
func (s *AuthService) SetupRoutes(app *fiber.App) {
	api := app.Group("/api/auth")

	api.Post("/signup", s.SignupHandler)
	api.Post("/verify", s.VerifyHandler)
	api.Post("/login", s.LoginHandler)
	api.Post("/refresh", s.RefreshHandler)

	// Выход требует действующего access токена
	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(s.jwtService))
	protected.Post("/logout", s.LogoutHandler)
}
