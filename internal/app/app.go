package app

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"

	"github.com/rajivgeraev/barterhub-api/internal/config"
	"github.com/rajivgeraev/barterhub-api/internal/services/auth"
	"github.com/rajivgeraev/barterhub-api/internal/services/chat"
	"github.com/rajivgeraev/barterhub-api/internal/services/cloudinary"
	"github.com/rajivgeraev/barterhub-api/internal/services/favorite"
	"github.com/rajivgeraev/barterhub-api/internal/services/interest"
	"github.com/rajivgeraev/barterhub-api/internal/services/offer"
	"github.com/rajivgeraev/barterhub-api/internal/services/user"
	"github.com/rajivgeraev/barterhub-api/internal/utils"
)

// New собирает приложение Fiber со всеми сервисами и middleware.
// База данных и Redis должны быть инициализированы до вызова.
func New(cfg *config.Config) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "BarterHub API",
		ErrorHandler: errorHandler,
	})

	// Добавляем middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowCredentials: false,
	}))

	// Создаём сервисы
	authService := auth.NewAuthService(cfg)
	userService := user.NewUserService(cfg)
	cloudinaryService := cloudinary.NewCloudinaryService(cfg)
	offerService := offer.NewOfferService(cfg, cloudinaryService)
	interestService := interest.NewInterestService(cfg)
	chatService := chat.NewChatService(cfg)
	favoriteService := favorite.NewFavoriteService(cfg)

	// Регистрируем маршруты
	authService.SetupRoutes(app)
	userService.SetupRoutes(app)
	cloudinaryService.SetupRoutes(app)
	offerService.SetupRoutes(app)
	interestService.SetupRoutes(app)
	chatService.SetupRoutes(app)
	favoriteService.SetupRoutes(app)

	return app
}

// errorHandler приводит ошибки Fiber к единому конверту API
func errorHandler(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}

	apiCode := utils.CodeInternalError
	switch code {
	case fiber.StatusNotFound:
		apiCode = utils.CodeNotFound
	case fiber.StatusUnauthorized:
		apiCode = utils.CodeUnauthorized
	case fiber.StatusForbidden:
		apiCode = utils.CodeForbidden
	case fiber.StatusBadRequest, fiber.StatusUnprocessableEntity:
		apiCode = utils.CodeValidationError
	}

	return utils.SendError(c, code, apiCode, err.Error())
}
