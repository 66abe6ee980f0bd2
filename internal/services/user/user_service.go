package user

import (
	"log"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/rajivgeraev/barterhub-api/internal/config"
	"github.com/rajivgeraev/barterhub-api/internal/db"
	"github.com/rajivgeraev/barterhub-api/internal/models"
	"github.com/rajivgeraev/barterhub-api/internal/utils"
)

// UserService представляет сервис для работы с профилями пользователей
type UserService struct {
	cfg        *config.Config
	jwtService *utils.JWTService
}

// NewUserService создает новый экземпляр UserService
func NewUserService(cfg *config.Config) *UserService {
	return &UserService{
		cfg:        cfg,
		jwtService: utils.NewJWTService(cfg.JWTSecret),
	}
}

// GetMe возвращает профиль текущего пользователя
func (s *UserService) GetMe(c fiber.Ctx) error {
	userID := c.Locals("userID").(string)

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, utils.CodeValidationError, "Неверный формат ID пользователя")
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	var user models.User
	err = db.Pool.QueryRow(ctx, `
		SELECT id, email, name, city, avatar_url, is_verified, created_at
		FROM users
		WHERE id = $1
	`, userUUID).Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.City,
		&user.AvatarURL,
		&user.IsVerified,
		&user.CreatedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return utils.SendError(c, fiber.StatusNotFound, utils.CodeNotFound, "Пользователь не найден")
		}
		log.Printf("Ошибка получения пользователя %s: %v", userUUID, err)
		return utils.SendError(c, fiber.StatusInternalServerError, utils.CodeInternalError, "Ошибка получения профиля")
	}

	return c.JSON(fiber.Map{"user": user})
}

// GetUser возвращает публичный профиль пользователя по ID
func (s *UserService) GetUser(c fiber.Ctx) error {
	userUUID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, utils.CodeValidationError, "Неверный формат ID пользователя")
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	var user models.User
	err = db.Pool.QueryRow(ctx, `
		SELECT id, name, city, avatar_url
		FROM users
		WHERE id = $1
	`, userUUID).Scan(
		&user.ID,
		&user.Name,
		&user.City,
		&user.AvatarURL,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return utils.SendError(c, fiber.StatusNotFound, utils.CodeNotFound, "Пользователь не найден")
		}
		log.Printf("Ошибка получения пользователя %s: %v", userUUID, err)
		return utils.SendError(c, fiber.StatusInternalServerError, utils.CodeInternalError, "Ошибка получения профиля")
	}

	return c.JSON(fiber.Map{"user": user.PublicProfile()})
}
