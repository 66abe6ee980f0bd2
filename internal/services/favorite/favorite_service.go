package favorite

import (
	"context"
	"log"
	"strconv"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/rajivgeraev/barterhub-api/internal/config"
	"github.com/rajivgeraev/barterhub-api/internal/db"
	"github.com/rajivgeraev/barterhub-api/internal/models"
	"github.com/rajivgeraev/barterhub-api/internal/utils"
)

// FavoriteService представляет сервис для работы с отслеживаемыми объявлениями
type FavoriteService struct {
	cfg        *config.Config
	jwtService *utils.JWTService
}

// NewFavoriteService создает новый экземпляр FavoriteService
func NewFavoriteService(cfg *config.Config) *FavoriteService {
	return &FavoriteService{
		cfg:        cfg,
		jwtService: utils.NewJWTService(cfg.JWTSecret),
	}
}

// AddFavorite добавляет объявление в отслеживаемые
func (s *FavoriteService) AddFavorite(c fiber.Ctx) error {
	userID := c.Locals("userID").(string)

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, utils.CodeValidationError, "Неверный формат ID пользователя")
	}

	var requestData struct {
		OfferID string `json:"offer_id"`
	}

	if err := c.Bind().Body(&requestData); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, utils.CodeValidationError, "Неверный формат данных")
	}

	offerUUID, err := uuid.Parse(requestData.OfferID)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, utils.CodeValidationError, "Неверный формат ID объявления")
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	// Проверяем, что объявление существует и активно
	var status string
	err = db.Pool.QueryRow(ctx, `SELECT status FROM offers WHERE id = $1`, offerUUID).Scan(&status)
	if err != nil {
		if err == pgx.ErrNoRows {
			return utils.SendError(c, fiber.StatusNotFound, utils.CodeNotFound, "Объявление не найдено")
		}
		log.Printf("Ошибка проверки объявления: %v", err)
		return utils.SendError(c, fiber.StatusInternalServerError, utils.CodeInternalError, "Ошибка проверки объявления")
	}

	if status != models.OfferStatusActive {
		return utils.SendError(c, fiber.StatusNotFound, utils.CodeNotFound, "Объявление снято с публикации")
	}

	// Повторное добавление не считается ошибкой
	_, err = db.Pool.Exec(ctx, `
		INSERT INTO favorites (user_id, offer_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, offer_id) DO NOTHING
	`, userUUID, offerUUID)

	if err != nil {
		log.Printf("Ошибка добавления в отслеживаемые: %v", err)
		return utils.SendError(c, fiber.StatusInternalServerError, utils.CodeInternalError, "Ошибка сохранения")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true})
}

// RemoveFavorite убирает объявление из отслеживаемых
func (s *FavoriteService) RemoveFavorite(c fiber.Ctx) error {
	userID := c.Locals("userID").(string)

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, utils.CodeValidationError, "Неверный формат ID пользователя")
	}

	offerUUID, err := uuid.Parse(c.Params("offerId"))
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, utils.CodeValidationError, "Неверный формат ID объявления")
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	tag, err := db.Pool.Exec(ctx, `
		DELETE FROM favorites WHERE user_id = $1 AND offer_id = $2
	`, userUUID, offerUUID)

	if err != nil {
		log.Printf("Ошибка удаления из отслеживаемых: %v", err)
		return utils.SendError(c, fiber.StatusInternalServerError, utils.CodeInternalError, "Ошибка удаления")
	}

	if tag.RowsAffected() == 0 {
		return utils.SendError(c, fiber.StatusNotFound, utils.CodeNotFound, "Объявление не было в отслеживаемых")
	}

	return c.JSON(fiber.Map{"success": true})
}

// GetFavorites возвращает отслеживаемые объявления пользователя
func (s *FavoriteService) GetFavorites(c fiber.Ctx) error {
	userID := c.Locals("userID").(string)

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, utils.CodeValidationError, "Неверный формат ID пользователя")
	}

	limit := 20
	offsetStr := c.Query("offset", "0")
	offset, _ := strconv.Atoi(offsetStr)

	ctx, cancel := db.GetContext()
	defer cancel()

	rows, err := db.Pool.Query(ctx, `
		SELECT f.id, f.user_id, f.offer_id, f.created_at
		FROM favorites f
		JOIN offers o ON o.id = f.offer_id
		WHERE f.user_id = $1 AND o.status = 'active'
		ORDER BY f.created_at DESC
		LIMIT $2 OFFSET $3
	`, userUUID, limit, offset)

	if err != nil {
		log.Printf("Ошибка запроса отслеживаемых: %v", err)
		return utils.SendError(c, fiber.StatusInternalServerError, utils.CodeInternalError, "Ошибка получения отслеживаемых")
	}
	defer rows.Close()

	var favorites []models.Favorite
	for rows.Next() {
		var fav models.Favorite
		if err := rows.Scan(&fav.ID, &fav.UserID, &fav.OfferID, &fav.CreatedAt); err != nil {
			log.Printf("Ошибка сканирования строки: %v", err)
			continue
		}

		fav.Offer = getOfferInfo(ctx, fav.OfferID)
		favorites = append(favorites, fav)
	}

	var total int
	if err := db.Pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM favorites f
		JOIN offers o ON o.id = f.offer_id
		WHERE f.user_id = $1 AND o.status = 'active'
	`, userUUID).Scan(&total); err != nil {
		log.Printf("Ошибка подсчета отслеживаемых: %v", err)
	}

	return c.JSON(models.FavoriteResponse{
		Favorites: favorites,
		Total:     total,
		Limit:     limit,
		Offset:    offset,
	})
}

// getOfferInfo получает базовую информацию об объявлении
func getOfferInfo(ctx context.Context, offerID uuid.UUID) *models.Offer {
	var offer models.Offer
	err := db.Pool.QueryRow(ctx, `
		SELECT id, user_id, title, description, city, status
		FROM offers
		WHERE id = $1
	`, offerID).Scan(
		&offer.ID,
		&offer.UserID,
		&offer.Title,
		&offer.Description,
		&offer.City,
		&offer.Status,
	)

	if err != nil {
		log.Printf("Ошибка получения объявления %s: %v", offerID, err)
		return nil
	}

	return &offer
}
