package offer

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/rajivgeraev/barterhub-api/internal/config"
	"github.com/rajivgeraev/barterhub-api/internal/db"
	"github.com/rajivgeraev/barterhub-api/internal/models"
	"github.com/rajivgeraev/barterhub-api/internal/services/cloudinary"
	"github.com/rajivgeraev/barterhub-api/internal/utils"
)

// RequestImage представляет структуру изображения в запросе создания объявления
type RequestImage struct {
	URL        string `json:"url"`
	PreviewURL string `json:"preview_url,omitempty"`
	PublicID   string `json:"public_id"`
	FileName   string `json:"file_name,omitempty"`
	IsMain     bool   `json:"is_main"`
}

// OfferService представляет сервис для работы с объявлениями
type OfferService struct {
	cfg               *config.Config
	jwtService        *utils.JWTService
	cloudinaryService *cloudinary.CloudinaryService
}

// NewOfferService создает новый экземпляр OfferService
func NewOfferService(cfg *config.Config, cloudinaryService *cloudinary.CloudinaryService) *OfferService {
	return &OfferService{
		cfg:               cfg,
		jwtService:        utils.NewJWTService(cfg.JWTSecret),
		cloudinaryService: cloudinaryService,
	}
}

// CreateOffer обрабатывает создание нового объявления
func (s *OfferService) CreateOffer(c fiber.Ctx) error {
	userID := c.Locals("userID").(string)

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, utils.CodeValidationError, "Неверный формат ID пользователя")
	}

	var requestData struct {
		Title       string         `json:"title"`
		Description string         `json:"description"`
		City        string         `json:"city"`
		Images      []RequestImage `json:"images"`
	}

	if err := c.Bind().Body(&requestData); err != nil {
		log.Printf("Ошибка декодирования тела запроса: %v", err)
		return utils.SendError(c, fiber.StatusBadRequest, utils.CodeValidationError, "Неверный формат данных")
	}

	requestData.Title = strings.TrimSpace(requestData.Title)

	// Валидация обязательных полей
	if requestData.Title == "" {
		return utils.SendFieldError(c, fiber.StatusUnprocessableEntity, "Название обязательно", "title")
	}
	if !models.IsValidCity(requestData.City) {
		return utils.SendFieldError(c, fiber.StatusUnprocessableEntity, "Выберите город из списка", "city")
	}

	// Создаем ID для нового объявления
	offerID := uuid.New()

	ctx, cancel := db.GetContext()
	defer cancel()

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		log.Printf("Ошибка начала транзакции: %v", err)
		return utils.SendError(c, fiber.StatusInternalServerError, utils.CodeInternalError, "Ошибка базы данных")
	}
	defer tx.Rollback(ctx)

	// Вставляем объявление
	_, err = tx.Exec(ctx, `
		INSERT INTO offers (id, user_id, title, description, city, status)
		VALUES ($1, $2, $3, $4, $5, 'active')
	`, offerID, userUUID, requestData.Title, requestData.Description, requestData.City)

	if err != nil {
		log.Printf("Ошибка вставки объявления: %v", err)
		return utils.SendError(c, fiber.StatusInternalServerError, utils.CodeInternalError, "Ошибка сохранения объявления")
	}

	// Вставляем изображения, если они есть
	for i, img := range requestData.Images {
		isMain := i == 0 || img.IsMain // Первое изображение - основное

		_, err = tx.Exec(ctx, `
			INSERT INTO offer_images (offer_id, url, preview_url, public_id, file_name, is_main, position)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, offerID, img.URL, img.PreviewURL, img.PublicID, img.FileName, isMain, i)

		if err != nil {
			log.Printf("Ошибка вставки изображения: %v", err)
			return utils.SendError(c, fiber.StatusInternalServerError, utils.CodeInternalError, "Ошибка сохранения изображений")
		}
	}

	if err = tx.Commit(ctx); err != nil {
		log.Printf("Ошибка фиксации транзакции: %v", err)
		return utils.SendError(c, fiber.StatusInternalServerError, utils.CodeInternalError, "Ошибка базы данных")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":  true,
		"offer_id": offerID,
		"message":  "Объявление успешно создано",
	})
}

// GetOffers возвращает публичный список активных объявлений
// с пагинацией, фильтром по городу, поиском и сортировкой
func (s *OfferService) GetOffers(c fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset := (page - 1) * limit

	city := c.Query("city")
	if city != "" && !models.IsValidCity(city) {
		return utils.SendFieldError(c, fiber.StatusUnprocessableEntity, "Неизвестный город", "city")
	}

	sortField := c.Query("sort", "created_at")
	if sortField != "created_at" && sortField != "title" {
		sortField = "created_at"
	}
	order := c.Query("order", "desc")
	if order != "asc" && order != "desc" {
		order = "desc"
	}

	search := strings.TrimSpace(c.Query("search"))

	// Собираем условия запроса
	conditions := []string{"o.status = 'active'"}
	args := []interface{}{}
	argPos := 1

	if city != "" {
		conditions = append(conditions, fmt.Sprintf("o.city = $%d", argPos))
		args = append(args, city)
		argPos++
	}
	if search != "" {
		conditions = append(conditions, fmt.Sprintf("(o.title ILIKE $%d OR o.description ILIKE $%d)", argPos, argPos))
		args = append(args, "%"+search+"%")
		argPos++
	}

	where := strings.Join(conditions, " AND ")

	ctx, cancel := db.GetContext()
	defer cancel()

	query := fmt.Sprintf(`
		SELECT o.id, o.user_id, o.title, o.description, o.city, o.status, o.created_at, o.updated_at
		FROM offers o
		WHERE %s
		ORDER BY o.%s %s
		LIMIT $%d OFFSET $%d
	`, where, sortField, order, argPos, argPos+1)
	args = append(args, limit, offset)

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		log.Printf("Ошибка запроса объявлений: %v", err)
		return utils.SendError(c, fiber.StatusInternalServerError, utils.CodeInternalError, "Ошибка получения объявлений")
	}
	defer rows.Close()

	var offers []models.Offer
	for rows.Next() {
		var offer models.Offer
		if err := rows.Scan(
			&offer.ID,
			&offer.UserID,
			&offer.Title,
			&offer.Description,
			&offer.City,
			&offer.Status,
			&offer.CreatedAt,
			&offer.UpdatedAt,
		); err != nil {
			log.Printf("Ошибка сканирования строки: %v", err)
			continue
		}

		offer.Images = loadOfferImages(ctx, offer.ID)
		offers = append(offers, offer)
	}

	// Получаем общее количество объявлений для пагинации
	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM offers o WHERE %s`, where)
	if err := db.Pool.QueryRow(ctx, countQuery, args[:len(args)-2]...).Scan(&total); err != nil {
		log.Printf("Ошибка подсчета объявлений: %v", err)
		// Игнорируем ошибку, просто не вернем общее количество
	}

	return c.JSON(models.OfferListResponse{
		Offers: offers,
		Total:  total,
		Page:   page,
		Limit:  limit,
	})
}

// GetMyOffers возвращает объявления текущего пользователя, включая снятые
func (s *OfferService) GetMyOffers(c fiber.Ctx) error {
	userID := c.Locals("userID").(string)

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, utils.CodeValidationError, "Неверный формат ID пользователя")
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	rows, err := db.Pool.Query(ctx, `
		SELECT id, user_id, title, description, city, status, created_at, updated_at
		FROM offers
		WHERE user_id = $1
		ORDER BY updated_at DESC
	`, userUUID)

	if err != nil {
		log.Printf("Ошибка запроса объявлений: %v", err)
		return utils.SendError(c, fiber.StatusInternalServerError, utils.CodeInternalError, "Ошибка получения объявлений")
	}
	defer rows.Close()

	var offers []models.Offer
	for rows.Next() {
		var offer models.Offer
		if err := rows.Scan(
			&offer.ID,
			&offer.UserID,
			&offer.Title,
			&offer.Description,
			&offer.City,
			&offer.Status,
			&offer.CreatedAt,
			&offer.UpdatedAt,
		); err != nil {
			log.Printf("Ошибка сканирования строки: %v", err)
			continue
		}

		offer.Images = loadOfferImages(ctx, offer.ID)
		offers = append(offers, offer)
	}

	return c.JSON(fiber.Map{
		"offers": offers,
		"count":  len(offers),
	})
}

// GetOffer возвращает детальную информацию об объявлении
func (s *OfferService) GetOffer(c fiber.Ctx) error {
	offerUUID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, utils.CodeValidationError, "Неверный формат ID объявления")
	}

	userID := c.Locals("userID").(string)
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, utils.CodeValidationError, "Неверный формат ID пользователя")
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	var offer models.Offer
	err = db.Pool.QueryRow(ctx, `
		SELECT id, user_id, title, description, city, status, created_at, updated_at
		FROM offers
		WHERE id = $1
	`, offerUUID).Scan(
		&offer.ID,
		&offer.UserID,
		&offer.Title,
		&offer.Description,
		&offer.City,
		&offer.Status,
		&offer.CreatedAt,
		&offer.UpdatedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return utils.SendError(c, fiber.StatusNotFound, utils.CodeNotFound, "Объявление не найдено")
		}
		log.Printf("Ошибка получения объявления: %v", err)
		return utils.SendError(c, fiber.StatusInternalServerError, utils.CodeInternalError, "Ошибка получения объявления")
	}

	// Снятое объявление видит только владелец
	if offer.Status == models.OfferStatusRemoved && offer.UserID != userUUID {
		return utils.SendError(c, fiber.StatusNotFound, utils.CodeNotFound, "Объявление не найдено")
	}

	offer.Images = loadOfferImages(ctx, offer.ID)
	offer.Owner = getUserInfo(ctx, offer.UserID)

	return c.JSON(fiber.Map{"offer": offer})
}

// UpdateOffer обновляет объявление владельца
func (s *OfferService) UpdateOffer(c fiber.Ctx) error {
	offerUUID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, utils.CodeValidationError, "Неверный формат ID объявления")
	}

	userID := c.Locals("userID").(string)
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, utils.CodeValidationError, "Неверный формат ID пользователя")
	}

	var requestData struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		City        *string `json:"city"`
	}

	if err := c.Bind().Body(&requestData); err != nil {
		log.Printf("Ошибка декодирования тела запроса: %v", err)
		return utils.SendError(c, fiber.StatusBadRequest, utils.CodeValidationError, "Неверный формат данных")
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	// Проверяем владельца и статус
	var ownerID uuid.UUID
	var status string
	err = db.Pool.QueryRow(ctx, `SELECT user_id, status FROM offers WHERE id = $1`, offerUUID).Scan(&ownerID, &status)
	if err != nil {
		if err == pgx.ErrNoRows {
			return utils.SendError(c, fiber.StatusNotFound, utils.CodeNotFound, "Объявление не найдено")
		}
		log.Printf("Ошибка получения объявления: %v", err)
		return utils.SendError(c, fiber.StatusInternalServerError, utils.CodeInternalError, "Ошибка получения объявления")
	}

	if ownerID != userUUID {
		return utils.SendError(c, fiber.StatusForbidden, utils.CodeForbidden, "Вы не можете редактировать чужое объявление")
	}
	if status == models.OfferStatusRemoved {
		return utils.SendError(c, fiber.StatusConflict, utils.CodeConflict, "Объявление снято и не может быть изменено")
	}

	// Валидация изменяемых полей
	if requestData.Title != nil && strings.TrimSpace(*requestData.Title) == "" {
		return utils.SendFieldError(c, fiber.StatusUnprocessableEntity, "Название обязательно", "title")
	}
	if requestData.City != nil && !models.IsValidCity(*requestData.City) {
		return utils.SendFieldError(c, fiber.StatusUnprocessableEntity, "Выберите город из списка", "city")
	}

	_, err = db.Pool.Exec(ctx, `
		UPDATE offers
		SET title = COALESCE($1, title),
		    description = COALESCE($2, description),
		    city = COALESCE($3, city),
		    updated_at = NOW()
		WHERE id = $4
	`, requestData.Title, requestData.Description, requestData.City, offerUUID)

	if err != nil {
		log.Printf("Ошибка обновления объявления: %v", err)
		return utils.SendError(c, fiber.StatusInternalServerError, utils.CodeInternalError, "Ошибка обновления объявления")
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"offer_id": offerUUID,
		"message":  "Объявление обновлено",
	})
}

// DeleteOffer снимает объявление с публикации. Физически запись не
// удаляется: статус меняется на removed, связанные чаты блокируются,
// открытые интересы отменяются, всё в одной транзакции.
func (s *OfferService) DeleteOffer(c fiber.Ctx) error {
	offerUUID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, utils.CodeValidationError, "Неверный формат ID объявления")
	}

	userID := c.Locals("userID").(string)
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, utils.CodeValidationError, "Неверный формат ID пользователя")
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	var ownerID uuid.UUID
	var status string
	err = db.Pool.QueryRow(ctx, `SELECT user_id, status FROM offers WHERE id = $1`, offerUUID).Scan(&ownerID, &status)
	if err != nil {
		if err == pgx.ErrNoRows {
			return utils.SendError(c, fiber.StatusNotFound, utils.CodeNotFound, "Объявление не найдено")
		}
		log.Printf("Ошибка получения объявления: %v", err)
		return utils.SendError(c, fiber.StatusInternalServerError, utils.CodeInternalError, "Ошибка получения объявления")
	}

	if ownerID != userUUID {
		return utils.SendError(c, fiber.StatusForbidden, utils.CodeForbidden, "Вы не можете удалить чужое объявление")
	}
	if status == models.OfferStatusRemoved {
		return utils.SendError(c, fiber.StatusConflict, utils.CodeConflict, "Объявление уже снято")
	}

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		log.Printf("Ошибка начала транзакции: %v", err)
		return utils.SendError(c, fiber.StatusInternalServerError, utils.CodeInternalError, "Ошибка базы данных")
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		UPDATE offers SET status = 'removed', updated_at = NOW() WHERE id = $1
	`, offerUUID)
	if err != nil {
		log.Printf("Ошибка снятия объявления: %v", err)
		return utils.SendError(c, fiber.StatusInternalServerError, utils.CodeInternalError, "Ошибка удаления объявления")
	}

	// Блокируем чаты, в паре интересов которых участвует это объявление
	_, err = tx.Exec(ctx, `
		UPDATE chats SET is_locked = true, updated_at = NOW()
		WHERE interest_a_id IN (SELECT id FROM interests WHERE offer_id = $1)
		   OR interest_b_id IN (SELECT id FROM interests WHERE offer_id = $1)
	`, offerUUID)
	if err != nil {
		log.Printf("Ошибка блокировки чатов: %v", err)
		return utils.SendError(c, fiber.StatusInternalServerError, utils.CodeInternalError, "Ошибка удаления объявления")
	}

	// Отменяем открытые интересы к снятому объявлению
	_, err = tx.Exec(ctx, `
		UPDATE interests SET status = 'cancelled', updated_at = NOW()
		WHERE offer_id = $1 AND status = 'proposed'
	`, offerUUID)
	if err != nil {
		log.Printf("Ошибка отмены интересов: %v", err)
		return utils.SendError(c, fiber.StatusInternalServerError, utils.CodeInternalError, "Ошибка удаления объявления")
	}

	// Собираем public_id изображений до фиксации, чтобы удалить их из Cloudinary
	var publicIDs []string
	imgRows, err := tx.Query(ctx, `SELECT public_id FROM offer_images WHERE offer_id = $1 AND public_id <> ''`, offerUUID)
	if err != nil {
		log.Printf("Ошибка запроса изображений: %v", err)
	} else {
		for imgRows.Next() {
			var publicID string
			if err := imgRows.Scan(&publicID); err != nil {
				continue
			}
			publicIDs = append(publicIDs, publicID)
		}
		imgRows.Close()
	}

	if err = tx.Commit(ctx); err != nil {
		log.Printf("Ошибка фиксации транзакции: %v", err)
		return utils.SendError(c, fiber.StatusInternalServerError, utils.CodeInternalError, "Ошибка базы данных")
	}

	// Удаляем изображения из Cloudinary в фоне
	if len(publicIDs) > 0 && s.cloudinaryService != nil {
		go s.cloudinaryService.DestroyImages(publicIDs)
	}

	return c.Status(fiber.StatusNoContent).Send(nil)
}

// loadOfferImages получает изображения объявления
func loadOfferImages(ctx context.Context, offerID uuid.UUID) []models.OfferImage {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, offer_id, url, preview_url, public_id, file_name, is_main, position, created_at
		FROM offer_images
		WHERE offer_id = $1
		ORDER BY position ASC
	`, offerID)

	if err != nil {
		log.Printf("Ошибка запроса изображений: %v", err)
		return nil
	}
	defer rows.Close()

	var images []models.OfferImage
	for rows.Next() {
		var img models.OfferImage
		if err := rows.Scan(
			&img.ID,
			&img.OfferID,
			&img.URL,
			&img.PreviewURL,
			&img.PublicID,
			&img.FileName,
			&img.IsMain,
			&img.Position,
			&img.CreatedAt,
		); err != nil {
			log.Printf("Ошибка сканирования изображения: %v", err)
			continue
		}
		images = append(images, img)
	}

	return images
}

// getUserInfo получает базовую информацию о пользователе
func getUserInfo(ctx context.Context, userID uuid.UUID) *models.User {
	var user models.User
	err := db.Pool.QueryRow(ctx, `
		SELECT id, name, city, avatar_url
		FROM users
		WHERE id = $1
	`, userID).Scan(
		&user.ID,
		&user.Name,
		&user.City,
		&user.AvatarURL,
	)

	if err != nil {
		log.Printf("Ошибка получения данных пользователя %s: %v", userID, err)
		return nil
	}

	return &user
}
