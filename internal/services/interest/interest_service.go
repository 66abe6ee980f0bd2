package interest

import (
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/rajivgeraev/barterhub-api/internal/config"
	"github.com/rajivgeraev/barterhub-api/internal/db"
	"github.com/rajivgeraev/barterhub-api/internal/models"
	"github.com/rajivgeraev/barterhub-api/internal/utils"
)

// InterestService представляет сервис для работы с интересами и подтверждением обмена
type InterestService struct {
	cfg        *config.Config
	jwtService *utils.JWTService
}

// NewInterestService создает новый экземпляр InterestService
func NewInterestService(cfg *config.Config) *InterestService {
	return &InterestService{
		cfg:        cfg,
		jwtService: utils.NewJWTService(cfg.JWTSecret),
	}
}

// ExpressInterest создает интерес к чужому объявлению. Если владелец
// объявления уже проявил интерес к активному объявлению инициатора,
// оба интереса становятся accepted и в той же транзакции создается чат.
func (s *InterestService) ExpressInterest(c fiber.Ctx) error {
	userID := c.Locals("userID").(string)

	proposerID, err := uuid.Parse(userID)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, utils.CodeValidationError, "Неверный формат ID пользователя")
	}

	var requestData struct {
		OfferID string `json:"offer_id"`
	}

	if err := c.Bind().Body(&requestData); err != nil {
		log.Printf("Ошибка декодирования тела запроса: %v", err)
		return utils.SendError(c, fiber.StatusBadRequest, utils.CodeValidationError, "Неверный формат данных")
	}

	if requestData.OfferID == "" {
		return utils.SendFieldError(c, fiber.StatusUnprocessableEntity, "Необходимо указать ID объявления", "offer_id")
	}

	offerID, err := uuid.Parse(requestData.OfferID)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, utils.CodeValidationError, "Неверный формат ID объявления")
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	// Проверяем объявление
	var ownerID uuid.UUID
	var offerStatus string
	err = db.Pool.QueryRow(ctx, `
		SELECT user_id, status FROM offers WHERE id = $1
	`, offerID).Scan(&ownerID, &offerStatus)

	if err != nil {
		if err == pgx.ErrNoRows {
			return utils.SendError(c, fiber.StatusNotFound, utils.CodeNotFound, "Объявление не найдено")
		}
		log.Printf("Ошибка запроса объявления: %v", err)
		return utils.SendError(c, fiber.StatusInternalServerError, utils.CodeInternalError, "Ошибка проверки объявления")
	}

	if offerStatus != models.OfferStatusActive {
		return utils.SendError(c, fiber.StatusNotFound, utils.CodeNotFound, "Объявление снято с публикации")
	}

	if ownerID == proposerID {
		return utils.SendError(c, fiber.StatusForbidden, utils.CodeForbidden, "Нельзя проявить интерес к собственному объявлению")
	}

	// Проверяем, нет ли уже живого интереса к этому объявлению
	var existingCount int
	err = db.Pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM interests
		WHERE offer_id = $1 AND proposer_id = $2 AND status <> 'cancelled'
	`, offerID, proposerID).Scan(&existingCount)

	if err != nil {
		log.Printf("Ошибка проверки существующих интересов: %v", err)
		return utils.SendError(c, fiber.StatusInternalServerError, utils.CodeInternalError, "Ошибка проверки интересов")
	}

	if existingCount > 0 {
		return utils.SendError(c, fiber.StatusConflict, utils.CodeConflict, "Вы уже проявили интерес к этому объявлению")
	}

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		log.Printf("Ошибка начала транзакции: %v", err)
		return utils.SendError(c, fiber.StatusInternalServerError, utils.CodeInternalError, "Ошибка базы данных")
	}
	defer tx.Rollback(ctx)

	interestID := uuid.New()

	_, err = tx.Exec(ctx, `
		INSERT INTO interests (id, offer_id, proposer_id, status)
		VALUES ($1, $2, $3, 'proposed')
	`, interestID, offerID, proposerID)

	if err != nil {
		// Частичный уникальный индекс отсекает второй живой интерес
		// к той же паре, в том числе при параллельных запросах
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return utils.SendError(c, fiber.StatusConflict, utils.CodeConflict, "Вы уже проявили интерес к этому объявлению")
		}
		log.Printf("Ошибка создания интереса: %v", err)
		return utils.SendError(c, fiber.StatusInternalServerError, utils.CodeInternalError, "Ошибка сохранения интереса")
	}

	// Проверяем взаимность: владелец объявления уже интересуется
	// каким-либо активным объявлением инициатора?
	var counterpartID uuid.UUID
	err = tx.QueryRow(ctx, `
		SELECT i.id
		FROM interests i
		JOIN offers o ON o.id = i.offer_id
		WHERE i.proposer_id = $1 AND o.user_id = $2 AND o.status = 'active' AND i.status = 'proposed'
		ORDER BY i.created_at ASC
		LIMIT 1
	`, ownerID, proposerID).Scan(&counterpartID)

	if err != nil && err != pgx.ErrNoRows {
		log.Printf("Ошибка проверки взаимного интереса: %v", err)
		return utils.SendError(c, fiber.StatusInternalServerError, utils.CodeInternalError, "Ошибка проверки взаимного интереса")
	}

	var chatID uuid.UUID
	matched := err == nil

	if matched {
		// Взаимный интерес: оба становятся accepted, создаётся чат
		_, err = tx.Exec(ctx, `
			UPDATE interests SET status = 'accepted', updated_at = NOW()
			WHERE id = ANY($1)
		`, []uuid.UUID{interestID, counterpartID})

		if err != nil {
			log.Printf("Ошибка принятия интересов: %v", err)
			return utils.SendError(c, fiber.StatusInternalServerError, utils.CodeInternalError, "Ошибка создания обмена")
		}

		chatID = uuid.New()
		now := time.Now()

		_, err = tx.Exec(ctx, `
			INSERT INTO chats (id, interest_a_id, interest_b_id, user_a_id, user_b_id, status, is_locked, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, 'active', false, $6, $6)
		`, chatID, interestID, counterpartID, proposerID, ownerID, now)

		if err != nil {
			log.Printf("Ошибка создания чата: %v", err)
			return utils.SendError(c, fiber.StatusInternalServerError, utils.CodeInternalError, "Ошибка создания чата")
		}
	}

	if err = tx.Commit(ctx); err != nil {
		log.Printf("Ошибка фиксации транзакции: %v", err)
		return utils.SendError(c, fiber.StatusInternalServerError, utils.CodeInternalError, "Ошибка базы данных")
	}

	response := fiber.Map{
		"success":     true,
		"interest_id": interestID,
		"message":     "Интерес сохранён",
	}

	if matched {
		response["chat_id"] = chatID
		response["message"] = "Взаимный интерес! Чат создан"
	}

	return c.Status(fiber.StatusCreated).JSON(response)
}

// CancelInterest отменяет интерес. Отмена допустима только из статуса
// proposed; повторная отмена возвращает 409, а не падает.
func (s *InterestService) CancelInterest(c fiber.Ctx) error {
	userID := c.Locals("userID").(string)

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, utils.CodeValidationError, "Неверный формат ID пользователя")
	}

	interestUUID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, utils.CodeValidationError, "Неверный формат ID интереса")
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	var proposerID uuid.UUID
	var status string
	err = db.Pool.QueryRow(ctx, `
		SELECT proposer_id, status FROM interests WHERE id = $1
	`, interestUUID).Scan(&proposerID, &status)

	if err != nil {
		if err == pgx.ErrNoRows {
			return utils.SendError(c, fiber.StatusNotFound, utils.CodeNotFound, "Интерес не найден")
		}
		log.Printf("Ошибка запроса интереса: %v", err)
		return utils.SendError(c, fiber.StatusInternalServerError, utils.CodeInternalError, "Ошибка получения интереса")
	}

	if proposerID != userUUID {
		return utils.SendError(c, fiber.StatusForbidden, utils.CodeForbidden, "Вы можете отменить только свой интерес")
	}

	if !models.CanCancel(status) {
		return utils.SendError(c, fiber.StatusConflict, utils.CodeConflict, "Интерес уже нельзя отменить")
	}

	_, err = db.Pool.Exec(ctx, `
		UPDATE interests SET status = 'cancelled', updated_at = NOW() WHERE id = $1
	`, interestUUID)

	if err != nil {
		log.Printf("Ошибка отмены интереса: %v", err)
		return utils.SendError(c, fiber.StatusInternalServerError, utils.CodeInternalError, "Ошибка отмены интереса")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Интерес отменён",
	})
}

// Realize подтверждает обмен со стороны участника: accepted → waiting.
// Если встречный интерес уже в waiting, оба переходят в realized и чат
// архивируется как завершённый, всё в одной транзакции.
func (s *InterestService) Realize(c fiber.Ctx) error {
	return s.transition(c, "realize")
}

// Unrealize отзывает подтверждение: waiting → accepted
func (s *InterestService) Unrealize(c fiber.Ctx) error {
	return s.transition(c, "unrealize")
}

func (s *InterestService) transition(c fiber.Ctx, action string) error {
	userID := c.Locals("userID").(string)

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, utils.CodeValidationError, "Неверный формат ID пользователя")
	}

	interestUUID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, utils.CodeValidationError, "Неверный формат ID интереса")
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		log.Printf("Ошибка начала транзакции: %v", err)
		return utils.SendError(c, fiber.StatusInternalServerError, utils.CodeInternalError, "Ошибка базы данных")
	}
	defer tx.Rollback(ctx)

	// Блокируем строку интереса на время перехода
	var proposerID uuid.UUID
	var status string
	err = tx.QueryRow(ctx, `
		SELECT proposer_id, status FROM interests WHERE id = $1 FOR UPDATE
	`, interestUUID).Scan(&proposerID, &status)

	if err != nil {
		if err == pgx.ErrNoRows {
			return utils.SendError(c, fiber.StatusNotFound, utils.CodeNotFound, "Интерес не найден")
		}
		log.Printf("Ошибка запроса интереса: %v", err)
		return utils.SendError(c, fiber.StatusInternalServerError, utils.CodeInternalError, "Ошибка получения интереса")
	}

	if proposerID != userUUID {
		return utils.SendError(c, fiber.StatusForbidden, utils.CodeForbidden, "Вы можете подтверждать только свой интерес")
	}

	if action == "unrealize" {
		if !models.CanUnrealize(status) {
			return utils.SendError(c, fiber.StatusConflict, utils.CodeConflict, "Подтверждение нельзя отозвать в текущем статусе")
		}

		_, err = tx.Exec(ctx, `
			UPDATE interests SET status = 'accepted', updated_at = NOW() WHERE id = $1
		`, interestUUID)
		if err != nil {
			log.Printf("Ошибка отзыва подтверждения: %v", err)
			return utils.SendError(c, fiber.StatusInternalServerError, utils.CodeInternalError, "Ошибка обновления статуса")
		}

		if err = tx.Commit(ctx); err != nil {
			log.Printf("Ошибка фиксации транзакции: %v", err)
			return utils.SendError(c, fiber.StatusInternalServerError, utils.CodeInternalError, "Ошибка базы данных")
		}

		return c.JSON(fiber.Map{
			"success": true,
			"status":  models.InterestStatusAccepted,
			"message": "Подтверждение отозвано",
		})
	}

	if !models.CanRealize(status) {
		return utils.SendError(c, fiber.StatusConflict, utils.CodeConflict, "Обмен нельзя подтвердить в текущем статусе")
	}

	// Находим чат и встречный интерес
	var chatID, counterpartID uuid.UUID
	err = tx.QueryRow(ctx, `
		SELECT id,
		       CASE WHEN interest_a_id = $1 THEN interest_b_id ELSE interest_a_id END
		FROM chats
		WHERE interest_a_id = $1 OR interest_b_id = $1
	`, interestUUID).Scan(&chatID, &counterpartID)

	if err != nil {
		if err == pgx.ErrNoRows {
			return utils.SendError(c, fiber.StatusConflict, utils.CodeConflict, "Обмен ещё не согласован")
		}
		log.Printf("Ошибка запроса чата: %v", err)
		return utils.SendError(c, fiber.StatusInternalServerError, utils.CodeInternalError, "Ошибка получения чата")
	}

	var counterpartStatus string
	err = tx.QueryRow(ctx, `
		SELECT status FROM interests WHERE id = $1 FOR UPDATE
	`, counterpartID).Scan(&counterpartStatus)

	if err != nil {
		log.Printf("Ошибка запроса встречного интереса: %v", err)
		return utils.SendError(c, fiber.StatusInternalServerError, utils.CodeInternalError, "Ошибка получения встречного интереса")
	}

	newStatus := models.InterestStatusWaiting

	if counterpartStatus == models.InterestStatusWaiting {
		// Обе стороны подтвердили: обмен завершён
		newStatus = models.InterestStatusRealized

		_, err = tx.Exec(ctx, `
			UPDATE interests SET status = 'realized', updated_at = NOW()
			WHERE id = ANY($1)
		`, []uuid.UUID{interestUUID, counterpartID})
		if err != nil {
			log.Printf("Ошибка завершения обмена: %v", err)
			return utils.SendError(c, fiber.StatusInternalServerError, utils.CodeInternalError, "Ошибка обновления статуса")
		}

		_, err = tx.Exec(ctx, `
			UPDATE chats SET status = 'archived', updated_at = NOW() WHERE id = $1
		`, chatID)
		if err != nil {
			log.Printf("Ошибка архивирования чата: %v", err)
			return utils.SendError(c, fiber.StatusInternalServerError, utils.CodeInternalError, "Ошибка обновления чата")
		}
	} else {
		_, err = tx.Exec(ctx, `
			UPDATE interests SET status = 'waiting', updated_at = NOW() WHERE id = $1
		`, interestUUID)
		if err != nil {
			log.Printf("Ошибка подтверждения обмена: %v", err)
			return utils.SendError(c, fiber.StatusInternalServerError, utils.CodeInternalError, "Ошибка обновления статуса")
		}
	}

	if err = tx.Commit(ctx); err != nil {
		log.Printf("Ошибка фиксации транзакции: %v", err)
		return utils.SendError(c, fiber.StatusInternalServerError, utils.CodeInternalError, "Ошибка базы данных")
	}

	message := "Подтверждение сохранено. Ожидаем второго участника"
	if newStatus == models.InterestStatusRealized {
		message = "Обмен завершён"
	}

	return c.JSON(fiber.Map{
		"success": true,
		"status":  newStatus,
		"chat_id": chatID,
		"message": message,
	})
}

// GetMyInterests возвращает интересы текущего пользователя вместе с
// объявлением, чатом и статусом встречного интереса
func (s *InterestService) GetMyInterests(c fiber.Ctx) error {
	userID := c.Locals("userID").(string)

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, utils.CodeValidationError, "Неверный формат ID пользователя")
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	rows, err := db.Pool.Query(ctx, `
		SELECT i.id, i.offer_id, i.proposer_id, i.status, i.created_at, i.updated_at,
		       c.id,
		       COALESCE(ci.status, '')
		FROM interests i
		LEFT JOIN chats c ON c.interest_a_id = i.id OR c.interest_b_id = i.id
		LEFT JOIN interests ci ON ci.id = CASE WHEN c.interest_a_id = i.id THEN c.interest_b_id ELSE c.interest_a_id END
		WHERE i.proposer_id = $1
		ORDER BY i.created_at DESC
	`, userUUID)

	if err != nil {
		log.Printf("Ошибка запроса интересов: %v", err)
		return utils.SendError(c, fiber.StatusInternalServerError, utils.CodeInternalError, "Ошибка получения интересов")
	}
	defer rows.Close()

	var interests []models.Interest
	for rows.Next() {
		var interest models.Interest
		if err := rows.Scan(
			&interest.ID,
			&interest.OfferID,
			&interest.ProposerID,
			&interest.Status,
			&interest.CreatedAt,
			&interest.UpdatedAt,
			&interest.ChatID,
			&interest.OtherStatus,
		); err != nil {
			log.Printf("Ошибка сканирования строки: %v", err)
			continue
		}

		interest.Offer = getOfferInfo(ctx, interest.OfferID)
		interests = append(interests, interest)
	}

	return c.JSON(fiber.Map{
		"interests": interests,
		"count":     len(interests),
	})
}
