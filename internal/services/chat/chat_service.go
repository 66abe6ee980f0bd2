package chat

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/rajivgeraev/barterhub-api/internal/config"
	"github.com/rajivgeraev/barterhub-api/internal/db"
	"github.com/rajivgeraev/barterhub-api/internal/models"
	"github.com/rajivgeraev/barterhub-api/internal/utils"
)

// ChatService представляет сервис для работы с чатами
type ChatService struct {
	cfg        *config.Config
	jwtService *utils.JWTService
}

// NewChatService создает новый экземпляр ChatService
func NewChatService(cfg *config.Config) *ChatService {
	return &ChatService{
		cfg:        cfg,
		jwtService: utils.NewJWTService(cfg.JWTSecret),
	}
}

// GetChats возвращает список чатов пользователя
func (s *ChatService) GetChats(c fiber.Ctx) error {
	userID := c.Locals("userID").(string)

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, utils.CodeValidationError, "Неверный формат ID пользователя")
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	// Список чатов с количеством непрочитанных сообщений
	query := `
        SELECT c.id, c.interest_a_id, c.interest_b_id, c.user_a_id, c.user_b_id,
               c.status, c.is_locked, c.created_at, c.updated_at,
               COALESCE(c.last_message_text, ''), c.last_message_time,
               COUNT(m.id) FILTER (WHERE m.sender_id != $1 AND m.is_read = false) AS unread_count
        FROM chats c
        LEFT JOIN messages m ON c.id = m.chat_id
        WHERE c.user_a_id = $1 OR c.user_b_id = $1
        GROUP BY c.id
        ORDER BY c.last_message_time DESC NULLS LAST, c.created_at DESC
    `

	rows, err := db.Pool.Query(ctx, query, userUUID)
	if err != nil {
		log.Printf("Ошибка запроса чатов: %v", err)
		return utils.SendError(c, fiber.StatusInternalServerError, utils.CodeInternalError, "Ошибка получения чатов")
	}
	defer rows.Close()

	var chats []models.Chat
	for rows.Next() {
		var chat models.Chat
		if err := rows.Scan(
			&chat.ID,
			&chat.InterestAID,
			&chat.InterestBID,
			&chat.UserAID,
			&chat.UserBID,
			&chat.Status,
			&chat.IsLocked,
			&chat.CreatedAt,
			&chat.UpdatedAt,
			&chat.LastMessageText,
			&chat.LastMessageTime,
			&chat.UnreadCount,
		); err != nil {
			log.Printf("Ошибка сканирования строки: %v", err)
			continue
		}

		attachParticipantInfo(ctx, &chat, userUUID)
		chats = append(chats, chat)
	}

	return c.JSON(fiber.Map{
		"chats": chats,
		"count": len(chats),
	})
}

// GetChat возвращает детальную информацию о чате, включая статусы
// обоих интересов в паре
func (s *ChatService) GetChat(c fiber.Ctx) error {
	userID := c.Locals("userID").(string)

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, utils.CodeValidationError, "Неверный формат ID пользователя")
	}

	chatUUID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, utils.CodeValidationError, "Неверный формат ID чата")
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	var chat models.Chat
	err = db.Pool.QueryRow(ctx, `
		SELECT id, interest_a_id, interest_b_id, user_a_id, user_b_id,
		       status, is_locked, created_at, updated_at,
		       COALESCE(last_message_text, ''), last_message_time
		FROM chats
		WHERE id = $1
	`, chatUUID).Scan(
		&chat.ID,
		&chat.InterestAID,
		&chat.InterestBID,
		&chat.UserAID,
		&chat.UserBID,
		&chat.Status,
		&chat.IsLocked,
		&chat.CreatedAt,
		&chat.UpdatedAt,
		&chat.LastMessageText,
		&chat.LastMessageTime,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return utils.SendError(c, fiber.StatusNotFound, utils.CodeNotFound, "Чат не найден")
		}
		log.Printf("Ошибка получения чата: %v", err)
		return utils.SendError(c, fiber.StatusInternalServerError, utils.CodeInternalError, "Ошибка получения чата")
	}

	if chat.UserAID != userUUID && chat.UserBID != userUUID {
		return utils.SendError(c, fiber.StatusForbidden, utils.CodeForbidden, "У вас нет доступа к этому чату")
	}

	attachParticipantInfo(ctx, &chat, userUUID)

	return c.JSON(fiber.Map{"chat": chat})
}

// GetChatMessages возвращает сообщения конкретного чата
func (s *ChatService) GetChatMessages(c fiber.Ctx) error {
	userID := c.Locals("userID").(string)

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, utils.CodeValidationError, "Неверный формат ID пользователя")
	}

	chatUUID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, utils.CodeValidationError, "Неверный формат ID чата")
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	// Проверяем, имеет ли пользователь доступ к этому чату
	var count int
	err = db.Pool.QueryRow(ctx, `
        SELECT COUNT(*) FROM chats
        WHERE id = $1 AND (user_a_id = $2 OR user_b_id = $2)
    `, chatUUID, userUUID).Scan(&count)

	if err != nil {
		log.Printf("Ошибка проверки доступа к чату: %v", err)
		return utils.SendError(c, fiber.StatusInternalServerError, utils.CodeInternalError, "Ошибка проверки доступа к чату")
	}

	if count == 0 {
		return utils.SendError(c, fiber.StatusForbidden, utils.CodeForbidden, "У вас нет доступа к этому чату")
	}

	limit := 50 // Ограничение количества сообщений

	// Обрабатываем пагинацию
	before := c.Query("before")
	var query string
	var queryArgs []interface{}

	if before != "" {
		beforeUUID, err := uuid.Parse(before)
		if err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, utils.CodeValidationError, "Неверный формат ID сообщения")
		}

		query = `
            SELECT m.id, m.chat_id, m.sender_id, m.text, m.is_read, m.created_at
            FROM messages m
            WHERE m.chat_id = $1 AND m.created_at < (SELECT created_at FROM messages WHERE id = $2)
            ORDER BY m.created_at DESC
            LIMIT $3
        `
		queryArgs = []interface{}{chatUUID, beforeUUID, limit}
	} else {
		query = `
            SELECT m.id, m.chat_id, m.sender_id, m.text, m.is_read, m.created_at
            FROM messages m
            WHERE m.chat_id = $1
            ORDER BY m.created_at DESC
            LIMIT $2
        `
		queryArgs = []interface{}{chatUUID, limit}
	}

	rows, err := db.Pool.Query(ctx, query, queryArgs...)
	if err != nil {
		log.Printf("Ошибка запроса сообщений: %v", err)
		return utils.SendError(c, fiber.StatusInternalServerError, utils.CodeInternalError, "Ошибка получения сообщений")
	}
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		var msg models.Message
		if err := rows.Scan(
			&msg.ID,
			&msg.ChatID,
			&msg.SenderID,
			&msg.Text,
			&msg.IsRead,
			&msg.CreatedAt,
		); err != nil {
			log.Printf("Ошибка сканирования сообщения: %v", err)
			continue
		}

		msg.Sender = getUserInfo(ctx, msg.SenderID)
		messages = append(messages, msg)
	}

	// Отмечаем сообщения как прочитанные
	_, err = db.Pool.Exec(ctx, `
        UPDATE messages
        SET is_read = true
        WHERE chat_id = $1 AND sender_id != $2 AND is_read = false
    `, chatUUID, userUUID)

	if err != nil {
		log.Printf("Ошибка обновления статуса прочтения: %v", err)
		// Не возвращаем ошибку, т.к. основная функциональность выполнена
	}

	return c.JSON(fiber.Map{
		"messages": messages,
		"has_more": len(messages) == limit,
	})
}

// SendMessage отправляет новое сообщение. Сообщения нельзя отправлять
// в заблокированный чат (одно из объявлений снято) возвращает 409 CHAT_LOCKED.
func (s *ChatService) SendMessage(c fiber.Ctx) error {
	userID := c.Locals("userID").(string)

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, utils.CodeValidationError, "Неверный формат ID пользователя")
	}

	chatUUID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, utils.CodeValidationError, "Неверный формат ID чата")
	}

	var requestData struct {
		Text string `json:"text"`
	}

	if err := c.Bind().Body(&requestData); err != nil {
		log.Printf("Ошибка чтения тела запроса: %v", err)
		return utils.SendError(c, fiber.StatusBadRequest, utils.CodeValidationError, "Неверный формат данных")
	}

	text := strings.TrimSpace(requestData.Text)
	if text == "" {
		return utils.SendFieldError(c, fiber.StatusUnprocessableEntity, "Текст сообщения не может быть пустым", "text")
	}
	if len([]rune(text)) > models.MaxMessageLength {
		return utils.SendFieldError(c, fiber.StatusUnprocessableEntity, "Сообщение слишком длинное", "text")
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	var chat models.Chat
	err = db.Pool.QueryRow(ctx, `
        SELECT id, user_a_id, user_b_id, is_locked FROM chats
        WHERE id = $1
    `, chatUUID).Scan(&chat.ID, &chat.UserAID, &chat.UserBID, &chat.IsLocked)

	if err != nil {
		if err == pgx.ErrNoRows {
			return utils.SendError(c, fiber.StatusNotFound, utils.CodeNotFound, "Чат не найден")
		}
		log.Printf("Ошибка проверки доступа к чату: %v", err)
		return utils.SendError(c, fiber.StatusInternalServerError, utils.CodeInternalError, "Ошибка проверки доступа к чату")
	}

	if chat.UserAID != userUUID && chat.UserBID != userUUID {
		return utils.SendError(c, fiber.StatusForbidden, utils.CodeForbidden, "У вас нет доступа к этому чату")
	}

	if chat.IsLocked {
		return utils.SendError(c, fiber.StatusConflict, utils.CodeChatLocked, "Чат заблокирован: объявление снято с публикации")
	}

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		log.Printf("Ошибка начала транзакции: %v", err)
		return utils.SendError(c, fiber.StatusInternalServerError, utils.CodeInternalError, "Ошибка базы данных")
	}
	defer tx.Rollback(ctx)

	messageID := uuid.New()
	now := time.Now()

	_, err = tx.Exec(ctx, `
        INSERT INTO messages (id, chat_id, sender_id, text, is_read, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)
    `, messageID, chatUUID, userUUID, text, false, now)

	if err != nil {
		log.Printf("Ошибка создания сообщения: %v", err)
		return utils.SendError(c, fiber.StatusInternalServerError, utils.CodeInternalError, "Ошибка сохранения сообщения")
	}

	// Обновляем превью последнего сообщения
	_, err = tx.Exec(ctx, `
        UPDATE chats
        SET last_message_text = $1, last_message_time = $2, updated_at = $3
        WHERE id = $4
    `, text, now, now, chatUUID)

	if err != nil {
		log.Printf("Ошибка обновления информации о чате: %v", err)
		return utils.SendError(c, fiber.StatusInternalServerError, utils.CodeInternalError, "Ошибка обновления информации о чате")
	}

	if err = tx.Commit(ctx); err != nil {
		log.Printf("Ошибка фиксации транзакции: %v", err)
		return utils.SendError(c, fiber.StatusInternalServerError, utils.CodeInternalError, "Ошибка базы данных")
	}

	message := models.Message{
		ID:        messageID,
		ChatID:    chatUUID,
		SenderID:  userUUID,
		Text:      text,
		IsRead:    false,
		CreatedAt: now,
		Sender:    getUserInfo(ctx, userUUID),
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": message,
		"success": true,
	})
}

// attachParticipantInfo дополняет чат данными о втором участнике
// и статусами интересов обеих сторон
func attachParticipantInfo(ctx context.Context, chat *models.Chat, userUUID uuid.UUID) {
	var otherUserID uuid.UUID
	var myInterestID, otherInterestID uuid.UUID

	if chat.UserAID == userUUID {
		otherUserID = chat.UserBID
		myInterestID = chat.InterestAID
		otherInterestID = chat.InterestBID
	} else {
		otherUserID = chat.UserAID
		myInterestID = chat.InterestBID
		otherInterestID = chat.InterestAID
	}

	chat.OtherUser = getUserInfo(ctx, otherUserID)
	chat.MyStatus = getInterestStatus(ctx, myInterestID)
	chat.OtherStatus = getInterestStatus(ctx, otherInterestID)
}

// getInterestStatus получает статус интереса
func getInterestStatus(ctx context.Context, interestID uuid.UUID) string {
	var status string
	err := db.Pool.QueryRow(ctx, `SELECT status FROM interests WHERE id = $1`, interestID).Scan(&status)
	if err != nil {
		log.Printf("Ошибка получения статуса интереса %s: %v", interestID, err)
		return ""
	}
	return status
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
