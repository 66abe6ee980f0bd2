package auth

import (
	"log"
	"net/mail"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/rajivgeraev/barterhub-api/internal/cache"
	"github.com/rajivgeraev/barterhub-api/internal/config"
	"github.com/rajivgeraev/barterhub-api/internal/db"
	"github.com/rajivgeraev/barterhub-api/internal/models"
	"github.com/rajivgeraev/barterhub-api/internal/ratelimit"
	"github.com/rajivgeraev/barterhub-api/internal/utils"
)

// Не более 5 попыток входа в минуту на пару email+IP
const (
	loginAttemptLimit  = 5
	loginAttemptWindow = time.Minute
)

// Префикс ключей refresh-сессий в Redis
const refreshKeyPrefix = "refresh:"

// AuthService – структура для обработки авторизации
type AuthService struct {
	cfg        *config.Config
	jwtService *utils.JWTService
	limiter    *ratelimit.Limiter
}

// NewAuthService – конструктор AuthService
func NewAuthService(cfg *config.Config) *AuthService {
	return &AuthService{
		cfg:        cfg,
		jwtService: utils.NewJWTService(cfg.JWTSecret),
		limiter:    ratelimit.NewLimiter(cache.Client, loginAttemptLimit, loginAttemptWindow, "login:"),
	}
}

// GetJWTService возвращает JWT сервис для использования в middleware
func (s *AuthService) GetJWTService() *utils.JWTService {
	return s.jwtService
}

// SignupHandler регистрирует нового пользователя
func (s *AuthService) SignupHandler(c fiber.Ctx) error {
	var payload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
		City     string `json:"city"`
	}

	if err := c.Bind().Body(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, utils.CodeValidationError, "Неверный формат данных")
	}

	payload.Email = strings.ToLower(strings.TrimSpace(payload.Email))
	payload.Name = strings.TrimSpace(payload.Name)

	// Валидация полей; ошибки привязываем к полю формы
	if _, err := mail.ParseAddress(payload.Email); err != nil {
		return utils.SendFieldError(c, fiber.StatusUnprocessableEntity, "Некорректный email", "email")
	}
	if len(payload.Password) < utils.MinPasswordLength {
		return utils.SendFieldError(c, fiber.StatusUnprocessableEntity, "Пароль должен содержать не менее 8 символов", "password")
	}
	if payload.Name == "" {
		return utils.SendFieldError(c, fiber.StatusUnprocessableEntity, "Имя обязательно", "name")
	}
	if payload.City != "" && !models.IsValidCity(payload.City) {
		return utils.SendFieldError(c, fiber.StatusUnprocessableEntity, "Неизвестный город", "city")
	}

	passwordHash, err := utils.HashPassword(payload.Password)
	if err != nil {
		log.Printf("Ошибка хеширования пароля: %v", err)
		return utils.SendError(c, fiber.StatusInternalServerError, utils.CodeInternalError, "Ошибка регистрации")
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	// Проверяем, не занят ли email
	var exists bool
	err = db.Pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, payload.Email).Scan(&exists)
	if err != nil {
		log.Printf("Ошибка проверки email: %v", err)
		return utils.SendError(c, fiber.StatusInternalServerError, utils.CodeInternalError, "Ошибка регистрации")
	}
	if exists {
		return utils.SendFieldError(c, fiber.StatusConflict, "Пользователь с таким email уже зарегистрирован", "email")
	}

	userID := uuid.New()
	verificationToken := uuid.New().String()

	_, err = db.Pool.Exec(ctx, `
		INSERT INTO users (id, email, password_hash, name, city, is_verified, verification_token)
		VALUES ($1, $2, $3, $4, $5, false, $6)
	`, userID, payload.Email, passwordHash, payload.Name, payload.City, verificationToken)

	if err != nil {
		log.Printf("Ошибка создания пользователя: %v", err)
		return utils.SendError(c, fiber.StatusInternalServerError, utils.CodeInternalError, "Ошибка сохранения пользователя")
	}

	response := fiber.Map{
		"success": true,
		"message": "Регистрация прошла успешно. Подтвердите email, чтобы войти",
	}

	// Вне production отдаём токен подтверждения прямо в ответе,
	// чтобы сценарии работали без почтового провайдера
	if s.cfg.AppEnv != "production" {
		response["verification_token"] = verificationToken
	}

	return c.Status(fiber.StatusCreated).JSON(response)
}

// VerifyHandler подтверждает email по токену из письма
func (s *AuthService) VerifyHandler(c fiber.Ctx) error {
	var payload struct {
		Token string `json:"token"`
	}

	if err := c.Bind().Body(&payload); err != nil || payload.Token == "" {
		return utils.SendError(c, fiber.StatusBadRequest, utils.CodeValidationError, "Токен подтверждения не указан")
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	tag, err := db.Pool.Exec(ctx, `
		UPDATE users
		SET is_verified = true, verification_token = NULL, updated_at = NOW()
		WHERE verification_token = $1
	`, payload.Token)

	if err != nil {
		log.Printf("Ошибка подтверждения email: %v", err)
		return utils.SendError(c, fiber.StatusInternalServerError, utils.CodeInternalError, "Ошибка подтверждения")
	}

	if tag.RowsAffected() == 0 {
		return utils.SendError(c, fiber.StatusNotFound, utils.CodeNotFound, "Токен подтверждения не найден")
	}

	return c.JSON(fiber.Map{"success": true, "message": "Email подтверждён"})
}

// LoginHandler проверяет учётные данные и выдаёт пару токенов
func (s *AuthService) LoginHandler(c fiber.Ctx) error {
	var payload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := c.Bind().Body(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, utils.CodeValidationError, "Неверный формат данных")
	}

	payload.Email = strings.ToLower(strings.TrimSpace(payload.Email))
	if payload.Email == "" || payload.Password == "" {
		return utils.SendError(c, fiber.StatusBadRequest, utils.CodeValidationError, "Email и пароль обязательны")
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	// Лимит попыток входа на пару email+IP
	allowed, err := s.limiter.Allow(ctx, payload.Email+":"+c.IP())
	if err != nil {
		log.Printf("Ошибка лимитера входа: %v", err)
		// При недоступности Redis не блокируем вход
	} else if !allowed {
		return utils.SendError(c, fiber.StatusTooManyRequests, utils.CodeRateLimitExceeded, "Слишком много попыток входа. Попробуйте через минуту")
	}

	var user models.User
	var passwordHash string
	err = db.Pool.QueryRow(ctx, `
		SELECT id, email, password_hash, name, city, avatar_url, is_verified, created_at
		FROM users
		WHERE email = $1
	`, payload.Email).Scan(
		&user.ID,
		&user.Email,
		&passwordHash,
		&user.Name,
		&user.City,
		&user.AvatarURL,
		&user.IsVerified,
		&user.CreatedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return utils.SendError(c, fiber.StatusUnauthorized, utils.CodeUnauthorized, "Неверный email или пароль")
		}
		log.Printf("Ошибка запроса пользователя: %v", err)
		return utils.SendError(c, fiber.StatusInternalServerError, utils.CodeInternalError, "Ошибка входа")
	}

	if !utils.CheckPassword(payload.Password, passwordHash) {
		return utils.SendError(c, fiber.StatusUnauthorized, utils.CodeUnauthorized, "Неверный email или пароль")
	}

	if !user.IsVerified {
		return utils.SendError(c, fiber.StatusForbidden, utils.CodeForbidden, "Email не подтверждён. Проверьте почту")
	}

	pair, jti, err := s.jwtService.GenerateTokenPair(user.ID)
	if err != nil {
		log.Printf("Ошибка генерации токенов: %v", err)
		return utils.SendError(c, fiber.StatusInternalServerError, utils.CodeInternalError, "Ошибка генерации токенов")
	}

	// Регистрируем refresh-сессию
	if err := s.registerRefreshSession(jti, user.ID); err != nil {
		log.Printf("Ошибка регистрации refresh-сессии: %v", err)
		// Не возвращаем ошибку, вход состоялся
	}

	// Обновляем время последнего входа
	if _, err := db.Pool.Exec(ctx, `UPDATE users SET last_login_at = NOW() WHERE id = $1`, user.ID); err != nil {
		log.Printf("Ошибка обновления времени входа: %v", err)
	}

	return c.JSON(fiber.Map{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
		"user":          user,
	})
}

// RefreshHandler обменивает refresh токен на новую пару токенов
func (s *AuthService) RefreshHandler(c fiber.Ctx) error {
	var payload struct {
		RefreshToken string `json:"refresh_token"`
	}

	if err := c.Bind().Body(&payload); err != nil || payload.RefreshToken == "" {
		return utils.SendError(c, fiber.StatusBadRequest, utils.CodeValidationError, "Refresh токен не указан")
	}

	userIDStr, jti, err := s.jwtService.ExtractRefreshClaims(payload.RefreshToken)
	if err != nil {
		return utils.SendError(c, fiber.StatusUnauthorized, utils.CodeUnauthorized, "Невалидный refresh токен")
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return utils.SendError(c, fiber.StatusUnauthorized, utils.CodeUnauthorized, "Невалидный refresh токен")
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	// Сессия должна быть зарегистрирована и не отозвана
	exists, err := cache.Client.Exists(ctx, refreshKeyPrefix+jti).Result()
	if err != nil {
		log.Printf("Ошибка проверки refresh-сессии: %v", err)
		return utils.SendError(c, fiber.StatusInternalServerError, utils.CodeInternalError, "Ошибка обновления токенов")
	}
	if exists == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, utils.CodeUnauthorized, "Сессия отозвана. Войдите заново")
	}

	pair, newJTI, err := s.jwtService.GenerateTokenPair(userID)
	if err != nil {
		log.Printf("Ошибка генерации токенов: %v", err)
		return utils.SendError(c, fiber.StatusInternalServerError, utils.CodeInternalError, "Ошибка генерации токенов")
	}

	// Ротация: отзываем старую сессию, регистрируем новую
	if err := cache.Client.Del(ctx, refreshKeyPrefix+jti).Err(); err != nil {
		log.Printf("Ошибка отзыва refresh-сессии: %v", err)
	}
	if err := s.registerRefreshSession(newJTI, userID); err != nil {
		log.Printf("Ошибка регистрации refresh-сессии: %v", err)
	}

	return c.JSON(fiber.Map{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
	})
}

// LogoutHandler отзывает refresh-сессию. Локальную сессию клиент
// очищает в любом случае, поэтому отвечаем успехом и на повторный выход.
func (s *AuthService) LogoutHandler(c fiber.Ctx) error {
	var payload struct {
		RefreshToken string `json:"refresh_token"`
	}

	// Тело может отсутствовать
	_ = c.Bind().Body(&payload)

	if payload.RefreshToken != "" {
		if _, jti, err := s.jwtService.ExtractRefreshClaims(payload.RefreshToken); err == nil {
			ctx, cancel := db.GetContext()
			defer cancel()

			if err := cache.Client.Del(ctx, refreshKeyPrefix+jti).Err(); err != nil {
				log.Printf("Ошибка отзыва refresh-сессии: %v", err)
			}
		}
	}

	return c.JSON(fiber.Map{"success": true, "message": "Выход выполнен"})
}

// registerRefreshSession сохраняет jti refresh-токена на срок его жизни
func (s *AuthService) registerRefreshSession(jti string, userID uuid.UUID) error {
	ctx, cancel := db.GetContext()
	defer cancel()

	return cache.Client.Set(ctx, refreshKeyPrefix+jti, userID.String(), utils.RefreshTokenTTL).Err()
}
