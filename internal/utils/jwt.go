package utils

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Сроки жизни токенов
const (
	AccessTokenTTL  = 24 * time.Hour
	RefreshTokenTTL = 30 * 24 * time.Hour
)

// JWTService отвечает за создание и валидацию JWT токенов
type JWTService struct {
	secretKey string
}

// TokenPair содержит пару access/refresh токенов
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// NewJWTService создаёт новый экземпляр JWTService
func NewJWTService(secretKey string) *JWTService {
	return &JWTService{secretKey: secretKey}
}

// GenerateTokenPair создаёт пару access/refresh токенов для пользователя.
// Возвращает также jti refresh-токена для регистрации сессии.
func (s *JWTService) GenerateTokenPair(userID uuid.UUID) (*TokenPair, string, error) {
	now := time.Now()

	accessClaims := jwt.MapClaims{
		"user_id": userID.String(),
		"type":    "access",
		"exp":     now.Add(AccessTokenTTL).Unix(),
		"iat":     now.Unix(),
	}

	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims).SignedString([]byte(s.secretKey))
	if err != nil {
		return nil, "", fmt.Errorf("ошибка подписи access токена: %w", err)
	}

	jti := uuid.New().String()
	refreshClaims := jwt.MapClaims{
		"user_id": userID.String(),
		"type":    "refresh",
		"jti":     jti,
		"exp":     now.Add(RefreshTokenTTL).Unix(),
		"iat":     now.Unix(),
	}

	refreshToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims).SignedString([]byte(s.secretKey))
	if err != nil {
		return nil, "", fmt.Errorf("ошибка подписи refresh токена: %w", err)
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, jti, nil
}

// ValidateToken проверяет JWT токен
func (s *JWTService) ValidateToken(tokenString string) (*jwt.Token, error) {
	return jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("неожиданный метод подписи: %v", token.Header["alg"])
		}
		return []byte(s.secretKey), nil
	})
}

// ExtractUserID извлекает ID пользователя из access токена
func (s *JWTService) ExtractUserID(tokenString string) (string, error) {
	return s.extractClaims(tokenString, "access")
}

// ExtractRefreshClaims проверяет refresh токен и возвращает userID и jti
func (s *JWTService) ExtractRefreshClaims(tokenString string) (string, string, error) {
	token, err := s.ValidateToken(tokenString)
	if err != nil || !token.Valid {
		return "", "", fmt.Errorf("невалидный refresh токен")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", "", fmt.Errorf("невалидные claims токена")
	}

	if claims["type"] != "refresh" {
		return "", "", fmt.Errorf("ожидался refresh токен")
	}

	userID, _ := claims["user_id"].(string)
	jti, _ := claims["jti"].(string)
	if userID == "" || jti == "" {
		return "", "", fmt.Errorf("неполные claims refresh токена")
	}

	return userID, jti, nil
}

func (s *JWTService) extractClaims(tokenString, tokenType string) (string, error) {
	token, err := s.ValidateToken(tokenString)
	if err != nil || !token.Valid {
		return "", fmt.Errorf("невалидный токен")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("невалидные claims токена")
	}

	if claims["type"] != tokenType {
		return "", fmt.Errorf("неверный тип токена")
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", fmt.Errorf("токен не содержит ID пользователя")
	}

	return userID, nil
}
