package utils

import (
	"github.com/gofiber/fiber/v3"
)

// Коды ошибок API. Клиенты различают ошибки по коду, а не по тексту.
const (
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeForbidden         = "FORBIDDEN"
	CodeNotFound          = "NOT_FOUND"
	CodeValidationError   = "VALIDATION_ERROR"
	CodeConflict          = "CONFLICT"
	CodeChatLocked        = "CHAT_LOCKED"
	CodeRateLimitExceeded = "RATE_LIMIT_EXCEEDED"
	CodeInternalError     = "INTERNAL_ERROR"
)

// ErrorDetails содержит дополнительные сведения об ошибке
type ErrorDetails struct {
	Field string `json:"field,omitempty"`
}

// ErrorBody представляет тело ошибки в едином конверте API
type ErrorBody struct {
	Code    string        `json:"code"`
	Message string        `json:"message"`
	Details *ErrorDetails `json:"details,omitempty"`
}

// ErrorEnvelope представляет единый формат ошибки API:
// { "error": { "code": ..., "message": ..., "details": { "field": ... } } }
type ErrorEnvelope struct {
	Error ErrorBody `json:"error"`
}

// SendError отправляет ошибку в едином конверте
func SendError(c fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(ErrorEnvelope{
		Error: ErrorBody{Code: code, Message: message},
	})
}

// SendFieldError отправляет ошибку валидации, привязанную к конкретному полю формы
func SendFieldError(c fiber.Ctx, status int, message, field string) error {
	return c.Status(status).JSON(ErrorEnvelope{
		Error: ErrorBody{
			Code:    CodeValidationError,
			Message: message,
			Details: &ErrorDetails{Field: field},
		},
	})
}
