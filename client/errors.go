package client

import (
	"fmt"
	"net/http"
)

// ErrorKind классифицирует ошибки API на стороне клиента
type ErrorKind string

const (
	ErrUnauthorized ErrorKind = "UNAUTHORIZED"
	ErrForbidden    ErrorKind = "FORBIDDEN"
	ErrNotFound     ErrorKind = "NOT_FOUND"
	ErrValidation   ErrorKind = "VALIDATION_ERROR"
	ErrConflict     ErrorKind = "CONFLICT"
	ErrChatLocked   ErrorKind = "CHAT_LOCKED"
	ErrRateLimit    ErrorKind = "RATE_LIMIT_EXCEEDED"
	ErrTimeout      ErrorKind = "TIMEOUT"
	ErrNetwork      ErrorKind = "NETWORK_ERROR"
	ErrInternal     ErrorKind = "INTERNAL_ERROR"
)

// APIError представляет ошибку запроса к API.
// Field заполнен, если сервер привязал ошибку валидации к полю формы.
type APIError struct {
	Kind    ErrorKind
	Status  int
	Message string
	Field   string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return string(e.Kind)
}

// Retryable сообщает, имеет ли смысл предлагать пользователю повтор.
// Ошибки авторизации повтором не лечатся, там нужна ссылка на вход.
func (e *APIError) Retryable() bool {
	switch e.Kind {
	case ErrTimeout, ErrNetwork, ErrInternal:
		return true
	}
	return false
}

// AuthRequired сообщает, что пользователю нужно войти заново
func (e *APIError) AuthRequired() bool {
	return e.Kind == ErrUnauthorized
}

// kindFromStatus выбирает вид ошибки по HTTP-статусу, когда сервер
// не прислал распознаваемого кода
func kindFromStatus(status int) ErrorKind {
	switch {
	case status == http.StatusUnauthorized:
		return ErrUnauthorized
	case status == http.StatusForbidden:
		return ErrForbidden
	case status == http.StatusNotFound:
		return ErrNotFound
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		return ErrValidation
	case status == http.StatusConflict:
		return ErrConflict
	case status == http.StatusTooManyRequests:
		return ErrRateLimit
	case status == http.StatusRequestTimeout:
		return ErrTimeout
	case status >= 500:
		return ErrInternal
	}
	return ErrNetwork
}

// kindFromCode сопоставляет код из конверта ошибки с видом ошибки
func kindFromCode(code string, status int) ErrorKind {
	switch code {
	case "UNAUTHORIZED":
		return ErrUnauthorized
	case "FORBIDDEN":
		return ErrForbidden
	case "NOT_FOUND":
		return ErrNotFound
	case "VALIDATION_ERROR":
		return ErrValidation
	case "CONFLICT":
		return ErrConflict
	case "CHAT_LOCKED":
		return ErrChatLocked
	case "RATE_LIMIT_EXCEEDED":
		return ErrRateLimit
	case "INTERNAL_ERROR":
		return ErrInternal
	}
	return kindFromStatus(status)
}
