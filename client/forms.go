package client

import "strings"

// Подстроки текста ошибки, по которым угадываем поле формы,
// когда сервер не прислал details.field
var fieldHints = map[string]string{
	"парол": "password",
	"email": "email",
	"почт":  "email",
	"имя":   "name",
	"город": "city",
}

// FieldForError определяет, к какому полю формы привязать ошибку
// валидации. Сначала доверяем details.field, затем пробуем угадать
// по тексту сообщения. Пустая строка означает общее уведомление.
func FieldForError(err *APIError, knownFields []string) string {
	if err == nil || err.Kind != ErrValidation {
		return ""
	}
	if err.Field != "" {
		for _, f := range knownFields {
			if f == err.Field {
				return f
			}
		}
	}
	lower := strings.ToLower(err.Message)
	for hint, field := range fieldHints {
		if !strings.Contains(lower, hint) {
			continue
		}
		for _, f := range knownFields {
			if f == field {
				return f
			}
		}
	}
	return ""
}
