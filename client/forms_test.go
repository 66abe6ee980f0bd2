package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFieldForError(t *testing.T) {
	loginFields := []string{"email", "password"}

	tests := []struct {
		name string
		err  *APIError
		want string
	}{
		{
			"подсказка сервера",
			&APIError{Kind: ErrValidation, Field: "password", Message: "Слишком короткий"},
			"password",
		},
		{
			"подсказка на неизвестное поле игнорируется",
			&APIError{Kind: ErrValidation, Field: "city", Message: "Неверный город"},
			"",
		},
		{
			"эвристика по слову пароль",
			&APIError{Kind: ErrValidation, Message: "Пароль должен быть не короче 8 символов"},
			"password",
		},
		{
			"эвристика по слову email",
			&APIError{Kind: ErrValidation, Message: "Некорректный email"},
			"email",
		},
		{
			"без совпадений ошибка общая",
			&APIError{Kind: ErrValidation, Message: "Что-то не так"},
			"",
		},
		{
			"не валидация никогда не привязывается к полю",
			&APIError{Kind: ErrInternal, Field: "password", Message: "Ошибка пароля"},
			"",
		},
		{
			"nil не паникует",
			nil,
			"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FieldForError(tt.err, loginFields))
		})
	}
}
