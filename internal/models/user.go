package models

import (
	"time"

	"github.com/google/uuid"
)

// User представляет пользователя в системе
type User struct {
	ID         uuid.UUID `json:"id"`
	Email      string    `json:"email,omitempty"`
	Name       string    `json:"name"`
	City       string    `json:"city,omitempty"`
	AvatarURL  string    `json:"avatar_url,omitempty"`
	IsVerified bool      `json:"is_verified,omitempty"`
	CreatedAt  time.Time `json:"created_at,omitempty"`
}

// PublicProfile возвращает копию пользователя без приватных полей
func (u User) PublicProfile() User {
	return User{
		ID:        u.ID,
		Name:      u.Name,
		City:      u.City,
		AvatarURL: u.AvatarURL,
	}
}
