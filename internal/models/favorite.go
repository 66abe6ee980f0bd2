package models

import (
	"time"

	"github.com/google/uuid"
)

// Favorite представляет запись отслеживаемого объявления
type Favorite struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	OfferID   uuid.UUID `json:"offer_id"`
	CreatedAt time.Time `json:"created_at"`

	// Дополнительные поля для API
	Offer *Offer `json:"offer,omitempty"`
}

// FavoriteResponse представляет структуру ответа API с отслеживаемыми объявлениями
type FavoriteResponse struct {
	Favorites []Favorite `json:"favorites"`
	Total     int        `json:"total"`
	Limit     int        `json:"limit"`
	Offset    int        `json:"offset"`
}
