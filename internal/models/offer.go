package models

import (
	"time"

	"github.com/google/uuid"
)

// Статусы объявления. Объявление никогда не удаляется физически:
// удаление переводит его в статус removed, чтобы связанные чаты
// блокировались, а не осиротели.
const (
	OfferStatusActive  = "active"
	OfferStatusRemoved = "removed"
)

// Cities задаёт фиксированный список городов, в которых работает площадка
var Cities = []string{
	"Москва",
	"Санкт-Петербург",
	"Новосибирск",
	"Екатеринбург",
	"Казань",
	"Нижний Новгород",
	"Челябинск",
	"Самара",
	"Омск",
	"Ростов-на-Дону",
	"Уфа",
	"Красноярск",
	"Воронеж",
	"Пермь",
	"Волгоград",
	"Краснодар",
}

// IsValidCity проверяет, что город входит в список городов площадки
func IsValidCity(city string) bool {
	for _, c := range Cities {
		if c == city {
			return true
		}
	}
	return false
}

// Offer представляет объявление об обмене
type Offer struct {
	ID          uuid.UUID    `json:"id"`
	UserID      uuid.UUID    `json:"user_id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	City        string       `json:"city"`
	Status      string       `json:"status"`
	Images      []OfferImage `json:"images"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`

	// Дополнительные поля для API
	Owner *User `json:"owner,omitempty"`
}

// OfferImage представляет изображение объявления
type OfferImage struct {
	ID         uuid.UUID `json:"id"`
	OfferID    uuid.UUID `json:"offer_id"`
	URL        string    `json:"url"`
	PreviewURL string    `json:"preview_url,omitempty"`
	PublicID   string    `json:"public_id"`
	FileName   string    `json:"file_name,omitempty"`
	IsMain     bool      `json:"is_main"`
	Position   int       `json:"position"`
	CreatedAt  time.Time `json:"created_at"`
}

// OfferListResponse представляет структуру ответа API со списком объявлений
type OfferListResponse struct {
	Offers []Offer `json:"offers"`
	Total  int     `json:"total"`
	Page   int     `json:"page"`
	Limit  int     `json:"limit"`
}
