package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/google/uuid"
)

// OfferFilter задаёт параметры списка объявлений
type OfferFilter struct {
	Page   int
	Limit  int
	City   string
	Search string
	Sort   string
	Order  string
}

// OfferList представляет страницу списка объявлений
type OfferList struct {
	Offers []Offer `json:"offers"`
	Total  int     `json:"total"`
	Page   int     `json:"page"`
	Limit  int     `json:"limit"`
}

// NewOfferImage описывает загруженное изображение при создании объявления
type NewOfferImage struct {
	URL      string `json:"url"`
	PublicID string `json:"public_id"`
}

// NewOffer содержит данные нового объявления
type NewOffer struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	City        string          `json:"city"`
	Images      []NewOfferImage `json:"images,omitempty"`
}

// OfferUpdate описывает частичное обновление объявления.
// Nil-поля не трогаются.
type OfferUpdate struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	City        *string `json:"city,omitempty"`
}

// ListOffers возвращает страницу публичного каталога
func (c *Client) ListOffers(ctx context.Context, filter OfferFilter) (*OfferList, error) {
	query := url.Values{}
	if filter.Page > 0 {
		query.Set("page", strconv.Itoa(filter.Page))
	}
	if filter.Limit > 0 {
		query.Set("limit", strconv.Itoa(filter.Limit))
	}
	if filter.City != "" {
		query.Set("city", filter.City)
	}
	if filter.Search != "" {
		query.Set("search", filter.Search)
	}
	if filter.Sort != "" {
		query.Set("sort", filter.Sort)
	}
	if filter.Order != "" {
		query.Set("order", filter.Order)
	}

	var resp OfferList
	if err := c.do(ctx, http.MethodGet, "/api/offers", query, nil, &resp, true); err != nil {
		return nil, err
	}
	return &resp, nil
}

// MyOffers возвращает объявления текущего пользователя
func (c *Client) MyOffers(ctx context.Context) ([]Offer, error) {
	var resp struct {
		Offers []Offer `json:"offers"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/offers/my", nil, nil, &resp, true); err != nil {
		return nil, err
	}
	return resp.Offers, nil
}

// GetOffer возвращает объявление по идентификатору
func (c *Client) GetOffer(ctx context.Context, offerID uuid.UUID) (*Offer, error) {
	var resp struct {
		Offer *Offer `json:"offer"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/offers/"+offerID.String(), nil, nil, &resp, true); err != nil {
		return nil, err
	}
	return resp.Offer, nil
}

// CreateOffer создаёт объявление и возвращает его идентификатор
func (c *Client) CreateOffer(ctx context.Context, offer NewOffer) (uuid.UUID, error) {
	var resp struct {
		OfferID uuid.UUID `json:"offer_id"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/offers", nil, offer, &resp, true); err != nil {
		return uuid.Nil, err
	}
	return resp.OfferID, nil
}

// UpdateOffer частично обновляет объявление
func (c *Client) UpdateOffer(ctx context.Context, offerID uuid.UUID, update OfferUpdate) error {
	return c.do(ctx, http.MethodPatch, "/api/offers/"+offerID.String(), nil, update, nil, true)
}

// DeleteOffer снимает объявление с публикации.
// Связанные чаты блокируются, нерассмотренные интересы отменяются.
func (c *Client) DeleteOffer(ctx context.Context, offerID uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/api/offers/"+offerID.String(), nil, nil, nil, true)
}
