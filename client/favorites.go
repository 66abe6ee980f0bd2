package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/google/uuid"
)

// FavoriteList представляет страницу избранного
type FavoriteList struct {
	Favorites []Favorite `json:"favorites"`
	Total     int        `json:"total"`
}

// AddFavorite добавляет объявление в избранное.
// Повторное добавление не считается ошибкой.
func (c *Client) AddFavorite(ctx context.Context, offerID uuid.UUID) error {
	body := map[string]string{"offer_id": offerID.String()}
	return c.do(ctx, http.MethodPost, "/api/favorites", nil, body, nil, true)
}

// RemoveFavorite убирает объявление из избранного
func (c *Client) RemoveFavorite(ctx context.Context, offerID uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/api/favorites/"+offerID.String(), nil, nil, nil, true)
}

// ListFavorites возвращает избранные объявления
func (c *Client) ListFavorites(ctx context.Context, limit, offset int) (*FavoriteList, error) {
	query := url.Values{}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		query.Set("offset", strconv.Itoa(offset))
	}
	var resp FavoriteList
	if err := c.do(ctx, http.MethodGet, "/api/favorites", query, nil, &resp, true); err != nil {
		return nil, err
	}
	return &resp, nil
}
