package interest

import (
	"context"
	"log"

	"github.com/google/uuid"

	"github.com/rajivgeraev/barterhub-api/internal/db"
	"github.com/rajivgeraev/barterhub-api/internal/models"
)

// getOfferInfo получает базовую информацию об объявлении
func getOfferInfo(ctx context.Context, offerID uuid.UUID) *models.Offer {
	var offer models.Offer
	err := db.Pool.QueryRow(ctx, `
		SELECT id, user_id, title, description, city, status
		FROM offers
		WHERE id = $1
	`, offerID).Scan(
		&offer.ID,
		&offer.UserID,
		&offer.Title,
		&offer.Description,
		&offer.City,
		&offer.Status,
	)

	if err != nil {
		log.Printf("Ошибка получения объявления %s: %v", offerID, err)
		return nil
	}

	// Главное изображение для превью в списке
	rows, err := db.Pool.Query(ctx, `
		SELECT id, url, preview_url, is_main
		FROM offer_images
		WHERE offer_id = $1
		ORDER BY position ASC
	`, offerID)

	if err != nil {
		log.Printf("Ошибка получения изображений: %v", err)
		return &offer
	}
	defer rows.Close()

	var images []models.OfferImage
	for rows.Next() {
		var img models.OfferImage
		if err := rows.Scan(&img.ID, &img.URL, &img.PreviewURL, &img.IsMain); err != nil {
			log.Printf("Ошибка сканирования изображения: %v", err)
			continue
		}
		img.OfferID = offerID
		images = append(images, img)
	}
	offer.Images = images

	return &offer
}
