package storefront

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/farhanmaulana/cetakin-backend/pkg/db/models"
)

// CategoryDTO is the storefront shape of a category.
type CategoryDTO struct {
	ID          uuid.UUID `json:"id"`
	Slug        string    `json:"slug"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
}

// PromotionDTO is the storefront shape of a live promotion.
type PromotionDTO struct {
	ID              uuid.UUID       `json:"id"`
	Title           string          `json:"title"`
	Body            string          `json:"body,omitempty"`
	BannerURL       string          `json:"banner_url,omitempty"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	CategorySlugs   []string        `json:"category_slugs,omitempty"`
	StartsAt        time.Time       `json:"starts_at"`
	EndsAt          time.Time       `json:"ends_at"`
}

func categoryToDTO(c models.Category) CategoryDTO {
	return CategoryDTO{
		ID:          c.ID,
		Slug:        c.Slug,
		Name:        c.Name,
		Description: c.Description,
		ImageURL:    c.ImageURL,
	}
}

func promotionToDTO(p models.Promotion) PromotionDTO {
	return PromotionDTO{
		ID:              p.ID,
		Title:           p.Title,
		Body:            p.Body,
		BannerURL:       p.BannerURL,
		DiscountPercent: p.DiscountPercent,
		CategorySlugs:   []string(p.CategorySlugs),
		StartsAt:        p.StartsAt,
		EndsAt:          p.EndsAt,
	}
}
