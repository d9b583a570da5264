package storefront

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/farhanmaulana/cetakin-backend/pkg/db/models"
)

// Repository handles storefront content persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to storefront queries.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListActiveCategories returns the browsable categories in display order.
func (r *Repository) ListActiveCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("sort_order ASC, name ASC").
		Find(&categories).Error
	if err != nil {
		return nil, err
	}
	return categories, nil
}

// ListLivePromotions returns promotions running at the given instant,
// newest first.
func (r *Repository) ListLivePromotions(ctx context.Context, now time.Time) ([]models.Promotion, error) {
	var promotions []models.Promotion
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Where("starts_at <= ?", now).
		Where("ends_at > ?", now).
		Order("starts_at DESC").
		Find(&promotions).Error
	if err != nil {
		return nil, err
	}
	return promotions, nil
}
