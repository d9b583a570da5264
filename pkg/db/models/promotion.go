package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Promotion is a time-bounded storefront banner with an optional discount.
type Promotion struct {
	ID              uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Title           string          `gorm:"column:title;not null"`
	Body            string          `gorm:"column:body"`
	BannerURL       string          `gorm:"column:banner_url"`
	DiscountPercent decimal.Decimal `gorm:"column:discount_percent;type:numeric(5,2);not null;default:0"`
	CategorySlugs   pq.StringArray  `gorm:"column:category_slugs;type:text[]"`
	StartsAt        time.Time       `gorm:"column:starts_at;not null"`
	EndsAt          time.Time       `gorm:"column:ends_at;not null"`
	IsActive        bool            `gorm:"column:is_active;not null;default:true"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// Live reports whether the promotion should be shown at the given instant.
func (p Promotion) Live(now time.Time) bool {
	return p.IsActive && !now.Before(p.StartsAt) && now.Before(p.EndsAt)
}
