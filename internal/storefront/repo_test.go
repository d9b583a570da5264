package storefront

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/farhanmaulana/cetakin-backend/pkg/db/models"
)

func setupStorefrontTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	categories := `
CREATE TABLE IF NOT EXISTS categories (
  id TEXT PRIMARY KEY,
  slug TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  description TEXT,
  image_url TEXT,
  sort_order INTEGER NOT NULL DEFAULT 0,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`
	promotions := `
CREATE TABLE IF NOT EXISTS promotions (
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  body TEXT,
  banner_url TEXT,
  discount_percent TEXT NOT NULL DEFAULT '0',
  category_slugs TEXT,
  starts_at DATETIME NOT NULL,
  ends_at DATETIME NOT NULL,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(categories).Error)
	require.NoError(t, db.Exec(promotions).Error)
	return db
}

func seedCategory(t *testing.T, db *gorm.DB, slug string, sortOrder int, active bool) models.Category {
	t.Helper()
	c := models.Category{
		ID:        uuid.New(),
		Slug:      slug,
		Name:      slug,
		SortOrder: sortOrder,
		IsActive:  active,
	}
	require.NoError(t, db.Create(&c).Error)
	return c
}

func TestListActiveCategoriesOrdersBySortOrder(t *testing.T) {
	db := setupStorefrontTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	seedCategory(t, db, "stickers", 2, true)
	seedCategory(t, db, "banners", 1, true)
	seedCategory(t, db, "retired", 0, false)

	got, err := repo.ListActiveCategories(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "banners", got[0].Slug)
	assert.Equal(t, "stickers", got[1].Slug)
}

func TestListLivePromotionsFiltersByWindow(t *testing.T) {
	db := setupStorefrontTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	now := time.Date(2026, time.March, 7, 12, 0, 0, 0, time.UTC)

	live := models.Promotion{
		ID:              uuid.New(),
		Title:           "Weekend print deal",
		DiscountPercent: decimal.NewFromInt(10),
		CategorySlugs:   pq.StringArray{"stickers", "banners"},
		StartsAt:        now.Add(-time.Hour),
		EndsAt:          now.Add(time.Hour),
		IsActive:        true,
	}
	expired := models.Promotion{
		ID:              uuid.New(),
		Title:           "Last month",
		DiscountPercent: decimal.NewFromInt(5),
		StartsAt:        now.Add(-48 * time.Hour),
		EndsAt:          now.Add(-24 * time.Hour),
		IsActive:        true,
	}
	disabled := models.Promotion{
		ID:              uuid.New(),
		Title:           "Paused",
		DiscountPercent: decimal.NewFromInt(15),
		StartsAt:        now.Add(-time.Hour),
		EndsAt:          now.Add(time.Hour),
		IsActive:        false,
	}
	require.NoError(t, db.Create(&live).Error)
	require.NoError(t, db.Create(&expired).Error)
	require.NoError(t, db.Create(&disabled).Error)

	got, err := repo.ListLivePromotions(ctx, now)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Weekend print deal", got[0].Title)
	assert.True(t, got[0].DiscountPercent.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, pq.StringArray{"stickers", "banners"}, got[0].CategorySlugs)
}
