package storefront

import (
	"context"
	"time"

	"github.com/farhanmaulana/cetakin-backend/pkg/db/models"
	pkgerrors "github.com/farhanmaulana/cetakin-backend/pkg/errors"
)

type contentRepository interface {
	ListActiveCategories(ctx context.Context) ([]models.Category, error)
	ListLivePromotions(ctx context.Context, now time.Time) ([]models.Promotion, error)
}

// Service exposes the storefront's browsable content.
type Service interface {
	Categories(ctx context.Context) ([]CategoryDTO, error)
	Promotions(ctx context.Context) ([]PromotionDTO, error)
}

type service struct {
	repo contentRepository
	now  func() time.Time
}

// NewService builds the storefront content service.
func NewService(repo contentRepository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "storefront: repository is required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

func (s *service) Categories(ctx context.Context) ([]CategoryDTO, error) {
	categories, err := s.repo.ListActiveCategories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading categories")
	}
	out := make([]CategoryDTO, 0, len(categories))
	for _, c := range categories {
		out = append(out, categoryToDTO(c))
	}
	return out, nil
}

func (s *service) Promotions(ctx context.Context) ([]PromotionDTO, error) {
	promotions, err := s.repo.ListLivePromotions(ctx, s.now().UTC())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading promotions")
	}
	out := make([]PromotionDTO, 0, len(promotions))
	for _, p := range promotions {
		out = append(out, promotionToDTO(p))
	}
	return out, nil
}
