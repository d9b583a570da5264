package orders

import (
	"context"
	"crypto/rand"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/farhanmaulana/cetakin-backend/internal/catalog"
	pkgerrors "github.com/farhanmaulana/cetakin-backend/pkg/errors"
	"github.com/farhanmaulana/cetakin-backend/pkg/logger"
)

// catalogView is the slice of the paper catalog the composer needs.
type catalogView interface {
	Get(id int) (catalog.PaperType, bool)
}

// ComposeInput is everything a buyer supplies for one custom print order.
type ComposeInput struct {
	Service     string   `json:"service" validate:"required"`
	PaperTypeID int      `json:"paper_type_id" validate:"required"`
	Quantity    int      `json:"quantity" validate:"required,min=1"`
	Notes       string   `json:"notes" validate:"max=2000"`
	Assets      []string `json:"assets" validate:"max=5,dive,url"`
}

// Service composes validated, fully priced line items.
type Service interface {
	Compose(ctx context.Context, userID uuid.UUID, input ComposeInput) (*LineItem, error)
}

type service struct {
	papers    catalogView
	maxAssets int
	logg      *logger.Logger
	now       func() time.Time
}

// NewService wires the order composer against the loaded paper catalog.
func NewService(papers catalogView, maxAssets int, logg *logger.Logger) (Service, error) {
	if papers == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "orders: paper catalog is required")
	}
	if maxAssets <= 0 {
		maxAssets = 5
	}
	return &service{
		papers:    papers,
		maxAssets: maxAssets,
		logg:      logg,
		now:       time.Now,
	}, nil
}

// Compose validates the input, prices it against the catalog and returns a
// complete line item. Nothing is persisted here; a failed validation leaves
// no partial state behind.
func (s *service) Compose(ctx context.Context, userID uuid.UUID, input ComposeInput) (*LineItem, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in before adding an order")
	}
	svcName := strings.TrimSpace(input.Service)
	if svcName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "printing service is required")
	}
	paper, ok := s.papers.Get(input.PaperTypeID)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "paper type is required")
	}
	if input.Quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	if len(input.Assets) > s.maxAssets {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "too many design assets for one order")
	}

	assets := make([]string, 0, len(input.Assets))
	for _, link := range input.Assets {
		link = strings.TrimSpace(link)
		if link == "" {
			continue
		}
		assets = append(assets, link)
	}
	if len(assets) == 0 {
		assets = append(assets, PlaceholderAsset)
	}

	now := s.now().UTC()
	item := &LineItem{
		ID:          uuid.New(),
		OrderNo:     NewOrderNumber(now),
		UserID:      userID,
		DisplayName: svcName + " - " + paper.Name,
		UnitPrice:   paper.UnitPrice,
		Quantity:    input.Quantity,
		Assets:      assets,
		IsCustom:    true,
		Selected:    false,
		Detail: LineItemDetail{
			Service:  svcName,
			Material: paper.Material,
			Assets:   assets,
			Notes:    strings.TrimSpace(input.Notes),
		},
		CreatedAt: now,
	}

	if s.logg != nil {
		ctx = s.logg.WithFields(ctx, map[string]any{
			"order_no": item.OrderNo,
			"service":  svcName,
			"paper":    paper.Name,
			"quantity": item.Quantity,
		})
		s.logg.Info(ctx, "composed line item")
	}

	return item, nil
}

const orderNoAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// NewOrderNumber builds the human-facing order number: the submission date
// as ddMMyyyy plus four random alphanumeric characters.
func NewOrderNumber(now time.Time) string {
	suffix := make([]byte, 4)
	raw := make([]byte, 4)
	if _, err := rand.Read(raw); err != nil {
		// crypto/rand failing means the process is in real trouble;
		// fall back to a time-derived suffix rather than panicking.
		ns := now.UnixNano()
		for i := range suffix {
			suffix[i] = orderNoAlphabet[int(ns>>(uint(i)*6))%len(orderNoAlphabet)]
		}
		return "SRV-" + now.Format("02012006") + "-" + string(suffix)
	}
	for i, b := range raw {
		suffix[i] = orderNoAlphabet[int(b)%len(orderNoAlphabet)]
	}
	return "SRV-" + now.Format("02012006") + "-" + string(suffix)
}
