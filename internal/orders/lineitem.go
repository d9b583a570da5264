package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PlaceholderAsset stands in when an order is submitted without any design
// asset, so every line item renders a preview.
const PlaceholderAsset = "https://assets.cetakin.id/img/design-placeholder.png"

// LineItemDetail carries the print-specific attributes of a line item.
type LineItemDetail struct {
	Service  string   `json:"service"`
	Material string   `json:"material"`
	Assets   []string `json:"assets"`
	Notes    string   `json:"notes"`
}

// LineItem is one priced custom print order inside a cart. It is built
// atomically by the composer; the submission gateway owns it afterwards.
type LineItem struct {
	ID          uuid.UUID       `json:"id"`
	OrderNo     string          `json:"order_no"`
	UserID      uuid.UUID       `json:"user_id"`
	DisplayName string          `json:"display_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	Assets      []string        `json:"assets"`
	IsCustom    bool            `json:"is_custom"`
	Selected    bool            `json:"selected"`
	Detail      LineItemDetail  `json:"detail"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Subtotal is derived on demand so it can never go stale against quantity
// or price.
func (li LineItem) Subtotal() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}
