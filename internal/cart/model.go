package cart

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/farhanmaulana/cetakin-backend/internal/orders"
)

// lineItemDoc is the document-store shape of a cart line item. Prices and
// ids travel as strings so the stored form stays readable and stable.
type lineItemDoc struct {
	ID          string            `bson:"id"`
	OrderNo     string            `bson:"order_no"`
	UserID      string            `bson:"user_id"`
	DisplayName string            `bson:"display_name"`
	UnitPrice   string            `bson:"unit_price"`
	Quantity    int               `bson:"quantity"`
	Assets      []string          `bson:"assets"`
	IsCustom    bool              `bson:"is_custom"`
	Selected    bool              `bson:"selected"`
	Detail      lineItemDetailDoc `bson:"detail"`
	CreatedAt   time.Time         `bson:"created_at"`
}

type lineItemDetailDoc struct {
	Service  string   `bson:"service"`
	Material string   `bson:"material"`
	Assets   []string `bson:"assets"`
	Notes    string   `bson:"notes"`
}

func encodeLineItem(item *orders.LineItem) lineItemDoc {
	return lineItemDoc{
		ID:          item.ID.String(),
		OrderNo:     item.OrderNo,
		UserID:      item.UserID.String(),
		DisplayName: item.DisplayName,
		UnitPrice:   item.UnitPrice.String(),
		Quantity:    item.Quantity,
		Assets:      item.Assets,
		IsCustom:    item.IsCustom,
		Selected:    item.Selected,
		Detail: lineItemDetailDoc{
			Service:  item.Detail.Service,
			Material: item.Detail.Material,
			Assets:   item.Detail.Assets,
			Notes:    item.Detail.Notes,
		},
		CreatedAt: item.CreatedAt.UTC(),
	}
}

func decodeLineItem(doc lineItemDoc) (orders.LineItem, error) {
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return orders.LineItem{}, fmt.Errorf("parsing line item id %q: %w", doc.ID, err)
	}
	userID, err := uuid.Parse(doc.UserID)
	if err != nil {
		return orders.LineItem{}, fmt.Errorf("parsing line item user id %q: %w", doc.UserID, err)
	}
	price, err := decimal.NewFromString(doc.UnitPrice)
	if err != nil {
		return orders.LineItem{}, fmt.Errorf("parsing line item price %q: %w", doc.UnitPrice, err)
	}
	return orders.LineItem{
		ID:          id,
		OrderNo:     doc.OrderNo,
		UserID:      userID,
		DisplayName: doc.DisplayName,
		UnitPrice:   price,
		Quantity:    doc.Quantity,
		Assets:      doc.Assets,
		IsCustom:    doc.IsCustom,
		Selected:    doc.Selected,
		Detail: orders.LineItemDetail{
			Service:  doc.Detail.Service,
			Material: doc.Detail.Material,
			Assets:   doc.Detail.Assets,
			Notes:    doc.Detail.Notes,
		},
		CreatedAt: doc.CreatedAt,
	}, nil
}
