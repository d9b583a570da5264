package catalog

import "github.com/shopspring/decimal"

// PaperType is one purchasable paper stock. The JSON field names follow the
// upstream catalog document (nama/bahan/harga).
type PaperType struct {
	ID        int             `json:"id"`
	Name      string          `json:"nama"`
	Material  string          `json:"bahan"`
	UnitPrice decimal.Decimal `json:"harga"`
}

// Valid reports whether the entry is usable: named, with a positive price.
func (p PaperType) Valid() bool {
	return p.Name != "" && p.UnitPrice.IsPositive()
}
