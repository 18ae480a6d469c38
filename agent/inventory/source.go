package inventory

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const maxItemNameRunes = 120

var (
	ErrItemNotFound = errors.New("item not found")
	ErrEmptyItem    = errors.New("item name is empty")
)

// Source answers stock questions for one item at one store.
type Source interface {
	Lookup(ctx context.Context, item string, storeID string) (StockInfo, error)
}

type StockInfo struct {
	SKU      string          `json:"sku,omitempty"`
	ItemName string          `json:"item_name"`
	InStock  bool            `json:"in_stock"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Aisle    string          `json:"aisle"`
}

// PriceText formats the price as a shelf label, e.g. "$4.97".
func (s StockInfo) PriceText() string {
	return "$" + s.Price.StringFixed(2)
}

// NormalizeItemName trims the free text a caller gave, collapses runs of
// whitespace and caps the length before it is sent to a backend.
func NormalizeItemName(raw string) (string, error) {
	name := strings.Join(strings.Fields(raw), " ")
	if name == "" {
		return "", ErrEmptyItem
	}
	if utf8.RuneCountInString(name) > maxItemNameRunes {
		runes := []rune(name)
		name = strings.TrimSpace(string(runes[:maxItemNameRunes]))
	}
	return name, nil
}
