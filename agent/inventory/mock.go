package inventory

import (
	"context"

	"github.com/shopspring/decimal"
)

// MockSource answers every lookup with the same in-stock record. It stands in
// until a store inventory database is configured.
type MockSource struct{}

func (MockSource) Lookup(ctx context.Context, item string, storeID string) (StockInfo, error) {
	if err := ctx.Err(); err != nil {
		return StockInfo{}, err
	}
	return StockInfo{
		ItemName: item,
		InStock:  true,
		Quantity: 150,
		Price:    decimal.RequireFromString("4.97"),
		Aisle:    "Building Materials, Aisle 12",
	}, nil
}
