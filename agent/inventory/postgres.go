package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

type itemRow struct {
	bun.BaseModel `bun:"table:inventory_items,alias:ii"`

	StoreID  string          `bun:"store_id"`
	SKU      string          `bun:"sku"`
	Name     string          `bun:"name"`
	Quantity int             `bun:"quantity"`
	Price    decimal.Decimal `bun:"price,type:numeric"`
	Aisle    string          `bun:"aisle"`
}

// PostgresSource reads stock levels from the inventory_items table.
type PostgresSource struct {
	db *bun.DB
}

func NewPostgresSource(dsn string, timeout time.Duration) *PostgresSource {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	sqldb := sql.OpenDB(pgdriver.NewConnector(
		pgdriver.WithDSN(dsn),
		pgdriver.WithTimeout(timeout),
	))
	return NewPostgresSourceFromDB(bun.NewDB(sqldb, pgdialect.New()))
}

func NewPostgresSourceFromDB(db *bun.DB) *PostgresSource {
	return &PostgresSource{db: db}
}

// Lookup tries an exact, case-insensitive name match first and falls back to
// the first partial match by name.
func (s *PostgresSource) Lookup(ctx context.Context, item string, storeID string) (StockInfo, error) {
	var row itemRow
	err := s.db.NewSelect().
		Model(&row).
		Where("store_id = ?", storeID).
		Where("lower(name) = lower(?)", item).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		err = s.db.NewSelect().
			Model(&row).
			Where("store_id = ?", storeID).
			Where("name ILIKE ?", "%"+escapeLike(item)+"%").
			OrderExpr("name ASC").
			Limit(1).
			Scan(ctx)
	}
	if errors.Is(err, sql.ErrNoRows) {
		return StockInfo{}, fmt.Errorf("%w: %q at store %s", ErrItemNotFound, item, storeID)
	}
	if err != nil {
		return StockInfo{}, fmt.Errorf("query inventory: %w", err)
	}

	return StockInfo{
		SKU:      row.SKU,
		ItemName: row.Name,
		InStock:  row.Quantity > 0,
		Quantity: row.Quantity,
		Price:    row.Price,
		Aisle:    row.Aisle,
	}, nil
}

func (s *PostgresSource) Close() error {
	return s.db.Close()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
