package catalog

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrProductNotFound indicates a missing product row.
var ErrProductNotFound = errors.New("catalog: product not found")

// ProductColumns is the select list shared by every product query.
const ProductColumns = `id, name, category, unit, currency, price, COALESCE(purchase_price, 0), alert_threshold, is_active, quantity, stock_boxes, area_per_box, stock_bars, bars_per_tonne`

// ScanProduct reads one product row using the ProductColumns select list.
func ScanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.Category, &p.Unit, &p.Currency, &p.Price, &p.PurchasePrice,
		&p.AlertThreshold, &p.IsActive, &p.Quantity, &p.StockBoxes, &p.AreaPerBox, &p.StockBars, &p.BarsPerTonne)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, ErrProductNotFound
		}
		return Product{}, err
	}
	return p, nil
}

// Repository reads product records from PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetProduct loads one product by id.
func (r *Repository) GetProduct(ctx context.Context, id int64) (Product, error) {
	if r == nil {
		return Product{}, errors.New("catalog: repository not initialised")
	}
	return ScanProduct(r.pool.QueryRow(ctx, `SELECT `+ProductColumns+` FROM products WHERE id=$1`, id))
}

// ListActive returns every active product ordered by name.
func (r *Repository) ListActive(ctx context.Context) ([]Product, error) {
	if r == nil {
		return nil, errors.New("catalog: repository not initialised")
	}
	rows, err := r.pool.Query(ctx, `SELECT `+ProductColumns+` FROM products WHERE is_active ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	products := []Product{}
	for rows.Next() {
		p, err := ScanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return products, nil
}
