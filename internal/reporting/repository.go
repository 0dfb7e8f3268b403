package reporting

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryPort abstracts sale-line loading for the service.
type RepositoryPort interface {
	ListSaleLines(ctx context.Context, from, to time.Time) ([]SaleLine, error)
}

// Repository reads sale lines from PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListSaleLines returns the lines sold in [from, to), oldest first.
func (r *Repository) ListSaleLines(ctx context.Context, from, to time.Time) ([]SaleLine, error) {
	rows, err := r.pool.Query(ctx, `SELECT sale_id, product_id, quantity, subtotal, COALESCE(profit_amount, 0), currency, sold_at
FROM sale_lines
WHERE sold_at >= $1 AND sold_at < $2
ORDER BY sold_at ASC, sale_id ASC`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	lines := []SaleLine{}
	for rows.Next() {
		var l SaleLine
		if err := rows.Scan(&l.SaleID, &l.ProductID, &l.Quantity, &l.Subtotal, &l.Profit, &l.Currency, &l.SoldAt); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}
