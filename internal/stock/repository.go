package stock

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/Amos-12/stock-management-sub001/internal/catalog"
	"github.com/Amos-12/stock-management-sub001/internal/platform/db"
)

// RepositoryPort abstracts repository usage for the service and reconciler.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	GetProduct(ctx context.Context, id int64) (catalog.Product, error)
	ListActiveProducts(ctx context.Context) ([]catalog.Product, error)
	History(ctx context.Context, filter HistoryFilter) ([]Movement, error)
}

// TxRepository exposes the transactional operations of one adjustment. The
// product-row update and the ledger append always commit or roll back as a
// unit.
type TxRepository interface {
	GetProduct(ctx context.Context, id int64) (catalog.Product, error)
	LatestMovement(ctx context.Context, productID int64) (Movement, bool, error)
	UpdateRawStock(ctx context.Context, productID int64, kind StockKind, expected, next decimal.Decimal) error
	InsertMovement(ctx context.Context, m Movement) error
}

// ErrStaleStock indicates the compare-and-swap on the raw-stock column
// matched zero rows.
var ErrStaleStock = errors.New("stock: raw stock changed since read")

// Repository persists the ledger and the materialized raw-stock fields in
// PostgreSQL. Product reads go through the catalog repository.
type Repository struct {
	pool     *pgxpool.Pool
	products *catalog.Repository
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool, products: catalog.NewRepository(pool)}
}

type txRepository struct {
	tx pgx.Tx
}

// WithTx executes the callback inside a repeatable-read transaction.
// Serialization failures surface as ConflictError so callers get one uniform
// retry signal.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	if r == nil {
		return errors.New("stock: repository not initialised")
	}
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "40001" {
			return &ConflictError{}
		}
		return err
	}
	return nil
}

// GetProduct loads one product outside a transaction.
func (r *Repository) GetProduct(ctx context.Context, id int64) (catalog.Product, error) {
	return r.products.GetProduct(ctx, id)
}

// ListActiveProducts returns every active product.
func (r *Repository) ListActiveProducts(ctx context.Context) ([]catalog.Product, error) {
	return r.products.ListActive(ctx)
}

const movementColumns = `id, product_id, movement_type, quantity, previous_quantity, new_quantity, reason, actor_id, created_at`

// History lists movements for a product in forward time order. The query is
// repeatable and read-only; it never blocks writers.
func (r *Repository) History(ctx context.Context, filter HistoryFilter) ([]Movement, error) {
	if r == nil {
		return nil, errors.New("stock: repository not initialised")
	}
	query, args := historyQuery(filter)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	movements := []Movement{}
	for rows.Next() {
		var m Movement
		if err := rows.Scan(&m.ID, &m.ProductID, &m.Type, &m.Quantity, &m.Previous, &m.New, &m.Reason, &m.ActorID, &m.CreatedAt); err != nil {
			return nil, err
		}
		movements = append(movements, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return movements, nil
}

// historyQuery builds the movement listing statement. Range bounds are added
// only when set, so the timestamp parameters always bind against created_at
// directly and keep a concrete type at prepare time.
func historyQuery(filter HistoryFilter) (string, []any) {
	var b strings.Builder
	b.WriteString(`SELECT ` + movementColumns + ` FROM stock_movements WHERE product_id=$1`)
	args := []any{filter.ProductID}
	if !filter.From.IsZero() {
		args = append(args, filter.From)
		fmt.Fprintf(&b, ` AND created_at >= $%d`, len(args))
	}
	if !filter.To.IsZero() {
		args = append(args, filter.To)
		fmt.Fprintf(&b, ` AND created_at <= $%d`, len(args))
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 200
	}
	args = append(args, limit)
	fmt.Fprintf(&b, ` ORDER BY created_at ASC, id ASC LIMIT $%d`, len(args))
	return b.String(), args
}

func (r *txRepository) GetProduct(ctx context.Context, id int64) (catalog.Product, error) {
	return catalog.ScanProduct(r.tx.QueryRow(ctx, `SELECT `+catalog.ProductColumns+` FROM products WHERE id=$1`, id))
}

func (r *txRepository) LatestMovement(ctx context.Context, productID int64) (Movement, bool, error) {
	var m Movement
	err := r.tx.QueryRow(ctx, `SELECT `+movementColumns+` FROM stock_movements WHERE product_id=$1 ORDER BY created_at DESC, id DESC LIMIT 1`, productID).
		Scan(&m.ID, &m.ProductID, &m.Type, &m.Quantity, &m.Previous, &m.New, &m.Reason, &m.ActorID, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Movement{}, false, nil
		}
		return Movement{}, false, err
	}
	return m, true, nil
}

// UpdateRawStock rewrites the category-selected raw-stock column, guarded by
// a compare-and-swap on the expected value.
func (r *txRepository) UpdateRawStock(ctx context.Context, productID int64, kind StockKind, expected, next decimal.Decimal) error {
	var query string
	switch kind {
	case KindBoxed:
		query = `UPDATE products SET stock_boxes=$1, updated_at=NOW() WHERE id=$2 AND stock_boxes=$3`
	case KindBar:
		query = `UPDATE products SET stock_bars=$1, updated_at=NOW() WHERE id=$2 AND stock_bars=$3`
	default:
		query = `UPDATE products SET quantity=$1, updated_at=NOW() WHERE id=$2 AND quantity=$3`
	}
	tag, err := r.tx.Exec(ctx, query, next, productID, expected)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrStaleStock
	}
	return nil
}

func (r *txRepository) InsertMovement(ctx context.Context, m Movement) error {
	_, err := r.tx.Exec(ctx, `INSERT INTO stock_movements (id, product_id, movement_type, quantity, previous_quantity, new_quantity, reason, actor_id, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		m.ID, m.ProductID, string(m.Type), m.Quantity, m.Previous, m.New, m.Reason, m.ActorID, m.CreatedAt)
	return err
}
