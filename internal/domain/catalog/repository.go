package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// DBTX is the subset of *pgxpool.Pool the repository needs.
type DBTX interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// Repository reads the product catalog from Postgres and writes back
// accepted price updates.
type Repository struct {
	db DBTX
}

// NewRepository creates a new catalog repository
func NewRepository(db DBTX) *Repository {
	return &Repository{db: db}
}

// ListActive returns every active product ordered by id. The order is the
// matcher's tie-break order, so it must be stable.
func (r *Repository) ListActive(ctx context.Context) ([]Product, error) {
	query := `
		SELECT id, product_code, product_name, COALESCE(selling_price, 0)::text
		FROM products
		WHERE is_active = true
		ORDER BY id
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate products: %w", err)
	}
	return products, nil
}

// GetByCode looks up an active product by code, ignoring case.
func (r *Repository) GetByCode(ctx context.Context, code string) (*Product, error) {
	query := `
		SELECT id, product_code, product_name, COALESCE(selling_price, 0)::text
		FROM products
		WHERE lower(product_code) = lower($1) AND is_active = true
		ORDER BY id
		LIMIT 1
	`

	p, err := scanProduct(r.db.QueryRow(ctx, query, strings.TrimSpace(code)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return &p, nil
}

// UpdateSellingPrice sets a product's selling price and records the previous
// one in price_updates.
func (r *Repository) UpdateSellingPrice(ctx context.Context, id int64, price decimal.Decimal) error {
	query := `
		WITH previous AS (
			SELECT id, selling_price FROM products WHERE id = $1
		), updated AS (
			UPDATE products
			SET selling_price = $2, updated_at = now()
			WHERE id = $1
			RETURNING id
		)
		INSERT INTO price_updates (product_id, old_price, new_price)
		SELECT updated.id, previous.selling_price, $2
		FROM updated JOIN previous ON previous.id = updated.id
	`

	tag, err := r.db.Exec(ctx, query, id, price.String())
	if err != nil {
		return fmt.Errorf("failed to update price for product %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrProductNotFound
	}
	return nil
}

func scanProduct(row pgx.Row) (Product, error) {
	var (
		p     Product
		price string
	)
	if err := row.Scan(&p.ID, &p.Code, &p.Name, &price); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, err
		}
		return Product{}, fmt.Errorf("failed to scan product: %w", err)
	}

	d, err := decimal.NewFromString(price)
	if err != nil {
		return Product{}, fmt.Errorf("invalid selling price %q for product %d: %w", price, p.ID, err)
	}
	p.SellingPrice = d
	return p, nil
}
