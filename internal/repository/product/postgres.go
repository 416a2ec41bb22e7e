package product

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"shopflow/internal/domain"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

const productColumns = `id::text, sku, name, COALESCE(description, ''), price_cents, currency, created_at`

func (r *postgresRepo) Create(ctx context.Context, p *domain.Product) error {
	const q = `
INSERT INTO products (id, sku, name, description, price_cents, currency, created_at)
VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7)
`
	_, err := r.pool.Exec(ctx, q, p.ID, p.SKU, p.Name, p.Description, p.PriceCents, p.Currency, p.CreatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return domain.ErrConflict
	}
	return err
}

func (r *postgresRepo) Upsert(ctx context.Context, p *domain.Product) (*domain.Product, error) {
	const q = `
INSERT INTO products (sku, name, description, price_cents, currency)
VALUES ($1, $2, NULLIF($3, ''), $4, $5)
ON CONFLICT (sku) DO UPDATE
SET name = EXCLUDED.name,
    description = EXCLUDED.description,
    price_cents = EXCLUDED.price_cents,
    currency = EXCLUDED.currency
RETURNING ` + productColumns + `
`
	var out domain.Product
	err := r.pool.QueryRow(ctx, q, p.SKU, p.Name, p.Description, p.PriceCents, p.Currency).Scan(
		&out.ID, &out.SKU, &out.Name, &out.Description, &out.PriceCents, &out.Currency, &out.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	return r.fetch(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
}

func (r *postgresRepo) GetBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	return r.fetch(ctx, `SELECT `+productColumns+` FROM products WHERE sku = $1`, sku)
}

func (r *postgresRepo) List(ctx context.Context) ([]domain.Product, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+productColumns+` FROM products ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.SKU, &p.Name, &p.Description, &p.PriceCents, &p.Currency, &p.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

func (r *postgresRepo) fetch(ctx context.Context, q string, args ...any) (*domain.Product, error) {
	var p domain.Product
	err := r.pool.QueryRow(ctx, q, args...).Scan(
		&p.ID, &p.SKU, &p.Name, &p.Description, &p.PriceCents, &p.Currency, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}
