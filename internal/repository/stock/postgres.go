package stock

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"shopflow/internal/domain"
	"shopflow/internal/outbox"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) Upsert(ctx context.Context, s *domain.StockLevel) error {
	const q = `
INSERT INTO stock_levels (product_id, variant_id, available, version, updated_at)
VALUES ($1, $2, $3, 1, $4)
ON CONFLICT (product_id, variant_id)
DO UPDATE SET available = EXCLUDED.available, version = stock_levels.version + 1, updated_at = EXCLUDED.updated_at
`
	_, err := r.pool.Exec(ctx, q, s.ProductID, s.VariantID, s.Available, s.UpdatedAt)
	return err
}

func (r *postgresRepo) Get(ctx context.Context, productID, variantID string) (*domain.StockLevel, error) {
	var s domain.StockLevel
	err := r.pool.QueryRow(ctx, `
SELECT product_id::text, COALESCE(variant_id, ''), available, version, updated_at
FROM stock_levels
WHERE product_id = $1 AND variant_id = $2
`, productID, variantID).Scan(&s.ProductID, &s.VariantID, &s.Available, &s.Version, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *postgresRepo) Update(ctx context.Context, s *domain.StockLevel, evts ...outbox.Record) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	const q = `
UPDATE stock_levels
SET available = $1, version = version + 1, updated_at = $2
WHERE product_id = $3 AND variant_id = $4 AND version = $5
`
	cmd, err := tx.Exec(ctx, q, s.Available, s.UpdatedAt, s.ProductID, s.VariantID, s.Version)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrConflict
	}

	if err := outbox.Insert(ctx, tx, evts...); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}
	s.Version++
	return nil
}
