package coupon

import (
	"context"
	"errors"
	"time"

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

const couponColumns = `
id::text, code, discount_type, discount_value, status, cart_id::text, user_id::text,
expiry_date, min_purchase_cents, deleted, version, created_at, updated_at`

func (r *postgresRepo) Create(ctx context.Context, c *domain.Coupon) error {
	const q = `
INSERT INTO coupons (id, code, discount_type, discount_value, status, expiry_date, min_purchase_cents, version, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, 1, $8, $8)
`
	_, err := r.pool.Exec(ctx, q,
		c.ID, c.Code, c.Discount.Type, c.Discount.Value, c.Status, c.ExpiryDate, c.MinPurchaseCents, c.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrConflict
		}
		return err
	}
	c.Version = 1
	return nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Coupon, error) {
	return r.fetch(ctx, `SELECT `+couponColumns+` FROM coupons WHERE id = $1 AND NOT deleted`, id)
}

func (r *postgresRepo) GetByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	return r.fetch(ctx, `SELECT `+couponColumns+` FROM coupons WHERE code = $1 AND NOT deleted`, code)
}

func (r *postgresRepo) ListExpiring(ctx context.Context, now time.Time, limit int) ([]domain.Coupon, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+couponColumns+` FROM coupons
		 WHERE expiry_date < $1 AND status NOT IN ($2, $3) AND NOT deleted
		 ORDER BY expiry_date LIMIT $4`,
		now, domain.CouponStatusExpired, domain.CouponStatusRedeemed, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Coupon
	for rows.Next() {
		c, err := scanCoupon(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *c)
	}
	return result, rows.Err()
}

func (r *postgresRepo) Update(ctx context.Context, c *domain.Coupon) error {
	const q = `
UPDATE coupons
SET status = $1, cart_id = $2, user_id = $3, deleted = $4, version = version + 1, updated_at = $5
WHERE id = $6 AND version = $7
`
	cmd, err := r.pool.Exec(ctx, q, c.Status, c.CartID, c.UserID, c.Deleted, c.UpdatedAt, c.ID, c.Version)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrConflict
	}
	c.Version++
	return nil
}

func (r *postgresRepo) fetch(ctx context.Context, q string, args ...any) (*domain.Coupon, error) {
	c, err := scanCoupon(r.pool.QueryRow(ctx, q, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

func scanCoupon(row pgx.Row) (*domain.Coupon, error) {
	var c domain.Coupon
	if err := row.Scan(
		&c.ID, &c.Code, &c.Discount.Type, &c.Discount.Value, &c.Status, &c.CartID, &c.UserID,
		&c.ExpiryDate, &c.MinPurchaseCents, &c.Deleted, &c.Version, &c.CreatedAt, &c.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &c, nil
}
