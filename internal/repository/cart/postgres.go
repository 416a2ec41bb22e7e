package cart

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

const cartColumns = `
id::text, user_id::text, currency, state, applied_coupon_ids, subtotal_cents, version, created_at, updated_at`

func (r *postgresRepo) Create(ctx context.Context, in CreateCartInput) (*domain.Cart, error) {
	const q = `
INSERT INTO carts (user_id, currency, state, subtotal_cents, version)
VALUES ($1, $2, 'active', 0, 1)
RETURNING ` + cartColumns + `
`
	row := r.pool.QueryRow(ctx, q, in.UserID, in.Currency)
	return scanCart(row)
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Cart, error) {
	return r.fetch(ctx, `SELECT `+cartColumns+` FROM carts WHERE id = $1`, id)
}

func (r *postgresRepo) GetActiveByUser(ctx context.Context, userID string) (*domain.Cart, error) {
	return r.fetch(ctx, `
SELECT `+cartColumns+` FROM carts
WHERE user_id = $1 AND state = 'active'
ORDER BY created_at DESC
LIMIT 1`, userID)
}

func (r *postgresRepo) AddLine(ctx context.Context, cartID string, product domain.Product, variantID string, quantity int) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var lineID string
	var existingQty int
	var unitPrice int64
	err = tx.QueryRow(ctx, `
SELECT id::text, quantity, unit_price_cents
FROM cart_lines
WHERE cart_id = $1 AND product_id = $2 AND variant_id = $3
`, cartID, product.ID, variantID).Scan(&lineID, &existingQty, &unitPrice)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	if err == nil {
		newQty := existingQty + quantity
		if _, err := tx.Exec(ctx, `
UPDATE cart_lines
SET quantity = $1, total_cents = $2
WHERE id = $3
`, newQty, unitPrice*int64(newQty), lineID); err != nil {
			return err
		}
	} else {
		if _, err := tx.Exec(ctx, `
INSERT INTO cart_lines (cart_id, product_id, variant_id, sku, quantity, unit_price_cents, total_cents)
VALUES ($1, $2, $3, $4, $5, $6, $7)
`, cartID, product.ID, variantID, product.SKU, quantity, product.PriceCents, product.PriceCents*int64(quantity)); err != nil {
			return err
		}
	}

	if err := updateCartSubtotal(ctx, tx, cartID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *postgresRepo) ChangeLineQuantity(ctx context.Context, cartID, lineID string, quantity int) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if quantity <= 0 {
		cmd, err := tx.Exec(ctx, `DELETE FROM cart_lines WHERE id = $1 AND cart_id = $2`, lineID, cartID)
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			return domain.ErrNotFound
		}
	} else {
		var unitPrice int64
		err := tx.QueryRow(ctx, `
SELECT unit_price_cents FROM cart_lines WHERE id = $1 AND cart_id = $2
`, lineID, cartID).Scan(&unitPrice)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrNotFound
			}
			return err
		}
		if _, err := tx.Exec(ctx, `
UPDATE cart_lines
SET quantity = $1, total_cents = $2
WHERE id = $3 AND cart_id = $4
`, quantity, unitPrice*int64(quantity), lineID, cartID); err != nil {
			return err
		}
	}

	if err := updateCartSubtotal(ctx, tx, cartID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *postgresRepo) ApplyCoupon(ctx context.Context, cartID, couponID string) error {
	cmd, err := r.pool.Exec(ctx, `
UPDATE carts
SET applied_coupon_ids = array_append(applied_coupon_ids, $1), updated_at = now()
WHERE id = $2 AND state = 'active' AND NOT ($1 = ANY(applied_coupon_ids))
`, couponID, cartID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrConflict
	}
	return nil
}

func (r *postgresRepo) CheckOut(ctx context.Context, c *domain.Cart, evts ...outbox.Record) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	cmd, err := tx.Exec(ctx, `
UPDATE carts
SET state = $1, version = version + 1, updated_at = $2
WHERE id = $3 AND version = $4
`, c.State, c.UpdatedAt, c.ID, c.Version)
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
	c.Version++
	return nil
}

func (r *postgresRepo) DeleteHard(ctx context.Context, cartID string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM carts WHERE id = $1`, cartID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) fetch(ctx context.Context, q string, args ...any) (*domain.Cart, error) {
	cart, err := scanCart(r.pool.QueryRow(ctx, q, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	const linesQuery = `
SELECT id::text, cart_id::text, product_id::text, COALESCE(variant_id, ''), sku, quantity, unit_price_cents, total_cents, created_at
FROM cart_lines
WHERE cart_id = $1
ORDER BY created_at ASC
`
	rows, err := r.pool.Query(ctx, linesQuery, cart.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var line domain.CartLine
		if err := rows.Scan(
			&line.ID, &line.CartID, &line.ProductID, &line.VariantID, &line.SKU,
			&line.Quantity, &line.UnitPriceCents, &line.TotalCents, &line.CreatedAt,
		); err != nil {
			return nil, err
		}
		cart.Lines = append(cart.Lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return cart, nil
}

func scanCart(row pgx.Row) (*domain.Cart, error) {
	var cart domain.Cart
	if err := row.Scan(
		&cart.ID, &cart.UserID, &cart.Currency, &cart.State, &cart.AppliedCouponIDs,
		&cart.SubtotalCents, &cart.Version, &cart.CreatedAt, &cart.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &cart, nil
}

func updateCartSubtotal(ctx context.Context, tx pgx.Tx, cartID string) error {
	_, err := tx.Exec(ctx, `
UPDATE carts
SET subtotal_cents = COALESCE((
	SELECT SUM(total_cents)
	FROM cart_lines
	WHERE cart_id = $1
), 0),
    updated_at = now()
WHERE id = $1
`, cartID)
	return err
}
