package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
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

const orderColumns = `
id::text, cart_id::text, user_id::text, subtotal_cents, tax_cents, discount_cents, total_cents,
currency, delivery_address, items, status, payment_id::text, shipment_id::text,
paid_at, shipped_at, delivered_at, cancelled_at, refunded_at, deleted, deleted_at,
version, created_at, updated_at`

func (r *postgresRepo) Create(ctx context.Context, o *domain.Order, evts ...outbox.Record) error {
	addr, items, err := marshalOrder(o)
	if err != nil {
		return err
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	const q = `
INSERT INTO orders (id, cart_id, user_id, subtotal_cents, tax_cents, discount_cents, total_cents,
                    currency, delivery_address, items, status, version, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, 1, $12, $12)
`
	if _, err := tx.Exec(ctx, q,
		o.ID, o.CartID, o.UserID, o.SubtotalCents, o.TaxCents, o.DiscountCents, o.TotalCents,
		o.Currency, addr, items, o.Status, o.CreatedAt,
	); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return err
	}

	if err := outbox.Insert(ctx, tx, evts...); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}
	o.Version = 1
	return nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	return r.fetch(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1 AND NOT deleted`, id)
}

func (r *postgresRepo) GetByCartID(ctx context.Context, cartID string) (*domain.Order, error) {
	return r.fetch(ctx, `SELECT `+orderColumns+` FROM orders WHERE cart_id = $1 AND NOT deleted`, cartID)
}

func (r *postgresRepo) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE user_id = $1 AND NOT deleted ORDER BY created_at DESC`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *o)
	}
	return result, rows.Err()
}

func (r *postgresRepo) CountPendingByUser(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM orders WHERE user_id = $1 AND status = $2 AND NOT deleted`,
		userID, domain.OrderStatusPending).Scan(&count)
	return count, err
}

func (r *postgresRepo) Update(ctx context.Context, o *domain.Order, evts ...outbox.Record) error {
	addr, items, err := marshalOrder(o)
	if err != nil {
		return err
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	const q = `
UPDATE orders
SET status = $1, payment_id = $2, shipment_id = $3,
    paid_at = $4, shipped_at = $5, delivered_at = $6, cancelled_at = $7, refunded_at = $8,
    deleted = $9, deleted_at = $10, delivery_address = $11, items = $12,
    version = version + 1, updated_at = $13
WHERE id = $14 AND version = $15
`
	cmd, err := tx.Exec(ctx, q,
		o.Status, o.PaymentID, o.ShipmentID,
		o.PaidAt, o.ShippedAt, o.DeliveredAt, o.CancelledAt, o.RefundedAt,
		o.Deleted, o.DeletedAt, addr, items, o.UpdatedAt,
		o.ID, o.Version,
	)
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
	o.Version++
	return nil
}

func (r *postgresRepo) fetch(ctx context.Context, q string, args ...any) (*domain.Order, error) {
	row := r.pool.QueryRow(ctx, q, args...)
	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return o, nil
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var o domain.Order
	var addr, items []byte
	if err := row.Scan(
		&o.ID, &o.CartID, &o.UserID, &o.SubtotalCents, &o.TaxCents, &o.DiscountCents, &o.TotalCents,
		&o.Currency, &addr, &items, &o.Status, &o.PaymentID, &o.ShipmentID,
		&o.PaidAt, &o.ShippedAt, &o.DeliveredAt, &o.CancelledAt, &o.RefundedAt, &o.Deleted, &o.DeletedAt,
		&o.Version, &o.CreatedAt, &o.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(addr, &o.DeliveryAddress); err != nil {
		return nil, fmt.Errorf("decode delivery address: %w", err)
	}
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return nil, fmt.Errorf("decode order items: %w", err)
	}
	return &o, nil
}

func marshalOrder(o *domain.Order) (addr, items []byte, err error) {
	addr, err = json.Marshal(o.DeliveryAddress)
	if err != nil {
		return nil, nil, fmt.Errorf("encode delivery address: %w", err)
	}
	items, err = json.Marshal(o.Items)
	if err != nil {
		return nil, nil, fmt.Errorf("encode order items: %w", err)
	}
	return addr, items, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
