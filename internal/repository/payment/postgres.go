package payment

import (
	"context"
	"errors"

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

const paymentColumns = `
id::text, order_id::text, cart_id::text, user_id::text, total_cents, tax_cents, currency,
COALESCE(method, ''), COALESCE(transaction_id, ''), status, paid_at, failed_at, refunded_at,
version, created_at, updated_at`

func (r *postgresRepo) Create(ctx context.Context, p *domain.Payment) error {
	const q = `
INSERT INTO payments (id, order_id, cart_id, user_id, total_cents, tax_cents, currency, status, version, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 1, $9, $9)
`
	_, err := r.pool.Exec(ctx, q,
		p.ID, p.OrderID, p.CartID, p.UserID, p.TotalCents, p.TaxCents, p.Currency, p.Status, p.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return err
	}
	p.Version = 1
	return nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	return r.fetch(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id)
}

func (r *postgresRepo) GetByOrderID(ctx context.Context, orderID string) (*domain.Payment, error) {
	return r.fetch(ctx, `SELECT `+paymentColumns+` FROM payments WHERE order_id = $1`, orderID)
}

func (r *postgresRepo) Update(ctx context.Context, p *domain.Payment, evts ...outbox.Record) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	const q = `
UPDATE payments
SET status = $1, method = NULLIF($2, ''), transaction_id = NULLIF($3, ''),
    paid_at = $4, failed_at = $5, refunded_at = $6,
    version = version + 1, updated_at = $7
WHERE id = $8 AND version = $9
`
	cmd, err := tx.Exec(ctx, q,
		p.Status, p.Method, p.TransactionID, p.PaidAt, p.FailedAt, p.RefundedAt, p.UpdatedAt,
		p.ID, p.Version)
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
	p.Version++
	return nil
}

func (r *postgresRepo) fetch(ctx context.Context, q string, args ...any) (*domain.Payment, error) {
	var p domain.Payment
	err := r.pool.QueryRow(ctx, q, args...).Scan(
		&p.ID, &p.OrderID, &p.CartID, &p.UserID, &p.TotalCents, &p.TaxCents, &p.Currency,
		&p.Method, &p.TransactionID, &p.Status, &p.PaidAt, &p.FailedAt, &p.RefundedAt,
		&p.Version, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
