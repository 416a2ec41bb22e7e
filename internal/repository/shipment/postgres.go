package shipment

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

const shipmentColumns = `
id::text, order_id::text, shipping_address, tracking_code, status,
shipped_at, delivered_at, version, created_at, updated_at`

func (r *postgresRepo) Create(ctx context.Context, s *domain.Shipment, evts ...outbox.Record) error {
	addr, err := json.Marshal(s.ShippingAddress)
	if err != nil {
		return fmt.Errorf("encode shipping address: %w", err)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	const q = `
INSERT INTO shipments (id, order_id, shipping_address, tracking_code, status, version, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, 1, $6, $6)
`
	if _, err := tx.Exec(ctx, q, s.ID, s.OrderID, addr, s.TrackingCode, s.Status, s.CreatedAt); err != nil {
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
	s.Version = 1
	return nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Shipment, error) {
	return r.fetch(ctx, `SELECT `+shipmentColumns+` FROM shipments WHERE id = $1`, id)
}

func (r *postgresRepo) GetByOrderID(ctx context.Context, orderID string) (*domain.Shipment, error) {
	return r.fetch(ctx, `SELECT `+shipmentColumns+` FROM shipments WHERE order_id = $1`, orderID)
}

func (r *postgresRepo) Update(ctx context.Context, s *domain.Shipment, evts ...outbox.Record) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	const q = `
UPDATE shipments
SET status = $1, shipped_at = $2, delivered_at = $3, version = version + 1, updated_at = $4
WHERE id = $5 AND version = $6
`
	cmd, err := tx.Exec(ctx, q, s.Status, s.ShippedAt, s.DeliveredAt, s.UpdatedAt, s.ID, s.Version)
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

func (r *postgresRepo) fetch(ctx context.Context, q string, args ...any) (*domain.Shipment, error) {
	var s domain.Shipment
	var addr []byte
	err := r.pool.QueryRow(ctx, q, args...).Scan(
		&s.ID, &s.OrderID, &addr, &s.TrackingCode, &s.Status,
		&s.ShippedAt, &s.DeliveredAt, &s.Version, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(addr, &s.ShippingAddress); err != nil {
		return nil, fmt.Errorf("decode shipping address: %w", err)
	}
	return &s, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
