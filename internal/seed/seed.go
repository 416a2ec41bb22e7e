package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type productSeed struct {
	SKU         string
	Name        string
	Description string
	PriceCents  int64
	Currency    string
	Stock       int
}

type couponSeed struct {
	Code             string
	DiscountType     string
	DiscountValue    int64
	MinPurchaseCents int64
	ExpiresIn        time.Duration
}

// Apply inserts basic seed data for manual testing. It is idempotent via
// ON CONFLICT.
func Apply(ctx context.Context, pool *pgxpool.Pool) error {
	products := []productSeed{
		{
			SKU:         "SKU-DEMO-TSHIRT",
			Name:        "Demo T-Shirt",
			Description: "Soft cotton tee for demo purposes",
			PriceCents:  1999,
			Currency:    "USD",
			Stock:       250,
		},
		{
			SKU:         "SKU-DEMO-MUG",
			Name:        "Demo Mug",
			Description: "Ceramic mug with demo logo",
			PriceCents:  1299,
			Currency:    "USD",
			Stock:       500,
		},
		{
			SKU:         "SKU-DEMO-POSTER",
			Name:        "Demo Poster",
			Description: "A2 matte print",
			PriceCents:  899,
			Currency:    "USD",
			Stock:       80,
		},
	}
	for _, p := range products {
		if err := upsertProduct(ctx, pool, p); err != nil {
			return fmt.Errorf("upsert product %s: %w", p.SKU, err)
		}
	}

	coupons := []couponSeed{
		{Code: "WELCOME10", DiscountType: "percentage", DiscountValue: 10, ExpiresIn: 90 * 24 * time.Hour},
		{Code: "FIVEOFF", DiscountType: "fixed", DiscountValue: 500, MinPurchaseCents: 2000, ExpiresIn: 30 * 24 * time.Hour},
	}
	for _, c := range coupons {
		if err := upsertCoupon(ctx, pool, c); err != nil {
			return fmt.Errorf("upsert coupon %s: %w", c.Code, err)
		}
	}

	return nil
}

func upsertProduct(ctx context.Context, pool *pgxpool.Pool, p productSeed) error {
	const q = `
INSERT INTO products (sku, name, description, price_cents, currency)
VALUES ($1, $2, NULLIF($3, ''), $4, $5)
ON CONFLICT (sku) DO UPDATE
SET name = EXCLUDED.name,
    description = EXCLUDED.description,
    price_cents = EXCLUDED.price_cents,
    currency = EXCLUDED.currency
RETURNING id::text
`
	var id string
	if err := pool.QueryRow(ctx, q, p.SKU, p.Name, p.Description, p.PriceCents, p.Currency).Scan(&id); err != nil {
		return err
	}

	const stockQ = `
INSERT INTO stock_levels (product_id, variant_id, available, version, updated_at)
VALUES ($1, '', $2, 1, now())
ON CONFLICT (product_id, variant_id) DO UPDATE
SET available = EXCLUDED.available, version = stock_levels.version + 1, updated_at = now()
`
	_, err := pool.Exec(ctx, stockQ, id, p.Stock)
	return err
}

func upsertCoupon(ctx context.Context, pool *pgxpool.Pool, c couponSeed) error {
	const q = `
INSERT INTO coupons (id, code, discount_type, discount_value, status, expiry_date, min_purchase_cents, version, created_at, updated_at)
VALUES (gen_random_uuid(), $1, $2, $3, 'active', $4, $5, 1, now(), now())
ON CONFLICT (code) DO UPDATE
SET discount_type = EXCLUDED.discount_type,
    discount_value = EXCLUDED.discount_value,
    expiry_date = EXCLUDED.expiry_date,
    min_purchase_cents = EXCLUDED.min_purchase_cents
`
	_, err := pool.Exec(ctx, q, c.Code, c.DiscountType, c.DiscountValue, time.Now().UTC().Add(c.ExpiresIn), c.MinPurchaseCents)
	return err
}
