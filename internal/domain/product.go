package domain

import "time"

type Product struct {
	ID          string    `json:"id"`
	SKU         string    `json:"sku"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	PriceCents  int64     `json:"priceCents"`
	Currency    string    `json:"currency"`
	CreatedAt   time.Time `json:"createdAt"`
}

// StockLevel tracks availability per product variant. Stock is advisory in
// the order flow: running out never blocks an order, it only publishes a
// stock.level_changed fact.
type StockLevel struct {
	ProductID string    `json:"productId"`
	VariantID string    `json:"variantId"`
	Available int       `json:"available"`
	Version   int       `json:"version"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// InStock reports whether any units remain.
func (s StockLevel) InStock() bool {
	return s.Available > 0
}
