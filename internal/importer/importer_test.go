package importer

import (
	"context"
	"strings"
	"testing"

	"shopflow/internal/domain"
)

type memProducts struct {
	upserts []domain.Product
}

func (m *memProducts) Upsert(_ context.Context, p *domain.Product) (*domain.Product, error) {
	saved := *p
	saved.ID = "prod-" + p.SKU
	m.upserts = append(m.upserts, saved)
	return &saved, nil
}

type memStock struct {
	upserts []domain.StockLevel
}

func (m *memStock) Upsert(_ context.Context, s *domain.StockLevel) error {
	m.upserts = append(m.upserts, *s)
	return nil
}

func TestCSVImporterRun(t *testing.T) {
	csv := strings.Join([]string{
		"sku,name,description,price_cents,currency,stock",
		"SKU-1,Red Shirt,Cotton tee,1999,USD,40",
		"SKU-2,Blue Mug,,1299,USD,",
		",skipped,no sku,100,USD,1",
	}, "\n")

	products := &memProducts{}
	stock := &memStock{}
	imp := NewCSVImporter(strings.NewReader(csv), products, stock)

	count, err := imp.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if count != 2 {
		t.Fatalf("imported = %d, want 2", count)
	}
	if len(products.upserts) != 2 {
		t.Fatalf("product upserts = %d, want 2", len(products.upserts))
	}
	if products.upserts[0].SKU != "SKU-1" || products.upserts[0].PriceCents != 1999 {
		t.Errorf("unexpected first product: %+v", products.upserts[0])
	}
	if len(stock.upserts) != 1 {
		t.Fatalf("stock upserts = %d, want 1", len(stock.upserts))
	}
	if stock.upserts[0].ProductID != "prod-SKU-1" || stock.upserts[0].Available != 40 {
		t.Errorf("unexpected stock upsert: %+v", stock.upserts[0])
	}
}

func TestCSVImporterRejectsIncompleteRow(t *testing.T) {
	csv := strings.Join([]string{
		"sku,name,description,price_cents,currency,stock",
		"SKU-1,Broken,,0,USD,5",
	}, "\n")

	imp := NewCSVImporter(strings.NewReader(csv), &memProducts{}, &memStock{})
	if _, err := imp.Run(context.Background()); err == nil {
		t.Fatal("expected error for row without price")
	}
}
