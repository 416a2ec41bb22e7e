package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"shopflow/internal/domain"
)

type ProductWriter interface {
	Upsert(ctx context.Context, p *domain.Product) (*domain.Product, error)
}

type StockWriter interface {
	Upsert(ctx context.Context, s *domain.StockLevel) error
}

// CSVImporter reads a catalog CSV export and upserts products plus their
// stock levels. Expected headers: sku, name, description, price_cents,
// currency, stock.
type CSVImporter struct {
	reader   *csv.Reader
	products ProductWriter
	stock    StockWriter
}

func NewCSVImporter(r io.Reader, products ProductWriter, stock StockWriter) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	return &CSVImporter{
		reader:   csvr,
		products: products,
		stock:    stock,
	}
}

type csvRow struct {
	SKU      string
	Name     string
	Desc     string
	Cents    int64
	Currency string
	Stock    int
	HasStock bool
}

// Run parses CSV rows and upserts one product per row.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)

	imported := 0
	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row: %w", err)
		}

		row := parseRow(record, index)
		if row == nil {
			continue
		}
		if err := i.save(ctx, row); err != nil {
			return imported, err
		}
		imported++
	}

	return imported, nil
}

func (i *CSVImporter) save(ctx context.Context, row *csvRow) error {
	if row.SKU == "" || row.Name == "" || row.Cents == 0 || row.Currency == "" {
		return fmt.Errorf("invalid product row (missing required fields) for sku %q", row.SKU)
	}

	product, err := i.products.Upsert(ctx, &domain.Product{
		SKU:         row.SKU,
		Name:        row.Name,
		Description: row.Desc,
		PriceCents:  row.Cents,
		Currency:    row.Currency,
	})
	if err != nil {
		return fmt.Errorf("upsert product %q: %w", row.SKU, err)
	}

	if row.HasStock {
		if err := i.stock.Upsert(ctx, &domain.StockLevel{
			ProductID: product.ID,
			Available: row.Stock,
			UpdatedAt: time.Now().UTC(),
		}); err != nil {
			return fmt.Errorf("upsert stock for %q: %w", row.SKU, err)
		}
	}
	return nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.TrimSpace(h)] = i
	}
	return idx
}

func parseRow(record []string, index map[string]int) *csvRow {
	sku := pick(record, index, "sku")
	if sku == "" {
		return nil
	}

	var cents int64
	if centStr := pick(record, index, "price_cents"); centStr != "" {
		cents, _ = strconv.ParseInt(centStr, 10, 64)
	}

	row := &csvRow{
		SKU:      sku,
		Name:     pick(record, index, "name"),
		Desc:     pick(record, index, "description"),
		Cents:    cents,
		Currency: pick(record, index, "currency"),
	}
	if stockStr := pick(record, index, "stock"); stockStr != "" {
		if n, err := strconv.Atoi(stockStr); err == nil {
			row.Stock = n
			row.HasStock = true
		}
	}
	return row
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}
