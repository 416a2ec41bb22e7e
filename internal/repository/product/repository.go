package product

import (
	"context"

	"shopflow/internal/domain"
)

type Repository interface {
	Create(ctx context.Context, p *domain.Product) error
	Upsert(ctx context.Context, p *domain.Product) (*domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	GetBySKU(ctx context.Context, sku string) (*domain.Product, error)
	List(ctx context.Context) ([]domain.Product, error)
}
