package product

import (
	"context"

	"github.com/TechX-demo/easy-pay-cart/internal/domain"
)

type Repository interface {
	List(ctx context.Context) ([]domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	ListByCategory(ctx context.Context, category string) ([]domain.Product, error)
}

// Writer is implemented by repositories that accept catalog imports.
type Writer interface {
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}
