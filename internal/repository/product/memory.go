package product

import (
	"context"

	"github.com/TechX-demo/easy-pay-cart/internal/domain"
)

type memoryRepo struct {
	products []domain.Product
}

// NewMemory serves a fixed product list in the given order.
func NewMemory(products []domain.Product) Repository {
	cp := make([]domain.Product, len(products))
	copy(cp, products)
	return &memoryRepo{products: cp}
}

func (r *memoryRepo) List(_ context.Context) ([]domain.Product, error) {
	out := make([]domain.Product, len(r.products))
	copy(out, r.products)
	return out, nil
}

func (r *memoryRepo) GetByID(_ context.Context, id string) (*domain.Product, error) {
	for _, p := range r.products {
		if p.ID == id {
			found := p
			return &found, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memoryRepo) ListByCategory(_ context.Context, category string) ([]domain.Product, error) {
	var out []domain.Product
	for _, p := range r.products {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out, nil
}
