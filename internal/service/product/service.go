package product

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/TechX-demo/easy-pay-cart/internal/domain"
	productrepo "github.com/TechX-demo/easy-pay-cart/internal/repository/product"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// Service is the read-only catalog. Products are loaded from the repository
// into memory; cart reads resolve prices through Lookup without I/O.
type Service struct {
	repo   productrepo.Repository
	logger *zerolog.Logger
	group  singleflight.Group

	mu    sync.RWMutex
	order []domain.Product
	byID  map[string]domain.Product
}

func New(repo productrepo.Repository, logger *zerolog.Logger) *Service {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Service{repo: repo, logger: logger, byID: map[string]domain.Product{}}
}

// Reload replaces the in-memory catalog with the repository contents.
// Concurrent calls share one repository read.
func (s *Service) Reload(ctx context.Context) (int, error) {
	v, err, shared := s.group.Do("catalog", func() (any, error) {
		products, err := s.repo.List(ctx)
		if err != nil {
			return 0, fmt.Errorf("load catalog: %w", err)
		}
		byID := make(map[string]domain.Product, len(products))
		for _, p := range products {
			byID[p.ID] = p
		}
		s.mu.Lock()
		s.order = products
		s.byID = byID
		s.mu.Unlock()
		return len(products), nil
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("catalog reload failed")
		return 0, err
	}
	s.logger.Debug().Int("products", v.(int)).Bool("shared", shared).Msg("catalog reloaded")
	return v.(int), nil
}

// Run reloads the catalog every interval until ctx is done, so imports into
// the repository reach carts without a restart. Failed reloads keep the
// previous catalog.
func (s *Service) Run(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			_, _ = s.Reload(ctx)
		}
	}
}

func (s *Service) List(_ context.Context) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Product, len(s.order))
	copy(out, s.order)
	return out, nil
}

func (s *Service) Get(_ context.Context, id string) (*domain.Product, error) {
	p, ok := s.Lookup(id)
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (s *Service) ByCategory(_ context.Context, category string) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.Product{}
	for _, p := range s.order {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out, nil
}

// Categories returns distinct categories in catalog order.
func (s *Service) Categories(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]struct{})
	out := []string{}
	for _, p := range s.order {
		if _, ok := seen[p.Category]; ok || p.Category == "" {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	return out, nil
}

// Lookup implements cart.Lookup.
func (s *Service) Lookup(id string) (domain.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.byID[id]
	return p, ok
}
