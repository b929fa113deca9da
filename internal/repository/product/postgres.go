package product

import (
	"context"
	"errors"
	"fmt"

	"github.com/TechX-demo/easy-pay-cart/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// PostgresRepository is the catalog table: readable as a Repository and
// writable by the seed and import tools.
type PostgresRepository interface {
	Repository
	Writer
}

func NewPostgres(pool *pgxpool.Pool, logger *zerolog.Logger) PostgresRepository {
	l := zerolog.Nop()
	if logger != nil {
		l = *logger
	}
	return &postgresRepo{pool: pool, logger: l}
}

const selectProducts = `
SELECT id, name, price::text, description, image, category, created_at
FROM products
`

func (r *postgresRepo) List(ctx context.Context) ([]domain.Product, error) {
	return r.query(ctx, selectProducts+`ORDER BY created_at ASC, id ASC`)
}

func (r *postgresRepo) ListByCategory(ctx context.Context, category string) ([]domain.Product, error) {
	return r.query(ctx, selectProducts+`WHERE category = $1 ORDER BY created_at ASC, id ASC`, category)
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx, selectProducts+`WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("id", id).Msg("product repo: get not found")
			return nil, domain.ErrNotFound
		}
		r.logger.Error().Err(err).Str("id", id).Msg("product repo: get")
		return nil, err
	}
	return p, nil
}

func (r *postgresRepo) Upsert(ctx context.Context, product domain.Product) (*domain.Product, error) {
	const q = `
INSERT INTO products (id, name, price, description, image, category)
VALUES ($1, $2, $3::numeric, $4, $5, $6)
ON CONFLICT (id) DO UPDATE SET
    name = EXCLUDED.name,
    price = EXCLUDED.price,
    description = EXCLUDED.description,
    image = EXCLUDED.image,
    category = EXCLUDED.category
RETURNING created_at
`
	if product.ID == "" {
		return nil, errors.New("product repo: id required")
	}
	if product.Price.IsNegative() {
		return nil, fmt.Errorf("product repo: negative price for id=%s", product.ID)
	}
	res := product
	err := r.pool.QueryRow(ctx, q,
		product.ID,
		product.Name,
		product.Price.StringFixed(2),
		product.Description,
		product.Image,
		product.Category,
	).Scan(&res.CreatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("id", product.ID).Msg("product repo: upsert")
		return nil, err
	}
	r.logger.Debug().Str("id", res.ID).Str("category", res.Category).Msg("product repo: upserted")
	return &res, nil
}

func (r *postgresRepo) query(ctx context.Context, q string, args ...interface{}) ([]domain.Product, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		r.logger.Error().Err(err).Msg("product repo: list")
		return nil, err
	}
	defer rows.Close()

	var result []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("product repo: list rows")
		return nil, err
	}
	r.logger.Debug().Int("count", len(result)).Msg("product repo: list")
	return result, nil
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var p domain.Product
	var price string
	if err := row.Scan(&p.ID, &p.Name, &price, &p.Description, &p.Image, &p.Category, &p.CreatedAt); err != nil {
		return nil, err
	}
	d, err := decimal.NewFromString(price)
	if err != nil {
		return nil, fmt.Errorf("parse price for product %s: %w", p.ID, err)
	}
	p.Price = d
	return &p, nil
}
