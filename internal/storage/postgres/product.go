package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/anomie-storefront/internal/domain/product"
)

const (
	listProductsSQL = `SELECT title, description, price, category, image
		FROM products ORDER BY position, id`

	upsertProductSQL = `INSERT INTO products (position, title, description, price, category, image)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (title) DO UPDATE SET
			position    = EXCLUDED.position,
			description = EXCLUDED.description,
			price       = EXCLUDED.price,
			category    = EXCLUDED.category,
			image       = EXCLUDED.image,
			updated_at  = now()`

	deleteProductsSQL = `DELETE FROM products`
)

var _ product.Repository = (*ProductRepository)(nil)

// ProductRepository implements product.Repository backed by PostgreSQL.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// List returns the catalog in display order. IDs are left unassigned; they
// belong to whoever loads the listing.
func (r *ProductRepository) List(ctx context.Context) ([]product.Product, error) {
	rows, err := r.pool.Query(ctx, listProductsSQL)
	if err != nil {
		return nil, errors.Wrap(err, "list products")
	}
	products, err := pgx.CollectRows(rows, scanProduct)
	if err != nil {
		return nil, errors.Wrap(err, "scan products")
	}
	return products, nil
}

// Upsert writes products keyed by title, using their slice order as the
// display position. When replace is set, products missing from the slice are
// deleted in the same transaction.
func (r *ProductRepository) Upsert(ctx context.Context, products []product.Product, replace bool) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if replace {
			if _, err := tx.Exec(ctx, deleteProductsSQL); err != nil {
				return errors.Wrap(err, "clear products")
			}
		}

		batch := &pgx.Batch{}
		for i, p := range products {
			batch.Queue(upsertProductSQL, i, p.Title, p.Description, p.Price, p.Category, p.Image)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return errors.Wrap(err, "upsert products")
		}
		return nil
	})
}

func scanProduct(row pgx.CollectableRow) (product.Product, error) {
	var p product.Product
	err := row.Scan(&p.Title, &p.Description, &p.Price, &p.Category, &p.Image)
	return p, err
}
