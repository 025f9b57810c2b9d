//go:build integration

package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/xenking/anomie-storefront/internal/domain/product"
)

// startPostgres runs a disposable PostgreSQL container and returns a
// migrated pool connected to it.
func startPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:17-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "anomie",
				"POSTGRES_PASSWORD": "anomie",
				"POSTGRES_DB":       "catalog",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = testcontainers.TerminateContainer(c)
	})

	host, err := c.Host(ctx)
	require.NoError(t, err)
	port, err := c.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	dsn := fmt.Sprintf("postgres://anomie:anomie@%s:%s/catalog?sslmode=disable", host, port.Port())
	pool, err := NewPool(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, RunMigrations(ctx, pool))
	// Migrations are idempotent.
	require.NoError(t, RunMigrations(ctx, pool))
	return pool
}

func TestProductRepository(t *testing.T) {
	pool := startPostgres(t)
	repo := NewProductRepository(pool)
	ctx := context.Background()

	products, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, products)

	seed := []product.Product{
		{Title: "Canvas Tote", Description: "Everyday carry.", Price: decimal.NewFromInt(24), Category: "accessories"},
		{Title: "Logo Tee", Price: decimal.RequireFromString("38.50"), Category: "apparel", Image: "https://img.example/tee.jpg"},
	}
	require.NoError(t, repo.Upsert(ctx, seed, false))

	products, err = repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "Canvas Tote", products[0].Title)
	assert.Equal(t, "Everyday carry.", products[0].Description)
	assert.Empty(t, products[0].ID)
	assert.True(t, decimal.RequireFromString("38.5").Equal(products[1].Price))
	assert.Equal(t, "https://img.example/tee.jpg", products[1].Image)

	t.Run("upsert reorders and updates", func(t *testing.T) {
		update := []product.Product{
			{Title: "Logo Tee", Price: decimal.NewFromInt(40), Category: "apparel"},
			{Title: "Canvas Tote", Price: decimal.NewFromInt(24), Category: "accessories"},
		}
		require.NoError(t, repo.Upsert(ctx, update, false))

		products, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, products, 2)
		assert.Equal(t, "Logo Tee", products[0].Title)
		assert.True(t, decimal.NewFromInt(40).Equal(products[0].Price))
		assert.Empty(t, products[0].Image)
	})

	t.Run("replace drops missing products", func(t *testing.T) {
		require.NoError(t, repo.Upsert(ctx, []product.Product{
			{Title: "Field Notebook", Price: decimal.NewFromInt(14), Category: "objects"},
		}, true))

		products, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, products, 1)
		assert.Equal(t, "Field Notebook", products[0].Title)
	})

	t.Run("negative price rejected", func(t *testing.T) {
		err := repo.Upsert(ctx, []product.Product{
			{Title: "Broken", Price: decimal.NewFromInt(-1)},
		}, false)
		require.Error(t, err)
	})
}
