package main

import (
	"os"
	"path/filepath"
	"testing"

	pgzip "github.com/klauspost/pgzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/anomie-storefront/internal/catalog"
)

const sample = `[
	{"title":"Logo Tee","price":38,"category":"apparel"},
	{"title":"Field Notebook","description":"Dot grid.","price":14,"category":"objects"}
]`

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestReadProducts_JSON(t *testing.T) {
	products, err := readProducts(writeFile(t, "products.json", []byte(sample)))
	require.NoError(t, err)

	require.Len(t, products, 2)
	assert.Equal(t, "Logo Tee", products[0].Title)
	assert.Equal(t, "objects", products[1].Category)
}

func TestReadProducts_Gzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.json.gz")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := pgzip.NewWriter(f)
	_, err = zw.Write([]byte(sample))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	products, err := readProducts(path)
	require.NoError(t, err)
	assert.Len(t, products, 2)
}

func TestReadProducts_SeedFile(t *testing.T) {
	products, err := readProducts(filepath.Join("..", "..", "db", "seed", "products.json"))
	require.NoError(t, err)
	assert.NotEmpty(t, products)
}

func TestReadProducts_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "not an array", body: `{"title":"Tee"}`},
		{name: "negative price", body: `[{"title":"Tee","price":-1}]`},
		{name: "missing title", body: `[{"price":1}]`},
		{name: "duplicate title", body: `[{"title":"Tee"},{"title":"Tee"}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := readProducts(writeFile(t, "products.json", []byte(tt.body)))
			require.Error(t, err)
		})
	}

	_, err := readProducts(writeFile(t, "products.json", []byte(`[1]`)))
	assert.ErrorIs(t, err, catalog.ErrMalformed)

	_, err = readProducts(writeFile(t, "products.json.gz", []byte(sample)))
	assert.Error(t, err, "plain JSON with a .gz suffix")

	_, err = readProducts(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
