package catalog

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/anomie-storefront/internal/domain/product"
)

func testCatalog() []product.Product {
	products := []product.Product{
		{Title: "ANOMIE Logo Tee", Description: "Premium cotton tee.", Price: decimal.NewFromInt(38), Category: "apparel"},
		{Title: "Canvas Tote", Description: "Everyday carry.", Price: decimal.NewFromInt(24), Category: "accessories"},
		{Title: "Standard Deviation Hoodie", Description: "Heavyweight fleece in washed black.", Price: decimal.NewFromInt(78), Category: "apparel"},
		{Title: "Mystery Object", Price: decimal.NewFromInt(5)},
		{Title: "Cap — Black", Description: "6-panel with tonal embroidery.", Price: decimal.NewFromInt(32), Category: "accessories"},
	}
	product.AssignIDs(products)
	return products
}

func titles(products []product.Product) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.Title
	}
	return out
}

func TestCategories(t *testing.T) {
	assert.Equal(t, []string{"apparel", "accessories"}, Categories(testCatalog()))
	assert.Empty(t, Categories(nil))
}

func TestHasCategory(t *testing.T) {
	products := testCatalog()

	assert.True(t, HasCategory(products, All))
	assert.True(t, HasCategory(products, "apparel"))
	assert.False(t, HasCategory(products, "objects"))
	assert.False(t, HasCategory(products, ""))
}

func TestFilter_AllEmptyQueryIsIdentity(t *testing.T) {
	products := testCatalog()

	assert.Equal(t, products, Filter(products, All, ""))
}

func TestFilter_Category(t *testing.T) {
	products := testCatalog()

	for _, c := range Categories(products) {
		got := Filter(products, c, "")
		require.NotEmpty(t, got)
		for _, p := range got {
			assert.Equal(t, c, p.Category)
		}
	}
	assert.Equal(t, []string{"Canvas Tote", "Cap — Black"}, titles(Filter(products, "accessories", "")))
}

func TestFilter_Query(t *testing.T) {
	products := testCatalog()

	tests := []struct {
		name     string
		category string
		query    string
		want     []string
	}{
		{name: "title match", category: All, query: "tote", want: []string{"Canvas Tote"}},
		{name: "case insensitive", category: All, query: "HOODIE", want: []string{"Standard Deviation Hoodie"}},
		{name: "description match", category: All, query: "fleece", want: []string{"Standard Deviation Hoodie"}},
		{name: "spans title and description", category: All, query: "tee premium", want: []string{"ANOMIE Logo Tee"}},
		{name: "missing description", category: All, query: "object", want: []string{"Mystery Object"}},
		{name: "category and query", category: "apparel", query: "e", want: []string{"ANOMIE Logo Tee", "Standard Deviation Hoodie"}},
		{name: "no match", category: All, query: "sock", want: []string{}},
		{name: "query not trimmed", category: All, query: " tote ", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, titles(Filter(products, tt.category, tt.query)))
		})
	}
}

func TestFilter_QueryProperty(t *testing.T) {
	products := testCatalog()

	for _, q := range []string{"a", "ST", "black", "cotton", "zzz"} {
		got := Filter(products, All, q)
		kept := map[string]bool{}
		for _, p := range got {
			kept[p.Key()] = true
			assert.Contains(t, strings.ToLower(p.Title+" "+p.Description), strings.ToLower(q))
		}
		for _, p := range products {
			if !kept[p.Key()] {
				assert.NotContains(t, strings.ToLower(p.Title+" "+p.Description), strings.ToLower(q))
			}
		}
	}
}

func TestFind(t *testing.T) {
	products := testCatalog()

	p, ok := Find(products, products[1].ID)
	require.True(t, ok)
	assert.Equal(t, "Canvas Tote", p.Title)

	_, ok = Find(products, "missing")
	assert.False(t, ok)
}

func TestView(t *testing.T) {
	products := testCatalog()

	assert.Equal(t, All, View{}.Normalize().Category)
	assert.Equal(t, products, DefaultView().Apply(products))
	assert.Equal(t, []string{"Canvas Tote"}, titles(View{Query: "canvas"}.Apply(products)))
}
