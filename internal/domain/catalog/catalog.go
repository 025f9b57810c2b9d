// Package catalog derives the browsable view of a loaded product list:
// category facets and the category/text filtered subsequence.
package catalog

import (
	"strings"

	"github.com/xenking/anomie-storefront/internal/domain/product"
)

// All is the category sentinel that disables category filtering.
const All = "all"

// Categories returns the distinct non-empty categories of products in order
// of first appearance.
func Categories(products []product.Product) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, p := range products {
		if p.Category == "" {
			continue
		}
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	return out
}

// HasCategory reports whether category is All or one of the categories
// present in products.
func HasCategory(products []product.Product, category string) bool {
	if category == All {
		return true
	}
	for _, p := range products {
		if p.Category != "" && p.Category == category {
			return true
		}
	}
	return false
}

// Filter returns the products matching both the active category and the
// case-insensitive query, preserving their original order. The query is
// matched against the title and description joined by a single space.
func Filter(products []product.Product, activeCategory, query string) []product.Product {
	needle := strings.ToLower(query)
	out := make([]product.Product, 0, len(products))
	for _, p := range products {
		if activeCategory != All && p.Category != activeCategory {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(p.Title+" "+p.Description), needle) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Find returns the product whose Key matches key.
func Find(products []product.Product, key string) (product.Product, bool) {
	for _, p := range products {
		if p.Key() == key {
			return p, true
		}
	}
	return product.Product{}, false
}

// View is the per-session filter state.
type View struct {
	Category string
	Query    string
}

// DefaultView shows every product.
func DefaultView() View {
	return View{Category: All}
}

// Normalize maps an empty category to All.
func (v View) Normalize() View {
	if v.Category == "" {
		v.Category = All
	}
	return v
}

// Apply filters products through the view.
func (v View) Apply(products []product.Product) []product.Product {
	v = v.Normalize()
	return Filter(products, v.Category, v.Query)
}
