package product

import "github.com/shopspring/decimal"

// Fallback returns the demo catalog served whenever the upstream catalog is
// unavailable or empty. Each call returns a fresh slice with IDs assigned.
func Fallback() []Product {
	products := []Product{
		{
			Title:       "ANOMIE Logo Tee",
			Description: "Premium cotton tee with minimal ANOMIE mark.",
			Price:       decimal.NewFromInt(38),
			Category:    "apparel",
			Image:       "https://images.unsplash.com/photo-1750816204148-5d02aff367cb?ixid=M3w3OTkxMTl8MHwxfHNlYXJjaHwxfHxBTk9NSUUlMjBMb2dvJTIwVGVlfGVufDB8MHx8fDE3NjI5NTU1NjZ8MA&ixlib=rb-4.1.0&w=1600&auto=format&fit=crop&q=80",
		},
		{
			Title:       "Standard Deviation Hoodie",
			Description: "Heavyweight fleece in washed black.",
			Price:       decimal.NewFromInt(78),
			Category:    "apparel",
			Image:       "https://images.unsplash.com/photo-1512436991641-6745cdb1723f?q=80&w=1600&auto=format&fit=crop",
		},
		{
			Title:       "Canvas Tote",
			Description: "Everyday carry with screenprinted lockup.",
			Price:       decimal.NewFromInt(24),
			Category:    "accessories",
			Image:       "https://images.unsplash.com/photo-1547949003-9792a18a2601?q=80&w=1600&auto=format&fit=crop",
		},
		{
			Title:       "Cap — Black",
			Description: "6-panel with tonal embroidery.",
			Price:       decimal.NewFromInt(32),
			Category:    "accessories",
			Image:       "https://images.unsplash.com/photo-1483985988355-763728e1935b?q=80&w=1600&auto=format&fit=crop",
		},
	}
	AssignIDs(products)
	return products
}
