package product

import (
	"context"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// idNamespace scopes load-time product identifiers.
var idNamespace = uuid.MustParse("5b0f8f3e-3c1a-4f4e-9a64-7e2d1c0b9a11")

// Product represents a catalog item available for purchase. Products are
// read-only once a catalog has been loaded.
type Product struct {
	ID          string
	Title       string
	Description string
	Price       decimal.Decimal
	Category    string
	Image       string
}

// Key returns the identity used to merge cart lines. Products without an
// assigned ID fall back to their title.
func (p Product) Key() string {
	if p.ID != "" {
		return p.ID
	}
	return p.Title
}

// AssignIDs gives every product a stable identifier derived from its title
// and the number of earlier products sharing that title. The same catalog
// always yields the same IDs, and duplicate titles get distinct ones.
func AssignIDs(products []Product) {
	seen := make(map[string]int, len(products))
	for i := range products {
		n := seen[products[i].Title]
		seen[products[i].Title] = n + 1
		products[i].ID = uuid.NewSHA1(idNamespace, []byte(products[i].Title+"#"+strconv.Itoa(n))).String()
	}
}

// Repository defines read operations for the upstream product catalog.
type Repository interface {
	List(ctx context.Context) ([]Product, error)
}
