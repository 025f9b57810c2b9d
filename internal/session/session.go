// Package session holds the per-shopper state: the loaded catalog, the
// active filters, and the cart. Nothing here outlives the process.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/go-faster/errors"

	loader "github.com/xenking/anomie-storefront/internal/catalog"
	"github.com/xenking/anomie-storefront/internal/domain/cart"
	"github.com/xenking/anomie-storefront/internal/domain/catalog"
	"github.com/xenking/anomie-storefront/internal/domain/product"
)

// ErrUnknownCategory is returned when a view selects a category that is
// neither catalog.All nor present in the loaded catalog.
var ErrUnknownCategory = errors.New("unknown category")

// Session is one shopper's catalog, view state and cart.
//
// The catalog is loaded asynchronously exactly once, by Start. Until the load
// completes the session reports Loading and browses an empty catalog; the
// cart and view stay usable in the meantime.
type Session struct {
	id string

	mu       sync.Mutex
	started  bool
	loading  bool
	source   loader.Source
	products []product.Product
	view     catalog.View
	cart     cart.Cart
	lastSeen time.Time
	done     chan struct{}
}

// New creates a session that has not started loading its catalog.
func New(id string, now time.Time) *Session {
	return &Session{
		id:       id,
		view:     catalog.DefaultView(),
		lastSeen: now,
		done:     make(chan struct{}),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Start launches the single catalog load for this session. The load is
// bound to ctx, not to any request. Calling Start more than once is a no-op.
func (s *Session) Start(ctx context.Context, f loader.Fetcher) {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.loading = true
	s.mu.Unlock()

	go func() {
		defer close(s.done)
		res := f.Load(ctx)

		s.mu.Lock()
		defer s.mu.Unlock()
		s.products = res.Products
		s.source = res.Source
		s.loading = false
	}()
}

// Loaded is closed once the catalog load started by Start has finished.
func (s *Session) Loaded() <-chan struct{} {
	return s.done
}

// Touch records activity at now.
func (s *Session) Touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

// idleSince reports whether the session has seen no activity since cutoff.
func (s *Session) idleSince(cutoff time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen.Before(cutoff)
}

// Snapshot is a consistent read of the session's browsable state.
type Snapshot struct {
	Loading    bool
	Source     loader.Source
	Categories []string
	View       catalog.View
	Products   []product.Product
	Cart       cart.Cart
}

// Snapshot returns the current state. Products is the filtered view.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Snapshot{
		Loading:    s.loading,
		Source:     s.source,
		Categories: catalog.Categories(s.products),
		View:       s.view,
		Products:   s.view.Apply(s.products),
		Cart:       s.cart,
	}
}

// View returns the active category and query.
func (s *Session) View() catalog.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// SetView replaces the active category and query. An empty category selects
// catalog.All. While the catalog is still loading any category is accepted,
// since the facet list is not known yet.
func (s *Session) SetView(v catalog.View) error {
	v = v.Normalize()

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loading && !catalog.HasCategory(s.products, v.Category) {
		return errors.Wrapf(ErrUnknownCategory, "%q", v.Category)
	}
	s.view = v
	return nil
}

// Cart returns the current cart.
func (s *Session) Cart() cart.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart
}

// AddProduct adds the catalog product with the given id to the cart.
func (s *Session) AddProduct(id string) (cart.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := catalog.Find(s.products, id)
	if !ok {
		return s.cart, product.ErrNotFound
	}
	s.cart = s.cart.Add(p)
	return s.cart, nil
}

// ChangeQuantity moves the quantity of the line at index by delta, never
// below 1. Out-of-range indexes leave the cart unchanged.
func (s *Session) ChangeQuantity(index, delta int) cart.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart = s.cart.ChangeQuantity(index, delta)
	return s.cart
}

// RemoveLine deletes the line at index. Out-of-range indexes leave the cart
// unchanged.
func (s *Session) RemoveLine(index int) cart.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart = s.cart.Remove(index)
	return s.cart
}
