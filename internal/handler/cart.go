package handler

import (
	"net/http"

	"github.com/go-faster/jx"

	"github.com/xenking/anomie-storefront/internal/domain/cart"
)

// GetCart returns the session's cart with its totals.
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	writeCart(w, s.Cart(), false)
}

// AddCartItem adds one unit of a catalog product to the cart. The response
// asks the client to open its cart view.
func (h *Handler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	data, err := readBody(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := decodeAddItem(data)
	if err != nil {
		writeError(w, r, err)
		return
	}
	c, err := s.AddProduct(id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeCart(w, c, true)
}

// ChangeCartItem moves a line's quantity by delta, flooring it at one.
func (h *Handler) ChangeCartItem(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	index, err := pathIndex(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	data, err := readBody(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	delta, err := decodeChangeItem(data)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeCart(w, s.ChangeQuantity(index, delta), false)
}

// RemoveCartItem deletes a line from the cart.
func (h *Handler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	index, err := pathIndex(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeCart(w, s.RemoveLine(index), false)
}

func writeCart(w http.ResponseWriter, c cart.Cart, opened bool) {
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		encodeCart(e, c, opened)
	})
}
