// Package handler serves the storefront JSON API: the session's catalog view
// and its cart.
package handler

import (
	"net/http"

	"github.com/xenking/anomie-storefront/internal/session"
)

// SessionCookie names the cookie that carries the session ID.
const SessionCookie = "anomie_sid"

// HandlerConfig holds non-dependency configuration for the Handler.
type HandlerConfig struct {
	// SecureCookie marks the session cookie Secure. Enable it when the
	// storefront is served over HTTPS.
	SecureCookie bool
}

// Handler implements the storefront routes on top of the session store.
type Handler struct {
	sessions     *session.Store
	secureCookie bool
}

// NewHandler constructs a Handler backed by sessions.
func NewHandler(cfg HandlerConfig, sessions *session.Store) *Handler {
	return &Handler{
		sessions:     sessions,
		secureCookie: cfg.SecureCookie,
	}
}

// Register adds the API routes to mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/catalog", h.GetCatalog)
	mux.HandleFunc("PUT /api/catalog/view", h.SetCatalogView)
	mux.HandleFunc("GET /api/cart", h.GetCart)
	mux.HandleFunc("POST /api/cart/items", h.AddCartItem)
	mux.HandleFunc("PATCH /api/cart/items/{index}", h.ChangeCartItem)
	mux.HandleFunc("DELETE /api/cart/items/{index}", h.RemoveCartItem)
}

// session resolves the caller's session from its cookie, creating a new one
// (and setting the cookie) when the cookie is missing or stale. It writes the
// error response itself and returns false when no session is available.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	var id string
	if c, err := r.Cookie(SessionCookie); err == nil {
		id = c.Value
	}
	s, created, err := h.sessions.GetOrCreate(id)
	if err != nil {
		writeError(w, r, err)
		return nil, false
	}
	if created {
		http.SetCookie(w, &http.Cookie{
			Name:     SessionCookie,
			Value:    s.ID(),
			Path:     "/",
			HttpOnly: true,
			Secure:   h.secureCookie,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return s, true
}
