package handler

import (
	"net/http"

	"github.com/go-faster/jx"
)

// GetCatalog returns the session's filtered catalog along with its facets
// and loading state.
func (h *Handler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	snap := s.Snapshot()
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		encodeCatalog(e, snap)
	})
}

// SetCatalogView updates the active category and/or query. Fields missing
// from the body keep their current value.
func (h *Handler) SetCatalogView(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	data, err := readBody(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	v, err := decodeView(data, s.View())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.SetView(v); err != nil {
		writeError(w, r, err)
		return
	}

	snap := s.Snapshot()
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		encodeCatalog(e, snap)
	})
}
