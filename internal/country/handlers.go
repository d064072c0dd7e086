package country

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/crossbay/backend-quote/internal/common"
)

// Handler exposes read-only country configuration endpoints.
type Handler struct {
	Registry *Registry
}

// List handles GET /api/v1/countries.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Registry == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "country registry not configured", nil)
		return
	}
	rows, err := h.Registry.List(r.Context())
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "list countries", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": rows})
}

// Get handles GET /api/v1/countries/{code}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Registry == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "country registry not configured", nil)
		return
	}
	code := chi.URLParam(r, "code")
	cfg, err := h.Registry.Get(r.Context(), code)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "unknown country code", map[string]any{"code": code})
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "fetch country", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": cfg})
}
