package quote

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/crossbay/backend-quote/internal/common"
	"github.com/crossbay/backend-quote/internal/display"
)

// Handler exposes the quote endpoints.
type Handler struct {
	Service   *Service
	Formatter *display.Formatter
	Validate  *validator.Validate
	Logger    zerolog.Logger
}

// Calculate handles POST /api/v1/quotes/calculate. It prices the payload
// without persisting anything.
func (h *Handler) Calculate(w http.ResponseWriter, r *http.Request) {
	form, ok := h.decode(w, r)
	if !ok {
		return
	}
	breakdown, err := h.Service.Calculate(r.Context(), form)
	if err != nil {
		h.writeError(w, err, "calculate quote")
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{
		"data":    breakdown,
		"display": h.displayTotal(r, breakdown, form.Parse().DestinationCountry),
	})
}

// Create handles POST /api/v1/quotes.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	form, ok := h.decode(w, r)
	if !ok {
		return
	}
	quote, err := h.Service.Create(r.Context(), form)
	if err != nil {
		h.writeError(w, err, "create quote")
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{
		"data":    quote,
		"display": h.displayTotal(r, quote.Breakdown, quote.DestinationCountry),
	})
}

// Get handles GET /api/v1/quotes/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "VALIDATION", "invalid quote id", nil)
		return
	}
	quote, err := h.Service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrQuoteNotFound) {
			common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "quote not found", map[string]any{"id": id})
			return
		}
		h.writeError(w, err, "fetch quote")
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{
		"data":    quote,
		"display": h.displayTotal(r, quote.Breakdown, quote.DestinationCountry),
	})
}

// Recalculate handles PUT /api/v1/quotes/{id}. The stored breakdown is
// replaced wholesale with a fresh calculation.
func (h *Handler) Recalculate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "VALIDATION", "invalid quote id", nil)
		return
	}
	form, ok := h.decode(w, r)
	if !ok {
		return
	}
	quote, err := h.Service.Recalculate(r.Context(), id, form)
	if err != nil {
		if errors.Is(err, ErrQuoteNotFound) {
			common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "quote not found", map[string]any{"id": id})
			return
		}
		h.writeError(w, err, "recalculate quote")
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{
		"data":    quote,
		"display": h.displayTotal(r, quote.Breakdown, quote.DestinationCountry),
	})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (FormInput, bool) {
	var form FormInput
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		common.JSONError(w, http.StatusBadRequest, "VALIDATION", "invalid JSON body", nil)
		return FormInput{}, false
	}
	if h.Validate != nil {
		if err := h.Validate.Struct(form); err != nil {
			common.JSONError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
			return FormInput{}, false
		}
	}
	return form, true
}

// displayTotal renders the final total for the requesting observer. The
// breakdown total is denominated in quoteCountry's currency; the observer's
// country and currency preferences come from the request. Display resolution
// is best effort and never blocks the quote response.
func (h *Handler) displayTotal(r *http.Request, b Breakdown, quoteCountry string) *display.DualPrice {
	if h.Formatter == nil {
		return nil
	}
	dual := h.Formatter.FormatDualPrice(r.Context(), &b.FinalTotal, display.Options{
		OriginCountry:      quoteCountry,
		DestinationCountry: r.URL.Query().Get("displayCountry"),
		CurrencyOverride:   r.URL.Query().Get("currency"),
		UserPreference:     r.Header.Get("X-Preferred-Currency"),
	})
	return &dual
}

func (h *Handler) writeError(w http.ResponseWriter, err error, op string) {
	var appErr *common.AppError
	if errors.As(err, &appErr) {
		common.JSONAppError(w, appErr)
		return
	}
	h.Logger.Error().Err(err).Str("op", op).Msg("quote request failed")
	common.JSONError(w, http.StatusInternalServerError, "INTERNAL", op+" failed", nil)
}
