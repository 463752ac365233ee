package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/pocketbase/pocketbase/core"

	"eventquotes/services"
)

// errInvalidInput marks malformed request data.
var errInvalidInput = errors.New("invalid input")

func errorBody(code, message string) map[string]any {
	return map[string]any{"error": code, "message": message}
}

// statusForError maps a service error to an HTTP status and a stable
// error code for clients.
func statusForError(err error) (int, string) {
	var oor *services.OutOfRangeError
	var inv *services.InvalidTransitionError

	switch {
	case errors.As(err, &oor):
		return http.StatusUnprocessableEntity, "price_out_of_range"
	case errors.As(err, &inv):
		return http.StatusConflict, "invalid_transition"
	case errors.Is(err, services.ErrStatusConflict):
		return http.StatusConflict, "status_conflict"
	case errors.Is(err, services.ErrEmptyQuote):
		return http.StatusUnprocessableEntity, "empty_quote"
	case errors.Is(err, services.ErrCodeCollision):
		return http.StatusServiceUnavailable, "quote_number_unavailable"
	case errors.Is(err, services.ErrForbiddenTransition),
		errors.Is(err, services.ErrNotQuoteOwner),
		errors.Is(err, services.ErrDeleteNotAdmin):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, services.ErrDeleteNotDraft):
		return http.StatusConflict, "not_draft"
	case errors.Is(err, services.ErrQuoteNotFound):
		return http.StatusNotFound, "quote_not_found"
	case errors.Is(err, services.ErrCatalogItemNotFound):
		return http.StatusNotFound, "catalog_item_not_found"
	case errors.Is(err, services.ErrCatalogItemInactive):
		return http.StatusUnprocessableEntity, "catalog_item_inactive"
	case errors.Is(err, services.ErrNegativePrice),
		errors.Is(err, services.ErrInvalidMarginBand):
		return http.StatusUnprocessableEntity, "invalid_catalog_item"
	case errors.Is(err, services.ErrAmbiguousPriceInput),
		errors.Is(err, services.ErrInvalidMargin),
		errors.Is(err, services.ErrMissingClient),
		errors.Is(err, services.ErrMissingPartner),
		errors.Is(err, errInvalidInput):
		return http.StatusBadRequest, "invalid_request"
	}
	return http.StatusInternalServerError, "internal_error"
}

// respondError logs err under component and writes the mapped JSON error.
// Internal errors get a generic message; everything else is safe to show.
func respondError(e *core.RequestEvent, component string, err error) error {
	status, code := statusForError(err)
	log.Printf("%s: %v", component, err)

	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "something went wrong, please try again"
	}
	body := errorBody(code, message)

	var oor *services.OutOfRangeError
	if errors.As(err, &oor) {
		body["min_price"] = oor.MinPrice.StringFixed(2)
		body["max_price"] = oor.MaxPrice.StringFixed(2)
		body["min_margin_pct"] = oor.MinMarginPct
		body["max_margin_pct"] = oor.MaxMarginPct
	}
	var lineErr *services.LineError
	if errors.As(err, &lineErr) {
		body["line"] = lineErr.Line
	}
	var inv *services.InvalidTransitionError
	if errors.As(err, &inv) {
		body["from"] = string(inv.From)
		body["to"] = string(inv.To)
	}

	return e.JSON(status, body)
}
