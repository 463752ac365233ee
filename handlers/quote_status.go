package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"eventquotes/config"
	"eventquotes/services"
)

// HandleQuoteStatus moves a quote through its lifecycle.
// Route: POST /quotes/{id}/status with {"status": "sent"}
func HandleQuoteStatus(app *pocketbase.PocketBase, cfg config.Config) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		actor, ok, err := requireActor(e)
		if !ok {
			return err
		}

		var in statusInput
		if err := e.BindBody(&in); err != nil {
			return e.JSON(http.StatusBadRequest, errorBody("invalid_request", "invalid request body"))
		}
		to, ok := services.ParseQuoteStatus(strings.TrimSpace(in.Status))
		if !ok {
			return e.JSON(http.StatusBadRequest, errorBody("invalid_request", "unknown status "+in.Status))
		}

		now := time.Now()
		q, err := services.TransitionQuote(services.NewQuoteStore(app), services.TransitionRequest{
			QuoteID:      e.Request.PathValue("id"),
			To:           to,
			Actor:        actor,
			Now:          now,
			ValidityDays: cfg.ValidityDays,
			BlockExpired: cfg.BlockExpiredTransitions,
		})
		if err != nil {
			return respondError(e, "quote_status", err)
		}
		return e.JSON(http.StatusOK, toQuoteJSON(q, now, cfg.ValidityDays))
	}
}
