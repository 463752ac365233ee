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

// loadReadableQuote fetches a quote the actor may see. Another partner's
// quote reads as not found.
func loadReadableQuote(store *services.QuoteStore, id string, actor services.Actor) (*services.Quote, error) {
	q, err := store.FindByID(id)
	if err != nil {
		return nil, err
	}
	if !actor.CanRead(q) {
		return nil, services.ErrQuoteNotFound
	}
	return q, nil
}

// HandleQuoteList lists quote headers, newest first. Partners only see
// their own quotes.
// Route: GET /quotes?status=
func HandleQuoteList(app *pocketbase.PocketBase, cfg config.Config) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		actor, ok, err := requireActor(e)
		if !ok {
			return err
		}

		var filter services.QuoteFilter
		if actor.Role == services.RolePartner {
			filter.PartnerID = actor.PartnerID
		}

		// Expired is derived, so it is filtered after loading.
		var wantExpired bool
		if s := strings.TrimSpace(e.Request.URL.Query().Get("status")); s != "" {
			status, ok := services.ParseQuoteStatus(s)
			if !ok {
				return e.JSON(http.StatusBadRequest, errorBody("invalid_request", "unknown status "+s))
			}
			if status == services.StatusExpired {
				wantExpired = true
			} else {
				filter.Status = status
			}
		}

		quotes, err := services.NewQuoteStore(app).ListQuotes(filter)
		if err != nil {
			return respondError(e, "quote_list", err)
		}

		now := time.Now()
		out := make([]quoteJSON, 0, len(quotes))
		for _, q := range quotes {
			view := toQuoteJSON(q, now, cfg.ValidityDays)
			if filter.Status != "" && view.Expired {
				continue
			}
			if wantExpired && !view.Expired {
				continue
			}
			out = append(out, view)
		}
		return e.JSON(http.StatusOK, map[string]any{
			"quotes": out,
			"count":  len(out),
		})
	}
}

// HandleQuoteView returns a quote with its items and validity.
// Route: GET /quotes/{id}
func HandleQuoteView(app *pocketbase.PocketBase, cfg config.Config) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		actor, ok, err := requireActor(e)
		if !ok {
			return err
		}

		q, err := loadReadableQuote(services.NewQuoteStore(app), e.Request.PathValue("id"), actor)
		if err != nil {
			return respondError(e, "quote_view", err)
		}
		return e.JSON(http.StatusOK, toQuoteJSON(q, time.Now(), cfg.ValidityDays))
	}
}
