package handlers

import (
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"eventquotes/config"
	"eventquotes/services"
)

// HandleQuoteCreate prices the submitted lines, allocates a quote number
// and stores the quote with its items in one transaction.
// Route: POST /quotes
func HandleQuoteCreate(app *pocketbase.PocketBase, cfg config.Config) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		actor, ok, err := requireActor(e, services.RolePartner)
		if !ok {
			return err
		}

		var in createQuoteInput
		if err := e.BindBody(&in); err != nil {
			return e.JSON(http.StatusBadRequest, errorBody("invalid_request", "invalid request body"))
		}
		eventDate, err := parseEventDate(in.EventDate)
		if err != nil {
			return e.JSON(http.StatusBadRequest, errorBody("invalid_request", "event_date must be YYYY-MM-DD"))
		}
		lines, err := lineRequests(in.Lines)
		if err != nil {
			return respondError(e, "quote_create", err)
		}

		req := services.NewQuoteRequest{
			PartnerID: actor.PartnerID,
			Partner:   partnerSnapshot(e.Auth),
			Client: services.ClientInfo{
				Name:    in.Client.Name,
				Email:   in.Client.Email,
				Company: in.Client.Company,
			},
			ProjectName: in.ProjectName,
			EventDate:   eventDate,
			Terms:       in.Terms,
			Lines:       lines,
		}

		q, err := services.BuildQuote(app, req, cfg.TaxRate())
		if err != nil {
			return respondError(e, "quote_create", err)
		}

		store := services.NewQuoteStore(app)
		if _, err := services.CreateQuoteWithCode(store, q, cfg.CodeOptions()); err != nil {
			return respondError(e, "quote_create", err)
		}

		return e.JSON(http.StatusCreated, toQuoteJSON(q, q.CreatedAt, cfg.ValidityDays))
	}
}
