package handlers

import (
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"eventquotes/config"
	"eventquotes/services"
)

// priceLines converts and prices the requested lines.
func priceLines(app core.App, inputs []lineInput) ([]services.QuoteLineItem, error) {
	reqs, err := lineRequests(inputs)
	if err != nil {
		return nil, err
	}
	return services.PriceLines(app, reqs)
}

// HandlePriceLine prices a single line as the partner moves the margin
// slider or types a price.
// Route: POST /quotes/price-line
func HandlePriceLine(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if _, ok, err := requireActor(e, services.RolePartner); !ok {
			return err
		}

		var in lineInput
		if err := e.BindBody(&in); err != nil {
			return e.JSON(http.StatusBadRequest, errorBody("invalid_request", "invalid request body"))
		}

		items, err := priceLines(app, []lineInput{in})
		if err != nil {
			return respondError(e, "price_line", err)
		}
		return e.JSON(http.StatusOK, toLineJSON(items[0]))
	}
}

// HandleQuotePreview returns live totals for the lines being edited. An
// empty list previews as all zeros.
// Route: POST /quotes/preview
func HandleQuotePreview(app *pocketbase.PocketBase, cfg config.Config) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if _, ok, err := requireActor(e, services.RolePartner); !ok {
			return err
		}

		var in struct {
			Lines []lineInput `json:"lines"`
		}
		if err := e.BindBody(&in); err != nil {
			return e.JSON(http.StatusBadRequest, errorBody("invalid_request", "invalid request body"))
		}

		items, err := priceLines(app, in.Lines)
		if err != nil {
			return respondError(e, "quote_preview", err)
		}

		q := &services.Quote{Items: items}
		lines := make([]lineJSON, 0, len(items))
		for _, item := range items {
			lines = append(lines, toLineJSON(item))
		}
		return e.JSON(http.StatusOK, map[string]any{
			"items":  lines,
			"totals": toTotalsJSON(services.AggregateTotals(q.Pricings(), cfg.TaxRate())),
		})
	}
}
