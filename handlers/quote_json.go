package handlers

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"eventquotes/services"
)

const eventDateLayout = "2006-01-02"

// lineInput is one requested quote line. MarginPct accepts an integer
// percentage or a ratio below 1; CustomPrice accepts a number or a string.
type lineInput struct {
	CatalogItemID string           `json:"catalog_item_id"`
	MarginPct     *float64         `json:"margin_pct"`
	CustomPrice   *decimal.Decimal `json:"custom_price"`
}

func (in lineInput) toRequest() (services.QuoteLineRequest, error) {
	if strings.TrimSpace(in.CatalogItemID) == "" {
		return services.QuoteLineRequest{}, fmt.Errorf("%w: catalog_item_id is required", errInvalidInput)
	}
	var price services.PriceInput
	if in.MarginPct != nil {
		pct, err := services.NormalizeMarginPct(*in.MarginPct)
		if err != nil {
			return services.QuoteLineRequest{}, err
		}
		price.MarginPct = &pct
	}
	price.CustomPrice = in.CustomPrice
	return services.QuoteLineRequest{CatalogItemID: in.CatalogItemID, Price: price}, nil
}

func lineRequests(inputs []lineInput) ([]services.QuoteLineRequest, error) {
	out := make([]services.QuoteLineRequest, 0, len(inputs))
	for i, in := range inputs {
		req, err := in.toRequest()
		if err != nil {
			return nil, &services.LineError{Line: i + 1, Err: err}
		}
		out = append(out, req)
	}
	return out, nil
}

type clientInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Company string `json:"company"`
}

type createQuoteInput struct {
	Client      clientInput `json:"client"`
	ProjectName string      `json:"project_name"`
	EventDate   string      `json:"event_date"`
	Terms       string      `json:"terms"`
	Lines       []lineInput `json:"lines"`
}

type statusInput struct {
	Status string `json:"status"`
}

func parseEventDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(eventDateLayout, s)
}

type pricingJSON struct {
	BasePrice    string `json:"base_price"`
	MarginPct    int    `json:"margin_pct"`
	MarginAmount string `json:"margin_amount"`
	TotalPrice   string `json:"total_price"`
}

func toPricingJSON(p services.LinePricing) pricingJSON {
	return pricingJSON{
		BasePrice:    p.BasePrice.StringFixed(2),
		MarginPct:    p.MarginPct,
		MarginAmount: p.MarginAmount.StringFixed(2),
		TotalPrice:   p.TotalPrice.StringFixed(2),
	}
}

type lineJSON struct {
	ID            string `json:"id,omitempty"`
	CatalogItemID string `json:"catalog_item_id"`
	SortOrder     int    `json:"sort_order"`
	Name          string `json:"name"`
	Category      string `json:"category"`
	Unit          string `json:"unit"`
	MinMarginPct  int    `json:"min_margin_pct"`
	MaxMarginPct  int    `json:"max_margin_pct"`
	MinPrice      string `json:"min_price"`
	MaxPrice      string `json:"max_price"`
	pricingJSON
}

func toLineJSON(item services.QuoteLineItem) lineJSON {
	lo, hi := services.MarginBounds(item.BasePrice, item.MinMarginPct, item.MaxMarginPct)
	return lineJSON{
		ID:            item.ID,
		CatalogItemID: item.CatalogItemID,
		SortOrder:     item.SortOrder,
		Name:          item.Name,
		Category:      item.Category,
		Unit:          item.Unit,
		MinMarginPct:  item.MinMarginPct,
		MaxMarginPct:  item.MaxMarginPct,
		MinPrice:      lo.StringFixed(2),
		MaxPrice:      hi.StringFixed(2),
		pricingJSON:   toPricingJSON(item.LinePricing),
	}
}

type totalsJSON struct {
	Subtotal    string `json:"subtotal"`
	TotalMargin string `json:"total_margin"`
	TaxRatePct  string `json:"tax_rate_pct"`
	Tax         string `json:"tax"`
	Total       string `json:"total"`
}

func toTotalsJSON(t services.QuoteTotals) totalsJSON {
	return totalsJSON{
		Subtotal:    t.Subtotal.StringFixed(2),
		TotalMargin: t.TotalMargin.StringFixed(2),
		TaxRatePct:  t.TaxRatePct.String(),
		Tax:         t.Tax.StringFixed(2),
		Total:       t.Total.StringFixed(2),
	}
}

type quoteJSON struct {
	ID          string                   `json:"id"`
	QuoteNumber string                   `json:"quote_number"`
	PartnerID   string                   `json:"partner_id"`
	Partner     services.PartnerSnapshot `json:"partner"`
	Client      services.ClientInfo      `json:"client"`
	ProjectName string                   `json:"project_name,omitempty"`
	EventDate   string                   `json:"event_date,omitempty"`
	Terms       string                   `json:"terms,omitempty"`
	Status      services.QuoteStatus     `json:"status"`
	Expired     bool                     `json:"expired"`
	CreatedAt   time.Time                `json:"created_at"`
	ValidUntil  time.Time                `json:"valid_until"`
	Totals      totalsJSON               `json:"totals"`
	Items       []lineJSON               `json:"items,omitempty"`
}

// toQuoteJSON renders a quote with its effective status at now. The stored
// status is never rewritten here.
func toQuoteJSON(q *services.Quote, now time.Time, validityDays int) quoteJSON {
	status := services.EffectiveStatus(q.Status, q.CreatedAt, now, validityDays)
	out := quoteJSON{
		ID:          q.ID,
		QuoteNumber: q.QuoteNumber,
		PartnerID:   q.PartnerID,
		Partner:     q.Partner,
		Client:      q.Client,
		ProjectName: q.ProjectName,
		Terms:       q.Terms,
		Status:      status,
		Expired:     services.IsExpired(q.CreatedAt, now, validityDays),
		CreatedAt:   q.CreatedAt,
		ValidUntil:  services.ValidUntil(q.CreatedAt, validityDays),
		Totals:      toTotalsJSON(q.Totals),
	}
	if !q.EventDate.IsZero() {
		out.EventDate = q.EventDate.Format(eventDateLayout)
	}
	for _, item := range q.Items {
		out.Items = append(out.Items, toLineJSON(item))
	}
	return out
}

type catalogItemJSON struct {
	ID             string      `json:"id"`
	Name           string      `json:"name"`
	Description    string      `json:"description,omitempty"`
	Category       string      `json:"category"`
	Quality        string      `json:"quality,omitempty"`
	Ambientacion   string      `json:"ambientacion,omitempty"`
	Unit           string      `json:"unit"`
	Status         string      `json:"status"`
	MinMarginPct   int         `json:"min_margin_pct"`
	MaxMarginPct   int         `json:"max_margin_pct"`
	MinPrice       string      `json:"min_price"`
	MaxPrice       string      `json:"max_price"`
	DefaultPricing pricingJSON `json:"default_pricing"`
}

func toCatalogItemJSON(item services.CatalogItem) catalogItemJSON {
	lo, hi := services.MarginBounds(item.BasePrice, item.MinMarginPct, item.MaxMarginPct)
	return catalogItemJSON{
		ID:             item.ID,
		Name:           item.Name,
		Description:    item.Description,
		Category:       item.Category,
		Quality:        item.Quality,
		Ambientacion:   item.Ambientacion,
		Unit:           item.Unit,
		Status:         string(item.Status),
		MinMarginPct:   item.MinMarginPct,
		MaxMarginPct:   item.MaxMarginPct,
		MinPrice:       lo.StringFixed(2),
		MaxPrice:       hi.StringFixed(2),
		DefaultPricing: toPricingJSON(item.DefaultPricing()),
	}
}
