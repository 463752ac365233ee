package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/types"
	"github.com/shopspring/decimal"
)

var (
	ErrQuoteNotFound  = errors.New("quote not found")
	ErrCodeCollision  = errors.New("quote number already exists")
	ErrStatusConflict = errors.New("quote status changed concurrently")
)

// PartnerSnapshot copies the partner's details onto a quote at creation.
// Later profile edits never reach existing quotes.
type PartnerSnapshot struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Company string `json:"company"`
}

// ClientInfo identifies who the quote is addressed to.
type ClientInfo struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Company string `json:"company"`
}

// QuoteLineItem is a catalog item priced inside one quote.
type QuoteLineItem struct {
	ID            string
	CatalogItemID string
	SortOrder     int
	Name          string
	Category      string
	Unit          string
	MinMarginPct  int
	MaxMarginPct  int
	LinePricing
}

// Quote is the aggregate root: header, partner snapshot, totals and items.
type Quote struct {
	ID          string
	QuoteNumber string
	PartnerID   string
	Partner     PartnerSnapshot
	Client      ClientInfo
	ProjectName string
	EventDate   time.Time
	Terms       string
	Status      QuoteStatus
	Totals      QuoteTotals
	Items       []QuoteLineItem
	CreatedAt   time.Time
}

// Pricings returns the priced part of each line, for AggregateTotals.
func (q *Quote) Pricings() []LinePricing {
	out := make([]LinePricing, len(q.Items))
	for i, item := range q.Items {
		out[i] = item.LinePricing
	}
	return out
}

// QuoteFilter narrows ListQuotes. Empty fields match everything.
type QuoteFilter struct {
	PartnerID string
	Status    QuoteStatus
}

// QuoteStore persists quotes in PocketBase.
type QuoteStore struct {
	app core.App
}

// NewQuoteStore returns a store backed by app.
func NewQuoteStore(app core.App) *QuoteStore {
	return &QuoteStore{app: app}
}

// CreateQuote saves the quote and all its items in one transaction and
// returns the new id. A duplicate quote number yields ErrCodeCollision and
// nothing is written.
func (s *QuoteStore) CreateQuote(q *Quote) (string, error) {
	if len(q.Items) == 0 {
		return "", ErrEmptyQuote
	}

	var saved *core.Record
	err := s.app.RunInTransaction(func(txApp core.App) error {
		quotesCol, err := txApp.FindCollectionByNameOrId("quotes")
		if err != nil {
			return fmt.Errorf("find quotes collection: %w", err)
		}
		itemsCol, err := txApp.FindCollectionByNameOrId("quote_items")
		if err != nil {
			return fmt.Errorf("find quote_items collection: %w", err)
		}

		record := core.NewRecord(quotesCol)
		setQuoteRecordFields(record, q)
		if err := txApp.Save(record); err != nil {
			if isQuoteNumberCollision(err) {
				return fmt.Errorf("%w: %s", ErrCodeCollision, q.QuoteNumber)
			}
			return fmt.Errorf("save quote: %w", err)
		}

		for i := range q.Items {
			item := &q.Items[i]
			itemRec := core.NewRecord(itemsCol)
			itemRec.Set("quote", record.Id)
			itemRec.Set("sort_order", item.SortOrder)
			itemRec.Set("catalog_item_id", item.CatalogItemID)
			itemRec.Set("name", item.Name)
			itemRec.Set("category", item.Category)
			itemRec.Set("unit", item.Unit)
			itemRec.Set("base_price", item.BasePrice.InexactFloat64())
			itemRec.Set("margin_pct", item.MarginPct)
			itemRec.Set("margin_amount", item.MarginAmount.InexactFloat64())
			itemRec.Set("total_price", item.TotalPrice.InexactFloat64())
			itemRec.Set("min_margin_pct", item.MinMarginPct)
			itemRec.Set("max_margin_pct", item.MaxMarginPct)
			if err := txApp.Save(itemRec); err != nil {
				return fmt.Errorf("save quote item %d: %w", item.SortOrder, err)
			}
			item.ID = itemRec.Id
		}

		saved = record
		return nil
	})
	if err != nil {
		return "", err
	}

	q.ID = saved.Id
	q.CreatedAt = saved.GetDateTime("created").Time()
	return saved.Id, nil
}

func setQuoteRecordFields(record *core.Record, q *Quote) {
	record.Set("quote_number", q.QuoteNumber)
	record.Set("partner", q.PartnerID)
	record.Set("partner_name", q.Partner.Name)
	record.Set("partner_email", q.Partner.Email)
	record.Set("partner_company", q.Partner.Company)
	record.Set("client_name", q.Client.Name)
	record.Set("client_email", q.Client.Email)
	record.Set("client_company", q.Client.Company)
	record.Set("project_name", q.ProjectName)
	if !q.EventDate.IsZero() {
		record.Set("event_date", q.EventDate)
	}
	record.Set("subtotal", q.Totals.Subtotal.InexactFloat64())
	record.Set("total_margin", q.Totals.TotalMargin.InexactFloat64())
	record.Set("tax_rate_pct", q.Totals.TaxRatePct.InexactFloat64())
	record.Set("tax", q.Totals.Tax.InexactFloat64())
	record.Set("total", q.Totals.Total.InexactFloat64())
	record.Set("status", string(q.Status))
	record.Set("terms", q.Terms)
}

// isQuoteNumberCollision recognizes a unique index violation on
// quote_number, whether PocketBase reports it as a field validation error
// or SQLite rejects the insert.
func isQuoteNumberCollision(err error) bool {
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		if _, ok := verrs["quote_number"]; ok {
			return true
		}
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") && strings.Contains(msg, "quote_number")
}

// FindByID loads a quote and its items.
func (s *QuoteStore) FindByID(id string) (*Quote, error) {
	rec, err := s.app.FindRecordById("quotes", id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrQuoteNotFound, id)
	}
	return s.load(rec)
}

// FindByCode loads a quote by its quote number.
func (s *QuoteStore) FindByCode(code string) (*Quote, error) {
	rec, err := s.app.FindFirstRecordByData("quotes", "quote_number", code)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrQuoteNotFound, code)
	}
	return s.load(rec)
}

func (s *QuoteStore) load(rec *core.Record) (*Quote, error) {
	q := quoteFromRecord(rec)

	itemRecs, err := s.app.FindRecordsByFilter(
		"quote_items",
		"quote = {:quoteId}",
		"sort_order",
		0,
		0,
		map[string]any{"quoteId": rec.Id},
	)
	if err != nil {
		return nil, fmt.Errorf("load items for quote %s: %w", rec.Id, err)
	}

	q.Items = make([]QuoteLineItem, 0, len(itemRecs))
	for _, r := range itemRecs {
		q.Items = append(q.Items, QuoteLineItem{
			ID:            r.Id,
			CatalogItemID: r.GetString("catalog_item_id"),
			SortOrder:     r.GetInt("sort_order"),
			Name:          r.GetString("name"),
			Category:      r.GetString("category"),
			Unit:          r.GetString("unit"),
			MinMarginPct:  r.GetInt("min_margin_pct"),
			MaxMarginPct:  r.GetInt("max_margin_pct"),
			LinePricing: LinePricing{
				BasePrice:    decimalFromRecord(r, "base_price"),
				MarginPct:    r.GetInt("margin_pct"),
				MarginAmount: decimalFromRecord(r, "margin_amount"),
				TotalPrice:   decimalFromRecord(r, "total_price"),
			},
		})
	}
	return q, nil
}

func quoteFromRecord(rec *core.Record) *Quote {
	return &Quote{
		ID:          rec.Id,
		QuoteNumber: rec.GetString("quote_number"),
		PartnerID:   rec.GetString("partner"),
		Partner: PartnerSnapshot{
			Name:    rec.GetString("partner_name"),
			Email:   rec.GetString("partner_email"),
			Company: rec.GetString("partner_company"),
		},
		Client: ClientInfo{
			Name:    rec.GetString("client_name"),
			Email:   rec.GetString("client_email"),
			Company: rec.GetString("client_company"),
		},
		ProjectName: rec.GetString("project_name"),
		EventDate:   rec.GetDateTime("event_date").Time(),
		Terms:       rec.GetString("terms"),
		Status:      QuoteStatus(rec.GetString("status")),
		Totals: QuoteTotals{
			Subtotal:    decimalFromRecord(rec, "subtotal"),
			TotalMargin: decimalFromRecord(rec, "total_margin"),
			TaxRatePct:  decimalFromRecord(rec, "tax_rate_pct"),
			Tax:         decimalFromRecord(rec, "tax"),
			Total:       decimalFromRecord(rec, "total"),
		},
		CreatedAt: rec.GetDateTime("created").Time(),
	}
}

// ListQuotes returns quote headers (without items), newest first.
func (s *QuoteStore) ListQuotes(f QuoteFilter) ([]*Quote, error) {
	var clauses []string
	params := map[string]any{}
	if f.PartnerID != "" {
		clauses = append(clauses, "partner = {:partnerId}")
		params["partnerId"] = f.PartnerID
	}
	if f.Status != "" {
		clauses = append(clauses, "status = {:status}")
		params["status"] = string(f.Status)
	}
	filter := "id != ''"
	if len(clauses) > 0 {
		filter = strings.Join(clauses, " && ")
	}

	records, err := s.app.FindRecordsByFilter("quotes", filter, "-created", 0, 0, params)
	if err != nil {
		return nil, fmt.Errorf("list quotes: %w", err)
	}

	out := make([]*Quote, 0, len(records))
	for _, r := range records {
		out = append(out, quoteFromRecord(r))
	}
	return out, nil
}

// UpdateStatus moves a quote from expected to next with a single
// conditional UPDATE. If the stored status is no longer expected the write
// is skipped and ErrStatusConflict is returned, so of two concurrent
// requests starting from the same status only one can win.
func (s *QuoteStore) UpdateStatus(id string, expected, next QuoteStatus) error {
	res, err := s.app.DB().Update(
		"quotes",
		dbx.Params{
			"status":  string(next),
			"updated": types.NowDateTime().String(),
		},
		dbx.HashExp{"id": id, "status": string(expected)},
	).Execute()
	if err != nil {
		return fmt.Errorf("update status of quote %s: %w", id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update status of quote %s: %w", id, err)
	}
	if n == 1 {
		return nil
	}

	rec, err := s.app.FindRecordById("quotes", id)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrQuoteNotFound, id)
	}
	return fmt.Errorf("%w: quote %s is %s, expected %s", ErrStatusConflict, id, rec.GetString("status"), expected)
}

// DeleteQuote removes a draft quote and its items. Non-draft quotes are
// protected regardless of who asks.
func (s *QuoteStore) DeleteQuote(id string) error {
	return s.app.RunInTransaction(func(txApp core.App) error {
		rec, err := txApp.FindRecordById("quotes", id)
		if err != nil {
			return fmt.Errorf("%w: %s", ErrQuoteNotFound, id)
		}
		if status := QuoteStatus(rec.GetString("status")); status != StatusDraft {
			return fmt.Errorf("%w: quote is %s", ErrDeleteNotDraft, status)
		}
		if err := txApp.Delete(rec); err != nil {
			return fmt.Errorf("delete quote %s: %w", id, err)
		}
		return nil
	})
}

// moneyFloat is the inverse of decimalFromRecord, for places that write
// money into records outside the store.
func moneyFloat(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
