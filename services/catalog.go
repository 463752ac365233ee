package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pocketbase/pocketbase/core"
	"github.com/shopspring/decimal"
)

// CatalogStatus marks whether an item may be added to new quotes.
type CatalogStatus string

const (
	CatalogActive   CatalogStatus = "active"
	CatalogInactive CatalogStatus = "inactive"
)

var (
	ErrCatalogItemNotFound = errors.New("catalog item not found")
	ErrCatalogItemInactive = errors.New("catalog item is inactive")
)

// CatalogItem is a priced service or product partners can quote.
// The pricing engine only reads it.
type CatalogItem struct {
	ID           string
	Name         string
	Description  string
	Category     string
	Quality      string
	Ambientacion string
	Unit         string
	BasePrice    decimal.Decimal
	MinMarginPct int
	MaxMarginPct int
	Status       CatalogStatus
}

// Validate checks the item's pricing fields.
func (c CatalogItem) Validate() error {
	if c.BasePrice.IsNegative() {
		return ErrNegativePrice
	}
	if c.MinMarginPct < 0 || c.MaxMarginPct < c.MinMarginPct {
		return ErrInvalidMarginBand
	}
	return nil
}

// DefaultPricing prices the item at its default (floor) margin.
func (c CatalogItem) DefaultPricing() LinePricing {
	return PriceFromMargin(c.BasePrice, DefaultMarginPct(c))
}

// CatalogFilter narrows ListCatalogItems. Empty fields match everything.
type CatalogFilter struct {
	Category        string
	Quality         string
	Ambientacion    string
	Search          string
	IncludeInactive bool
}

func catalogItemFromRecord(r *core.Record) CatalogItem {
	return CatalogItem{
		ID:           r.Id,
		Name:         r.GetString("name"),
		Description:  r.GetString("description"),
		Category:     r.GetString("category"),
		Quality:      r.GetString("quality"),
		Ambientacion: r.GetString("ambientacion"),
		Unit:         r.GetString("unit"),
		BasePrice:    decimalFromRecord(r, "base_price"),
		MinMarginPct: r.GetInt("min_margin_pct"),
		MaxMarginPct: r.GetInt("max_margin_pct"),
		Status:       CatalogStatus(r.GetString("status")),
	}
}

// LoadCatalogItem fetches one catalog item by id.
func LoadCatalogItem(app core.App, id string) (CatalogItem, error) {
	rec, err := app.FindRecordById("catalog_items", id)
	if err != nil {
		return CatalogItem{}, fmt.Errorf("%w: %s", ErrCatalogItemNotFound, id)
	}
	return catalogItemFromRecord(rec), nil
}

// buildCatalogFilter builds a PocketBase filter expression and its params.
func buildCatalogFilter(f CatalogFilter) (string, map[string]any) {
	var clauses []string
	params := map[string]any{}

	if !f.IncludeInactive {
		clauses = append(clauses, "status = 'active'")
	}
	if f.Category != "" {
		clauses = append(clauses, "category = {:category}")
		params["category"] = f.Category
	}
	if f.Quality != "" {
		clauses = append(clauses, "quality = {:quality}")
		params["quality"] = f.Quality
	}
	if f.Ambientacion != "" {
		clauses = append(clauses, "ambientacion = {:ambientacion}")
		params["ambientacion"] = f.Ambientacion
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		clauses = append(clauses, "(name ~ {:search} || description ~ {:search})")
		params["search"] = s
	}

	if len(clauses) == 0 {
		return "id != ''", params
	}
	return strings.Join(clauses, " && "), params
}

// ListCatalogItems returns catalog items matching f, sorted by category then name.
func ListCatalogItems(app core.App, f CatalogFilter) ([]CatalogItem, error) {
	filter, params := buildCatalogFilter(f)
	records, err := app.FindRecordsByFilter("catalog_items", filter, "category,name", 0, 0, params)
	if err != nil {
		return nil, fmt.Errorf("list catalog items: %w", err)
	}

	items := make([]CatalogItem, 0, len(records))
	for _, r := range records {
		items = append(items, catalogItemFromRecord(r))
	}
	return items, nil
}

// decimalFromRecord reads a money field stored as a float, rounded to cents.
func decimalFromRecord(r *core.Record, field string) decimal.Decimal {
	return decimal.NewFromFloat(r.GetFloat(field)).Round(2)
}
