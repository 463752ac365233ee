package services

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ErrEmptyQuote is returned when a quote with no line items is finalized
// or submitted. Live previews never see it.
var ErrEmptyQuote = errors.New("quote has no line items")

// QuoteTotals holds the quote-level roll-up of its line items.
type QuoteTotals struct {
	Subtotal    decimal.Decimal
	TotalMargin decimal.Decimal
	TaxRatePct  decimal.Decimal
	Tax         decimal.Decimal
	Total       decimal.Decimal
}

// AggregateTotals folds line items into quote totals.
// Sums are kept at full precision and rounded once at the end.
// taxRatePct is a flat percentage applied to the subtotal.
func AggregateTotals(items []LinePricing, taxRatePct decimal.Decimal) QuoteTotals {
	subtotal := decimal.Zero
	margin := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.BasePrice)
		margin = margin.Add(item.MarginAmount)
	}

	tax := subtotal.Mul(taxRatePct).Div(hundred).Round(2)
	subtotal = subtotal.Round(2)
	margin = margin.Round(2)

	// Total is built from the stored figures so they always add up.
	return QuoteTotals{
		Subtotal:    subtotal,
		TotalMargin: margin,
		TaxRatePct:  taxRatePct,
		Tax:         tax,
		Total:       subtotal.Add(margin).Add(tax),
	}
}

// FinalizeTotals is AggregateTotals for a quote about to be persisted or
// submitted; an empty item list is an error.
func FinalizeTotals(items []LinePricing, taxRatePct decimal.Decimal) (QuoteTotals, error) {
	if len(items) == 0 {
		return QuoteTotals{}, ErrEmptyQuote
	}
	return AggregateTotals(items, taxRatePct), nil
}
