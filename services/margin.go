package services

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

var (
	ErrNegativePrice       = errors.New("price must not be negative")
	ErrInvalidMarginBand   = errors.New("margin band is invalid: need 0 <= min <= max")
	ErrInvalidMargin       = errors.New("margin must be a non-negative number")
	ErrAmbiguousPriceInput = errors.New("provide either a margin percentage or a custom price, not both")
)

// LinePricing holds the priced state of a single quote line.
type LinePricing struct {
	BasePrice    decimal.Decimal
	MarginPct    int
	MarginAmount decimal.Decimal
	TotalPrice   decimal.Decimal
}

// PriceInput is what a partner supplies for a line: a margin slider value
// or an absolute sale price. Leaving both nil selects the default margin.
type PriceInput struct {
	MarginPct   *int
	CustomPrice *decimal.Decimal
}

// OutOfRangeError reports a price (or the price implied by a margin) that
// falls outside the item's margin band. MinPrice and MaxPrice are the
// valid sale prices so callers can show them to the partner.
type OutOfRangeError struct {
	Price        decimal.Decimal
	MinPrice     decimal.Decimal
	MaxPrice     decimal.Decimal
	MinMarginPct int
	MaxMarginPct int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("price %s is outside the allowed range [%s, %s] (margin %d%%-%d%%)",
		e.Price.StringFixed(2), e.MinPrice.StringFixed(2), e.MaxPrice.StringFixed(2),
		e.MinMarginPct, e.MaxMarginPct)
}

// PriceFromMargin prices a line at the given integer margin percentage.
// marginAmount = round(base × pct / 100, 2); total = base + marginAmount.
func PriceFromMargin(basePrice decimal.Decimal, marginPct int) LinePricing {
	amount := basePrice.Mul(decimal.NewFromInt(int64(marginPct))).Div(hundred).Round(2)
	return LinePricing{
		BasePrice:    basePrice,
		MarginPct:    marginPct,
		MarginAmount: amount,
		TotalPrice:   basePrice.Add(amount),
	}
}

// MarginBounds returns the lowest and highest sale price allowed for an
// item, rounded to cents.
func MarginBounds(basePrice decimal.Decimal, minMarginPct, maxMarginPct int) (decimal.Decimal, decimal.Decimal) {
	lo := basePrice.Mul(hundred.Add(decimal.NewFromInt(int64(minMarginPct)))).Div(hundred).Round(2)
	hi := basePrice.Mul(hundred.Add(decimal.NewFromInt(int64(maxMarginPct)))).Div(hundred).Round(2)
	return lo, hi
}

// MarginFromPrice derives the margin from a partner-entered sale price.
// Prices outside the band are rejected with *OutOfRangeError, never clamped.
// The returned pricing is re-derived from the implied integer margin, so
// TotalPrice may differ from customPrice by the rounding of that margin.
func MarginFromPrice(basePrice, customPrice decimal.Decimal, minMarginPct, maxMarginPct int) (LinePricing, error) {
	if err := validateBand(basePrice, minMarginPct, maxMarginPct); err != nil {
		return LinePricing{}, err
	}

	lo, hi := MarginBounds(basePrice, minMarginPct, maxMarginPct)
	if customPrice.LessThan(lo) || customPrice.GreaterThan(hi) {
		return LinePricing{}, &OutOfRangeError{
			Price:        customPrice,
			MinPrice:     lo,
			MaxPrice:     hi,
			MinMarginPct: minMarginPct,
			MaxMarginPct: maxMarginPct,
		}
	}

	// A free item has no meaningful percentage; it sits on the floor.
	if basePrice.IsZero() {
		return PriceFromMargin(basePrice, minMarginPct), nil
	}

	implied := int(customPrice.Sub(basePrice).Mul(hundred).Div(basePrice).Round(0).IntPart())

	// On sub-peso prices the rounded bounds can imply one point past the band.
	if implied < minMarginPct {
		implied = minMarginPct
	}
	if implied > maxMarginPct {
		implied = maxMarginPct
	}
	return PriceFromMargin(basePrice, implied), nil
}

// ComputeLinePricing prices a line from either a margin or a custom price,
// validating the result against the item's margin band.
func ComputeLinePricing(basePrice decimal.Decimal, in PriceInput, minMarginPct, maxMarginPct int) (LinePricing, error) {
	if err := validateBand(basePrice, minMarginPct, maxMarginPct); err != nil {
		return LinePricing{}, err
	}

	switch {
	case in.MarginPct != nil && in.CustomPrice != nil:
		return LinePricing{}, ErrAmbiguousPriceInput
	case in.CustomPrice != nil:
		return MarginFromPrice(basePrice, *in.CustomPrice, minMarginPct, maxMarginPct)
	case in.MarginPct != nil:
		pct := *in.MarginPct
		pricing := PriceFromMargin(basePrice, pct)
		if pct < minMarginPct || pct > maxMarginPct {
			lo, hi := MarginBounds(basePrice, minMarginPct, maxMarginPct)
			return LinePricing{}, &OutOfRangeError{
				Price:        pricing.TotalPrice,
				MinPrice:     lo,
				MaxPrice:     hi,
				MinMarginPct: minMarginPct,
				MaxMarginPct: maxMarginPct,
			}
		}
		return pricing, nil
	default:
		return PriceFromMargin(basePrice, minMarginPct), nil
	}
}

// DefaultMarginPct is the margin applied when an item is first added to a
// quote: the floor of its band.
func DefaultMarginPct(item CatalogItem) int {
	return item.MinMarginPct
}

// NormalizeMarginPct converts a boundary margin value to the canonical
// integer percentage. Values strictly between 0 and 1 are read as ratios
// (0.15 → 15); everything else is rounded to the nearest whole percent.
func NormalizeMarginPct(v float64) (int, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, ErrInvalidMargin
	}
	if v > 0 && v < 1 {
		v *= 100
	}
	return int(math.Round(v)), nil
}

// ParseMarginPct parses "15", "15%", "15.4" or "0.15" into an integer percentage.
func ParseMarginPct(s string) (int, error) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	if s == "" {
		return 0, ErrInvalidMargin
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMargin, s)
	}
	return NormalizeMarginPct(v)
}

func validateBand(basePrice decimal.Decimal, minMarginPct, maxMarginPct int) error {
	if basePrice.IsNegative() {
		return ErrNegativePrice
	}
	if minMarginPct < 0 || maxMarginPct < minMarginPct {
		return ErrInvalidMarginBand
	}
	return nil
}
