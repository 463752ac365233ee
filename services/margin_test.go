package services

import (
	"errors"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"pgregory.net/rapid"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func intPtr(v int) *int { return &v }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func TestPriceFromMargin(t *testing.T) {
	tests := []struct {
		name       string
		base       string
		pct        int
		wantAmount string
		wantTotal  string
	}{
		{"default floor", "100.00", 15, "15.00", "115.00"},
		{"zero margin", "100.00", 0, "0.00", "100.00"},
		{"rounds to cents", "10.05", 5, "0.50", "10.55"},
		{"fractional cents", "33.33", 17, "5.67", "39.00"},
		{"free item", "0", 20, "0.00", "0.00"},
		{"large amount", "1234567.89", 25, "308641.97", "1543209.86"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PriceFromMargin(dec(tt.base), tt.pct)
			if !got.MarginAmount.Equal(dec(tt.wantAmount)) {
				t.Errorf("MarginAmount = %s, want %s", got.MarginAmount, tt.wantAmount)
			}
			if !got.TotalPrice.Equal(dec(tt.wantTotal)) {
				t.Errorf("TotalPrice = %s, want %s", got.TotalPrice, tt.wantTotal)
			}
			if got.MarginPct != tt.pct {
				t.Errorf("MarginPct = %d, want %d", got.MarginPct, tt.pct)
			}
		})
	}
}

func TestMarginBounds(t *testing.T) {
	lo, hi := MarginBounds(dec("100.00"), 15, 25)
	if !lo.Equal(dec("115.00")) || !hi.Equal(dec("125.00")) {
		t.Errorf("MarginBounds = [%s, %s], want [115.00, 125.00]", lo, hi)
	}
}

func TestMarginFromPrice(t *testing.T) {
	tests := []struct {
		name      string
		base      string
		custom    string
		min, max  int
		wantPct   int
		wantTotal string
		wantRange bool
	}{
		{"inside band", "100.00", "120.00", 15, 25, 20, "120.00", false},
		{"at floor", "100.00", "115.00", 15, 25, 15, "115.00", false},
		{"at ceiling", "100.00", "125.00", 15, 25, 25, "125.00", false},
		{"implied margin rounds", "100.00", "117.40", 15, 25, 17, "117.00", false},
		{"above band", "100.00", "130.00", 15, 25, 0, "", true},
		{"below band", "100.00", "110.00", 15, 25, 0, "", true},
		{"below base", "100.00", "90.00", 0, 25, 0, "", true},
		{"free item at zero", "0", "0", 10, 20, 10, "0", false},
		{"free item with price", "0", "1.00", 10, 20, 0, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MarginFromPrice(dec(tt.base), dec(tt.custom), tt.min, tt.max)
			if tt.wantRange {
				var oor *OutOfRangeError
				if !errors.As(err, &oor) {
					t.Fatalf("expected *OutOfRangeError, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.MarginPct != tt.wantPct {
				t.Errorf("MarginPct = %d, want %d", got.MarginPct, tt.wantPct)
			}
			if !got.TotalPrice.Equal(dec(tt.wantTotal)) {
				t.Errorf("TotalPrice = %s, want %s", got.TotalPrice, tt.wantTotal)
			}
		})
	}
}

func TestMarginFromPrice_OutOfRangeReportsBounds(t *testing.T) {
	_, err := MarginFromPrice(dec("100.00"), dec("130.00"), 15, 25)

	var oor *OutOfRangeError
	if !errors.As(err, &oor) {
		t.Fatalf("expected *OutOfRangeError, got %v", err)
	}
	if !oor.MinPrice.Equal(dec("115.00")) || !oor.MaxPrice.Equal(dec("125.00")) {
		t.Errorf("bounds = [%s, %s], want [115.00, 125.00]", oor.MinPrice, oor.MaxPrice)
	}
	if !oor.Price.Equal(dec("130.00")) {
		t.Errorf("Price = %s, want 130.00", oor.Price)
	}
	want := "price 130.00 is outside the allowed range [115.00, 125.00] (margin 15%-25%)"
	if oor.Error() != want {
		t.Errorf("Error() = %q, want %q", oor.Error(), want)
	}
}

func TestComputeLinePricing(t *testing.T) {
	base := dec("100.00")

	t.Run("no input uses floor", func(t *testing.T) {
		got, err := ComputeLinePricing(base, PriceInput{}, 15, 25)
		if err != nil {
			t.Fatal(err)
		}
		if got.MarginPct != 15 || !got.MarginAmount.Equal(dec("15.00")) || !got.TotalPrice.Equal(dec("115.00")) {
			t.Errorf("unexpected pricing %+v", got)
		}
	})

	t.Run("margin in band", func(t *testing.T) {
		got, err := ComputeLinePricing(base, PriceInput{MarginPct: intPtr(22)}, 15, 25)
		if err != nil {
			t.Fatal(err)
		}
		if !got.TotalPrice.Equal(dec("122.00")) {
			t.Errorf("TotalPrice = %s", got.TotalPrice)
		}
	})

	t.Run("margin out of band", func(t *testing.T) {
		_, err := ComputeLinePricing(base, PriceInput{MarginPct: intPtr(30)}, 15, 25)
		var oor *OutOfRangeError
		if !errors.As(err, &oor) {
			t.Fatalf("expected *OutOfRangeError, got %v", err)
		}
		if !oor.Price.Equal(dec("130.00")) {
			t.Errorf("Price = %s, want 130.00", oor.Price)
		}
	})

	t.Run("custom price", func(t *testing.T) {
		got, err := ComputeLinePricing(base, PriceInput{CustomPrice: decPtr("124.00")}, 15, 25)
		if err != nil {
			t.Fatal(err)
		}
		if got.MarginPct != 24 {
			t.Errorf("MarginPct = %d, want 24", got.MarginPct)
		}
	})

	t.Run("both inputs", func(t *testing.T) {
		_, err := ComputeLinePricing(base, PriceInput{MarginPct: intPtr(20), CustomPrice: decPtr("120")}, 15, 25)
		if !errors.Is(err, ErrAmbiguousPriceInput) {
			t.Errorf("expected ErrAmbiguousPriceInput, got %v", err)
		}
	})

	t.Run("negative base", func(t *testing.T) {
		_, err := ComputeLinePricing(dec("-1"), PriceInput{}, 15, 25)
		if !errors.Is(err, ErrNegativePrice) {
			t.Errorf("expected ErrNegativePrice, got %v", err)
		}
	})

	t.Run("inverted band", func(t *testing.T) {
		_, err := ComputeLinePricing(base, PriceInput{}, 25, 15)
		if !errors.Is(err, ErrInvalidMarginBand) {
			t.Errorf("expected ErrInvalidMarginBand, got %v", err)
		}
	})
}

func TestDefaultMarginPct(t *testing.T) {
	item := CatalogItem{BasePrice: dec("100.00"), MinMarginPct: 15, MaxMarginPct: 25}
	if got := DefaultMarginPct(item); got != 15 {
		t.Errorf("DefaultMarginPct = %d, want 15", got)
	}
	p := item.DefaultPricing()
	if !p.MarginAmount.Equal(dec("15.00")) || !p.TotalPrice.Equal(dec("115.00")) {
		t.Errorf("DefaultPricing = %+v", p)
	}
}

func TestNormalizeMarginPct(t *testing.T) {
	tests := []struct {
		in      float64
		want    int
		wantErr bool
	}{
		{0, 0, false},
		{15, 15, false},
		{0.15, 15, false},
		{15.4, 15, false},
		{15.5, 16, false},
		{1, 1, false},
		{-1, 0, true},
		{math.NaN(), 0, true},
		{math.Inf(1), 0, true},
	}
	for _, tt := range tests {
		got, err := NormalizeMarginPct(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("NormalizeMarginPct(%v) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("NormalizeMarginPct(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestParseMarginPct(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"15", 15, false},
		{" 15% ", 15, false},
		{"0.25", 25, false},
		{"12,6", 13, false},
		{"", 0, true},
		{"abc", 0, true},
		{"-5", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseMarginPct(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseMarginPct(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseMarginPct(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func drawBasePrice(t *rapid.T, minCents int64) decimal.Decimal {
	cents := rapid.Int64Range(minCents, 10_000_000_00).Draw(t, "baseCents")
	return decimal.New(cents, -2)
}

func TestProperty_PriceFromMarginIsMonotonic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		base := drawBasePrice(t, 0)
		p1 := rapid.IntRange(0, 500).Draw(t, "p1")
		p2 := rapid.IntRange(p1, 500).Draw(t, "p2")

		lo := PriceFromMargin(base, p1)
		hi := PriceFromMargin(base, p2)
		if hi.TotalPrice.LessThan(lo.TotalPrice) {
			t.Fatalf("total at %d%% (%s) < total at %d%% (%s)", p2, hi.TotalPrice, p1, lo.TotalPrice)
		}
		if !lo.TotalPrice.Equal(lo.BasePrice.Add(lo.MarginAmount)) {
			t.Fatalf("total %s != base %s + margin %s", lo.TotalPrice, lo.BasePrice, lo.MarginAmount)
		}
	})
}

func TestProperty_MarginRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		base := drawBasePrice(t, 100)
		minPct := rapid.IntRange(0, 100).Draw(t, "min")
		maxPct := rapid.IntRange(minPct, 200).Draw(t, "max")
		pct := rapid.IntRange(minPct, maxPct).Draw(t, "pct")

		priced := PriceFromMargin(base, pct)
		back, err := MarginFromPrice(base, priced.TotalPrice, minPct, maxPct)
		if err != nil {
			t.Fatalf("MarginFromPrice(%s, %s) error = %v", base, priced.TotalPrice, err)
		}
		if back.MarginPct != pct {
			t.Fatalf("round trip gave %d%%, want %d%% (base %s)", back.MarginPct, pct, base)
		}
	})
}

func TestProperty_CustomPriceNeverClamped(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		base := drawBasePrice(t, 100)
		minPct := rapid.IntRange(0, 50).Draw(t, "min")
		maxPct := rapid.IntRange(minPct, 100).Draw(t, "max")
		over := rapid.Int64Range(1, 100_000).Draw(t, "overCents")

		_, hi := MarginBounds(base, minPct, maxPct)
		_, err := MarginFromPrice(base, hi.Add(decimal.New(over, -2)), minPct, maxPct)

		var oor *OutOfRangeError
		if !errors.As(err, &oor) {
			t.Fatalf("price above %s accepted", hi)
		}
	})
}
