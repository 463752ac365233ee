package services

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatMoney formats an amount as pesos with thousands grouping and
// exactly two decimals (e.g., $1,234,567.89).
func FormatMoney(amount decimal.Decimal) string {
	raw := amount.StringFixed(2)
	negative := strings.HasPrefix(raw, "-")
	raw = strings.TrimPrefix(raw, "-")

	parts := strings.SplitN(raw, ".", 2)
	result := "$" + applyThousandsGrouping(parts[0]) + "." + parts[1]
	if negative && !amount.Round(2).IsZero() {
		result = "-" + result
	}
	return result
}

// FormatPercent renders a whole or fractional rate without trailing zeros.
func FormatPercent(pct decimal.Decimal) string {
	return pct.String() + "%"
}

// applyThousandsGrouping inserts a comma every three digits from the right.
func applyThousandsGrouping(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}

	var b strings.Builder
	head := n % 3
	if head > 0 {
		b.WriteString(s[:head])
	}
	for i := head; i < n; i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
