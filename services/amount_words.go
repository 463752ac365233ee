package services

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// AmountToWords spells a peso amount the way Mexican invoices print it.
// Example: 1234.56 → "Mil doscientos treinta y cuatro pesos 56/100 M.N."
func AmountToWords(amount decimal.Decimal) string {
	amount = amount.Round(2)
	if amount.IsNegative() {
		return "Menos " + lowerFirst(AmountToWords(amount.Neg()))
	}

	cents := amount.Sub(amount.Truncate(0)).Mul(hundred).IntPart()
	if amount.GreaterThanOrEqual(maxSpelledAmount) {
		// A trillón or more is printed in digits.
		return fmt.Sprintf("%s pesos %02d/100 M.N.", amount.Truncate(0).String(), cents)
	}

	pesos := amount.IntPart()
	words := spanishNumber(pesos, true)
	noun := "pesos"
	switch {
	case pesos == 1:
		noun = "peso"
	case pesos >= million && pesos%million == 0:
		noun = "de pesos"
	}

	return upperFirst(fmt.Sprintf("%s %s %02d/100 M.N.", words, noun, cents))
}

const (
	million = 1_000_000
	billion = million * million
)

var maxSpelledAmount = decimal.New(1, 18)

// spanishNumber spells n in Spanish using the long scale (billón is 10^12).
// With apocope set a trailing "uno" becomes "un"/"ún", as it does before a
// noun ("veintiún pesos"). n must be below one trillón.
func spanishNumber(n int64, apocope bool) string {
	if n == 0 {
		return "cero"
	}

	var parts []string
	for _, tier := range []struct {
		size           int64
		single, plural string
	}{
		{billion, "un billón", "billones"},
		{million, "un millón", "millones"},
	} {
		count := n / tier.size
		n %= tier.size
		switch {
		case count == 1:
			parts = append(parts, tier.single)
		case count > 1:
			parts = append(parts, spanishBelowMillion(count, true)+" "+tier.plural)
		}
	}
	if n > 0 {
		parts = append(parts, spanishBelowMillion(n, apocope))
	}
	return strings.Join(parts, " ")
}

func spanishBelowMillion(n int64, apocope bool) string {
	var parts []string
	thousands, rest := n/1000, n%1000
	switch {
	case thousands == 1:
		parts = append(parts, "mil")
	case thousands > 1:
		parts = append(parts, spanishBelowThousand(thousands, true)+" mil")
	}
	if rest > 0 {
		parts = append(parts, spanishBelowThousand(rest, apocope))
	}
	return strings.Join(parts, " ")
}

func spanishBelowThousand(n int64, apocope bool) string {
	if n == 100 {
		return "cien"
	}

	var parts []string
	if h := n / 100; h > 0 {
		parts = append(parts, spanishHundreds[h])
	}
	if rest := n % 100; rest > 0 {
		parts = append(parts, spanishBelowHundred(rest, apocope))
	}
	return strings.Join(parts, " ")
}

func spanishBelowHundred(n int64, apocope bool) string {
	if n < 30 {
		if apocope {
			switch n {
			case 1:
				return "un"
			case 21:
				return "veintiún"
			}
		}
		return spanishUnits[n]
	}

	word := spanishTens[n/10]
	if u := n % 10; u > 0 {
		unit := spanishUnits[u]
		if u == 1 && apocope {
			unit = "un"
		}
		word += " y " + unit
	}
	return word
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

var spanishUnits = []string{
	"cero", "uno", "dos", "tres", "cuatro", "cinco", "seis", "siete", "ocho", "nueve",
	"diez", "once", "doce", "trece", "catorce", "quince", "dieciséis", "diecisiete",
	"dieciocho", "diecinueve", "veinte", "veintiuno", "veintidós", "veintitrés",
	"veinticuatro", "veinticinco", "veintiséis", "veintisiete", "veintiocho", "veintinueve",
}

var spanishTens = []string{
	"", "", "", "treinta", "cuarenta", "cincuenta", "sesenta", "setenta", "ochenta", "noventa",
}

var spanishHundreds = []string{
	"", "ciento", "doscientos", "trescientos", "cuatrocientos", "quinientos",
	"seiscientos", "setecientos", "ochocientos", "novecientos",
}
