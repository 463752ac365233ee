package services

import (
	"time"

	"github.com/shopspring/decimal"
)

const exportDateLayout = "02/01/2006"

// Issuer identifies the company printed on exported quotes.
type Issuer struct {
	Name  string
	Email string
}

// QuoteExportLine is one priced line as rendered in PDF and Excel.
type QuoteExportLine struct {
	Index        int
	Name         string
	Category     string
	Unit         string
	BasePrice    decimal.Decimal
	MarginPct    int
	MarginAmount decimal.Decimal
	TotalPrice   decimal.Decimal
}

// QuoteExportData holds everything a renderer needs, already formatted
// where formatting is shared between outputs.
type QuoteExportData struct {
	Issuer Issuer

	QuoteNumber string
	IssuedDate  string
	ValidUntil  string
	EventDate   string
	Status      QuoteStatus
	Expired     bool

	Partner     PartnerSnapshot
	Client      ClientInfo
	ProjectName string

	Lines []QuoteExportLine

	Subtotal      decimal.Decimal
	TotalMargin   decimal.Decimal
	TaxRatePct    decimal.Decimal
	Tax           decimal.Decimal
	Total         decimal.Decimal
	AmountInWords string

	Terms string
}

// BuildQuoteExportData prepares a stored quote for rendering. Totals are
// taken from the quote as persisted, including its tax rate, so every
// output agrees with the stored figures.
func BuildQuoteExportData(q *Quote, issuer Issuer, now time.Time, validityDays int) *QuoteExportData {
	status := EffectiveStatus(q.Status, q.CreatedAt, now, validityDays)

	data := &QuoteExportData{
		Issuer:        issuer,
		QuoteNumber:   q.QuoteNumber,
		IssuedDate:    formatExportDate(q.CreatedAt),
		ValidUntil:    formatExportDate(ValidUntil(q.CreatedAt, validityDays)),
		EventDate:     formatExportDate(q.EventDate),
		Status:        status,
		Expired:       IsExpired(q.CreatedAt, now, validityDays),
		Partner:       q.Partner,
		Client:        q.Client,
		ProjectName:   q.ProjectName,
		Subtotal:      q.Totals.Subtotal,
		TotalMargin:   q.Totals.TotalMargin,
		TaxRatePct:    q.Totals.TaxRatePct,
		Tax:           q.Totals.Tax,
		Total:         q.Totals.Total,
		AmountInWords: AmountToWords(q.Totals.Total),
		Terms:         q.Terms,
	}

	data.Lines = make([]QuoteExportLine, 0, len(q.Items))
	for i, item := range q.Items {
		data.Lines = append(data.Lines, QuoteExportLine{
			Index:        i + 1,
			Name:         item.Name,
			Category:     item.Category,
			Unit:         item.Unit,
			BasePrice:    item.BasePrice,
			MarginPct:    item.MarginPct,
			MarginAmount: item.MarginAmount,
			TotalPrice:   item.TotalPrice,
		})
	}
	return data
}

func formatExportDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(exportDateLayout)
}
