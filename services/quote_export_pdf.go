package services

import (
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

var (
	pdfMuted   = &props.Color{Red: 100, Green: 100, Blue: 100}
	pdfDark    = &props.Color{Red: 33, Green: 37, Blue: 41}
	pdfWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
	pdfAltRow  = &props.Color{Red: 248, Green: 249, Blue: 250}
	pdfSummary = &props.Color{Red: 245, Green: 245, Blue: 245}
	pdfWarning = &props.Color{Red: 176, Green: 42, Blue: 55}
)

// GenerateQuotePDF renders a client-facing quote with maroto/v2.
func GenerateQuotePDF(data *QuoteExportData) ([]byte, error) {
	cfg := config.NewBuilder().
		WithOrientation(orientation.Vertical).
		WithPageSize(pagesize.A4).
		WithLeftMargin(12).
		WithTopMargin(12).
		WithRightMargin(12).
		WithPageNumber(props.PageNumber{
			Pattern: "Página {current} de {total}",
			Place:   props.RightBottom,
			Size:    7,
			Color:   &props.Color{Red: 120, Green: 120, Blue: 120},
		}).
		Build()

	m := maroto.New(cfg)

	addQuoteHeader(m, data)
	addQuoteExpiredBanner(m, data)
	addQuoteParties(m, data)
	addQuoteLinesTable(m, data)
	addQuoteTotals(m, data)
	addQuoteTerms(m, data)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate quote PDF: %w", err)
	}

	return doc.GetBytes(), nil
}

func addQuoteHeader(m core.Maroto, data *QuoteExportData) {
	m.AddRows(
		row.New(10).Add(
			col.New(7).Add(
				text.New(data.Issuer.Name, props.Text{Size: 14, Style: fontstyle.Bold, Align: align.Left}),
			),
			col.New(5).Add(
				text.New("COTIZACIÓN", props.Text{Size: 14, Style: fontstyle.Bold, Align: align.Right, Color: pdfDark}),
			),
		),
	)

	m.AddRows(
		row.New(7).Add(
			col.New(7).Add(
				text.New(data.Issuer.Email, props.Text{Size: 8, Align: align.Left, Color: pdfMuted}),
			),
			col.New(5).Add(
				text.New(data.QuoteNumber, props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}),
			),
		),
	)

	label := props.Text{Size: 7, Style: fontstyle.Bold, Align: align.Right, Color: pdfMuted}
	value := props.Text{Size: 8, Align: align.Right}
	m.AddRows(
		row.New(6).Add(
			col.New(6),
			col.New(3).Add(text.New("Fecha:", label)),
			col.New(3).Add(text.New(data.IssuedDate, value)),
		),
		row.New(6).Add(
			col.New(6),
			col.New(3).Add(text.New("Vigencia:", label)),
			col.New(3).Add(text.New(data.ValidUntil, value)),
		),
	)

	m.AddRows(row.New(3))
}

func addQuoteExpiredBanner(m core.Maroto, data *QuoteExportData) {
	if !data.Expired {
		return
	}
	m.AddRows(
		row.New(8).Add(
			col.New(12).Add(
				text.New(fmt.Sprintf("COTIZACIÓN VENCIDA el %s", data.ValidUntil), props.Text{
					Size:  9,
					Style: fontstyle.Bold,
					Align: align.Center,
					Color: pdfWhite,
					Top:   1.5,
				}),
			).WithStyle(&props.Cell{BackgroundColor: pdfWarning}),
		),
	)
	m.AddRows(row.New(3))
}

// addQuoteParties prints the client on the left and the partner on the right.
func addQuoteParties(m core.Maroto, data *QuoteExportData) {
	sectionLabel := props.Text{Size: 7, Style: fontstyle.Bold, Align: align.Left, Color: pdfMuted}
	bold := props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Left}
	plain := props.Text{Size: 8, Align: align.Left}
	headerCell := &props.Cell{BackgroundColor: &props.Color{Red: 245, Green: 243, Blue: 239}}

	m.AddRows(
		row.New(7).Add(
			col.New(6).Add(text.New("CLIENTE", sectionLabel)).WithStyle(headerCell),
			col.New(6).Add(text.New("ASESOR", sectionLabel)).WithStyle(headerCell),
		),
		row.New(7).Add(
			col.New(6).Add(text.New(data.Client.Name, bold)),
			col.New(6).Add(text.New(data.Partner.Name, bold)),
		),
	)

	if data.Client.Company != "" || data.Partner.Company != "" {
		m.AddRows(row.New(6).Add(
			col.New(6).Add(text.New(data.Client.Company, plain)),
			col.New(6).Add(text.New(data.Partner.Company, plain)),
		))
	}
	if data.Client.Email != "" || data.Partner.Email != "" {
		m.AddRows(row.New(6).Add(
			col.New(6).Add(text.New(data.Client.Email, plain)),
			col.New(6).Add(text.New(data.Partner.Email, plain)),
		))
	}

	details := joinNonEmpty([]string{
		fmtField("Proyecto", data.ProjectName),
		fmtField("Fecha del evento", data.EventDate),
	}, " | ")
	if details != "" {
		m.AddRows(row.New(7).Add(col.New(12).Add(text.New(details, plain))))
	}

	m.AddRows(row.New(3))
}

func addQuoteLinesTable(m core.Maroto, data *QuoteExportData) {
	headerText := props.Text{Size: 7, Style: fontstyle.Bold, Align: align.Center, Color: pdfWhite}
	headerLeft := headerText
	headerLeft.Align = align.Left
	headerCell := &props.Cell{BackgroundColor: pdfDark}

	m.AddRows(
		row.New(8).Add(
			col.New(1).Add(text.New("#", headerText)).WithStyle(headerCell),
			col.New(6).Add(text.New("Concepto", headerLeft)).WithStyle(headerCell),
			col.New(3).Add(text.New("Categoría", headerLeft)).WithStyle(headerCell),
			col.New(2).Add(text.New("Precio", headerText)).WithStyle(headerCell),
		),
	)

	center := props.Text{Size: 7, Align: align.Center}
	left := props.Text{Size: 7, Align: align.Left}
	right := props.Text{Size: 7, Align: align.Right}

	for i, line := range data.Lines {
		name := line.Name
		if line.Unit != "" {
			name = fmt.Sprintf("%s (%s)", line.Name, line.Unit)
		}
		cols := []core.Col{
			col.New(1).Add(text.New(fmt.Sprintf("%d", line.Index), center)),
			col.New(6).Add(text.New(name, left)),
			col.New(3).Add(text.New(line.Category, left)),
			col.New(2).Add(text.New(FormatMoney(line.TotalPrice), right)),
		}
		if i%2 == 1 {
			for _, c := range cols {
				c.WithStyle(&props.Cell{BackgroundColor: pdfAltRow})
			}
		}
		m.AddRows(row.New(7).Add(cols...))
	}

	m.AddRows(row.New(2))
}

func addQuoteTotals(m core.Maroto, data *QuoteExportData) {
	summaryCell := &props.Cell{BackgroundColor: pdfSummary}
	label := props.Text{Size: 8, Style: fontstyle.Bold, Align: align.Right}
	value := props.Text{Size: 8, Align: align.Right}

	rows := []struct {
		label string
		value string
	}{
		{"Subtotal", FormatMoney(data.Subtotal)},
		{"Margen", FormatMoney(data.TotalMargin)},
		{"IVA " + FormatPercent(data.TaxRatePct), FormatMoney(data.Tax)},
	}
	for _, r := range rows {
		m.AddRows(row.New(7).Add(
			col.New(9).Add(text.New(r.label, label)).WithStyle(summaryCell),
			col.New(3).Add(text.New(r.value, value)).WithStyle(summaryCell),
		))
	}

	grandCell := &props.Cell{BackgroundColor: pdfDark}
	grand := props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right, Color: pdfWhite}
	m.AddRows(row.New(8).Add(
		col.New(9).Add(text.New("Total", grand)).WithStyle(grandCell),
		col.New(3).Add(text.New(FormatMoney(data.Total), grand)).WithStyle(grandCell),
	))

	if data.AmountInWords != "" {
		m.AddRows(row.New(8).Add(
			col.New(12).Add(text.New(fmt.Sprintf("Importe con letra: %s", data.AmountInWords), props.Text{
				Size:  8,
				Style: fontstyle.BoldItalic,
				Align: align.Left,
				Top:   2,
			})),
		))
	}

	m.AddRows(row.New(3))
}

func addQuoteTerms(m core.Maroto, data *QuoteExportData) {
	if data.Terms == "" {
		return
	}
	m.AddRows(
		row.New(7).Add(col.New(12).Add(text.New("TÉRMINOS Y CONDICIONES", props.Text{
			Size:  8,
			Style: fontstyle.Bold,
			Align: align.Left,
			Color: pdfDark,
		}))),
		row.New(10).Add(col.New(12).Add(text.New(data.Terms, props.Text{Size: 8, Align: align.Left}))),
	)
}

// joinNonEmpty joins non-empty strings with the given separator.
func joinNonEmpty(parts []string, sep string) string {
	result := ""
	for _, p := range parts {
		if p == "" {
			continue
		}
		if result != "" {
			result += sep
		}
		result += p
	}
	return result
}

// fmtField returns "label: value" if value is non-empty, otherwise empty string.
func fmtField(label, value string) string {
	if value == "" {
		return ""
	}
	return fmt.Sprintf("%s: %s", label, value)
}
