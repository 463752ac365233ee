package services

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// quoteSheetColumns are the Excel columns of the quote line table.
var quoteSheetColumns = []string{"A", "B", "C", "D", "E", "F", "G", "H"}

// GenerateQuoteExcel builds an internal quote workbook: one row per line
// with its base price, margin and sale price, followed by the totals.
// Money cells hold numbers with a currency format so they stay summable.
func GenerateQuoteExcel(data *QuoteExportData) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Cotizacion"
	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
	}

	lastCol := quoteSheetColumns[len(quoteSheetColumns)-1]
	widths := []float64{6, 40, 20, 10, 16, 10, 16, 16}
	for i, c := range quoteSheetColumns {
		if err := f.SetColWidth(sheetName, c, c, widths[i]); err != nil {
			return nil, fmt.Errorf("set col width %s: %w", c, err)
		}
	}

	moneyFmt := "$#,##0.00"

	titleStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 16}})
	if err != nil {
		return nil, fmt.Errorf("create title style: %w", err)
	}
	subtitleStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Size: 11}})
	if err != nil {
		return nil, fmt.Errorf("create subtitle style: %w", err)
	}
	bannerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#B02A37"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("create banner style: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#333333"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}
	cellStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Size: 10}, Border: thinBorders()})
	if err != nil {
		return nil, fmt.Errorf("create cell style: %w", err)
	}
	moneyStyle, err := f.NewStyle(&excelize.Style{
		Font:         &excelize.Font{Size: 10},
		Border:       thinBorders(),
		CustomNumFmt: &moneyFmt,
	})
	if err != nil {
		return nil, fmt.Errorf("create money style: %w", err)
	}
	summaryLabelStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Alignment: &excelize.Alignment{Horizontal: "right"},
	})
	if err != nil {
		return nil, fmt.Errorf("create summary label style: %w", err)
	}
	summaryValueStyle, err := f.NewStyle(&excelize.Style{
		Font:         &excelize.Font{Bold: true, Size: 11},
		CustomNumFmt: &moneyFmt,
	})
	if err != nil {
		return nil, fmt.Errorf("create summary value style: %w", err)
	}

	// Header block
	if err := f.MergeCell(sheetName, "A1", lastCol+"1"); err != nil {
		return nil, fmt.Errorf("merge title: %w", err)
	}
	f.SetCellValue(sheetName, "A1", sanitizeExcelCell(fmt.Sprintf("Cotización %s", data.QuoteNumber)))
	f.SetCellStyle(sheetName, "A1", lastCol+"1", titleStyle)

	info := []string{
		joinNonEmpty([]string{fmtField("Cliente", data.Client.Name), data.Client.Company}, " | "),
		joinNonEmpty([]string{fmtField("Asesor", data.Partner.Name), data.Partner.Company}, " | "),
		joinNonEmpty([]string{fmtField("Proyecto", data.ProjectName), fmtField("Evento", data.EventDate)}, " | "),
		joinNonEmpty([]string{fmtField("Fecha", data.IssuedDate), fmtField("Vigencia", data.ValidUntil), fmtField("Estado", string(data.Status))}, " | "),
	}
	row := 2
	for _, line := range info {
		if line == "" {
			continue
		}
		cell := fmt.Sprintf("A%d", row)
		if err := f.MergeCell(sheetName, cell, fmt.Sprintf("%s%d", lastCol, row)); err != nil {
			return nil, fmt.Errorf("merge info row %d: %w", row, err)
		}
		f.SetCellValue(sheetName, cell, sanitizeExcelCell(line))
		f.SetCellStyle(sheetName, cell, cell, subtitleStyle)
		row++
	}

	if data.Expired {
		cell := fmt.Sprintf("A%d", row)
		if err := f.MergeCell(sheetName, cell, fmt.Sprintf("%s%d", lastCol, row)); err != nil {
			return nil, fmt.Errorf("merge banner: %w", err)
		}
		f.SetCellValue(sheetName, cell, "COTIZACIÓN VENCIDA")
		f.SetCellStyle(sheetName, cell, fmt.Sprintf("%s%d", lastCol, row), bannerStyle)
		row++
	}

	// Line table
	row++
	headers := []string{"#", "Concepto", "Categoría", "Unidad", "Precio base", "Margen %", "Margen", "Precio"}
	for i, h := range headers {
		f.SetCellValue(sheetName, fmt.Sprintf("%s%d", quoteSheetColumns[i], row), h)
	}
	f.SetCellStyle(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("%s%d", lastCol, row), headerStyle)
	row++

	for _, line := range data.Lines {
		r := fmt.Sprintf("%d", row)
		f.SetCellValue(sheetName, "A"+r, line.Index)
		f.SetCellValue(sheetName, "B"+r, sanitizeExcelCell(line.Name))
		f.SetCellValue(sheetName, "C"+r, sanitizeExcelCell(line.Category))
		f.SetCellValue(sheetName, "D"+r, sanitizeExcelCell(line.Unit))
		f.SetCellValue(sheetName, "E"+r, line.BasePrice.InexactFloat64())
		f.SetCellValue(sheetName, "F"+r, line.MarginPct)
		f.SetCellValue(sheetName, "G"+r, line.MarginAmount.InexactFloat64())
		f.SetCellValue(sheetName, "H"+r, line.TotalPrice.InexactFloat64())
		f.SetCellStyle(sheetName, "A"+r, "D"+r, cellStyle)
		f.SetCellStyle(sheetName, "E"+r, "E"+r, moneyStyle)
		f.SetCellStyle(sheetName, "F"+r, "F"+r, cellStyle)
		f.SetCellStyle(sheetName, "G"+r, "H"+r, moneyStyle)
		row++
	}

	// Totals
	row++
	summary := []struct {
		label string
		value float64
	}{
		{"Subtotal:", data.Subtotal.InexactFloat64()},
		{"Margen:", data.TotalMargin.InexactFloat64()},
		{fmt.Sprintf("IVA (%s):", FormatPercent(data.TaxRatePct)), data.Tax.InexactFloat64()},
		{"Total:", data.Total.InexactFloat64()},
	}
	for _, s := range summary {
		r := fmt.Sprintf("%d", row)
		f.SetCellValue(sheetName, "G"+r, s.label)
		f.SetCellStyle(sheetName, "G"+r, "G"+r, summaryLabelStyle)
		f.SetCellValue(sheetName, "H"+r, s.value)
		f.SetCellStyle(sheetName, "H"+r, "H"+r, summaryValueStyle)
		row++
	}

	if data.AmountInWords != "" {
		cell := fmt.Sprintf("A%d", row)
		if err := f.MergeCell(sheetName, cell, fmt.Sprintf("%s%d", lastCol, row)); err != nil {
			return nil, fmt.Errorf("merge amount in words: %w", err)
		}
		f.SetCellValue(sheetName, cell, data.AmountInWords)
		row++
	}

	if data.Terms != "" {
		row++
		cell := fmt.Sprintf("A%d", row)
		if err := f.MergeCell(sheetName, cell, fmt.Sprintf("%s%d", lastCol, row)); err != nil {
			return nil, fmt.Errorf("merge terms: %w", err)
		}
		f.SetCellValue(sheetName, cell, sanitizeExcelCell(data.Terms))
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write excel: %w", err)
	}
	return buf.Bytes(), nil
}

// sanitizeExcelCell prevents formula injection by prefixing dangerous leading
// characters with a single quote.
func sanitizeExcelCell(s string) string {
	if len(s) == 0 {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r', '|':
		return "'" + s
	}
	return s
}

// thinBorders returns thin black borders on all four sides.
func thinBorders() []excelize.Border {
	sides := []string{"left", "top", "bottom", "right"}
	borders := make([]excelize.Border, len(sides))
	for i, side := range sides {
		borders[i] = excelize.Border{Type: side, Color: "#000000", Style: 1}
	}
	return borders
}
