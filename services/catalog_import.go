package services

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/pocketbase/pocketbase/core"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const importBatchSize = 100

// ImportField describes one column of the catalog import file.
type ImportField struct {
	Key      string
	Label    string
	Example  string
	Required bool
}

// CatalogImportFields returns the columns accepted by the catalog import, in
// template order.
func CatalogImportFields() []ImportField {
	return []ImportField{
		{Key: "name", Label: "Nombre", Example: "Carpa 10x10", Required: true},
		{Key: "description", Label: "Descripción", Example: "Carpa blanca con laterales"},
		{Key: "category", Label: "Categoría", Example: "Mobiliario"},
		{Key: "quality", Label: "Calidad", Example: "Premium"},
		{Key: "ambientacion", Label: "Ambientación", Example: "Jardín"},
		{Key: "unit", Label: "Unidad", Example: "pieza"},
		{Key: "base_price", Label: "Precio base", Example: "2500.00", Required: true},
		{Key: "min_margin_pct", Label: "Margen mínimo %", Example: "15", Required: true},
		{Key: "max_margin_pct", Label: "Margen máximo %", Example: "25", Required: true},
		{Key: "status", Label: "Estado", Example: "activo"},
	}
}

// ValidationError represents a single field-level error on one row.
type ValidationError struct {
	Row     int    `json:"row"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// CatalogImportRow is a parsed, normalized row ready to be stored.
type CatalogImportRow struct {
	Row  int
	Item CatalogItem
}

// ValidationResult is returned after parsing and validating an uploaded file.
type ValidationResult struct {
	TotalRows    int                `json:"total_rows"`
	ValidRows    int                `json:"valid_rows"`
	ErrorRows    int                `json:"error_rows"`
	Errors       []ValidationError  `json:"errors"`
	Unrecognized []string           `json:"unrecognized_columns,omitempty"`
	Rows         []CatalogImportRow `json:"-"`
	FileName     string             `json:"-"`
}

// parseCSV reads a CSV file and returns headers + data rows.
func parseCSV(file io.Reader) ([]string, [][]string, error) {
	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	allRows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(allRows) < 2 {
		return nil, nil, fmt.Errorf("file must contain a header row and at least one data row")
	}
	return allRows[0], allRows[1:], nil
}

// parseExcel reads an xlsx file and returns headers + data rows from the first sheet.
func parseExcel(file io.Reader) ([]string, [][]string, error) {
	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read sheet: %w", err)
	}
	if len(rows) < 2 {
		return nil, nil, fmt.Errorf("file must contain a header row and at least one data row")
	}
	return rows[0], rows[1:], nil
}

// headerKey folds a column header for matching: accents removed, lowercase,
// single spaces, required-marker stripped.
func headerKey(h string) string {
	h = strings.TrimSuffix(strings.TrimSpace(h), "*")
	return strings.ToLower(collapseSpaces(foldToASCII(h)))
}

// mapHeadersToFields maps uploaded column headers to field keys. Headers
// match either the Spanish label or the key itself.
func mapHeadersToFields(headers []string, fields []ImportField) ([]string, []string) {
	lookup := make(map[string]string, 2*len(fields))
	for _, f := range fields {
		lookup[headerKey(f.Label)] = f.Key
		lookup[headerKey(f.Key)] = f.Key
	}

	mapped := make([]string, len(headers))
	var unrecognized []string
	for i, h := range headers {
		if key, ok := lookup[headerKey(h)]; ok {
			mapped[i] = key
			continue
		}
		if strings.TrimSpace(h) != "" {
			unrecognized = append(unrecognized, h)
		}
	}
	return mapped, unrecognized
}

// ValidateCatalogFile parses an uploaded .csv or .xlsx file and validates
// every row. Nothing is written.
func ValidateCatalogFile(file io.Reader, fileName string) (*ValidationResult, error) {
	var headers []string
	var dataRows [][]string
	var err error

	lowerName := strings.ToLower(fileName)
	switch {
	case strings.HasSuffix(lowerName, ".csv"):
		headers, dataRows, err = parseCSV(file)
	case strings.HasSuffix(lowerName, ".xlsx"):
		headers, dataRows, err = parseExcel(file)
	default:
		return nil, fmt.Errorf("unsupported file format: must be .csv or .xlsx")
	}
	if err != nil {
		return nil, err
	}

	fields := CatalogImportFields()
	columnKeys, unrecognized := mapHeadersToFields(headers, fields)

	present := make(map[string]bool, len(columnKeys))
	for _, k := range columnKeys {
		present[k] = true
	}
	for _, f := range fields {
		if f.Required && !present[f.Key] {
			return nil, fmt.Errorf("missing required column %q", f.Label)
		}
	}

	result := &ValidationResult{
		TotalRows:    0,
		FileName:     fileName,
		Unrecognized: unrecognized,
	}

	for rowIdx, row := range dataRows {
		rowNum := rowIdx + 2
		if isBlankRow(row) {
			continue
		}
		result.TotalRows++

		data := make(map[string]string, len(columnKeys))
		for colIdx, key := range columnKeys {
			if key == "" || colIdx >= len(row) {
				continue
			}
			data[key] = collapseSpaces(row[colIdx])
		}

		item, rowErrors := parseCatalogRow(rowNum, data, fields)
		if len(rowErrors) > 0 {
			result.Errors = append(result.Errors, rowErrors...)
			result.ErrorRows++
			continue
		}
		result.Rows = append(result.Rows, CatalogImportRow{Row: rowNum, Item: item})
	}
	result.ValidRows = len(result.Rows)
	return result, nil
}

func parseCatalogRow(rowNum int, data map[string]string, fields []ImportField) (CatalogItem, []ValidationError) {
	var errs []ValidationError
	labelOf := make(map[string]string, len(fields))
	for _, f := range fields {
		labelOf[f.Key] = f.Label
		if f.Required && data[f.Key] == "" {
			errs = append(errs, ValidationError{Row: rowNum, Field: f.Label, Message: fmt.Sprintf("%s is required", f.Label)})
		}
	}
	if len(errs) > 0 {
		return CatalogItem{}, errs
	}

	item := CatalogItem{
		Name:         data["name"],
		Description:  data["description"],
		Category:     titleTag(data["category"]),
		Quality:      titleTag(data["quality"]),
		Ambientacion: titleTag(data["ambientacion"]),
		Unit:         strings.ToLower(data["unit"]),
	}

	price, err := parseMoney(data["base_price"])
	if err != nil {
		errs = append(errs, ValidationError{Row: rowNum, Field: labelOf["base_price"], Message: "must be a number"})
	} else if price.IsNegative() {
		errs = append(errs, ValidationError{Row: rowNum, Field: labelOf["base_price"], Message: "must not be negative"})
	}
	item.BasePrice = price.Round(2)

	minPct, err := ParseMarginPct(data["min_margin_pct"])
	if err != nil {
		errs = append(errs, ValidationError{Row: rowNum, Field: labelOf["min_margin_pct"], Message: "must be a non-negative percentage"})
	}
	maxPct, err := ParseMarginPct(data["max_margin_pct"])
	if err != nil {
		errs = append(errs, ValidationError{Row: rowNum, Field: labelOf["max_margin_pct"], Message: "must be a non-negative percentage"})
	}
	item.MinMarginPct, item.MaxMarginPct = minPct, maxPct
	if len(errs) == 0 && maxPct < minPct {
		errs = append(errs, ValidationError{Row: rowNum, Field: labelOf["max_margin_pct"], Message: "must be greater than or equal to the minimum margin"})
	}

	status, ok := parseCatalogStatus(data["status"])
	if !ok {
		errs = append(errs, ValidationError{Row: rowNum, Field: labelOf["status"], Message: "must be activo or inactivo"})
	}
	item.Status = status

	return item, errs
}

// parseMoney reads "$1,234.56" style amounts. Commas are only accepted as
// thousands separators, so "1.234,56" is rejected instead of misread.
func parseMoney(s string) (decimal.Decimal, error) {
	s = strings.NewReplacer("$", "", " ", "").Replace(s)
	whole, _, _ := strings.Cut(s, ".")
	if strings.Contains(s, ",") {
		groups := strings.Split(whole, ",")
		if len(groups) != strings.Count(s, ",")+1 || groups[0] == "" || len(groups[0]) > 3 {
			return decimal.Decimal{}, fmt.Errorf("misplaced thousands separator in %q", s)
		}
		for _, g := range groups[1:] {
			if len(g) != 3 {
				return decimal.Decimal{}, fmt.Errorf("misplaced thousands separator in %q", s)
			}
		}
	}
	return decimal.NewFromString(strings.ReplaceAll(s, ",", ""))
}

func parseCatalogStatus(s string) (CatalogStatus, bool) {
	switch headerKey(s) {
	case "", "active", "activo", "activa", "si":
		return CatalogActive, true
	case "inactive", "inactivo", "inactiva", "no":
		return CatalogInactive, true
	}
	return "", false
}

// titleTag normalizes a filter tag such as a category: single spaces and
// Spanish title case, so "  AUDIO   e iluminación" and "Audio E Iluminación"
// group together.
func titleTag(s string) string {
	s = collapseSpaces(s)
	if s == "" {
		return s
	}
	return cases.Title(language.Spanish).String(strings.ToLower(s))
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func isBlankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// ImportResult holds the outcome of a batch import operation.
type ImportResult struct {
	TotalRows  int              `json:"total_rows"`
	Created    int              `json:"created"`
	Updated    int              `json:"updated"`
	Failed     int              `json:"failed"`
	Errors     []ImportRowError `json:"errors,omitempty"`
	RolledBack bool             `json:"rolled_back"`
}

// ImportRowError represents a failure to store a specific row.
type ImportRowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// CommitCatalogImport stores validated rows in chunks of importBatchSize.
// An item whose name and category match an existing one updates it in
// place, so importing the same file twice changes nothing. If any row in a
// chunk fails the whole chunk is rolled back and the next one continues.
func CommitCatalogImport(app core.App, rows []CatalogImportRow) (*ImportResult, error) {
	col, err := app.FindCollectionByNameOrId("catalog_items")
	if err != nil {
		return nil, fmt.Errorf("catalog_items collection not found: %w", err)
	}

	result := &ImportResult{TotalRows: len(rows)}
	for start := 0; start < len(rows); start += importBatchSize {
		end := min(start+importBatchSize, len(rows))
		chunk := rows[start:end]

		created, updated, chunkErrors := insertChunk(app, col, chunk)
		if len(chunkErrors) > 0 {
			result.Errors = append(result.Errors, chunkErrors...)
			result.Failed += len(chunk)
			result.RolledBack = true
			continue
		}
		result.Created += created
		result.Updated += updated
	}
	return result, nil
}

func insertChunk(app core.App, col *core.Collection, rows []CatalogImportRow) (int, int, []ImportRowError) {
	var created, updated int
	var chunkErrors []ImportRowError

	err := app.RunInTransaction(func(txApp core.App) error {
		for _, r := range rows {
			record, err := txApp.FindFirstRecordByFilter(col,
				"name = {:name} && category = {:category}",
				map[string]any{"name": r.Item.Name, "category": r.Item.Category},
			)
			isNew := err != nil
			if isNew {
				record = core.NewRecord(col)
			}

			record.Set("name", r.Item.Name)
			record.Set("description", r.Item.Description)
			record.Set("category", r.Item.Category)
			record.Set("quality", r.Item.Quality)
			record.Set("ambientacion", r.Item.Ambientacion)
			record.Set("unit", r.Item.Unit)
			record.Set("base_price", moneyFloat(r.Item.BasePrice))
			record.Set("min_margin_pct", r.Item.MinMarginPct)
			record.Set("max_margin_pct", r.Item.MaxMarginPct)
			record.Set("status", string(r.Item.Status))

			if err := txApp.Save(record); err != nil {
				chunkErrors = append(chunkErrors, ImportRowError{Row: r.Row, Message: err.Error()})
				return fmt.Errorf("row %d: %w", r.Row, err)
			}
			if isNew {
				created++
			} else {
				updated++
			}
		}
		return nil
	})
	if err != nil {
		log.Printf("catalog_import: chunk rolled back: %v", err)
		if len(chunkErrors) == 0 {
			chunkErrors = append(chunkErrors, ImportRowError{Row: rows[0].Row, Message: err.Error()})
		}
		return 0, 0, chunkErrors
	}
	return created, updated, nil
}

// GenerateErrorReport creates a downloadable .xlsx file from validation errors.
func GenerateErrorReport(errors []ValidationError) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Errores"
	f.SetSheetName(f.GetSheetName(0), sheet)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DC2626"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
		Border:    thinBorders(),
	})

	f.SetCellValue(sheet, "A1", "Fila")
	f.SetCellValue(sheet, "B1", "Campo")
	f.SetCellValue(sheet, "C1", "Error")
	f.SetCellStyle(sheet, "A1", "C1", headerStyle)
	f.SetColWidth(sheet, "A", "A", 8)
	f.SetColWidth(sheet, "B", "B", 22)
	f.SetColWidth(sheet, "C", "C", 55)

	for i, e := range errors {
		row := fmt.Sprintf("%d", i+2)
		f.SetCellValue(sheet, "A"+row, e.Row)
		f.SetCellValue(sheet, "B"+row, sanitizeExcelCell(e.Field))
		f.SetCellValue(sheet, "C"+row, sanitizeExcelCell(e.Message))
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write error report: %w", err)
	}
	return buf.Bytes(), nil
}

// GenerateCatalogTemplate creates an empty import workbook with the
// expected headers and one example row. Required headers end in " *".
func GenerateCatalogTemplate() ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Catalogo"
	f.SetSheetName(f.GetSheetName(0), sheet)

	requiredStyle, _ := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"#1D4ED8"}, Pattern: 1},
		Border: thinBorders(),
	})
	optionalStyle, _ := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"#6B7280"}, Pattern: 1},
		Border: thinBorders(),
	})

	for i, field := range CatalogImportFields() {
		colName, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, fmt.Errorf("column name: %w", err)
		}
		header := field.Label
		style := optionalStyle
		if field.Required {
			header += " *"
			style = requiredStyle
		}
		f.SetCellValue(sheet, colName+"1", header)
		f.SetCellStyle(sheet, colName+"1", colName+"1", style)
		f.SetCellValue(sheet, colName+"2", field.Example)
		f.SetColWidth(sheet, colName, colName, 20)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write template: %w", err)
	}
	return buf.Bytes(), nil
}
