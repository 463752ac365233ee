package handlers

import (
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"eventquotes/config"
	"eventquotes/services"
)

// buildExportData loads a quote the actor may read and prepares it for
// rendering as of now.
func buildExportData(app core.App, cfg config.Config, id string, actor services.Actor, now time.Time) (*services.QuoteExportData, error) {
	q, err := loadReadableQuote(services.NewQuoteStore(app), id, actor)
	if err != nil {
		return nil, err
	}
	return services.BuildQuoteExportData(q, cfg.Issuer(), now, cfg.ValidityDays), nil
}

// sanitizeFilename removes characters that are unsafe for filenames.
func sanitizeFilename(s string) string {
	s = strings.ReplaceAll(s, " ", "-")
	s = strings.ReplaceAll(s, "/", "-")
	s = strings.ReplaceAll(s, "\\", "-")
	s = strings.ReplaceAll(s, ":", "-")
	return s
}

func exportFilename(data *services.QuoteExportData, ext string) string {
	return fmt.Sprintf("Cotizacion_%s.%s", sanitizeFilename(data.QuoteNumber), ext)
}

// HandleQuoteExportExcel downloads the internal workbook for a quote,
// including base prices and margins.
// Route: GET /quotes/{id}/export/excel
func HandleQuoteExportExcel(app *pocketbase.PocketBase, cfg config.Config) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		actor, ok, err := requireActor(e)
		if !ok {
			return err
		}

		data, err := buildExportData(app, cfg, e.Request.PathValue("id"), actor, time.Now())
		if err != nil {
			return respondError(e, "export_excel", err)
		}

		xlsxBytes, err := services.GenerateQuoteExcel(data)
		if err != nil {
			log.Printf("export_excel: failed to generate: %v", err)
			return e.JSON(http.StatusInternalServerError, errorBody("internal_error", "failed to generate Excel file"))
		}
		return writeDownload(e, xlsxContentType, exportFilename(data, "xlsx"), xlsxBytes)
	}
}

// HandleQuoteExportPDF downloads the client-facing PDF for a quote.
// Route: GET /quotes/{id}/export/pdf
func HandleQuoteExportPDF(app *pocketbase.PocketBase, cfg config.Config) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		actor, ok, err := requireActor(e)
		if !ok {
			return err
		}

		data, err := buildExportData(app, cfg, e.Request.PathValue("id"), actor, time.Now())
		if err != nil {
			return respondError(e, "export_pdf", err)
		}

		pdfBytes, err := services.GenerateQuotePDF(data)
		if err != nil {
			log.Printf("export_pdf: failed to generate: %v", err)
			return e.JSON(http.StatusInternalServerError, errorBody("internal_error", "failed to generate PDF file"))
		}
		return writeDownload(e, "application/pdf", exportFilename(data, "pdf"), pdfBytes)
	}
}
