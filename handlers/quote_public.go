package handlers

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"eventquotes/config"
	"eventquotes/services"
	"eventquotes/templates"
)

// HandleQuotePublicView renders the client-facing page for a quote code.
// No login is needed; the quote number is the capability. Drafts are not
// shown since they have not been sent yet.
// Route: GET /q/{code}
func HandleQuotePublicView(app *pocketbase.PocketBase, cfg config.Config) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		code := strings.TrimSpace(e.Request.PathValue("code"))
		if code == "" {
			return e.String(http.StatusNotFound, "Cotización no encontrada")
		}

		q, err := services.NewQuoteStore(app).FindByCode(code)
		if err != nil || q.Status == services.StatusDraft {
			if err != nil {
				log.Printf("quote_public: %s: %v", code, err)
			}
			return e.String(http.StatusNotFound, "Cotización no encontrada")
		}

		data := services.BuildQuoteExportData(q, cfg.Issuer(), time.Now(), cfg.ValidityDays)
		e.Response.Header().Set("Content-Type", "text/html; charset=utf-8")
		return templates.QuoteViewPage(data).Render(e.Request.Context(), e.Response)
	}
}
