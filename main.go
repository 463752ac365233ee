package main

import (
	"log"
	"os"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"eventquotes/collections"
	"eventquotes/config"
	"eventquotes/handlers"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	app := pocketbase.New()

	// Create collections and seed the demo catalog on startup
	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		collections.Setup(app)
		if err := collections.Seed(app); err != nil {
			log.Printf("Warning: seed data failed: %v", err)
		}
		return se.Next()
	})

	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		se.Router.GET("/static/{path...}", apis.Static(os.DirFS(cfg.StaticDir), false))

		se.Router.BindFunc(handlers.ActorMiddleware())

		se.Router.GET("/health", handlers.HandleHealth)

		// ── Catalog ─────────────────────────────────────────────
		se.Router.GET("/catalog/import/template", handlers.HandleCatalogTemplate(app))
		se.Router.POST("/catalog/import/errors", handlers.HandleCatalogImportErrors(app))
		se.Router.POST("/catalog/import", handlers.HandleCatalogImport(app))
		se.Router.GET("/catalog/{id}", handlers.HandleCatalogItem(app))
		se.Router.GET("/catalog", handlers.HandleCatalogList(app))

		// ── Pricing (no persistence) ────────────────────────────
		se.Router.POST("/quotes/price-line", handlers.HandlePriceLine(app))
		se.Router.POST("/quotes/preview", handlers.HandleQuotePreview(app, cfg))

		// ── Quotes ──────────────────────────────────────────────
		se.Router.POST("/quotes", handlers.HandleQuoteCreate(app, cfg))
		se.Router.GET("/quotes", handlers.HandleQuoteList(app, cfg))
		se.Router.GET("/quotes/{id}/export/pdf", handlers.HandleQuoteExportPDF(app, cfg))
		se.Router.GET("/quotes/{id}/export/excel", handlers.HandleQuoteExportExcel(app, cfg))
		se.Router.POST("/quotes/{id}/status", handlers.HandleQuoteStatus(app, cfg))
		se.Router.GET("/quotes/{id}", handlers.HandleQuoteView(app, cfg))
		se.Router.DELETE("/quotes/{id}", handlers.HandleQuoteDelete(app))

		// ── Client link ─────────────────────────────────────────
		se.Router.GET("/q/{code}", handlers.HandleQuotePublicView(app, cfg))

		return se.Next()
	})

	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
}
