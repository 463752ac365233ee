package handlers

import (
	"log"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"eventquotes/services"
)

// HandleQuoteDelete removes a draft quote. Admin only.
// Route: DELETE /quotes/{id}
func HandleQuoteDelete(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		actor, ok, err := requireActor(e)
		if !ok {
			return err
		}

		id := e.Request.PathValue("id")
		if err := services.DeleteQuoteAs(services.NewQuoteStore(app), id, actor); err != nil {
			return respondError(e, "quote_delete", err)
		}

		log.Printf("quote_delete: quote %s deleted", id)
		return e.NoContent(http.StatusNoContent)
	}
}
