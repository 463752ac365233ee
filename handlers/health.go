package handlers

import (
	"net/http"

	"github.com/pocketbase/pocketbase/core"
)

// HandleHealth reports that the server is up.
// Route: GET /health
func HandleHealth(e *core.RequestEvent) error {
	return e.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
