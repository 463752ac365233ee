package handlers

import (
	"net/http"
	"strings"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"eventquotes/services"
)

// HandleCatalogList lists catalog items.
// Route: GET /catalog?category=&quality=&ambientacion=&q=&all=1
// Inactive items are only listed for admins asking with all=1.
func HandleCatalogList(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		actor, ok, err := requireActor(e)
		if !ok {
			return err
		}

		query := e.Request.URL.Query()
		filter := services.CatalogFilter{
			Category:        strings.TrimSpace(query.Get("category")),
			Quality:         strings.TrimSpace(query.Get("quality")),
			Ambientacion:    strings.TrimSpace(query.Get("ambientacion")),
			Search:          query.Get("q"),
			IncludeInactive: actor.Role == services.RoleAdmin && query.Get("all") == "1",
		}

		items, err := services.ListCatalogItems(app, filter)
		if err != nil {
			return respondError(e, "catalog_list", err)
		}

		out := make([]catalogItemJSON, 0, len(items))
		for _, item := range items {
			out = append(out, toCatalogItemJSON(item))
		}
		return e.JSON(http.StatusOK, map[string]any{
			"items": out,
			"count": len(out),
		})
	}
}

// HandleCatalogItem returns one catalog item with its default pricing.
// Route: GET /catalog/{id}
func HandleCatalogItem(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		actor, ok, err := requireActor(e)
		if !ok {
			return err
		}

		item, err := services.LoadCatalogItem(app, e.Request.PathValue("id"))
		if err != nil {
			return respondError(e, "catalog_item", err)
		}
		if item.Status == services.CatalogInactive && actor.Role != services.RoleAdmin {
			return respondError(e, "catalog_item", services.ErrCatalogItemNotFound)
		}
		return e.JSON(http.StatusOK, toCatalogItemJSON(item))
	}
}
