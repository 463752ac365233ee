package collections

import (
	"fmt"
	"log"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/types"
)

// Setup programmatically creates/ensures the partners, catalog_items,
// quotes and quote_items collections exist.
func Setup(app *pocketbase.PocketBase) {
	partners := ensureCollection(app, core.CollectionTypeAuth, "partners", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "name", Required: true})
		c.Fields.Add(&core.TextField{Name: "company", Required: false})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
	})

	ensureCollection(app, core.CollectionTypeBase, "catalog_items", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "name", Required: true})
		c.Fields.Add(&core.TextField{Name: "description", Required: false})
		c.Fields.Add(&core.TextField{Name: "category", Required: false})
		c.Fields.Add(&core.TextField{Name: "quality", Required: false})
		c.Fields.Add(&core.TextField{Name: "ambientacion", Required: false})
		c.Fields.Add(&core.TextField{Name: "unit", Required: false})
		c.Fields.Add(&core.NumberField{Name: "base_price", Min: types.Pointer(0.0)})
		c.Fields.Add(&core.NumberField{Name: "min_margin_pct", OnlyInt: true, Min: types.Pointer(0.0)})
		c.Fields.Add(&core.NumberField{Name: "max_margin_pct", OnlyInt: true, Min: types.Pointer(0.0)})
		c.Fields.Add(&core.SelectField{
			Name:      "status",
			Required:  true,
			Values:    []string{"active", "inactive"},
			MaxSelect: 1,
		})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
		c.AddIndex("idx_catalog_items_category", false, "category", "")
	})

	quotes := ensureCollection(app, core.CollectionTypeBase, "quotes", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "quote_number", Required: true})
		c.Fields.Add(&core.RelationField{
			Name:         "partner",
			Required:     true,
			CollectionId: partners.Id,
			MaxSelect:    1,
		})
		// Partner details are a snapshot taken at creation.
		c.Fields.Add(&core.TextField{Name: "partner_name", Required: true})
		c.Fields.Add(&core.TextField{Name: "partner_email", Required: false})
		c.Fields.Add(&core.TextField{Name: "partner_company", Required: false})
		c.Fields.Add(&core.TextField{Name: "client_name", Required: true})
		c.Fields.Add(&core.TextField{Name: "client_email", Required: false})
		c.Fields.Add(&core.TextField{Name: "client_company", Required: false})
		c.Fields.Add(&core.TextField{Name: "project_name", Required: false})
		c.Fields.Add(&core.DateField{Name: "event_date", Required: false})
		c.Fields.Add(&core.NumberField{Name: "subtotal", Min: types.Pointer(0.0)})
		c.Fields.Add(&core.NumberField{Name: "total_margin", Min: types.Pointer(0.0)})
		c.Fields.Add(&core.NumberField{Name: "tax_rate_pct", Min: types.Pointer(0.0)})
		c.Fields.Add(&core.NumberField{Name: "tax", Min: types.Pointer(0.0)})
		c.Fields.Add(&core.NumberField{Name: "total", Min: types.Pointer(0.0)})
		c.Fields.Add(&core.SelectField{
			Name:      "status",
			Required:  true,
			Values:    []string{"draft", "sent", "accepted", "rejected", "executed"},
			MaxSelect: 1,
		})
		c.Fields.Add(&core.TextField{Name: "terms", Required: false})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
		c.AddIndex("idx_quotes_quote_number", true, "quote_number", "")
		c.AddIndex("idx_quotes_partner", false, "partner", "")
	})

	ensureCollection(app, core.CollectionTypeBase, "quote_items", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:          "quote",
			Required:      true,
			CollectionId:  quotes.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.NumberField{Name: "sort_order", Required: true, OnlyInt: true})
		// Source item id is kept as text: the line is a snapshot and must
		// survive catalog edits or removal.
		c.Fields.Add(&core.TextField{Name: "catalog_item_id", Required: false})
		c.Fields.Add(&core.TextField{Name: "name", Required: true})
		c.Fields.Add(&core.TextField{Name: "category", Required: false})
		c.Fields.Add(&core.TextField{Name: "unit", Required: false})
		c.Fields.Add(&core.NumberField{Name: "base_price", Min: types.Pointer(0.0)})
		c.Fields.Add(&core.NumberField{Name: "margin_pct", OnlyInt: true, Min: types.Pointer(0.0)})
		c.Fields.Add(&core.NumberField{Name: "margin_amount", Min: types.Pointer(0.0)})
		c.Fields.Add(&core.NumberField{Name: "total_price", Min: types.Pointer(0.0)})
		c.Fields.Add(&core.NumberField{Name: "min_margin_pct", OnlyInt: true, Min: types.Pointer(0.0)})
		c.Fields.Add(&core.NumberField{Name: "max_margin_pct", OnlyInt: true, Min: types.Pointer(0.0)})
	})
}

// ensureCollection checks if a collection already exists by name. If it does,
// the existing collection is returned. Otherwise a new collection of the
// given type is created, the addFields callback is invoked to populate its
// fields, and the collection is saved.
func ensureCollection(app *pocketbase.PocketBase, typ, name string, addFields func(*core.Collection)) *core.Collection {
	existing, err := app.FindCollectionByNameOrId(name)
	if err == nil && existing != nil {
		log.Printf("Collection %q already exists, skipping creation.\n", name)
		return existing
	}

	collection := core.NewCollection(typ, name)
	addFields(collection)

	if err := app.Save(collection); err != nil {
		log.Fatalf("Failed to create collection %q: %v", name, err)
	}

	fmt.Printf("Created collection %q (id=%s)\n", name, collection.Id)
	return collection
}
