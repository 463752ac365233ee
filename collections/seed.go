package collections

import (
	"fmt"
	"log"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

type catalogDef struct {
	name         string
	description  string
	category     string
	quality      string
	ambientacion string
	unit         string
	basePrice    float64
	minMargin    int
	maxMargin    int
}

var seedCatalog = []catalogDef{
	{"Silla Tiffany", "Silla de resina con cojín blanco", "Mobiliario", "Premium", "Boda", "pieza", 45, 10, 20},
	{"Silla plegable", "Silla metálica plegable acojinada", "Mobiliario", "Estándar", "Corporativo", "pieza", 18, 15, 35},
	{"Mesa redonda 10 personas", "Mesa de 1.80 m de diámetro", "Mobiliario", "Estándar", "Boda", "pieza", 120, 15, 30},
	{"Mesa imperial", "Mesa rectangular de madera para 12 personas", "Mobiliario", "Premium", "Boda", "pieza", 380, 10, 25},
	{"Mantel de lino", "Mantel redondo de lino lavado", "Mantelería", "Premium", "Boda", "pieza", 95, 20, 40},
	{"Carpa 10x10", "Carpa árabe con piso y laterales", "Carpas", "Estándar", "Jardín", "pieza", 4800, 12, 25},
	{"Carpa transparente 6x12", "Carpa de cristal con estructura de aluminio", "Carpas", "Premium", "Jardín", "pieza", 14500, 10, 20},
	{"Luces de guirnalda", "Serie de focos vintage, 10 m", "Iluminación", "Estándar", "Jardín", "tramo", 260, 20, 45},
	{"Iluminación arquitectónica", "Par LED RGB con control DMX", "Iluminación", "Premium", "Corporativo", "equipo", 650, 15, 30},
	{"Pista de baile 6x6", "Pista iluminada modular", "Entretenimiento", "Premium", "Boda", "pieza", 9500, 10, 22},
	{"Audio para 150 personas", "Dos bafles, consola y micrófono inalámbrico", "Audio", "Estándar", "Corporativo", "servicio", 3200, 15, 30},
	{"Meseros", "Servicio de mesero por 5 horas", "Personal", "Estándar", "", "persona", 550, 10, 20},
}

// Seed fills catalog_items with a demo catalog for local development.
// It returns early when the catalog already has items and never creates
// accounts.
func Seed(app *pocketbase.PocketBase) error {
	catalogCol, err := app.FindCollectionByNameOrId("catalog_items")
	if err != nil {
		return fmt.Errorf("seed: could not find catalog_items collection: %w", err)
	}
	existing, err := app.CountRecords(catalogCol)
	if err != nil {
		return fmt.Errorf("seed: could not query catalog_items: %w", err)
	}
	if existing > 0 {
		return nil
	}

	log.Println("seed: catalog is empty, inserting demo items")

	return app.RunInTransaction(func(txApp core.App) error {
		for _, d := range seedCatalog {
			r := core.NewRecord(catalogCol)
			r.Set("name", d.name)
			r.Set("description", d.description)
			r.Set("category", d.category)
			r.Set("quality", d.quality)
			r.Set("ambientacion", d.ambientacion)
			r.Set("unit", d.unit)
			r.Set("base_price", d.basePrice)
			r.Set("min_margin_pct", d.minMargin)
			r.Set("max_margin_pct", d.maxMargin)
			r.Set("status", "active")
			if err := txApp.Save(r); err != nil {
				return fmt.Errorf("seed: catalog item %q: %w", d.name, err)
			}
		}
		log.Printf("seed: inserted %d catalog items", len(seedCatalog))
		return nil
	})
}
