package services

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventquotes/testhelpers"
)

func TestCatalogItem_Validate(t *testing.T) {
	tests := []struct {
		name string
		item CatalogItem
		want error
	}{
		{"valid", CatalogItem{BasePrice: dec("10.00"), MinMarginPct: 5, MaxMarginPct: 10}, nil},
		{"zero band", CatalogItem{BasePrice: dec("10.00"), MinMarginPct: 5, MaxMarginPct: 5}, nil},
		{"negative price", CatalogItem{BasePrice: dec("-1.00")}, ErrNegativePrice},
		{"inverted band", CatalogItem{BasePrice: dec("10.00"), MinMarginPct: 20, MaxMarginPct: 10}, ErrInvalidMarginBand},
		{"negative min", CatalogItem{BasePrice: dec("10.00"), MinMarginPct: -1, MaxMarginPct: 10}, ErrInvalidMarginBand},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.item.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCatalogItem_DefaultPricing(t *testing.T) {
	item := CatalogItem{BasePrice: dec("2500.00"), MinMarginPct: 15, MaxMarginPct: 25}
	p := item.DefaultPricing()
	assert.Equal(t, 15, p.MarginPct)
	assert.True(t, p.TotalPrice.Equal(dec("2875.00")), "total %s", p.TotalPrice)
}

func TestBuildCatalogFilter(t *testing.T) {
	filter, params := buildCatalogFilter(CatalogFilter{})
	assert.Equal(t, "status = 'active'", filter)
	assert.Empty(t, params)

	filter, _ = buildCatalogFilter(CatalogFilter{IncludeInactive: true})
	assert.Equal(t, "id != ''", filter)

	filter, params = buildCatalogFilter(CatalogFilter{Category: "Mobiliario", Search: "  carpa "})
	assert.Contains(t, filter, "category = {:category}")
	assert.Contains(t, filter, "name ~ {:search}")
	assert.Equal(t, "carpa", params["search"])
}

func TestListCatalogItems(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	testhelpers.CreateTestCatalogItem(t, app, "Silla Tiffany", "Mobiliario", 45, 10, 20)
	testhelpers.CreateTestCatalogItem(t, app, "Carpa 10x10", "Mobiliario", 2500, 15, 25)
	testhelpers.CreateTestCatalogItem(t, app, "Bocina", "Audio", 800, 20, 40)
	retired := testhelpers.CreateTestCatalogItem(t, app, "Mesa redonda", "Mobiliario", 120, 10, 20)
	testhelpers.SetCatalogItemStatus(t, app, retired, "inactive")

	active, err := ListCatalogItems(app, CatalogFilter{})
	require.NoError(t, err)
	require.Len(t, active, 3)
	// Sorted by category then name.
	assert.Equal(t, "Bocina", active[0].Name)
	assert.Equal(t, "Carpa 10x10", active[1].Name)
	assert.Equal(t, "Silla Tiffany", active[2].Name)

	all, err := ListCatalogItems(app, CatalogFilter{IncludeInactive: true})
	require.NoError(t, err)
	assert.Len(t, all, 4)

	furniture, err := ListCatalogItems(app, CatalogFilter{Category: "Mobiliario"})
	require.NoError(t, err)
	assert.Len(t, furniture, 2)

	found, err := ListCatalogItems(app, CatalogFilter{Search: "carpa"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.True(t, found[0].BasePrice.Equal(dec("2500.00")))
	assert.Equal(t, 15, found[0].MinMarginPct)
	assert.Equal(t, 25, found[0].MaxMarginPct)
}

func TestLoadCatalogItem(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	rec := testhelpers.CreateTestCatalogItem(t, app, "Carpa", "Mobiliario", 99.99, 10, 20)

	item, err := LoadCatalogItem(app, rec.Id)
	require.NoError(t, err)
	assert.Equal(t, "Carpa", item.Name)
	assert.Equal(t, CatalogActive, item.Status)
	assert.True(t, item.BasePrice.Equal(dec("99.99")), "base %s", item.BasePrice)

	_, err = LoadCatalogItem(app, "doesnotexist123")
	assert.ErrorIs(t, err, ErrCatalogItemNotFound)
}

func TestCommitCatalogImport_Upserts(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	csv := "Nombre,Categoría,Precio base,Margen mínimo %,Margen máximo %\n" +
		"Carpa 10x10,mobiliario,\"$2,500.00\",15,25\n" +
		"Bocina,audio,800,20,40\n"

	validate := func() *ValidationResult {
		res, err := ValidateCatalogFile(strings.NewReader(csv), "catalogo.csv")
		require.NoError(t, err)
		require.Equal(t, 2, res.ValidRows)
		return res
	}

	first, err := CommitCatalogImport(app, validate().Rows)
	require.NoError(t, err)
	assert.Equal(t, 2, first.Created)
	assert.Equal(t, 0, first.Updated)
	assert.False(t, first.RolledBack)

	second, err := CommitCatalogImport(app, validate().Rows)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Created)
	assert.Equal(t, 2, second.Updated)

	items, err := ListCatalogItems(app, CatalogFilter{IncludeInactive: true})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Audio", items[0].Category)
	assert.True(t, items[1].BasePrice.Equal(dec("2500.00")), "base %s", items[1].BasePrice)
}

func TestCommitCatalogImport_ChunkRollback(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	var rows []CatalogImportRow
	for i := 0; i < importBatchSize+1; i++ {
		rows = append(rows, CatalogImportRow{
			Row: i + 2,
			Item: CatalogItem{
				Name:         fmt.Sprintf("Item %03d", i),
				Category:     "Varios",
				BasePrice:    dec("10.00"),
				MinMarginPct: 5,
				MaxMarginPct: 10,
				Status:       CatalogActive,
			},
		})
	}
	// An empty name fails the collection's required rule.
	rows[10].Item.Name = ""

	result, err := CommitCatalogImport(app, rows)
	require.NoError(t, err)
	assert.True(t, result.RolledBack)
	assert.Equal(t, importBatchSize, result.Failed)
	assert.Equal(t, 1, result.Created)
	require.NotEmpty(t, result.Errors)
	assert.Equal(t, 12, result.Errors[0].Row)

	items, err := ListCatalogItems(app, CatalogFilter{IncludeInactive: true})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Item 100", items[0].Name)
}
