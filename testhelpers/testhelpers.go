// Package testhelpers provides utilities for testing PocketBase-based applications.
package testhelpers

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"eventquotes/collections"
)

const testPassword = "test-password-123"

// NewTestApp creates a PocketBase instance backed by a temporary directory.
// It bootstraps the app and runs collections.Setup to create all tables.
// The temporary directory is cleaned up automatically when the test finishes.
func NewTestApp(t *testing.T) *pocketbase.PocketBase {
	t.Helper()

	tmpDir := t.TempDir()
	app := pocketbase.NewWithConfig(pocketbase.Config{
		DefaultDataDir: tmpDir,
	})

	if err := app.Bootstrap(); err != nil {
		t.Fatalf("failed to bootstrap test app: %v", err)
	}

	collections.Setup(app)

	return app
}

// CreateTestPartner creates a partner account and returns its auth record.
func CreateTestPartner(t *testing.T, app *pocketbase.PocketBase, name, company string) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("partners")
	if err != nil {
		t.Fatalf("failed to find partners collection: %v", err)
	}

	record := core.NewRecord(col)
	record.SetEmail(emailFor(name))
	record.SetPassword(testPassword)
	record.Set("name", name)
	record.Set("company", company)

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test partner: %v", err)
	}

	return record
}

// CreateTestSuperuser creates an administrator account.
func CreateTestSuperuser(t *testing.T, app *pocketbase.PocketBase) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId(core.CollectionNameSuperusers)
	if err != nil {
		t.Fatalf("failed to find superusers collection: %v", err)
	}

	record := core.NewRecord(col)
	record.SetEmail(fmt.Sprintf("admin-%d@example.com", time.Now().UnixNano()))
	record.SetPassword(testPassword)

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test superuser: %v", err)
	}

	return record
}

// CreateTestCatalogItem creates an active catalog item.
func CreateTestCatalogItem(t *testing.T, app *pocketbase.PocketBase, name, category string, basePrice float64, minMargin, maxMargin int) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("catalog_items")
	if err != nil {
		t.Fatalf("failed to find catalog_items collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("name", name)
	record.Set("category", category)
	record.Set("unit", "pieza")
	record.Set("base_price", basePrice)
	record.Set("min_margin_pct", minMargin)
	record.Set("max_margin_pct", maxMargin)
	record.Set("status", "active")

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test catalog item: %v", err)
	}

	return record
}

// SetCatalogItemStatus switches a catalog item between active and inactive.
func SetCatalogItemStatus(t *testing.T, app *pocketbase.PocketBase, record *core.Record, status string) {
	t.Helper()

	record.Set("status", status)
	if err := app.Save(record); err != nil {
		t.Fatalf("failed to update catalog item status: %v", err)
	}
}

// TestQuoteLine is one line of a quote created by CreateTestQuote.
type TestQuoteLine struct {
	Name         string
	BasePrice    float64
	MarginPct    int
	MarginAmount float64
}

// CreateTestQuote stores a quote with the given lines directly as records.
// Totals are summed from the lines with a 16% tax on the subtotal.
func CreateTestQuote(t *testing.T, app *pocketbase.PocketBase, partner *core.Record, quoteNumber, status string, lines ...TestQuoteLine) *core.Record {
	t.Helper()

	quotesCol, err := app.FindCollectionByNameOrId("quotes")
	if err != nil {
		t.Fatalf("failed to find quotes collection: %v", err)
	}
	itemsCol, err := app.FindCollectionByNameOrId("quote_items")
	if err != nil {
		t.Fatalf("failed to find quote_items collection: %v", err)
	}

	var subtotal, margin float64
	for _, l := range lines {
		subtotal += l.BasePrice
		margin += l.MarginAmount
	}
	tax := subtotal * 0.16

	record := core.NewRecord(quotesCol)
	record.Set("quote_number", quoteNumber)
	record.Set("partner", partner.Id)
	record.Set("partner_name", partner.GetString("name"))
	record.Set("partner_email", partner.Email())
	record.Set("partner_company", partner.GetString("company"))
	record.Set("client_name", "Cliente de Prueba")
	record.Set("client_email", "cliente@example.com")
	record.Set("subtotal", subtotal)
	record.Set("total_margin", margin)
	record.Set("tax_rate_pct", 16)
	record.Set("tax", tax)
	record.Set("total", subtotal+margin+tax)
	record.Set("status", status)

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test quote: %v", err)
	}

	for i, l := range lines {
		item := core.NewRecord(itemsCol)
		item.Set("quote", record.Id)
		item.Set("sort_order", i+1)
		item.Set("name", l.Name)
		item.Set("base_price", l.BasePrice)
		item.Set("margin_pct", l.MarginPct)
		item.Set("margin_amount", l.MarginAmount)
		item.Set("total_price", l.BasePrice+l.MarginAmount)
		if err := app.Save(item); err != nil {
			t.Fatalf("failed to save test quote item: %v", err)
		}
	}

	return record
}

// BackdateQuote moves a quote's creation time into the past.
func BackdateQuote(t *testing.T, app *pocketbase.PocketBase, quoteID string, age time.Duration) {
	t.Helper()

	created := time.Now().UTC().Add(-age).Format("2006-01-02 15:04:05.000Z")
	_, err := app.DB().NewQuery("UPDATE quotes SET created = {:created} WHERE id = {:id}").
		Bind(map[string]any{"created": created, "id": quoteID}).
		Execute()
	if err != nil {
		t.Fatalf("failed to backdate quote: %v", err)
	}
}

// AssertHTMLContains checks that body contains all specified fragments.
func AssertHTMLContains(t *testing.T, body string, fragments ...string) {
	t.Helper()

	for _, frag := range fragments {
		if !strings.Contains(body, frag) {
			t.Errorf("expected HTML to contain %q, but it was not found\nbody (first 500 chars): %s",
				frag, truncate(body, 500))
		}
	}
}

func emailFor(name string) string {
	local := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '.' {
			return r
		}
		return -1
	}, strings.ToLower(strings.Join(strings.Fields(name), ".")))
	if local == "" || strings.HasPrefix(local, ".") {
		local = "partner"
	}
	return fmt.Sprintf("%s-%d@example.com", local, time.Now().UnixNano())
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
