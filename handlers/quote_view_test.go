package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"eventquotes/config"
	"eventquotes/testhelpers"
)

var sillaLine = testhelpers.TestQuoteLine{Name: "Silla Tiffany", BasePrice: 45, MarginPct: 10, MarginAmount: 4.5}

func TestHandleQuoteList_PartnerSeesOwn(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	ana := testhelpers.CreateTestPartner(t, app, "Ana", "")
	beto := testhelpers.CreateTestPartner(t, app, "Beto", "")
	testhelpers.CreateTestQuote(t, app, ana, "COT-A1", "draft", sillaLine)
	testhelpers.CreateTestQuote(t, app, ana, "COT-A2", "sent", sillaLine)
	testhelpers.CreateTestQuote(t, app, beto, "COT-B1", "draft", sillaLine)

	rec := httptest.NewRecorder()
	e := newAuthedRequestEvent(app, httptest.NewRequest(http.MethodGet, "/quotes", nil), rec, ana)
	runHandler(t, HandleQuoteList(app, config.Default()), e)

	assertStatus(t, rec, http.StatusOK)
	body := decodeBody(t, rec)
	if body["count"] != float64(2) {
		t.Errorf("count = %v, want 2", body["count"])
	}
	for _, q := range body["quotes"].([]any) {
		if q.(map[string]any)["partner_id"] != ana.Id {
			t.Errorf("partner saw another partner's quote: %v", q)
		}
	}
}

func TestHandleQuoteList_AdminSeesAll(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	ana := testhelpers.CreateTestPartner(t, app, "Ana", "")
	beto := testhelpers.CreateTestPartner(t, app, "Beto", "")
	admin := testhelpers.CreateTestSuperuser(t, app)
	testhelpers.CreateTestQuote(t, app, ana, "COT-A1", "draft", sillaLine)
	testhelpers.CreateTestQuote(t, app, beto, "COT-B1", "sent", sillaLine)

	rec := httptest.NewRecorder()
	e := newAuthedRequestEvent(app, httptest.NewRequest(http.MethodGet, "/quotes?status=sent", nil), rec, admin)
	runHandler(t, HandleQuoteList(app, config.Default()), e)

	assertStatus(t, rec, http.StatusOK)
	body := decodeBody(t, rec)
	if body["count"] != float64(1) {
		t.Errorf("count = %v, want 1 sent quote", body["count"])
	}
}

func TestHandleQuoteList_ExpiredFilter(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	ana := testhelpers.CreateTestPartner(t, app, "Ana", "")
	old := testhelpers.CreateTestQuote(t, app, ana, "COT-OLD", "sent", sillaLine)
	testhelpers.CreateTestQuote(t, app, ana, "COT-NEW", "sent", sillaLine)
	testhelpers.BackdateQuote(t, app, old.Id, 45*24*time.Hour)

	for _, tc := range []struct {
		status string
		want   string
	}{
		{"expired", "COT-OLD"},
		{"sent", "COT-NEW"},
	} {
		t.Run(tc.status, func(t *testing.T) {
			rec := httptest.NewRecorder()
			e := newAuthedRequestEvent(app, httptest.NewRequest(http.MethodGet, "/quotes?status="+tc.status, nil), rec, ana)
			runHandler(t, HandleQuoteList(app, config.Default()), e)

			assertStatus(t, rec, http.StatusOK)
			quotes := decodeBody(t, rec)["quotes"].([]any)
			if len(quotes) != 1 {
				t.Fatalf("got %d quotes, want 1", len(quotes))
			}
			if got := quotes[0].(map[string]any)["quote_number"]; got != tc.want {
				t.Errorf("quote_number = %v, want %s", got, tc.want)
			}
		})
	}
}

func TestHandleQuoteList_UnknownStatus(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	ana := testhelpers.CreateTestPartner(t, app, "Ana", "")

	rec := httptest.NewRecorder()
	e := newAuthedRequestEvent(app, httptest.NewRequest(http.MethodGet, "/quotes?status=archived", nil), rec, ana)
	runHandler(t, HandleQuoteList(app, config.Default()), e)

	assertStatus(t, rec, http.StatusBadRequest)
}

func TestHandleQuoteView(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	ana := testhelpers.CreateTestPartner(t, app, "Ana", "")
	beto := testhelpers.CreateTestPartner(t, app, "Beto", "")
	admin := testhelpers.CreateTestSuperuser(t, app)
	quote := testhelpers.CreateTestQuote(t, app, ana, "COT-A1", "draft", sillaLine)

	t.Run("owner", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/quotes/"+quote.Id, nil)
		req.SetPathValue("id", quote.Id)
		rec := httptest.NewRecorder()
		runHandler(t, HandleQuoteView(app, config.Default()), newAuthedRequestEvent(app, req, rec, ana))

		assertStatus(t, rec, http.StatusOK)
		body := decodeBody(t, rec)
		if body["quote_number"] != "COT-A1" {
			t.Errorf("quote_number = %v", body["quote_number"])
		}
		items, _ := body["items"].([]any)
		if len(items) != 1 {
			t.Fatalf("items = %d, want 1", len(items))
		}
		if items[0].(map[string]any)["total_price"] != "49.50" {
			t.Errorf("line total = %v, want 49.50", items[0].(map[string]any)["total_price"])
		}
	})

	t.Run("other partner gets 404", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/quotes/"+quote.Id, nil)
		req.SetPathValue("id", quote.Id)
		rec := httptest.NewRecorder()
		runHandler(t, HandleQuoteView(app, config.Default()), newAuthedRequestEvent(app, req, rec, beto))

		assertStatus(t, rec, http.StatusNotFound)
		assertErrorCode(t, rec, "quote_not_found")
	})

	t.Run("admin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/quotes/"+quote.Id, nil)
		req.SetPathValue("id", quote.Id)
		rec := httptest.NewRecorder()
		runHandler(t, HandleQuoteView(app, config.Default()), newAuthedRequestEvent(app, req, rec, admin))

		assertStatus(t, rec, http.StatusOK)
	})

	t.Run("missing", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/quotes/nope", nil)
		req.SetPathValue("id", "nope")
		rec := httptest.NewRecorder()
		runHandler(t, HandleQuoteView(app, config.Default()), newAuthedRequestEvent(app, req, rec, admin))

		assertStatus(t, rec, http.StatusNotFound)
	})
}

func TestHandleQuoteView_ExpiredIsDerived(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	ana := testhelpers.CreateTestPartner(t, app, "Ana", "")

	for _, stored := range []string{"sent", "accepted", "executed"} {
		t.Run(stored, func(t *testing.T) {
			quote := testhelpers.CreateTestQuote(t, app, ana, "COT-OLD-"+strings.ToUpper(stored), stored, sillaLine)
			testhelpers.BackdateQuote(t, app, quote.Id, 31*24*time.Hour)

			req := httptest.NewRequest(http.MethodGet, "/quotes/"+quote.Id, nil)
			req.SetPathValue("id", quote.Id)
			rec := httptest.NewRecorder()
			runHandler(t, HandleQuoteView(app, config.Default()), newAuthedRequestEvent(app, req, rec, ana))

			assertStatus(t, rec, http.StatusOK)
			body := decodeBody(t, rec)
			if body["status"] != "expired" || body["expired"] != true {
				t.Errorf("status = %v expired = %v, want expired", body["status"], body["expired"])
			}

			record, _ := app.FindRecordById("quotes", quote.Id)
			if record.GetString("status") != stored {
				t.Errorf("stored status rewritten to %q", record.GetString("status"))
			}
		})
	}
}
