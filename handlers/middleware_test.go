package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"eventquotes/services"
	"eventquotes/testhelpers"
)

func TestGetActor_FromContext(t *testing.T) {
	expected := services.Actor{Role: services.RolePartner, PartnerID: "p1"}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(context.WithValue(req.Context(), ActorKey, expected))

	got, ok := GetActor(req)
	if !ok {
		t.Fatal("expected actor in context")
	}
	if got != expected {
		t.Errorf("GetActor = %+v, want %+v", got, expected)
	}
}

func TestGetActor_NotInContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, ok := GetActor(req); ok {
		t.Error("expected no actor")
	}
}

func TestResolveActor(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	partner := testhelpers.CreateTestPartner(t, app, "Ana López", "Eventos Ana")
	admin := testhelpers.CreateTestSuperuser(t, app)

	got, err := resolveActor(partner)
	if err != nil {
		t.Fatalf("partner: %v", err)
	}
	if got.Role != services.RolePartner || got.PartnerID != partner.Id {
		t.Errorf("partner actor = %+v", got)
	}

	got, err = resolveActor(admin)
	if err != nil {
		t.Fatalf("admin: %v", err)
	}
	if got.Role != services.RoleAdmin || got.PartnerID != "" {
		t.Errorf("admin actor = %+v", got)
	}

	if _, err := resolveActor(nil); err != errUnauthenticated {
		t.Errorf("nil auth: err = %v, want errUnauthenticated", err)
	}
}

func TestActorMiddleware_StoresActor(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	partner := testhelpers.CreateTestPartner(t, app, "Ana", "")

	rec := httptest.NewRecorder()
	e := newAuthedRequestEvent(app, httptest.NewRequest(http.MethodGet, "/quotes", nil), rec, partner)

	// No next handler is attached, so Next is a no-op.
	if err := ActorMiddleware()(e); err != nil {
		t.Fatalf("middleware returned error: %v", err)
	}

	got, ok := GetActor(e.Request)
	if !ok {
		t.Fatal("expected actor stored in request context")
	}
	if got.PartnerID != partner.Id {
		t.Errorf("PartnerID = %q, want %q", got.PartnerID, partner.Id)
	}
}

func TestActorMiddleware_Anonymous(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, httptest.NewRequest(http.MethodGet, "/q/abc", nil), rec)

	if err := ActorMiddleware()(e); err != nil {
		t.Fatalf("middleware returned error: %v", err)
	}
	if _, ok := GetActor(e.Request); ok {
		t.Error("anonymous request should carry no actor")
	}
}

func TestRequireActor(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	partner := testhelpers.CreateTestPartner(t, app, "Ana", "")
	admin := testhelpers.CreateTestSuperuser(t, app)

	t.Run("anonymous is 401", func(t *testing.T) {
		rec := httptest.NewRecorder()
		e := newTestRequestEvent(app, httptest.NewRequest(http.MethodGet, "/quotes", nil), rec)
		if _, ok, _ := requireActor(e); ok {
			t.Fatal("expected requireActor to stop the request")
		}
		assertStatus(t, rec, http.StatusUnauthorized)
	})

	t.Run("wrong role is 403", func(t *testing.T) {
		rec := httptest.NewRecorder()
		e := newAuthedRequestEvent(app, httptest.NewRequest(http.MethodPost, "/quotes", nil), rec, admin)
		if _, ok, _ := requireActor(e, services.RolePartner); ok {
			t.Fatal("expected admin to be refused")
		}
		assertStatus(t, rec, http.StatusForbidden)
	})

	t.Run("matching role passes", func(t *testing.T) {
		rec := httptest.NewRecorder()
		e := newAuthedRequestEvent(app, httptest.NewRequest(http.MethodPost, "/quotes", nil), rec, partner)
		actor, ok, err := requireActor(e, services.RolePartner)
		if !ok || err != nil {
			t.Fatalf("requireActor = (%v, %v)", ok, err)
		}
		if actor.PartnerID != partner.Id {
			t.Errorf("PartnerID = %q", actor.PartnerID)
		}
	})
}
