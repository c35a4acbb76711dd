package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	sonic "github.com/bytedance/sonic"
	"github.com/fvaskate/agency-api/internal/infrastructure/repository/memory"
	"github.com/fvaskate/agency-api/internal/platform/logging"
	"github.com/fvaskate/agency-api/internal/usecase"
)

const testAdminToken = "test-admin-token"

type fixedUploader struct{ url string }

func (u fixedUploader) Upload(context.Context, []byte, string, string) (string, error) {
	return u.url, nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	memberRepo := memory.NewMemberRepository(nil)
	eventRepo := memory.NewEventRepository(nil)
	store := usecase.NewContentStore(memberRepo, eventRepo, fixedUploader{url: "https://cdn.example.com/img.jpg"}, nil, logging.NewNop())
	if err := store.Init(t.Context()); err != nil {
		t.Fatalf("init store: %v", err)
	}
	reconciler := usecase.NewReconcileService(memberRepo, eventRepo, logging.NewNop())
	handler := NewHandler(store, reconciler, logging.NewNop())

	return NewRouter(handler, logging.NewNop(), false, []string{"*"}, testAdminToken)
}

func doJSON(t *testing.T, router http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("X-Admin-Token", token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var envelope struct {
		APIVersion string         `json:"apiVersion"`
		Data       map[string]any `json:"data"`
	}
	if err := sonic.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode envelope: %v (body %s)", err, rec.Body.String())
	}

	return envelope.Data
}

func TestRouter_ContentSnapshot(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/v1/content", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	data := decodeData(t, rec)
	if data["state"] != "ready" {
		t.Fatalf("expected ready state, got %v", data["state"])
	}
	if _, ok := data["teamMembers"]; !ok {
		t.Fatalf("expected teamMembers key, got %v", data)
	}
	if _, ok := data["events"]; !ok {
		t.Fatalf("expected events key, got %v", data)
	}
}

func TestRouter_AdminRoutesRequireToken(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/v1/admin/team", "", `{"name":"Anna Royo","role":"ATHLETE","category":"senior-women"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPost, "/v1/admin/refresh", "wrong", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with wrong token, got %d", rec.Code)
	}
}

func TestRouter_TeamMemberLifecycle(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/v1/admin/team", testAdminToken,
		`{"name":"Carla Pasquinelli","role":"STREET ATHLETE","country":"ITALY","category":"senior-women"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	created := decodeData(t, rec)
	memberID, _ := created["id"].(string)
	if memberID == "" {
		t.Fatalf("expected member id in response, got %v", created)
	}
	if created["image"] == "" {
		t.Fatalf("expected image to be populated")
	}

	rec = doJSON(t, router, http.MethodPatch, "/v1/admin/team/"+memberID, testAdminToken, `{"role":"URBAN ATHLETE"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodGet, "/v1/team", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "URBAN ATHLETE") {
		t.Fatalf("expected patched role in listing: %s", rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodDelete, "/v1/admin/team/"+memberID, testAdminToken, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	rec = doJSON(t, router, http.MethodGet, "/v1/team", "", "")
	if strings.Contains(rec.Body.String(), memberID) {
		t.Fatalf("deleted member still listed: %s", rec.Body.String())
	}
}

func TestRouter_EventLifecycleBySlug(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/v1/admin/events", testAdminToken,
		`{"name":"Spring Skating Championship","date":"Friday 17. Oct. 2026","location":"Kigali Arena"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	created := decodeData(t, rec)
	if created["slug"] != "spring-skating-championship" {
		t.Fatalf("unexpected slug: %v", created["slug"])
	}
	if created["isFVAEvent"] != true {
		t.Fatalf("expected isFVAEvent default true, got %v", created["isFVAEvent"])
	}

	rec = doJSON(t, router, http.MethodGet, "/v1/events/spring-skating-championship", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 fetching by slug, got %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPatch, "/v1/admin/events/spring-skating-championship", testAdminToken,
		`{"venue":"Kigali Arena - Indoor Track","registration":{"deadline":"October 10, 2026","regularFee":"15,000 Rwf"}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodGet, "/v1/events/spring-skating-championship", "", "")
	fetched := decodeData(t, rec)
	if fetched["venue"] != "Kigali Arena - Indoor Track" {
		t.Fatalf("expected patched venue, got %v", fetched["venue"])
	}

	rec = doJSON(t, router, http.MethodDelete, "/v1/admin/events/spring-skating-championship", testAdminToken, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodGet, "/v1/events/spring-skating-championship", "", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", rec.Code)
	}
}

func TestRouter_RejectsUnknownPayloadFields(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/v1/admin/team", testAdminToken,
		`{"name":"Anna","role":"ATHLETE","category":"senior-women","surprise":true}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown field, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRouter_RejectsLegacyCategory(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/v1/admin/team", testAdminToken,
		`{"name":"Anna","role":"ATHLETE","category":"senior-ladies"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for retired category, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRouter_ReconcileSingleCollection(t *testing.T) {
	router := newTestRouter(t)

	for i := 0; i < 2; i++ {
		rec := doJSON(t, router, http.MethodPost, "/v1/admin/team", testAdminToken,
			`{"name":"Anna Royo","role":"ATHLETE","category":"senior-women"}`)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
	}

	rec := doJSON(t, router, http.MethodPost, "/v1/admin/reconcile", testAdminToken, `{"collection":"team"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	report := decodeData(t, rec)
	if deleted, _ := report["deleted"].(float64); deleted != 1 {
		t.Fatalf("expected one duplicate deleted, got %v", report["deleted"])
	}
	if kept, _ := report["kept"].(float64); kept != 1 {
		t.Fatalf("expected one survivor, got %v", report["kept"])
	}
}
