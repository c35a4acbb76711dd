package appwrite

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fvaskate/agency-api/internal/domain/gateway"
	"github.com/fvaskate/agency-api/internal/platform/logging"
	"github.com/fvaskate/agency-api/internal/platform/resilience"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(ClientConfig{
		BaseURL:        srv.URL,
		ProjectID:      "agency-site",
		APIKey:         "key-123",
		DatabaseID:     "main",
		Logger:         logging.NewNop(),
		CircuitBreaker: resilience.CircuitBreakerConfig{Enabled: false},
	})
}

func TestClient_ListSendsAuthAndOrdering(t *testing.T) {
	var captured *http.Request
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = r.Clone(r.Context())
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"total":0,"documents":[]}`))
	}))

	var envelope struct {
		Total     int   `json:"total"`
		Documents []any `json:"documents"`
	}
	if err := client.listDocuments(context.Background(), "team-members", &envelope); err != nil {
		t.Fatalf("list documents: %v", err)
	}

	if captured.URL.Path != "/databases/main/collections/team-members/documents" {
		t.Fatalf("unexpected path: %s", captured.URL.Path)
	}
	if got := captured.URL.Query().Get("queries[]"); got != `orderDesc("$createdAt")` {
		t.Fatalf("unexpected ordering query: %q", got)
	}
	if captured.Header.Get("X-Appwrite-Project") != "agency-site" {
		t.Fatalf("missing project header")
	}
	if captured.Header.Get("X-Appwrite-Key") != "key-123" {
		t.Fatalf("missing api key header")
	}
}

func TestClient_NotFoundMapsToSentinel(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"Document not found","code":404,"type":"document_not_found"}`))
	}))

	err := client.deleteDocument(context.Background(), "events", "missing")
	if !errors.Is(err, gateway.ErrNotFound) {
		t.Fatalf("expected gateway.ErrNotFound, got %v", err)
	}
}

func TestClient_RemoteRejectionSurfacesMessage(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Invalid API key","code":401,"type":"user_unauthorized"}`))
	}))

	err := client.updateDocument(context.Background(), "team-members", "m-1", map[string]any{"role": "COACH"})
	if err == nil {
		t.Fatalf("expected error from 401 response")
	}
	if got := err.Error(); !strings.Contains(got, "Invalid API key") {
		t.Fatalf("expected remote message in error, got %q", got)
	}
	if IsTransient(err) {
		t.Fatalf("remote rejection must not count as transient")
	}
}

func TestClient_CircuitOpensAfterTransportFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	client := NewClient(ClientConfig{
		BaseURL:    srv.URL,
		ProjectID:  "agency-site",
		APIKey:     "key-123",
		DatabaseID: "main",
		Logger:     logging.NewNop(),
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          true,
			FailureThreshold: 1,
			OpenTimeout:      time.Minute,
			HalfOpenMaxReq:   1,
		},
	})

	err := client.deleteDocument(context.Background(), "events", "e-1")
	if err == nil {
		t.Fatalf("expected transport error against closed server")
	}
	if !IsTransient(err) {
		t.Fatalf("transport failure must be transient, got %v", err)
	}

	err = client.deleteDocument(context.Background(), "events", "e-1")
	if !errors.Is(err, resilience.ErrCircuitOpen) {
		t.Fatalf("expected open circuit on second call, got %v", err)
	}
}

func TestParseDocTime_Tolerant(t *testing.T) {
	parsed := parseDocTime("2026-03-01T09:30:00Z")
	if parsed.IsZero() {
		t.Fatalf("expected valid RFC3339 timestamp to parse")
	}
	if !parseDocTime("yesterday-ish").IsZero() {
		t.Fatalf("expected garbage timestamp to map to zero time")
	}
	if !parseDocTime("").IsZero() {
		t.Fatalf("expected empty timestamp to map to zero time")
	}
}
