package appwrite

import (
	"context"
	"io"
	"net/http"
	"testing"

	sonic "github.com/bytedance/sonic"
	"github.com/fvaskate/agency-api/internal/domain/roster"
)

func TestMemberRepository_ListMapsDocuments(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"total": 2,
			"documents": [
				{
					"$id": "m-2",
					"$createdAt": "2026-02-01T10:00:00Z",
					"$updatedAt": "2026-02-05T10:00:00Z",
					"name": "Carla Pasquinelli",
					"role": "STREET ATHLETE",
					"country": "ITALY",
					"image": "https://cdn.example.com/carla.jpg",
					"achievements": ["World Games 2025"],
					"category": "senior-women"
				},
				{
					"$id": "m-1",
					"$createdAt": "not-a-timestamp",
					"name": "Anna Royo",
					"role": "ATHLETE",
					"category": "senior-women"
				}
			]
		}`))
	}))
	repo := NewMemberRepository(client, "team-members")

	members, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("list members: %v", err)
	}
	if len(members) != 2 {
		t.Fatalf("expected 2 members, got %d", len(members))
	}

	first := members[0]
	if first.ID != "m-2" || first.Name != "Carla Pasquinelli" {
		t.Fatalf("unexpected first member: %+v", first)
	}
	if first.Category != roster.CategorySeniorWomen {
		t.Fatalf("unexpected category: %q", first.Category)
	}
	if first.CreatedAt.IsZero() {
		t.Fatalf("expected parsed createdAt")
	}
	if !members[1].CreatedAt.IsZero() {
		t.Fatalf("unparseable createdAt must map to zero time")
	}
}

func TestMemberRepository_CreateRequestsServerID(t *testing.T) {
	var payload map[string]any
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		if err := sonic.Unmarshal(raw, &payload); err != nil {
			t.Errorf("decode create payload: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{
			"$id": "m-9",
			"$createdAt": "2026-03-01T09:00:00Z",
			"$updatedAt": "2026-03-01T09:00:00Z",
			"name": "Timati Carle",
			"role": "ATHLETE",
			"category": "junior-men",
			"achievements": []
		}`))
	}))
	repo := NewMemberRepository(client, "team-members")

	created, err := repo.Create(context.Background(), roster.Member{
		Name:     "Timati Carle",
		Role:     "ATHLETE",
		Category: roster.CategoryJuniorMen,
	})
	if err != nil {
		t.Fatalf("create member: %v", err)
	}

	if payload["documentId"] != "unique()" {
		t.Fatalf("expected server-assigned document id, got %v", payload["documentId"])
	}
	data, _ := payload["data"].(map[string]any)
	if data["name"] != "Timati Carle" {
		t.Fatalf("unexpected data payload: %v", payload["data"])
	}
	if _, ok := data["achievements"]; !ok {
		t.Fatalf("achievements must always be sent, got %v", data)
	}

	if created.ID != "m-9" {
		t.Fatalf("unexpected created id: %q", created.ID)
	}
	if created.CreatedAt.IsZero() {
		t.Fatalf("expected store timestamps on created member")
	}
}

func TestMemberRepository_UpdateSendsOnlyPatchedFields(t *testing.T) {
	var (
		method  string
		path    string
		payload map[string]any
	)
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		path = r.URL.Path
		raw, _ := io.ReadAll(r.Body)
		if err := sonic.Unmarshal(raw, &payload); err != nil {
			t.Errorf("decode update payload: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"$id":"m-1"}`))
	}))
	repo := NewMemberRepository(client, "team-members")

	role := "COACH"
	if err := repo.Update(context.Background(), "m-1", roster.Patch{Role: &role}); err != nil {
		t.Fatalf("update member: %v", err)
	}

	if method != http.MethodPatch {
		t.Fatalf("expected PATCH, got %s", method)
	}
	if path != "/databases/main/collections/team-members/documents/m-1" {
		t.Fatalf("unexpected path: %s", path)
	}
	data, _ := payload["data"].(map[string]any)
	if len(data) != 1 || data["role"] != "COACH" {
		t.Fatalf("expected only the patched field, got %v", data)
	}
}
