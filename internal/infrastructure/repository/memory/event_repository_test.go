package memory

import (
	"context"
	"testing"
	"time"

	"github.com/fvaskate/agency-api/internal/domain/event"
)

func TestEventRepository_ConstructorNormalizes(t *testing.T) {
	repo := NewEventRepository([]event.Event{
		{ID: "e-1", Name: "Spring Jam", Date: "April 2026", CreatedAt: time.Now()},
	})

	events, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].Slug != "spring-jam" {
		t.Fatalf("expected slug derived from name, got %q", events[0].Slug)
	}
	if events[0].Status != event.StatusUpcoming {
		t.Fatalf("expected default status, got %q", events[0].Status)
	}
	if events[0].Link != event.DefaultLink {
		t.Fatalf("expected default link, got %q", events[0].Link)
	}
}

func TestEventRepository_UpdateAppliesPatch(t *testing.T) {
	repo := NewEventRepository(nil)

	created, err := repo.Create(context.Background(), event.Event{
		Name: "Night Sprint Series",
		Date: "June 2026",
	})
	if err != nil {
		t.Fatalf("create event: %v", err)
	}

	venue := "Kigali Arena"
	status := event.StatusOngoing
	if err := repo.Update(context.Background(), created.ID, event.Patch{Venue: &venue, Status: &status}); err != nil {
		t.Fatalf("update event: %v", err)
	}

	events, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if events[0].Venue != "Kigali Arena" {
		t.Fatalf("expected patched venue, got %q", events[0].Venue)
	}
	if events[0].Status != event.StatusOngoing {
		t.Fatalf("expected patched status, got %q", events[0].Status)
	}
	if !events[0].UpdatedAt.After(events[0].CreatedAt) && !events[0].UpdatedAt.Equal(events[0].CreatedAt) {
		t.Fatalf("expected updatedAt to advance")
	}
}
