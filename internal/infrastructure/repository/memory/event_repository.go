package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/fvaskate/agency-api/internal/domain/event"
	"github.com/fvaskate/agency-api/internal/domain/gateway"
	idgen "github.com/fvaskate/agency-api/internal/platform/id"
)

// EventRepository is an in-process stand-in for the hosted events collection.
type EventRepository struct {
	mu     sync.RWMutex
	events []event.Event
	ids    idgen.Generator
	now    func() time.Time
}

func NewEventRepository(events []event.Event) *EventRepository {
	out := make([]event.Event, 0, len(events))
	for _, item := range events {
		out = append(out, item.Normalize())
	}

	return &EventRepository{
		events: out,
		ids:    idgen.NewRandomGenerator(),
		now:    time.Now,
	}
}

func (r *EventRepository) List(_ context.Context) ([]event.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]event.Event, 0, len(r.events))
	out = append(out, r.events...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	return out, nil
}

func (r *EventRepository) Create(_ context.Context, item event.Event) (event.Event, error) {
	id, err := r.ids.NewID()
	if err != nil {
		return event.Event{}, gateway.Wrap("create", "events", err)
	}

	now := r.now()
	item = item.Normalize()
	item.ID = id
	item.CreatedAt = now
	item.UpdatedAt = now

	r.mu.Lock()
	r.events = append(r.events, item)
	r.mu.Unlock()

	return item, nil
}

func (r *EventRepository) Update(_ context.Context, id string, patch event.Patch) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for idx := range r.events {
		if r.events[idx].ID == id {
			updated := patch.Apply(r.events[idx])
			updated.UpdatedAt = r.now()
			r.events[idx] = updated
			return nil
		}
	}

	return gateway.Wrap("update", "events", fmt.Errorf("event %s: %w", id, gateway.ErrNotFound))
}

func (r *EventRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for idx := range r.events {
		if r.events[idx].ID == id {
			r.events = append(r.events[:idx], r.events[idx+1:]...)
			return nil
		}
	}

	return gateway.Wrap("delete", "events", fmt.Errorf("event %s: %w", id, gateway.ErrNotFound))
}
