package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fvaskate/agency-api/internal/domain/event"
	"github.com/fvaskate/agency-api/internal/domain/roster"
	"github.com/fvaskate/agency-api/internal/infrastructure/repository/memory"
	"github.com/fvaskate/agency-api/internal/platform/logging"
)

type deleteFailingMemberRepo struct {
	*memory.MemberRepository
	failIDs map[string]error
}

func (r *deleteFailingMemberRepo) Delete(ctx context.Context, id string) error {
	if err, ok := r.failIDs[id]; ok {
		return err
	}
	return r.MemberRepository.Delete(ctx, id)
}

func TestReconcileService_KeepsNewestDuplicate(t *testing.T) {
	base := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)
	memberRepo := memory.NewMemberRepository([]roster.Member{
		seedMember("m-old", "Anna Royo", base),
		seedMember("m-mid", "anna royo ", base.Add(time.Minute)),
		seedMember("m-new", "Anna Royo", base.Add(2*time.Minute)),
		seedMember("m-solo", "Ben Brillante", base.Add(3*time.Minute)),
	})
	service := NewReconcileService(memberRepo, memory.NewEventRepository(nil), logging.NewNop())

	report, err := service.Reconcile(t.Context(), CollectionTeam)
	if err != nil {
		t.Fatalf("reconcile team: %v", err)
	}
	if report.Scanned != 4 || report.Kept != 2 {
		t.Fatalf("unexpected report: scanned=%d kept=%d", report.Scanned, report.Kept)
	}
	if report.Deleted() != 2 || report.Failed() != 0 {
		t.Fatalf("expected 2 clean deletions, got deleted=%d failed=%d", report.Deleted(), report.Failed())
	}

	remaining, err := memberRepo.List(t.Context())
	if err != nil {
		t.Fatalf("list after reconcile: %v", err)
	}
	ids := make(map[string]bool, len(remaining))
	for _, member := range remaining {
		ids[member.ID] = true
	}
	if !ids["m-new"] || !ids["m-solo"] {
		t.Fatalf("survivors missing, got %v", ids)
	}
	if ids["m-old"] || ids["m-mid"] {
		t.Fatalf("older duplicates survived, got %v", ids)
	}
}

func TestReconcileService_ContinuesPastFailedDeletion(t *testing.T) {
	base := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)
	repo := &deleteFailingMemberRepo{
		MemberRepository: memory.NewMemberRepository([]roster.Member{
			seedMember("m-1", "Anna Royo", base),
			seedMember("m-2", "Anna Royo", base.Add(time.Minute)),
			seedMember("m-3", "Anna Royo", base.Add(2*time.Minute)),
		}),
		failIDs: map[string]error{"m-2": errors.New("document store returned status 503")},
	}
	service := NewReconcileService(repo, memory.NewEventRepository(nil), logging.NewNop())

	report, err := service.Reconcile(t.Context(), CollectionTeam)
	if err != nil {
		t.Fatalf("reconcile team: %v", err)
	}
	if report.Deleted() != 1 || report.Failed() != 1 {
		t.Fatalf("expected one deletion and one failure, got deleted=%d failed=%d", report.Deleted(), report.Failed())
	}

	remaining, err := repo.List(t.Context())
	if err != nil {
		t.Fatalf("list after reconcile: %v", err)
	}
	if len(remaining) != 2 {
		t.Fatalf("expected survivor plus stuck duplicate, got %d members", len(remaining))
	}
	for _, member := range remaining {
		if member.ID == "m-1" {
			t.Fatalf("failed deletion of m-2 must not spare m-1")
		}
	}
}

func TestReconcileService_EventsKeyBySlug(t *testing.T) {
	base := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	eventRepo := memory.NewEventRepository([]event.Event{
		{ID: "e-1", Name: "Spring Jam", Slug: "spring-jam", Date: "2026-05-20", CreatedAt: base},
		{ID: "e-2", Name: "Renamed Later", Slug: "spring-jam", Date: "2026-05-20", CreatedAt: base.Add(time.Minute)},
		{ID: "e-3", Name: "Night Sprint", Date: "2026-06-01", CreatedAt: base.Add(2 * time.Minute)},
	})
	service := NewReconcileService(memory.NewMemberRepository(nil), eventRepo, logging.NewNop())

	report, err := service.Reconcile(t.Context(), CollectionEvents)
	if err != nil {
		t.Fatalf("reconcile events: %v", err)
	}
	if report.Kept != 2 || report.Deleted() != 1 {
		t.Fatalf("unexpected report: kept=%d deleted=%d", report.Kept, report.Deleted())
	}

	remaining, err := eventRepo.List(t.Context())
	if err != nil {
		t.Fatalf("list after reconcile: %v", err)
	}
	for _, item := range remaining {
		if item.ID == "e-1" {
			t.Fatalf("older slug duplicate survived")
		}
	}
}

func TestReconcileService_RejectsUnknownCollection(t *testing.T) {
	service := NewReconcileService(memory.NewMemberRepository(nil), memory.NewEventRepository(nil), logging.NewNop())

	_, err := service.Reconcile(t.Context(), Collection("players"))
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestReconcileService_ReconcileAllCoversBothCollections(t *testing.T) {
	base := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)
	memberRepo := memory.NewMemberRepository([]roster.Member{
		seedMember("m-1", "Anna Royo", base),
		seedMember("m-2", "Anna Royo", base.Add(time.Minute)),
	})
	eventRepo := memory.NewEventRepository([]event.Event{
		{ID: "e-1", Name: "Spring Jam", Slug: "spring-jam", Date: "2026-05-20", CreatedAt: base},
	})
	service := NewReconcileService(memberRepo, eventRepo, logging.NewNop())

	results, err := service.ReconcileAll(t.Context(), 2)
	if err != nil {
		t.Fatalf("reconcile all: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected one result per collection, got %d", len(results))
	}

	byCollection := make(map[Collection]ReconcileTaskResult, len(results))
	for _, result := range results {
		byCollection[result.Collection] = result
	}
	if byCollection[CollectionTeam].Status != reconcileStatusSuccess || byCollection[CollectionTeam].Deleted != 1 {
		t.Fatalf("unexpected team result: %+v", byCollection[CollectionTeam])
	}
	if byCollection[CollectionEvents].Status != reconcileStatusSuccess || byCollection[CollectionEvents].Deleted != 0 {
		t.Fatalf("unexpected events result: %+v", byCollection[CollectionEvents])
	}
}
