package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/fvaskate/agency-api/internal/domain/event"
	"github.com/fvaskate/agency-api/internal/domain/roster"
	"github.com/fvaskate/agency-api/internal/platform/logging"
	"github.com/panjf2000/ants/v2"
)

// Collection names the two synchronized collections.
type Collection string

const (
	CollectionTeam   Collection = "team"
	CollectionEvents Collection = "events"
)

const (
	reconcileStatusSuccess = "success"
	reconcileStatusFailed  = "failed"
)

// ReconcileOutcome records one duplicate targeted for deletion.
type ReconcileOutcome struct {
	ID  string
	Key string
	Err error
}

// ReconcileReport summarizes one reconciliation pass over a collection.
type ReconcileReport struct {
	Collection Collection
	Scanned    int
	Kept       int
	Outcomes   []ReconcileOutcome
}

// Deleted counts duplicates actually removed.
func (r ReconcileReport) Deleted() int {
	count := 0
	for _, outcome := range r.Outcomes {
		if outcome.Err == nil {
			count++
		}
	}
	return count
}

func (r ReconcileReport) Failed() int {
	return len(r.Outcomes) - r.Deleted()
}

// ReconcileTaskResult is one collection's slice of a combined pass.
type ReconcileTaskResult struct {
	Collection Collection `json:"collection"`
	Status     string     `json:"status"`
	Deleted    int        `json:"deleted"`
	Failed     int        `json:"failed"`
	DurationMs int64      `json:"duration_ms"`
	Message    string     `json:"message,omitempty"`
}

// ReconcileService removes same-named duplicates that non-idempotent create
// retries leave behind. It runs out-of-band, never on the read path.
type ReconcileService struct {
	memberRepo roster.Repository
	eventRepo  event.Repository
	logger     *logging.Logger
}

func NewReconcileService(memberRepo roster.Repository, eventRepo event.Repository, logger *logging.Logger) *ReconcileService {
	if logger == nil {
		logger = logging.Default()
	}

	return &ReconcileService{
		memberRepo: memberRepo,
		eventRepo:  eventRepo,
		logger:     logger,
	}
}

// Reconcile scans one collection newest-first, groups records by natural key
// (lowercase-trimmed name for team members, slug falling back to name for
// events), keeps the first-seen member of each group and deletes the rest
// sequentially. One failed deletion does not stop the others.
func (s *ReconcileService) Reconcile(ctx context.Context, collection Collection) (ReconcileReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ReconcileService.Reconcile")
	defer span.End()

	switch collection {
	case CollectionTeam:
		return s.reconcileTeam(ctx)
	case CollectionEvents:
		return s.reconcileEvents(ctx)
	default:
		return ReconcileReport{}, fmt.Errorf("%w: unknown collection %q", ErrInvalidInput, collection)
	}
}

func (s *ReconcileService) reconcileTeam(ctx context.Context) (ReconcileReport, error) {
	members, err := s.memberRepo.List(ctx)
	if err != nil {
		return ReconcileReport{}, fmt.Errorf("list team members: %w", err)
	}

	keyed := make([]keyedRecord, 0, len(members))
	for _, member := range members {
		keyed = append(keyed, keyedRecord{id: member.ID, key: naturalKey(member.Name)})
	}

	return s.deleteDuplicates(ctx, CollectionTeam, keyed, func(ctx context.Context, id string) error {
		return s.memberRepo.Delete(ctx, id)
	}), nil
}

func (s *ReconcileService) reconcileEvents(ctx context.Context) (ReconcileReport, error) {
	events, err := s.eventRepo.List(ctx)
	if err != nil {
		return ReconcileReport{}, fmt.Errorf("list events: %w", err)
	}

	keyed := make([]keyedRecord, 0, len(events))
	for _, item := range events {
		identifier := item.Slug
		if strings.TrimSpace(identifier) == "" {
			identifier = item.Name
		}
		keyed = append(keyed, keyedRecord{id: item.ID, key: naturalKey(identifier)})
	}

	return s.deleteDuplicates(ctx, CollectionEvents, keyed, func(ctx context.Context, id string) error {
		return s.eventRepo.Delete(ctx, id)
	}), nil
}

type keyedRecord struct {
	id  string
	key string
}

// deleteDuplicates expects records newest-first, so the survivor of each
// group is the most recently created one.
func (s *ReconcileService) deleteDuplicates(
	ctx context.Context,
	collection Collection,
	records []keyedRecord,
	deleteByID func(context.Context, string) error,
) ReconcileReport {
	report := ReconcileReport{Collection: collection, Scanned: len(records)}

	seen := make(map[string]struct{}, len(records))
	duplicates := make([]keyedRecord, 0)
	for _, record := range records {
		if _, ok := seen[record.key]; ok {
			duplicates = append(duplicates, record)
			continue
		}
		seen[record.key] = struct{}{}
		report.Kept++
	}

	for _, duplicate := range duplicates {
		outcome := ReconcileOutcome{ID: duplicate.id, Key: duplicate.key}
		if err := deleteByID(ctx, duplicate.id); err != nil {
			outcome.Err = err
			s.logger.WarnContext(ctx, "deleting duplicate failed",
				"collection", string(collection), "id", duplicate.id, "key", duplicate.key, "error", err)
		} else {
			s.logger.InfoContext(ctx, "deleted duplicate",
				"collection", string(collection), "id", duplicate.id, "key", duplicate.key)
		}
		report.Outcomes = append(report.Outcomes, outcome)
	}

	return report
}

// ReconcileAll runs both collections on a bounded worker pool and returns
// one task result per collection.
func (s *ReconcileService) ReconcileAll(ctx context.Context, maxWorkers int) ([]ReconcileTaskResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ReconcileService.ReconcileAll")
	defer span.End()

	if maxWorkers < 1 {
		maxWorkers = 1
	}

	pool, err := ants.NewPool(maxWorkers)
	if err != nil {
		return nil, fmt.Errorf("create reconcile worker pool: %w", err)
	}
	defer pool.Release()

	collections := []Collection{CollectionTeam, CollectionEvents}
	results := make([]ReconcileTaskResult, len(collections))

	var wg sync.WaitGroup
	for idx, collection := range collections {
		idx, collection := idx, collection
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()

			started := time.Now()
			report, reconcileErr := s.Reconcile(ctx, collection)
			result := ReconcileTaskResult{
				Collection: collection,
				DurationMs: time.Since(started).Milliseconds(),
			}
			if reconcileErr != nil {
				result.Status = reconcileStatusFailed
				result.Message = reconcileErr.Error()
			} else {
				result.Status = reconcileStatusSuccess
				result.Deleted = report.Deleted()
				result.Failed = report.Failed()
			}
			results[idx] = result
		})
		if submitErr != nil {
			wg.Done()
			results[idx] = ReconcileTaskResult{
				Collection: collection,
				Status:     reconcileStatusFailed,
				Message:    submitErr.Error(),
			}
		}
	}
	wg.Wait()

	return results, nil
}

func naturalKey(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
