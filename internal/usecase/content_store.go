package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/fvaskate/agency-api/internal/domain/event"
	"github.com/fvaskate/agency-api/internal/domain/media"
	"github.com/fvaskate/agency-api/internal/domain/roster"
	"github.com/fvaskate/agency-api/internal/platform/logging"
	"github.com/sourcegraph/conc"
)

// StoreState tracks the lifecycle of the synchronized collections.
type StoreState string

const (
	StoreStateUninitialized StoreState = "uninitialized"
	StoreStateLoading       StoreState = "loading"
	StoreStateReady         StoreState = "ready"
	StoreStateFailed        StoreState = "failed"
)

// Placeholder URLs the media fallback chain degrades to. Record writes never
// hard-fail on media trouble.
const (
	PlaceholderMemberImage        = "https://via.placeholder.com/300x400/0066cc/ffffff?text=Team+Member"
	PlaceholderEventImage         = "https://via.placeholder.com/400x300/0066cc/ffffff?text=Event+Image"
	PlaceholderMemberUploadFailed = "https://via.placeholder.com/300x400/cc6600/ffffff?text=Upload+Failed"
	PlaceholderEventUploadFailed  = "https://via.placeholder.com/400x300/cc6600/ffffff?text=Upload+Failed"
)

const (
	memberUploadFolder = "team-members"
	eventUploadFolder  = "events"
)

// MediaInput is the image material an admin submission may carry: raw file
// bytes, a fallback URL, both, or neither.
type MediaInput struct {
	Data        []byte
	Filename    string
	FallbackURL string
}

func (in MediaInput) empty() bool {
	return len(in.Data) == 0 && strings.TrimSpace(in.FallbackURL) == ""
}

// Snapshot is a consistent, copied view of both collections plus the status
// flags the public surface renders.
type Snapshot struct {
	TeamMembers []roster.Member
	Events      []event.Event
	State       StoreState
	Loading     bool
	Err         string
	Warning     string
}

// SeedOutcome records one attempted insert from the bundled roster.
type SeedOutcome struct {
	Name string
	ID   string
	Err  error
}

type SeedReport struct {
	Attempted bool
	Outcomes  []SeedOutcome
}

func (r SeedReport) Created() int {
	count := 0
	for _, outcome := range r.Outcomes {
		if outcome.Err == nil {
			count++
		}
	}
	return count
}

func (r SeedReport) Failed() int {
	return len(r.Outcomes) - r.Created()
}

// ContentStore holds in-memory copies of the team and events collections and
// coordinates every mutation against the remote gateways: write-through, no
// rollback, local state only updated after the gateway accepts the write.
//
// The mutex guards local state, not the remote round-trip. Two rapid creates
// can therefore race and both land, each producing a distinct record; the
// reconcile pass exists to clean such duplicates up after the fact.
type ContentStore struct {
	memberRepo roster.Repository
	eventRepo  event.Repository
	uploader   media.Uploader
	seed       []roster.Member
	logger     *logging.Logger

	mu         sync.RWMutex
	state      StoreState
	loading    bool
	lastErr    string
	warning    string
	members    []roster.Member
	events     []event.Event
	slugIndex  map[string]string
	seeded     bool
	seedReport SeedReport
}

func NewContentStore(
	memberRepo roster.Repository,
	eventRepo event.Repository,
	uploader media.Uploader,
	seed []roster.Member,
	logger *logging.Logger,
) *ContentStore {
	if logger == nil {
		logger = logging.Default()
	}

	return &ContentStore{
		memberRepo: memberRepo,
		eventRepo:  eventRepo,
		uploader:   uploader,
		seed:       seed,
		logger:     logger,
		state:      StoreStateUninitialized,
		slugIndex:  map[string]string{},
	}
}

// Init performs the initial load of both collections and, when both come back
// empty, a single best-effort seeding pass of the bundled roster. Seed
// failures are logged and swallowed; they never become store-level errors.
func (s *ContentStore) Init(ctx context.Context) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.ContentStore.Init")
	defer span.End()

	s.mu.Lock()
	if s.state != StoreStateUninitialized {
		s.mu.Unlock()
		return fmt.Errorf("%w: store is already initialized", ErrInvalidInput)
	}
	s.state = StoreStateLoading
	s.loading = true
	s.mu.Unlock()

	members, events, err := s.fetchBoth(ctx)
	if err != nil {
		s.mu.Lock()
		s.state = StoreStateFailed
		s.lastErr = err.Error()
		s.loading = false
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	s.replaceLocked(members, events)
	s.state = StoreStateReady
	shouldSeed := !s.seeded && len(members) == 0 && len(events) == 0
	if shouldSeed {
		s.seeded = true
	}
	s.mu.Unlock()

	if shouldSeed {
		s.runSeed(ctx)
	}

	s.mu.Lock()
	s.loading = false
	s.mu.Unlock()

	return nil
}

// Dispose clears local state. The store can be re-initialized afterwards.
func (s *ContentStore) Dispose() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.members = nil
	s.events = nil
	s.slugIndex = map[string]string{}
	s.state = StoreStateUninitialized
	s.loading = false
	s.lastErr = ""
	s.warning = ""
}

// Refresh unconditionally re-lists both collections and fully replaces local
// state. It is the recovery path out of a failed load and the way to pick up
// external changes; it never seeds.
func (s *ContentStore) Refresh(ctx context.Context) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.ContentStore.Refresh")
	defer span.End()

	s.mu.Lock()
	if s.state == StoreStateUninitialized {
		s.mu.Unlock()
		return fmt.Errorf("%w: store is not initialized", ErrInvalidInput)
	}
	s.state = StoreStateLoading
	s.loading = true
	s.mu.Unlock()

	members, events, err := s.fetchBoth(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		s.state = StoreStateFailed
		s.lastErr = err.Error()
		return err
	}

	s.replaceLocked(members, events)
	s.state = StoreStateReady
	s.warning = ""

	return nil
}

// Snapshot returns copied slices; callers can hold the result without
// observing later mutations.
func (s *ContentStore) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	members := make([]roster.Member, 0, len(s.members))
	members = append(members, s.members...)
	events := make([]event.Event, 0, len(s.events))
	events = append(events, s.events...)

	return Snapshot{
		TeamMembers: members,
		Events:      events,
		State:       s.state,
		Loading:     s.loading,
		Err:         s.lastErr,
		Warning:     s.warning,
	}
}

func (s *ContentStore) LastSeedReport() SeedReport {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.seedReport
}

// CreateMemberInput carries a new roster entry sans identity.
type CreateMemberInput struct {
	Name         string
	Role         string
	Country      string
	Bio          string
	Achievements []string
	Category     roster.Category
	Instagram    string
	Image        MediaInput
}

func (s *ContentStore) CreateMember(ctx context.Context, input CreateMemberInput) (roster.Member, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ContentStore.CreateMember")
	defer span.End()

	member := roster.Member{
		Name:         strings.TrimSpace(input.Name),
		Role:         strings.TrimSpace(input.Role),
		Country:      input.Country,
		Bio:          input.Bio,
		Achievements: input.Achievements,
		Category:     input.Category,
		Instagram:    input.Instagram,
	}
	if err := member.Validate(); err != nil {
		return roster.Member{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	s.setLoading(true)
	defer s.setLoading(false)

	imageURL, warn := s.resolveImage(ctx, input.Image, memberUploadFolder, PlaceholderMemberImage, PlaceholderMemberUploadFailed)
	member.Image = imageURL

	created, err := s.memberRepo.Create(ctx, member)
	if err != nil {
		s.recordError(err)
		return roster.Member{}, err
	}

	s.mu.Lock()
	members := make([]roster.Member, 0, len(s.members)+1)
	members = append(members, s.members...)
	s.members = append(members, created)
	s.lastErr = ""
	s.warning = warn
	s.mu.Unlock()

	return created, nil
}

func (s *ContentStore) UpdateMember(ctx context.Context, id string, patch roster.Patch, image MediaInput) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.ContentStore.UpdateMember")
	defer span.End()

	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("%w: member id is required", ErrInvalidInput)
	}
	if err := patch.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	s.setLoading(true)
	defer s.setLoading(false)

	warn := ""
	if !image.empty() {
		imageURL, imageWarn := s.resolveImage(ctx, image, memberUploadFolder, PlaceholderMemberImage, PlaceholderMemberUploadFailed)
		patch.Image = &imageURL
		warn = imageWarn
	}

	if err := s.memberRepo.Update(ctx, id, patch); err != nil {
		s.recordError(err)
		return err
	}

	s.mu.Lock()
	members := make([]roster.Member, 0, len(s.members))
	for _, member := range s.members {
		if member.ID == id {
			member = patch.Apply(member)
		}
		members = append(members, member)
	}
	s.members = members
	s.lastErr = ""
	s.warning = warn
	s.mu.Unlock()

	return nil
}

func (s *ContentStore) DeleteMember(ctx context.Context, id string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.ContentStore.DeleteMember")
	defer span.End()

	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("%w: member id is required", ErrInvalidInput)
	}

	s.setLoading(true)
	defer s.setLoading(false)

	if err := s.memberRepo.Delete(ctx, id); err != nil {
		s.recordError(err)
		return err
	}

	s.mu.Lock()
	members := make([]roster.Member, 0, len(s.members))
	for _, member := range s.members {
		if member.ID != id {
			members = append(members, member)
		}
	}
	s.members = members
	s.lastErr = ""
	s.mu.Unlock()

	return nil
}

// CreateEventInput carries a new event sans identity; the slug is derived
// from the name here, never supplied by the caller. A nil FVAEvent means the
// event belongs to the agency.
type CreateEventInput struct {
	Name         string
	Date         string
	Location     string
	Description  string
	Completed    bool
	Status       event.Status
	Link         string
	Featured     bool
	FVAEvent     *bool
	Venue        string
	Registration *event.Registration
	AwardsNote   string
	Categories   []event.RaceCategory
	Image        MediaInput
}

func (s *ContentStore) CreateEvent(ctx context.Context, input CreateEventInput) (event.Event, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ContentStore.CreateEvent")
	defer span.End()

	fvaEvent := true
	if input.FVAEvent != nil {
		fvaEvent = *input.FVAEvent
	}

	item := event.Event{
		Name:         strings.TrimSpace(input.Name),
		Date:         input.Date,
		Location:     input.Location,
		Description:  input.Description,
		Completed:    input.Completed,
		Status:       input.Status,
		Link:         input.Link,
		Featured:     input.Featured,
		FVAEvent:     fvaEvent,
		Venue:        input.Venue,
		Registration: input.Registration,
		AwardsNote:   input.AwardsNote,
		Categories:   input.Categories,
	}
	item.Slug = event.Slugify(item.Name)
	item = item.Normalize()
	if err := item.Validate(); err != nil {
		return event.Event{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	s.setLoading(true)
	defer s.setLoading(false)

	imageURL, warn := s.resolveImage(ctx, input.Image, eventUploadFolder, PlaceholderEventImage, PlaceholderEventUploadFailed)
	item.Image = imageURL

	created, err := s.eventRepo.Create(ctx, item)
	if err != nil {
		s.recordError(err)
		return event.Event{}, err
	}

	s.mu.Lock()
	events := make([]event.Event, 0, len(s.events)+1)
	events = append(events, s.events...)
	s.events = append(events, created)
	// Last write wins on slug collisions; duplicates are reconciled later.
	s.slugIndex[created.Slug] = created.ID
	s.lastErr = ""
	s.warning = warn
	s.mu.Unlock()

	return created, nil
}

func (s *ContentStore) UpdateEvent(ctx context.Context, slug string, patch event.Patch, image MediaInput) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.ContentStore.UpdateEvent")
	defer span.End()

	if err := patch.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	id, err := s.resolveSlug(slug)
	if err != nil {
		s.recordError(err)
		return err
	}

	s.setLoading(true)
	defer s.setLoading(false)

	warn := ""
	if !image.empty() {
		imageURL, imageWarn := s.resolveImage(ctx, image, eventUploadFolder, PlaceholderEventImage, PlaceholderEventUploadFailed)
		patch.Image = &imageURL
		warn = imageWarn
	}

	if err := s.eventRepo.Update(ctx, id, patch); err != nil {
		s.recordError(err)
		return err
	}

	s.mu.Lock()
	events := make([]event.Event, 0, len(s.events))
	for _, item := range s.events {
		if item.ID == id {
			item = patch.Apply(item)
		}
		events = append(events, item)
	}
	s.events = events
	s.lastErr = ""
	s.warning = warn
	s.mu.Unlock()

	return nil
}

func (s *ContentStore) DeleteEvent(ctx context.Context, slug string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.ContentStore.DeleteEvent")
	defer span.End()

	id, err := s.resolveSlug(slug)
	if err != nil {
		s.recordError(err)
		return err
	}

	s.setLoading(true)
	defer s.setLoading(false)

	if err := s.eventRepo.Delete(ctx, id); err != nil {
		s.recordError(err)
		return err
	}

	s.mu.Lock()
	events := make([]event.Event, 0, len(s.events))
	for _, item := range s.events {
		if item.ID != id {
			events = append(events, item)
		}
	}
	s.events = events
	delete(s.slugIndex, strings.ToLower(strings.TrimSpace(slug)))
	s.lastErr = ""
	s.mu.Unlock()

	return nil
}

// resolveSlug is an O(1) local lookup against the secondary index, rebuilt on
// every refresh. The gateway is never scanned to find a slug.
func (s *ContentStore) resolveSlug(slug string) (string, error) {
	key := strings.ToLower(strings.TrimSpace(slug))
	if key == "" {
		return "", fmt.Errorf("%w: event slug is required", ErrInvalidInput)
	}

	s.mu.RLock()
	id, ok := s.slugIndex[key]
	s.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("%w: event slug=%s", ErrNotFound, slug)
	}

	return id, nil
}

// resolveImage applies the media fallback chain: no material at all degrades
// to the generic placeholder, a failed upload degrades to the caller's URL or
// the upload-failed placeholder. The second return is a non-fatal warning.
func (s *ContentStore) resolveImage(ctx context.Context, in MediaInput, folder, placeholder, failedPlaceholder string) (string, string) {
	fallbackURL := strings.TrimSpace(in.FallbackURL)

	if len(in.Data) == 0 {
		if fallbackURL != "" {
			return fallbackURL, ""
		}
		return placeholder, ""
	}

	uploaded, err := s.uploader.Upload(ctx, in.Data, in.Filename, folder)
	if err == nil {
		return uploaded, ""
	}

	if fallbackURL != "" {
		warn := fmt.Sprintf("image upload failed, using provided URL instead: %v", err)
		s.logger.WarnContext(ctx, "image upload failed, falling back to provided URL", "error", err)
		return fallbackURL, warn
	}

	warn := fmt.Sprintf("image upload failed, using placeholder instead: %v", err)
	s.logger.WarnContext(ctx, "image upload failed, falling back to placeholder", "error", err)
	return failedPlaceholder, warn
}

func (s *ContentStore) fetchBoth(ctx context.Context) ([]roster.Member, []event.Event, error) {
	var (
		members    []roster.Member
		events     []event.Event
		memberErr  error
		eventsErr  error
		loadGroup  conc.WaitGroup
	)

	loadGroup.Go(func() {
		members, memberErr = s.memberRepo.List(ctx)
	})
	loadGroup.Go(func() {
		events, eventsErr = s.eventRepo.List(ctx)
	})
	loadGroup.Wait()

	if memberErr != nil {
		return nil, nil, memberErr
	}
	if eventsErr != nil {
		return nil, nil, eventsErr
	}

	return members, events, nil
}

// replaceLocked swaps both collections and rebuilds the slug index. Caller
// holds the write lock.
func (s *ContentStore) replaceLocked(members []roster.Member, events []event.Event) {
	s.members = members
	s.events = events
	s.lastErr = ""

	index := make(map[string]string, len(events))
	for _, item := range events {
		key := strings.ToLower(strings.TrimSpace(item.Slug))
		if key == "" {
			continue
		}
		if _, exists := index[key]; exists {
			// Newest first: the first occurrence wins, matching what
			// reconciliation would keep.
			continue
		}
		index[key] = item.ID
	}
	s.slugIndex = index
}

// runSeed inserts the bundled roster one record at a time, best-effort, and
// refetches afterwards so local state reflects gateway-assigned identities.
func (s *ContentStore) runSeed(ctx context.Context) {
	report := SeedReport{Attempted: true}

	for _, member := range s.seed {
		created, err := s.memberRepo.Create(ctx, member)
		if err != nil {
			report.Outcomes = append(report.Outcomes, SeedOutcome{Name: member.Name, Err: err})
			s.logger.WarnContext(ctx, "seeding team member failed", "name", member.Name, "error", err)
			continue
		}
		report.Outcomes = append(report.Outcomes, SeedOutcome{Name: member.Name, ID: created.ID})
	}

	s.mu.Lock()
	s.seedReport = report
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "seeded team collection",
		"created", report.Created(),
		"failed", report.Failed(),
	)

	if report.Created() == 0 {
		return
	}

	members, events, err := s.fetchBoth(ctx)
	if err != nil {
		// Swallowed: seeding is a convenience and the next refresh rereads
		// ground truth anyway.
		s.logger.WarnContext(ctx, "refetch after seeding failed", "error", err)
		return
	}

	s.mu.Lock()
	s.replaceLocked(members, events)
	s.mu.Unlock()
}

func (s *ContentStore) setLoading(loading bool) {
	s.mu.Lock()
	s.loading = loading
	s.mu.Unlock()
}

func (s *ContentStore) recordError(err error) {
	s.mu.Lock()
	s.lastErr = err.Error()
	s.mu.Unlock()
}
