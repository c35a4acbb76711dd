package httpapi

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/fvaskate/agency-api/internal/domain/event"
	"github.com/fvaskate/agency-api/internal/domain/roster"
	"github.com/fvaskate/agency-api/internal/platform/logging"
	"github.com/fvaskate/agency-api/internal/usecase"
	"github.com/go-playground/validator/v10"
)

type Handler struct {
	store            *usecase.ContentStore
	reconciler       *usecase.ReconcileService
	logger           *logging.Logger
	validator        *validator.Validate
	reconcileWorkers int
}

func NewHandler(
	store *usecase.ContentStore,
	reconciler *usecase.ReconcileService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		store:            store,
		reconciler:       reconciler,
		logger:           logger,
		validator:        validator.New(),
		reconcileWorkers: defaultReconcileWorkers,
	}
}

const defaultReconcileWorkers = 2

// SetReconcileWorkers overrides the pool size used when a reconcile request
// does not name one.
func (h *Handler) SetReconcileWorkers(n int) {
	if n >= 1 {
		h.reconcileWorkers = n
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetContent renders both collections plus the store status flags in one
// round-trip, which is how the site boots.
func (h *Handler) GetContent(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetContent")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, snapshotToDTO(ctx, h.store.Snapshot()))
}

func (h *Handler) ListTeamMembers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListTeamMembers")
	defer span.End()

	snapshot := h.store.Snapshot()
	items := make([]memberDTO, 0, len(snapshot.TeamMembers))
	for _, member := range snapshot.TeamMembers {
		items = append(items, memberToDTO(ctx, member))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListEvents")
	defer span.End()

	snapshot := h.store.Snapshot()
	items := make([]eventDTO, 0, len(snapshot.Events))
	for _, item := range snapshot.Events {
		items = append(items, eventToDTO(ctx, item))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetEventBySlug(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetEventBySlug")
	defer span.End()

	slug := strings.ToLower(strings.TrimSpace(r.PathValue("slug")))
	if slug == "" {
		writeError(ctx, w, fmt.Errorf("%w: event slug is required", usecase.ErrInvalidInput))
		return
	}

	for _, item := range h.store.Snapshot().Events {
		if item.Slug == slug {
			writeSuccess(ctx, w, http.StatusOK, eventToDTO(ctx, item))
			return
		}
	}

	writeError(ctx, w, fmt.Errorf("%w: event slug=%s", usecase.ErrNotFound, slug))
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

// imagePayload is how admin requests carry image material: base64 file bytes,
// a plain URL, both, or neither.
type imagePayload struct {
	Data     string `json:"data" validate:"omitempty,base64"`
	Filename string `json:"filename" validate:"omitempty,max=200"`
	URL      string `json:"url" validate:"omitempty,url"`
}

func (p *imagePayload) toMediaInput(ctx context.Context) (usecase.MediaInput, error) {
	_, span := startSpan(ctx, "httpapi.imagePayload.toMediaInput")
	defer span.End()

	if p == nil {
		return usecase.MediaInput{}, nil
	}

	var data []byte
	if strings.TrimSpace(p.Data) != "" {
		decoded, err := base64.StdEncoding.DecodeString(p.Data)
		if err != nil {
			return usecase.MediaInput{}, fmt.Errorf("%w: image data is not valid base64: %v", usecase.ErrInvalidInput, err)
		}
		data = decoded
	}

	return usecase.MediaInput{
		Data:        data,
		Filename:    strings.TrimSpace(p.Filename),
		FallbackURL: strings.TrimSpace(p.URL),
	}, nil
}

type registrationDTO struct {
	Deadline   string `json:"deadline,omitempty"`
	RegularFee string `json:"regularFee,omitempty"`
	LateFee    string `json:"lateFee,omitempty"`
}

type raceCategoryDTO struct {
	Title    string    `json:"title" validate:"required,max=120"`
	Distance string    `json:"distance,omitempty"`
	AgeRange string    `json:"ageRange,omitempty"`
	Genders  string    `json:"genders,omitempty"`
	Prizes   [3]string `json:"prizes"`
	Notes    string    `json:"notes,omitempty"`
}

type memberDTO struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Role         string   `json:"role"`
	Country      string   `json:"country,omitempty"`
	Image        string   `json:"image"`
	Bio          string   `json:"bio,omitempty"`
	Achievements []string `json:"achievements"`
	Category     string   `json:"category"`
	Instagram    string   `json:"instagram,omitempty"`
	CreatedAt    string   `json:"createdAt"`
	UpdatedAt    string   `json:"updatedAt"`
}

type eventDTO struct {
	ID           string            `json:"id"`
	Slug         string            `json:"slug"`
	Name         string            `json:"name"`
	Date         string            `json:"date"`
	Location     string            `json:"location,omitempty"`
	Description  string            `json:"description,omitempty"`
	Image        string            `json:"image"`
	Completed    bool              `json:"completed"`
	Status       string            `json:"status"`
	Link         string            `json:"link"`
	Featured     bool              `json:"featured"`
	FVAEvent     bool              `json:"isFVAEvent"`
	Venue        string            `json:"venue,omitempty"`
	Registration *registrationDTO  `json:"registration,omitempty"`
	AwardsNote   string            `json:"awardsNote,omitempty"`
	Categories   []raceCategoryDTO `json:"categories,omitempty"`
	CreatedAt    string            `json:"createdAt"`
	UpdatedAt    string            `json:"updatedAt"`
}

type contentDTO struct {
	TeamMembers []memberDTO `json:"teamMembers"`
	Events      []eventDTO  `json:"events"`
	State       string      `json:"state"`
	Loading     bool        `json:"loading"`
	Error       string      `json:"error,omitempty"`
	Warning     string      `json:"warning,omitempty"`
}

func memberToDTO(ctx context.Context, v roster.Member) memberDTO {
	ctx, span := startSpan(ctx, "httpapi.memberToDTO")
	defer span.End()

	achievements := v.Achievements
	if achievements == nil {
		achievements = []string{}
	}

	return memberDTO{
		ID:           v.ID,
		Name:         v.Name,
		Role:         v.Role,
		Country:      v.Country,
		Image:        v.Image,
		Bio:          v.Bio,
		Achievements: achievements,
		Category:     string(v.Category),
		Instagram:    v.Instagram,
		CreatedAt:    formatDocTime(v.CreatedAt),
		UpdatedAt:    formatDocTime(v.UpdatedAt),
	}
}

func eventToDTO(ctx context.Context, v event.Event) eventDTO {
	ctx, span := startSpan(ctx, "httpapi.eventToDTO")
	defer span.End()

	dto := eventDTO{
		ID:          v.ID,
		Slug:        v.Slug,
		Name:        v.Name,
		Date:        v.Date,
		Location:    v.Location,
		Description: v.Description,
		Image:       v.Image,
		Completed:   v.Completed,
		Status:      string(v.Status),
		Link:        v.Link,
		Featured:    v.Featured,
		FVAEvent:    v.FVAEvent,
		Venue:       v.Venue,
		AwardsNote:  v.AwardsNote,
		CreatedAt:   formatDocTime(v.CreatedAt),
		UpdatedAt:   formatDocTime(v.UpdatedAt),
	}
	if v.Registration != nil {
		dto.Registration = &registrationDTO{
			Deadline:   v.Registration.Deadline,
			RegularFee: v.Registration.RegularFee,
			LateFee:    v.Registration.LateFee,
		}
	}
	for _, category := range v.Categories {
		dto.Categories = append(dto.Categories, raceCategoryDTO(category))
	}

	return dto
}

func snapshotToDTO(ctx context.Context, v usecase.Snapshot) contentDTO {
	ctx, span := startSpan(ctx, "httpapi.snapshotToDTO")
	defer span.End()

	members := make([]memberDTO, 0, len(v.TeamMembers))
	for _, member := range v.TeamMembers {
		members = append(members, memberToDTO(ctx, member))
	}
	events := make([]eventDTO, 0, len(v.Events))
	for _, item := range v.Events {
		events = append(events, eventToDTO(ctx, item))
	}

	return contentDTO{
		TeamMembers: members,
		Events:      events,
		State:       string(v.State),
		Loading:     v.Loading,
		Error:       v.Err,
		Warning:     v.Warning,
	}
}

func formatDocTime(v time.Time) string {
	if v.IsZero() {
		return ""
	}
	return v.UTC().Format(time.RFC3339)
}
