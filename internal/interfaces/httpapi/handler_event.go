package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/fvaskate/agency-api/internal/domain/event"
	"github.com/fvaskate/agency-api/internal/usecase"
	jsoniter "github.com/json-iterator/go"
)

type createEventRequest struct {
	Name         string            `json:"name" validate:"required,max=160"`
	Date         string            `json:"date" validate:"required,max=80"`
	Location     string            `json:"location" validate:"omitempty,max=160"`
	Description  string            `json:"description" validate:"omitempty,max=8000"`
	Completed    bool              `json:"completed"`
	Status       string            `json:"status" validate:"omitempty,oneof=Upcoming Ongoing Completed"`
	Link         string            `json:"link" validate:"omitempty,max=400"`
	Featured     bool              `json:"featured"`
	FVAEvent     *bool             `json:"isFVAEvent"`
	Venue        string            `json:"venue" validate:"omitempty,max=200"`
	Registration *registrationDTO  `json:"registration"`
	AwardsNote   string            `json:"awardsNote" validate:"omitempty,max=2000"`
	Categories   []raceCategoryDTO `json:"categories" validate:"omitempty,dive"`
	Image        *imagePayload     `json:"image"`
}

type updateEventRequest struct {
	Name         *string            `json:"name" validate:"omitempty,max=160"`
	Date         *string            `json:"date" validate:"omitempty,max=80"`
	Location     *string            `json:"location" validate:"omitempty,max=160"`
	Description  *string            `json:"description" validate:"omitempty,max=8000"`
	Completed    *bool              `json:"completed"`
	Status       *string            `json:"status" validate:"omitempty,oneof=Upcoming Ongoing Completed"`
	Link         *string            `json:"link" validate:"omitempty,max=400"`
	Featured     *bool              `json:"featured"`
	FVAEvent     *bool              `json:"isFVAEvent"`
	Venue        *string            `json:"venue" validate:"omitempty,max=200"`
	Registration *registrationDTO   `json:"registration"`
	AwardsNote   *string            `json:"awardsNote" validate:"omitempty,max=2000"`
	Categories   *[]raceCategoryDTO `json:"categories" validate:"omitempty,dive"`
	Image        *imagePayload      `json:"image"`
}

func registrationFromDTO(dto *registrationDTO) *event.Registration {
	if dto == nil {
		return nil
	}
	return &event.Registration{
		Deadline:   dto.Deadline,
		RegularFee: dto.RegularFee,
		LateFee:    dto.LateFee,
	}
}

func categoriesFromDTO(dtos []raceCategoryDTO) []event.RaceCategory {
	if dtos == nil {
		return nil
	}
	out := make([]event.RaceCategory, 0, len(dtos))
	for _, dto := range dtos {
		out = append(out, event.RaceCategory(dto))
	}
	return out
}

func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateEvent")
	defer span.End()

	var req createEventRequest
	decoder := jsoniter.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	image, err := req.Image.toMediaInput(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	created, err := h.store.CreateEvent(ctx, usecase.CreateEventInput{
		Name:         req.Name,
		Date:         req.Date,
		Location:     req.Location,
		Description:  req.Description,
		Completed:    req.Completed,
		Status:       event.Status(req.Status),
		Link:         req.Link,
		Featured:     req.Featured,
		FVAEvent:     req.FVAEvent,
		Venue:        req.Venue,
		Registration: registrationFromDTO(req.Registration),
		AwardsNote:   req.AwardsNote,
		Categories:   categoriesFromDTO(req.Categories),
		Image:        image,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "create event failed", "name", req.Name, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, eventToDTO(ctx, created))
}

func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpdateEvent")
	defer span.End()

	slug := strings.TrimSpace(r.PathValue("slug"))

	var req updateEventRequest
	decoder := jsoniter.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	image, err := req.Image.toMediaInput(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	patch := event.Patch{
		Name:         req.Name,
		Date:         req.Date,
		Location:     req.Location,
		Description:  req.Description,
		Completed:    req.Completed,
		Link:         req.Link,
		Featured:     req.Featured,
		FVAEvent:     req.FVAEvent,
		Venue:        req.Venue,
		Registration: registrationFromDTO(req.Registration),
		AwardsNote:   req.AwardsNote,
	}
	if req.Status != nil {
		status := event.Status(*req.Status)
		patch.Status = &status
	}
	if req.Categories != nil {
		categories := categoriesFromDTO(*req.Categories)
		patch.Categories = &categories
	}

	if err := h.store.UpdateEvent(ctx, slug, patch, image); err != nil {
		h.logger.WarnContext(ctx, "update event failed", "slug", slug, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"slug": slug})
}

func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DeleteEvent")
	defer span.End()

	slug := strings.TrimSpace(r.PathValue("slug"))
	if err := h.store.DeleteEvent(ctx, slug); err != nil {
		h.logger.WarnContext(ctx, "delete event failed", "slug", slug, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"slug": slug})
}
