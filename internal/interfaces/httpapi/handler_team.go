package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/fvaskate/agency-api/internal/domain/roster"
	"github.com/fvaskate/agency-api/internal/usecase"
	jsoniter "github.com/json-iterator/go"
)

type createTeamMemberRequest struct {
	Name         string        `json:"name" validate:"required,max=120"`
	Role         string        `json:"role" validate:"required,max=120"`
	Country      string        `json:"country" validate:"omitempty,max=80"`
	Bio          string        `json:"bio" validate:"omitempty,max=4000"`
	Achievements []string      `json:"achievements" validate:"omitempty,dive,max=300"`
	Category     string        `json:"category" validate:"required,oneof=senior-men senior-women junior-men junior-women"`
	Instagram    string        `json:"instagram" validate:"omitempty,max=120"`
	Image        *imagePayload `json:"image"`
}

type updateTeamMemberRequest struct {
	Name         *string       `json:"name" validate:"omitempty,max=120"`
	Role         *string       `json:"role" validate:"omitempty,max=120"`
	Country      *string       `json:"country" validate:"omitempty,max=80"`
	Bio          *string       `json:"bio" validate:"omitempty,max=4000"`
	Achievements *[]string     `json:"achievements" validate:"omitempty,dive,max=300"`
	Category     *string       `json:"category" validate:"omitempty,oneof=senior-men senior-women junior-men junior-women"`
	Instagram    *string       `json:"instagram" validate:"omitempty,max=120"`
	Image        *imagePayload `json:"image"`
}

func (h *Handler) CreateTeamMember(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateTeamMember")
	defer span.End()

	var req createTeamMemberRequest
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

	created, err := h.store.CreateMember(ctx, usecase.CreateMemberInput{
		Name:         req.Name,
		Role:         req.Role,
		Country:      req.Country,
		Bio:          req.Bio,
		Achievements: req.Achievements,
		Category:     roster.Category(req.Category),
		Instagram:    req.Instagram,
		Image:        image,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "create team member failed", "name", req.Name, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, memberToDTO(ctx, created))
}

func (h *Handler) UpdateTeamMember(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpdateTeamMember")
	defer span.End()

	memberID := strings.TrimSpace(r.PathValue("memberID"))

	var req updateTeamMemberRequest
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

	patch := roster.Patch{
		Name:         req.Name,
		Role:         req.Role,
		Country:      req.Country,
		Bio:          req.Bio,
		Achievements: req.Achievements,
		Instagram:    req.Instagram,
	}
	if req.Category != nil {
		category := roster.Category(*req.Category)
		patch.Category = &category
	}

	if err := h.store.UpdateMember(ctx, memberID, patch, image); err != nil {
		h.logger.WarnContext(ctx, "update team member failed", "member_id", memberID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"id": memberID})
}

func (h *Handler) DeleteTeamMember(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DeleteTeamMember")
	defer span.End()

	memberID := strings.TrimSpace(r.PathValue("memberID"))
	if err := h.store.DeleteMember(ctx, memberID); err != nil {
		h.logger.WarnContext(ctx, "delete team member failed", "member_id", memberID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"id": memberID})
}
