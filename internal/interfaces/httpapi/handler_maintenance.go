package httpapi

import (
	"fmt"
	"io"
	"net/http"

	"github.com/fvaskate/agency-api/internal/usecase"
	jsoniter "github.com/json-iterator/go"
)

type reconcileRequest struct {
	Collection string `json:"collection" validate:"omitempty,oneof=team events all"`
	MaxWorkers int    `json:"maxWorkers" validate:"omitempty,gte=1,lte=8"`
}

type reconcileOutcomeDTO struct {
	ID    string `json:"id"`
	Key   string `json:"key"`
	Error string `json:"error,omitempty"`
}

type reconcileReportDTO struct {
	Collection string                `json:"collection"`
	Scanned    int                   `json:"scanned"`
	Kept       int                   `json:"kept"`
	Deleted    int                   `json:"deleted"`
	Failed     int                   `json:"failed"`
	Outcomes   []reconcileOutcomeDTO `json:"outcomes"`
}

func (h *Handler) RefreshContent(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RefreshContent")
	defer span.End()

	if err := h.store.Refresh(ctx); err != nil {
		h.logger.WarnContext(ctx, "content refresh failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, snapshotToDTO(ctx, h.store.Snapshot()))
}

// ReconcileDuplicates runs the duplicate sweep for one collection, or for both
// on a bounded worker pool when the request names none.
func (h *Handler) ReconcileDuplicates(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ReconcileDuplicates")
	defer span.End()

	var req reconcileRequest
	decoder := jsoniter.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil && err != io.EOF {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	if req.Collection == "" || req.Collection == "all" {
		maxWorkers := req.MaxWorkers
		if maxWorkers == 0 {
			maxWorkers = h.reconcileWorkers
		}
		results, err := h.reconciler.ReconcileAll(ctx, maxWorkers)
		if err != nil {
			h.logger.WarnContext(ctx, "reconcile all failed", "error", err)
			writeError(ctx, w, err)
			return
		}
		writeSuccess(ctx, w, http.StatusOK, results)
		return
	}

	report, err := h.reconciler.Reconcile(ctx, usecase.Collection(req.Collection))
	if err != nil {
		h.logger.WarnContext(ctx, "reconcile failed", "collection", req.Collection, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, reconcileReportToDTO(report))
}

func reconcileReportToDTO(report usecase.ReconcileReport) reconcileReportDTO {
	outcomes := make([]reconcileOutcomeDTO, 0, len(report.Outcomes))
	for _, outcome := range report.Outcomes {
		dto := reconcileOutcomeDTO{ID: outcome.ID, Key: outcome.Key}
		if outcome.Err != nil {
			dto.Error = outcome.Err.Error()
		}
		outcomes = append(outcomes, dto)
	}

	return reconcileReportDTO{
		Collection: string(report.Collection),
		Scanned:    report.Scanned,
		Kept:       report.Kept,
		Deleted:    report.Deleted(),
		Failed:     report.Failed(),
		Outcomes:   outcomes,
	}
}
