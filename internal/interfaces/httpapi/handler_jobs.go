package httpapi

import (
	"net/http"

	"github.com/riskibarqy/matchday-predictor/internal/usecase"
)

// RunPredictJob runs one broadcast cycle for external cron triggers.
func (h *Handler) RunPredictJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunPredictJob")
	defer span.End()

	var req internalPredictJobRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := validateRequest(ctx, h.validator, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	logger := h.logger.With("dispatch_id", req.DispatchID, "date", req.Date)
	result, err := h.cycles.RunCycle(ctx, usecase.RunCycleInput{
		Date:      req.Date,
		Broadcast: true,
	})
	if err != nil {
		logger.WarnContext(ctx, "internal predict job failed", "error", err)
		writeError(ctx, w, err)
		return
	}
	logger.InfoContext(ctx, "internal predict job completed",
		"cycle_id", result.CycleID,
		"found", result.Found,
		"delivered", result.Delivered,
	)

	writeSuccess(ctx, w, http.StatusOK, result)
}
