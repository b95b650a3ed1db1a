package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/matchday-predictor/internal/platform/logging"
	"github.com/riskibarqy/matchday-predictor/internal/usecase"
)

// CommandHandler answers one chat command.
type CommandHandler interface {
	Handle(ctx context.Context, text string) (string, error)
}

type Handler struct {
	cycles    usecase.CycleRunner
	commands  CommandHandler
	logger    *logging.Logger
	validator *validator.Validate
}

func NewHandler(cycles usecase.CycleRunner, commands CommandHandler, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		cycles:    cycles,
		commands:  commands,
		logger:    logger,
		validator: validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) RunPrediction(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunPrediction")
	defer span.End()

	var req runPredictionRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := validateRequest(ctx, h.validator, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.cycles.RunCycle(ctx, usecase.RunCycleInput{
		Date:      req.Date,
		Broadcast: req.Broadcast,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "run prediction failed", "date", req.Date, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) ListFixtures(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListFixtures")
	defer span.End()

	date := strings.TrimSpace(r.URL.Query().Get("date"))
	day, items, err := h.cycles.ListFixtures(ctx, date)
	if err != nil {
		h.logger.WarnContext(ctx, "list fixtures failed", "date", date, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, fixtureListDTO{
		Date:     day.Format(time.DateOnly),
		Count:    len(items),
		Fixtures: toFixtureDTOs(items),
	})
}

func (h *Handler) RunCommand(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunCommand")
	defer span.End()

	var req commandRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := validateRequest(ctx, h.validator, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	reply, err := h.commands.Handle(ctx, req.Text)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, commandResponse{Reply: reply})
}
