package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"universe-sim/internal/run"
	"universe-sim/internal/shared/errors"
	"universe-sim/internal/shared/response"
)

type SimulationHandler struct {
	service  *run.Service
	defaults run.Request
}

// NewSimulationHandler serves run endpoints. Fields missing from a create
// request body fall back to defaults.
func NewSimulationHandler(service *run.Service, defaults run.Request) *SimulationHandler {
	return &SimulationHandler{service: service, defaults: defaults}
}

func (h *SimulationHandler) CreateRun(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "create_run")

	if r.Method != http.MethodPost {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	req := h.defaults
	req.Seed = nil

	r.Body = http.MaxBytesReader(w, r.Body, 1<<16) // 64 KB
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, logger, errors.WrapValidation("invalid JSON in request body", err))
		return
	}

	created, err := h.service.CreateRun(ctx, req)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusCreated, created)
}

func (h *SimulationHandler) GetRuns(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "get_runs")

	if r.Method != http.MethodGet {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	runs, err := h.service.ListRuns(ctx)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	if runs == nil {
		runs = []run.RunSummary{}
	}

	response.Success(w, http.StatusOK, runs)
}

func (h *SimulationHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "get_run")

	if r.Method != http.MethodGet {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	runIDStr := r.PathValue("id")
	if runIDStr == "" {
		response.Error(w, r, logger, errors.Validation("run ID is required"))
		return
	}

	runID, err := strconv.Atoi(runIDStr)
	if err != nil {
		response.Error(w, r, logger, errors.WrapValidation("invalid run ID format", err))
		return
	}

	found, err := h.service.GetRun(ctx, runID)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, found)
}
