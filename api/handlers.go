/*
handlers.go - HTTP API handlers for the benefit engine

PURPOSE:
  Exposes the monthly voucher run via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to the pipeline.

ENDPOINTS:
  Runs:
    POST   /api/runs           Run a competency
    GET    /api/runs           List recent runs
    GET    /api/runs/{id}      Get a recent run

  Reference:
    GET    /api/regions        Active region rules
    GET    /api/health         Liveness probe

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Runner: the pipeline (an interface, so tests can stub it)
  - Rules: classifier shown by /api/regions
  - Input/output roots confining request directories
  - Recent runs cache (bounded, in memory)

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Invalid body, competency or directory
  - 404: Run not found
  - 422: Input validation failed (messages in details)
  - 500: Internal errors

SECURITY NOTE:
  No authentication. Directories are resolved inside the configured roots
  so a request cannot read or write elsewhere.

SEE ALSO:
  - dto.go: Request/response data structures
  - runs.go: Recent runs cache
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/warp/benefit-engine/factory"
	"github.com/warp/benefit-engine/pipeline"
	"github.com/warp/benefit-engine/voucher"
)

// ErrOutsideRoot is returned for a request directory escaping its root.
var ErrOutsideRoot = errors.New("api: directory outside the allowed root")

// Runner executes a pipeline run.
type Runner interface {
	Run(ctx context.Context, req pipeline.Request) (*pipeline.Result, error)
}

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Runner     Runner
	Rules      *factory.Rules
	InputRoot  string
	OutputRoot string
	Logger     *slog.Logger

	validate *validator.Validate
	runs     *runCache
}

// NewHandler creates a handler. Nil rules mean the built-in ones.
func NewHandler(runner Runner, rules *factory.Rules, inputRoot, outputRoot string) *Handler {
	if rules == nil {
		rules = factory.Defaults()
	}
	return &Handler{
		Runner:     runner,
		Rules:      rules,
		InputRoot:  inputRoot,
		OutputRoot: outputRoot,
		Logger:     slog.Default(),
		validate:   validator.New(),
		runs:       newRunCache(maxRecentRuns),
	}
}

// =============================================================================
// RUN HANDLERS
// =============================================================================

// CreateRun runs a competency synchronously and returns its result.
func (h *Handler) CreateRun(w http.ResponseWriter, r *http.Request) {
	var req CreateRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", err)
		return
	}

	inputDir, err := resolveWithin(h.InputRoot, req.InputDir)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid input_dir", err)
		return
	}
	outputDir, err := resolveWithin(h.OutputRoot, req.OutputDir)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid output_dir", err)
		return
	}

	res, err := h.Runner.Run(r.Context(), pipeline.Request{
		Competency: req.Competency,
		InputDir:   inputDir,
		OutputDir:  outputDir,
	})
	if err != nil {
		h.writeRunError(w, err)
		return
	}

	h.runs.add(res)
	writeJSON(w, http.StatusCreated, toRunDTO(res))
}

// ListRuns returns the recent runs, newest first.
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	recent := h.runs.list()
	dtos := make([]RunListItemDTO, len(recent))
	for i, res := range recent {
		dtos[i] = toRunListItem(res)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetRun returns one recent run.
func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	res, ok := h.runs.get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "Run not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toRunDTO(res))
}

func (h *Handler) writeRunError(w http.ResponseWriter, err error) {
	var verr *voucher.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "Input validation failed",
			Code:    "validation",
			Details: verr.Messages,
		})
	case errors.Is(err, pipeline.ErrInvalidRequest):
		writeErrorCode(w, http.StatusBadRequest, "Invalid run request", "invalid_request", err)
	case errors.Is(err, pipeline.ErrSourceNotFound):
		writeErrorCode(w, http.StatusBadRequest, "Input not found", "source_not_found", err)
	default:
		h.Logger.Error("api: run failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Run failed", err)
	}
}

// =============================================================================
// REFERENCE HANDLERS
// =============================================================================

// ListRegions returns the classifier rules and the supported regions.
func (h *Handler) ListRegions(w http.ResponseWriter, r *http.Request) {
	regions := make([]RegionDTO, 0, len(voucher.Regions()))
	for _, reg := range voucher.Regions() {
		regions = append(regions, RegionDTO{Code: string(reg), Name: reg.Name()})
	}
	writeJSON(w, http.StatusOK, RegionsDTO{
		Rules:   factory.NewRulesFactory().ToJSON(h.Rules),
		Regions: regions,
	})
}

// Health answers the liveness probe.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthDTO{Status: "ok"})
}

// =============================================================================
// HELPERS
// =============================================================================

// resolveWithin joins a request path to its root and rejects anything that
// escapes it.
func resolveWithin(root, dir string) (string, error) {
	if root == "" {
		root = "."
	}
	full := filepath.Join(root, filepath.FromSlash(dir))
	rel, err := filepath.Rel(root, full)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, dir)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, dir)
	}
	return full, nil
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	writeErrorCode(w, status, message, "", err)
}

func writeErrorCode(w http.ResponseWriter, status int, message, code string, err error) {
	resp := ErrorResponse{Error: message, Code: code}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
