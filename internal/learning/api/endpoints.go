// Package api exposes the learning engine over HTTP JSON.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/runger/redline/internal/learning/engine"
	"github.com/runger/redline/internal/learning/override"
)

// CompareRequest is the request for POST /v1/compare.
type CompareRequest struct {
	SubmissionID string `json:"submission_id"`
	DraftRef     string `json:"draft_ref"`
	FinalRef     string `json:"final_ref"`
}

// OverrideRequest is the request for POST /v1/overrides.
type OverrideRequest struct {
	RuleKey  string `json:"rule_key"`
	Disabled bool   `json:"disabled"`
	Reason   string `json:"reason,omitempty"`
}

// OverridesResponse is the response for GET /v1/overrides.
type OverridesResponse struct {
	Overrides map[string]override.Override `json:"overrides"`
}

// OverlayResponse is the response for GET /v1/overlay.
type OverlayResponse struct {
	GeneratedAt time.Time `json:"generated_at"`
	RulesUsed   int       `json:"rules_used"`
	OverlayText string    `json:"overlay_text"`
}

// HealthResponse is the response for GET /v1/health.
type HealthResponse struct {
	Status string `json:"status"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Handler provides HTTP handlers for the learning API.
type Handler struct {
	engine *engine.Engine
	logger *slog.Logger
}

// NewHandler creates a new API handler.
func NewHandler(eng *engine.Engine, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{engine: eng, logger: logger}
}

// RegisterRoutes registers all API routes on the given mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /v1/compare", h.HandleCompare)
	mux.HandleFunc("GET /v1/rules", h.HandleRules)
	mux.HandleFunc("GET /v1/overlay", h.HandleOverlay)
	mux.HandleFunc("GET /v1/overrides", h.HandleGetOverrides)
	mux.HandleFunc("POST /v1/overrides", h.HandleSetOverride)
	mux.HandleFunc("GET /v1/stats", h.HandleStats)
	mux.HandleFunc("GET /v1/training-data", h.HandleTrainingData)
	mux.HandleFunc("GET /v1/health", h.HandleHealth)
}

// HandleCompare handles POST /v1/compare.
func (h *Handler) HandleCompare(w http.ResponseWriter, r *http.Request) {
	var req CompareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON request body")
		return
	}
	if verr := ValidateCompareRequest(&req); verr != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_argument", verr.Error())
		return
	}

	result, err := h.engine.Compare(r.Context(), req.SubmissionID, req.DraftRef, req.FinalRef)
	if err != nil {
		if errors.Is(err, engine.ErrExtraction) {
			h.logger.Error("extraction failed", "submission_id", req.SubmissionID, "error", err)
			h.writeError(w, http.StatusBadGateway, "extraction_failed", "Failed to resolve document reference")
			return
		}
		h.logger.Error("comparison failed", "submission_id", req.SubmissionID, "error", err)
		h.writeError(w, http.StatusInternalServerError, "compare_failed", "Failed to record comparison")
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

// HandleRules handles GET /v1/rules.
func (h *Handler) HandleRules(w http.ResponseWriter, r *http.Request) {
	snap, err := h.engine.Rules(r.Context())
	if err != nil {
		h.logger.Error("rules read failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "rules_failed", "Failed to load rule snapshot")
		return
	}
	h.writeJSON(w, http.StatusOK, snap)
}

// HandleOverlay handles GET /v1/overlay. Overlay reads fail open, so this
// endpoint never returns an error body.
func (h *Handler) HandleOverlay(w http.ResponseWriter, r *http.Request) {
	text := h.engine.Overlay(r.Context())
	rulesUsed := 0
	if text != "" {
		for _, c := range text {
			if c == '\n' {
				rulesUsed++
			}
		}
		rulesUsed-- // header line
	}
	h.writeJSON(w, http.StatusOK, OverlayResponse{
		GeneratedAt: time.Now(),
		RulesUsed:   rulesUsed,
		OverlayText: text,
	})
}

// HandleGetOverrides handles GET /v1/overrides.
func (h *Handler) HandleGetOverrides(w http.ResponseWriter, r *http.Request) {
	overrides, err := h.engine.Overrides(r.Context())
	if err != nil {
		h.logger.Error("overrides read failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "overrides_failed", "Failed to load overrides")
		return
	}
	h.writeJSON(w, http.StatusOK, OverridesResponse{Overrides: overrides})
}

// HandleSetOverride handles POST /v1/overrides.
func (h *Handler) HandleSetOverride(w http.ResponseWriter, r *http.Request) {
	var req OverrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON request body")
		return
	}
	if verr := ValidateOverrideRequest(&req); verr != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_argument", verr.Error())
		return
	}

	if err := h.engine.SetOverride(r.Context(), req.RuleKey, req.Disabled, req.Reason); err != nil {
		if errors.Is(err, override.ErrInvalidKey) {
			h.writeError(w, http.StatusBadRequest, "invalid_argument", err.Error())
			return
		}
		h.logger.Error("override write failed", "rule_key", req.RuleKey, "error", err)
		h.writeError(w, http.StatusInternalServerError, "override_failed", "Failed to save override")
		return
	}
	h.writeJSON(w, http.StatusOK, req)
}

// HandleStats handles GET /v1/stats.
func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.engine.Stats(r.Context())
	if err != nil {
		h.logger.Error("stats read failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "stats_failed", "Failed to compute stats")
		return
	}
	h.writeJSON(w, http.StatusOK, stats)
}

// HandleTrainingData handles GET /v1/training-data.
func (h *Handler) HandleTrainingData(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "invalid_argument", "limit must be an integer")
			return
		}
		limit = n
	}
	limit = ClampLimit(limit)

	entries, err := h.engine.TrainingData(r.Context(), limit)
	if err != nil {
		h.logger.Error("training data read failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "training_data_failed", "Failed to load training data")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"entries": entries, "count": len(entries)})
}

// HandleHealth handles GET /v1/health.
func (h *Handler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// writeJSON writes a JSON response.
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

// writeError writes an error response.
func (h *Handler) writeError(w http.ResponseWriter, status int, errorCode, message string) {
	h.writeJSON(w, status, ErrorResponse{
		Error:   errorCode,
		Message: message,
	})
}
