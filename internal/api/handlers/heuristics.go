package handlers

import (
	"net/http"

	"checkcheck-api/internal/domain/models"
	"checkcheck-api/internal/domain/services"
	"checkcheck-api/pkg/logger"
)

// HeuristicsHandler exposes the local smishing rule table
type HeuristicsHandler struct {
	smishing *services.SmishingService
	logger   *logger.Logger
}

// NewHeuristicsHandler creates a new heuristics handler
func NewHeuristicsHandler(smishing *services.SmishingService, log *logger.Logger) *HeuristicsHandler {
	return &HeuristicsHandler{
		smishing: smishing,
		logger:   log.WithComponent("heuristics-handler"),
	}
}

// EvaluateResponse is the local report plus its collapsed verdict
type EvaluateResponse struct {
	Verdict  models.HeuristicVerdict   `json:"verdict"`
	Findings []models.HeuristicFinding `json:"findings"`
	Messages []string                  `json:"messages"`
}

// Evaluate handles POST /api/heuristics/evaluate. An empty input is not a
// client error: the report carries a single error finding.
func (h *HeuristicsHandler) Evaluate(w http.ResponseWriter, r *http.Request) {
	var in models.HeuristicInput
	if err := decodeJSON(w, r, &in); err != nil {
		h.logger.Debug().Err(err).Msg("invalid request body")
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	report := h.smishing.Evaluate(in)
	writeJSON(w, http.StatusOK, EvaluateResponse{
		Verdict:  report.Verdict(),
		Findings: report.Findings,
		Messages: report.Messages(),
	})
}
