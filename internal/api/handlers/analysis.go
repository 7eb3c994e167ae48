package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"checkcheck-api/internal/domain/models"
	"checkcheck-api/internal/domain/services"
	"checkcheck-api/pkg/logger"
)

const defaultMaxBatchSize = 100

// EmailAnalyzer is the upstream e-mail analysis call
type EmailAnalyzer interface {
	AnalyzeEmail(ctx context.Context, req models.EmailAnalysisRequest) (*models.EmailAnalysisResponse, error)
}

// AnalysisHandler serves the reconciled smishing check and e-mail analysis
type AnalysisHandler struct {
	smishing     *services.SmishingService
	email        EmailAnalyzer
	maxBatchSize int
	logger       *logger.Logger
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(smishing *services.SmishingService, email EmailAnalyzer, maxBatchSize int, log *logger.Logger) *AnalysisHandler {
	if maxBatchSize <= 0 {
		maxBatchSize = defaultMaxBatchSize
	}
	return &AnalysisHandler{
		smishing:     smishing,
		email:        email,
		maxBatchSize: maxBatchSize,
		logger:       log.WithComponent("analysis-handler"),
	}
}

// BatchRequest is the body of POST /api/analyze/batch
type BatchRequest struct {
	Items []models.HeuristicInput `json:"items"`
}

// BatchResponse holds results in request order
type BatchResponse struct {
	Results []*models.SmishingCheckResult `json:"results"`
	Count   int                           `json:"count"`
}

// EmailResponse is the upstream verdict, every top-level key included, plus
// the request actually sent under "request"
type EmailResponse struct {
	Request models.EmailAnalysisRequest
	*models.EmailAnalysisResponse
}

// MarshalJSON flattens the upstream keys next to "request"
func (r EmailResponse) MarshalJSON() ([]byte, error) {
	fields := map[string]any{}
	if r.EmailAnalysisResponse != nil {
		fields = r.EmailAnalysisResponse.Fields()
	}
	fields["request"] = r.Request
	return json.Marshal(fields)
}

// Analyze handles POST /api/analyze
func (h *AnalysisHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var in models.HeuristicInput
	if err := decodeJSON(w, r, &in); err != nil {
		h.logger.Debug().Err(err).Msg("invalid request body")
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if in.IsEmpty() {
		writeError(w, http.StatusBadRequest, "phoneNumber or url is required")
		return
	}

	result := h.smishing.Check(r.Context(), in)

	h.logger.Info().
		Str("verdict", string(result.Verdict)).
		Str("source", string(result.Source)).
		Bool("cached", result.Cached).
		Msg("message analyzed")

	writeJSON(w, http.StatusOK, result)
}

// AnalyzeBatch handles POST /api/analyze/batch
func (h *AnalysisHandler) AnalyzeBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.logger.Debug().Err(err).Msg("invalid request body")
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if len(req.Items) == 0 {
		writeError(w, http.StatusBadRequest, "at least one item is required")
		return
	}
	if len(req.Items) > h.maxBatchSize {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("maximum %d items per batch", h.maxBatchSize))
		return
	}

	results, err := h.smishing.CheckBatch(r.Context(), req.Items)
	if err != nil {
		h.logger.Warn().Err(err).Msg("batch analysis aborted")
		writeError(w, http.StatusServiceUnavailable, "batch analysis aborted")
		return
	}

	writeJSON(w, http.StatusOK, BatchResponse{Results: results, Count: len(results)})
}

// AnalyzeEmail handles POST /api/analyze-email. Empty subject and body are
// replaced with placeholders before forwarding.
func (h *AnalysisHandler) AnalyzeEmail(w http.ResponseWriter, r *http.Request) {
	var req models.EmailAnalysisRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.logger.Debug().Err(err).Msg("invalid request body")
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req = services.NormalizeEmailRequest(req)
	if req.FromEmail == "" {
		writeError(w, http.StatusBadRequest, "fromEmail is required")
		return
	}

	resp, err := h.email.AnalyzeEmail(r.Context(), req)
	if err != nil {
		h.writeUpstreamError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, EmailResponse{Request: req, EmailAnalysisResponse: resp})
}

func (h *AnalysisHandler) writeUpstreamError(w http.ResponseWriter, err error) {
	var upstream *services.UpstreamError
	switch {
	case errors.Is(err, services.ErrAnalysisDisabled):
		writeError(w, http.StatusServiceUnavailable, "remote analysis is not configured")
	case errors.As(err, &upstream):
		writeError(w, http.StatusBadGateway, upstream.Message)
	default:
		h.logger.Warn().Err(err).Msg("email analysis failed")
		writeError(w, http.StatusBadGateway, "analysis service unavailable")
	}
}
