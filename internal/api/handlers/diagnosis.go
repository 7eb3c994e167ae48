package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	apimiddleware "checkcheck-api/internal/api/middleware"
	"checkcheck-api/internal/domain/models"
	"checkcheck-api/internal/domain/services"
	"checkcheck-api/pkg/logger"
)

// DiagnosisHandler stores and lists device-scan submissions
type DiagnosisHandler struct {
	service *services.DiagnosisService
	scorer  *services.SurveyScorer
	bank    *services.QuestionBank
	logger  *logger.Logger
}

// NewDiagnosisHandler creates a new diagnosis handler
func NewDiagnosisHandler(svc *services.DiagnosisService, scorer *services.SurveyScorer, bank *services.QuestionBank, log *logger.Logger) *DiagnosisHandler {
	return &DiagnosisHandler{
		service: svc,
		scorer:  scorer,
		bank:    bank,
		logger:  log.WithComponent("diagnosis-handler"),
	}
}

// DiagnosisRequest mirrors the payload the app submits after a scan
type DiagnosisRequest struct {
	ScanType       string              `json:"scanType"`
	UserID         string              `json:"userId"`
	DeviceName     string              `json:"deviceName"`
	Platform       string              `json:"platform"`
	OSVersion      string              `json:"osVersion"`
	IsSecureDevice *bool               `json:"isSecureDevice"`
	IsJailbroken   *bool               `json:"isJailbroken"`
	IPAddress      string              `json:"ipAddress"`
	NetworkInfo    *models.NetworkInfo `json:"networkInfo"`
	CarrierStatus  string              `json:"carrierStatus"`
	SurveyResult   string              `json:"surveyResult"`
	SurveyScore    int                 `json:"surveyScore"`
	SurveyAnswers  models.AnswerSet    `json:"surveyAnswers"`
}

// DiagnosisListResponse is the body of GET /api/diagnosis/{userId}
type DiagnosisListResponse struct {
	Results []*models.DiagnosisRecord `json:"results"`
}

// Create handles POST /api/diagnosis. When answers are submitted the score
// and tier are recomputed; otherwise the client tier label must agree with
// the score it was derived from.
func (h *DiagnosisHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req DiagnosisRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.logger.Debug().Err(err).Msg("invalid request body")
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	principal := apimiddleware.UserIDFromContext(r.Context())
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		userID = principal
	}
	if userID != principal {
		writeError(w, http.StatusForbidden, "userId does not match the authenticated user")
		return
	}

	facts := models.DeviceFacts{
		Platform:       models.ParseDevicePlatform(req.Platform),
		DeviceName:     req.DeviceName,
		OSVersion:      req.OSVersion,
		IsSecureDevice: req.IsSecureDevice,
		IsJailbroken:   req.IsJailbroken,
		IPAddress:      req.IPAddress,
		Carrier:        req.CarrierStatus,
		Network:        req.NetworkInfo,
	}

	var survey models.SurveyResult
	if len(req.SurveyAnswers) > 0 {
		result, err := scoreAnswers(h.scorer, h.bank, req.SurveyAnswers)
		if err != nil {
			var incomplete *services.IncompleteSurveyError
			if errors.As(err, &incomplete) {
				writeError(w, http.StatusUnprocessableEntity, services.ErrIncompleteSurvey.Error(), incomplete.Missing...)
				return
			}
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		survey = result
	} else {
		tier, ok := models.ParseRiskTier(strings.TrimSpace(req.SurveyResult))
		if !ok {
			writeError(w, http.StatusBadRequest, "surveyResult or surveyAnswers is required")
			return
		}
		maxScore := services.MaxScore(h.bank.Questions, h.bank.Table)
		if req.SurveyScore < 0 || req.SurveyScore > maxScore {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("surveyScore must be between 0 and %d", maxScore))
			return
		}
		if derived := h.scorer.Classify(req.SurveyScore); derived != tier {
			writeError(w, http.StatusBadRequest, "surveyResult does not match surveyScore")
			return
		}
		survey = models.SurveyResult{Tier: tier, TotalScore: req.SurveyScore, MaxScore: maxScore}
	}

	rec := services.BuildDiagnosis(userID, facts, survey, req.SurveyAnswers)
	if req.ScanType != "" {
		rec.ScanType = req.ScanType
	}

	if err := h.service.Save(r.Context(), rec); err != nil {
		if errors.Is(err, services.ErrMissingUserID) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.WithUserID(userID).Error().Err(err).Msg("failed to save diagnosis")
		writeError(w, http.StatusInternalServerError, "failed to save diagnosis")
		return
	}

	writeJSON(w, http.StatusCreated, rec)
}

// List handles GET /api/diagnosis/{userId}
func (h *DiagnosisHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	if userID != apimiddleware.UserIDFromContext(r.Context()) {
		writeError(w, http.StatusForbidden, "cannot list another user's results")
		return
	}

	recs, err := h.service.ListByUser(r.Context(), userID)
	if err != nil {
		h.logger.WithUserID(userID).Error().Err(err).Msg("failed to list diagnoses")
		writeError(w, http.StatusInternalServerError, "failed to list diagnoses")
		return
	}

	writeJSON(w, http.StatusOK, DiagnosisListResponse{Results: recs})
}

// Delete handles DELETE /api/diagnosis/{id}/{userId}
func (h *DiagnosisHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid diagnosis ID")
		return
	}

	userID := chi.URLParam(r, "userId")
	if userID != apimiddleware.UserIDFromContext(r.Context()) {
		writeError(w, http.StatusForbidden, "cannot delete another user's results")
		return
	}

	if err := h.service.Delete(r.Context(), id, userID); err != nil {
		switch {
		case errors.Is(err, services.ErrDiagnosisNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, services.ErrDiagnosisForbidden):
			writeError(w, http.StatusForbidden, err.Error())
		default:
			h.logger.WithUserID(userID).Error().Err(err).Str("diagnosis_id", id.String()).Msg("failed to delete diagnosis")
			writeError(w, http.StatusInternalServerError, "failed to delete diagnosis")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "diagnosis deleted"})
}
