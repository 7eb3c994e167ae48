package handlers

import (
	"net/http"

	"checkcheck-api/internal/domain/models"
	"checkcheck-api/internal/domain/services"
	"checkcheck-api/pkg/logger"
)

// PostureHandler turns device facts into advisories
type PostureHandler struct {
	advisor *services.PostureAdvisor
	logger  *logger.Logger
}

// NewPostureHandler creates a new posture handler
func NewPostureHandler(advisor *services.PostureAdvisor, log *logger.Logger) *PostureHandler {
	return &PostureHandler{
		advisor: advisor,
		logger:  log.WithComponent("posture-handler"),
	}
}

// AdviseResponse lists the advisories for the submitted facts
type AdviseResponse struct {
	Advisories []models.PostureAdvisory `json:"advisories"`
}

// Advise handles POST /api/posture/advise
func (h *PostureHandler) Advise(w http.ResponseWriter, r *http.Request) {
	var facts models.DeviceFacts
	if err := decodeJSON(w, r, &facts); err != nil {
		h.logger.Debug().Err(err).Msg("invalid request body")
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	facts.Platform = models.ParseDevicePlatform(string(facts.Platform))

	advs := h.advisor.Advise(facts)
	if advs == nil {
		advs = []models.PostureAdvisory{}
	}
	writeJSON(w, http.StatusOK, AdviseResponse{Advisories: advs})
}
