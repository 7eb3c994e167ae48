package handlers

import (
	"encoding/json"
	"net/http"

	"checkcheck-api/internal/domain/services"
	"checkcheck-api/pkg/logger"
)

// maxBodyBytes caps request bodies; e-mail bodies are the largest payloads
const maxBodyBytes = 1 << 20

// Handlers holds all API handlers
type Handlers struct {
	Health     *HealthHandler
	Survey     *SurveyHandler
	Heuristics *HeuristicsHandler
	Analysis   *AnalysisHandler
	Posture    *PostureHandler
	Diagnosis  *DiagnosisHandler
}

// Dependencies holds dependencies for handlers. Optional fields may be nil.
type Dependencies struct {
	Scorer       *services.SurveyScorer
	QuestionBank *services.QuestionBank
	Smishing     *services.SmishingService
	Email        EmailAnalyzer
	Posture      *services.PostureAdvisor
	Diagnosis    *services.DiagnosisService
	ReadyChecks  []ReadyCheck
	Version      string
	MaxBatchSize int
	Logger       *logger.Logger
}

// NewHandlers creates all handlers
func NewHandlers(deps Dependencies) *Handlers {
	return &Handlers{
		Health:     NewHealthHandler(deps.Version, deps.ReadyChecks, deps.Logger),
		Survey:     NewSurveyHandler(deps.Scorer, deps.QuestionBank, deps.Logger),
		Heuristics: NewHeuristicsHandler(deps.Smishing, deps.Logger),
		Analysis:   NewAnalysisHandler(deps.Smishing, deps.Email, deps.MaxBatchSize, deps.Logger),
		Posture:    NewPostureHandler(deps.Posture, deps.Logger),
		Diagnosis:  NewDiagnosisHandler(deps.Diagnosis, deps.Scorer, deps.QuestionBank, deps.Logger),
	}
}

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string, details ...string) {
	writeJSON(w, status, ErrorResponse{Error: msg, Details: details})
}

// decodeJSON reads a size-limited JSON body into dest
func decodeJSON(w http.ResponseWriter, r *http.Request, dest any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(dest)
}
