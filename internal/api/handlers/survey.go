package handlers

import (
	"errors"
	"net/http"

	"checkcheck-api/internal/domain/models"
	"checkcheck-api/internal/domain/services"
	"checkcheck-api/pkg/logger"
)

// SurveyHandler serves the security-habit quiz
type SurveyHandler struct {
	scorer *services.SurveyScorer
	bank   *services.QuestionBank
	logger *logger.Logger
}

// NewSurveyHandler creates a new survey handler
func NewSurveyHandler(scorer *services.SurveyScorer, bank *services.QuestionBank, log *logger.Logger) *SurveyHandler {
	return &SurveyHandler{
		scorer: scorer,
		bank:   bank,
		logger: log.WithComponent("survey-handler"),
	}
}

// QuestionsResponse lists the questions without their answers
type QuestionsResponse struct {
	Questions  []models.SurveyQuestion `json:"questions"`
	MaxScore   int                     `json:"max_score"`
	Thresholds map[string]int          `json:"thresholds"`
}

// ScoreRequest is the body of POST /api/survey/score
type ScoreRequest struct {
	Answers models.AnswerSet `json:"answers"`
}

// Questions handles GET /api/survey/questions
func (h *SurveyHandler) Questions(w http.ResponseWriter, r *http.Request) {
	high, medium := h.scorer.Thresholds()
	writeJSON(w, http.StatusOK, QuestionsResponse{
		Questions: h.bank.Questions,
		MaxScore:  services.MaxScore(h.bank.Questions, h.bank.Table),
		Thresholds: map[string]int{
			string(models.RiskTierSafe):                high,
			string(models.RiskTierSecurityRecommended): medium,
		},
	})
}

// Score handles POST /api/survey/score. Incomplete answer sets are rejected
// with 422 and the missing question IDs.
func (h *SurveyHandler) Score(w http.ResponseWriter, r *http.Request) {
	var req ScoreRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.logger.Debug().Err(err).Msg("invalid request body")
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.score(req.Answers)
	if err != nil {
		var incomplete *services.IncompleteSurveyError
		if errors.As(err, &incomplete) {
			writeError(w, http.StatusUnprocessableEntity, services.ErrIncompleteSurvey.Error(), incomplete.Missing...)
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *SurveyHandler) score(answers models.AnswerSet) (models.SurveyResult, error) {
	return scoreAnswers(h.scorer, h.bank, answers)
}

// scoreAnswers runs the completeness gate then scores
func scoreAnswers(scorer *services.SurveyScorer, bank *services.QuestionBank, answers models.AnswerSet) (models.SurveyResult, error) {
	if err := services.CheckComplete(answers, bank.Questions); err != nil {
		return models.SurveyResult{}, err
	}
	return scorer.Score(answers, bank.Questions, bank.Table), nil
}
