package services

import (
	"errors"
	"fmt"
	"strings"

	"checkcheck-api/internal/config"
	"checkcheck-api/internal/domain/models"
	"checkcheck-api/pkg/logger"
)

// Reference thresholds for the six-question bank (max 12 points)
const (
	DefaultHighThreshold   = 10
	DefaultMediumThreshold = 6
)

// ErrIncompleteSurvey is returned by CheckComplete when a question is unanswered
var ErrIncompleteSurvey = errors.New("answer all questions")

// IncompleteSurveyError lists the unanswered question IDs in declared order
type IncompleteSurveyError struct {
	Missing []string
}

func (e *IncompleteSurveyError) Error() string {
	return fmt.Sprintf("%s: missing %s", ErrIncompleteSurvey, strings.Join(e.Missing, ", "))
}

func (e *IncompleteSurveyError) Unwrap() error {
	return ErrIncompleteSurvey
}

// SurveyScorer converts survey answers into a score and risk tier
type SurveyScorer struct {
	highThreshold   int
	mediumThreshold int
	logger          *logger.Logger
}

// NewSurveyScorer creates a scorer. Unset thresholds, or a pair that would
// leave a tier unreachable, fall back to 10/6.
func NewSurveyScorer(cfg config.SurveyConfig, log *logger.Logger) *SurveyScorer {
	log = log.WithComponent("survey-scorer")

	high, medium := cfg.HighThreshold, cfg.MediumThreshold
	if high == 0 && medium == 0 {
		high, medium = DefaultHighThreshold, DefaultMediumThreshold
	} else if err := cfg.ValidateThresholds(); err != nil {
		log.Warn().Err(err).Msg("using default survey thresholds")
		high, medium = DefaultHighThreshold, DefaultMediumThreshold
	}
	return &SurveyScorer{
		highThreshold:   high,
		mediumThreshold: medium,
		logger:          log,
	}
}

// Thresholds returns the high and medium tier lower bounds
func (s *SurveyScorer) Thresholds() (high, medium int) {
	return s.highThreshold, s.mediumThreshold
}

// CheckComplete is the gate callers run before Score. It returns an
// *IncompleteSurveyError when any question in the set has no answer.
func CheckComplete(answers models.AnswerSet, questions []models.SurveyQuestion) error {
	var missing []string
	for _, q := range questions {
		if _, ok := answers[q.ID]; !ok {
			missing = append(missing, q.ID)
		}
	}
	if len(missing) > 0 {
		return &IncompleteSurveyError{Missing: missing}
	}
	return nil
}

// Score sums the table value of each chosen option, walking questions in
// declared order, and classifies the total. Unanswered questions and options
// absent from the table contribute zero. Answers keyed by unknown question
// IDs are ignored. Option matching is exact and case-sensitive.
func (s *SurveyScorer) Score(answers models.AnswerSet, questions []models.SurveyQuestion, table models.ScoreTable) models.SurveyResult {
	result := models.SurveyResult{
		Breakdown: make([]models.QuestionScore, 0, len(questions)),
	}

	for _, q := range questions {
		qs := models.QuestionScore{QuestionID: q.ID}

		answer, answered := answers[q.ID]
		if !answered {
			result.Breakdown = append(result.Breakdown, qs)
			continue
		}

		qs.Answered = true
		qs.Answer = answer
		qs.Points = table[answer]

		result.TotalScore += qs.Points
		result.Breakdown = append(result.Breakdown, qs)
	}

	result.MaxScore = MaxScore(questions, table)
	result.Tier = s.Classify(result.TotalScore)
	result.TierLabel = result.Tier.DisplayName()
	result.Advice = result.Tier.Advice()

	s.logger.Debug().
		Int("total", result.TotalScore).
		Int("max", result.MaxScore).
		Str("tier", string(result.Tier)).
		Msg("survey scored")

	return result
}

// Classify maps a total onto a tier. Lower bounds are inclusive.
func (s *SurveyScorer) Classify(total int) models.RiskTier {
	switch {
	case total >= s.highThreshold:
		return models.RiskTierSafe
	case total >= s.mediumThreshold:
		return models.RiskTierSecurityRecommended
	default:
		return models.RiskTierDangerous
	}
}

// MaxScore is the best achievable total: the highest-valued option of each question
func MaxScore(questions []models.SurveyQuestion, table models.ScoreTable) int {
	total := 0
	for _, q := range questions {
		best := 0
		for _, opt := range q.Options {
			if v := table[opt]; v > best {
				best = v
			}
		}
		total += best
	}
	return total
}
