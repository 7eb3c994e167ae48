package services

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"checkcheck-api/internal/config"
	"checkcheck-api/internal/domain/models"
	"checkcheck-api/pkg/logger"
)

func newTestScorer() *SurveyScorer {
	return NewSurveyScorer(config.SurveyConfig{}, logger.NewNop())
}

// answersWithCorrect answers the first n questions correctly and the rest wrongly
func answersWithCorrect(questions []models.SurveyQuestion, n int) models.AnswerSet {
	answers := make(models.AnswerSet, len(questions))
	for i, q := range questions {
		if i < n {
			answers[q.ID] = q.CorrectOption()
			continue
		}
		answers[q.ID] = q.Options[(q.CorrectIndex+1)%len(q.Options)]
	}
	return answers
}

func TestScoreAllCorrect(t *testing.T) {
	t.Parallel()

	bank := DefaultQuestionBank()
	got := newTestScorer().Score(answersWithCorrect(bank.Questions, len(bank.Questions)), bank.Questions, bank.Table)

	if want := 2 * len(bank.Questions); got.TotalScore != want {
		t.Errorf("TotalScore = %d, want %d", got.TotalScore, want)
	}
	if got.Tier != models.RiskTierSafe {
		t.Errorf("Tier = %q, want %q", got.Tier, models.RiskTierSafe)
	}
	if got.MaxScore != 12 {
		t.Errorf("MaxScore = %d, want 12", got.MaxScore)
	}
	if got.TierLabel != "Safe" {
		t.Errorf("TierLabel = %q, want Safe", got.TierLabel)
	}
}

func TestScoreAllIncorrect(t *testing.T) {
	t.Parallel()

	bank := DefaultQuestionBank()
	scorer := newTestScorer()

	// every wrong option of every question, not only one per question
	for offset := 1; offset < 3; offset++ {
		answers := make(models.AnswerSet)
		for _, q := range bank.Questions {
			answers[q.ID] = q.Options[(q.CorrectIndex+offset)%len(q.Options)]
		}
		got := scorer.Score(answers, bank.Questions, bank.Table)
		if got.TotalScore != 0 {
			t.Errorf("offset %d: TotalScore = %d, want 0", offset, got.TotalScore)
		}
		if got.Tier != models.RiskTierDangerous {
			t.Errorf("offset %d: Tier = %q, want %q", offset, got.Tier, models.RiskTierDangerous)
		}
	}
}

func TestScoreIndependentOfInsertionOrder(t *testing.T) {
	t.Parallel()

	bank := DefaultQuestionBank()
	scorer := newTestScorer()

	forward := make(models.AnswerSet)
	for _, q := range bank.Questions {
		forward[q.ID] = q.Options[0]
	}
	backward := make(models.AnswerSet)
	for i := len(bank.Questions) - 1; i >= 0; i-- {
		q := bank.Questions[i]
		backward[q.ID] = q.Options[0]
	}

	want := scorer.Score(forward, bank.Questions, bank.Table)
	for i := 0; i < 20; i++ {
		if diff := cmp.Diff(want, scorer.Score(backward, bank.Questions, bank.Table)); diff != "" {
			t.Fatalf("Score mismatch (-want +got):\n%s", diff)
		}
	}
}

func TestScoreTierBoundaries(t *testing.T) {
	t.Parallel()

	bank := DefaultQuestionBank()
	scorer := newTestScorer()

	testCases := []struct {
		correct int
		total   int
		want    models.RiskTier
	}{
		{6, 12, models.RiskTierSafe},
		{5, 10, models.RiskTierSafe},
		{4, 8, models.RiskTierSecurityRecommended},
		{3, 6, models.RiskTierSecurityRecommended},
		{2, 4, models.RiskTierDangerous},
		{0, 0, models.RiskTierDangerous},
	}

	for _, tc := range testCases {
		got := scorer.Score(answersWithCorrect(bank.Questions, tc.correct), bank.Questions, bank.Table)
		if got.TotalScore != tc.total {
			t.Errorf("%d correct: TotalScore = %d, want %d", tc.correct, got.TotalScore, tc.total)
		}
		if got.Tier != tc.want {
			t.Errorf("%d correct: Tier = %q, want %q", tc.correct, got.Tier, tc.want)
		}
	}
}

func TestClassifyCustomThresholds(t *testing.T) {
	t.Parallel()

	scorer := NewSurveyScorer(config.SurveyConfig{HighThreshold: 20, MediumThreshold: 12}, logger.NewNop())

	testCases := []struct {
		total int
		want  models.RiskTier
	}{
		{20, models.RiskTierSafe},
		{19, models.RiskTierSecurityRecommended},
		{12, models.RiskTierSecurityRecommended},
		{11, models.RiskTierDangerous},
	}
	for _, tc := range testCases {
		if got := scorer.Classify(tc.total); got != tc.want {
			t.Errorf("Classify(%d) = %q, want %q", tc.total, got, tc.want)
		}
	}
}

func TestNewSurveyScorerRejectsUnreachableTiers(t *testing.T) {
	t.Parallel()

	for _, cfg := range []config.SurveyConfig{
		{},
		{HighThreshold: 5, MediumThreshold: 8},
		{HighThreshold: 6, MediumThreshold: 6},
		{HighThreshold: 10},
		{HighThreshold: 4, MediumThreshold: -1},
	} {
		high, medium := NewSurveyScorer(cfg, logger.NewNop()).Thresholds()
		if high != DefaultHighThreshold || medium != DefaultMediumThreshold {
			t.Errorf("NewSurveyScorer(%d/%d) thresholds = %d/%d, want defaults", cfg.HighThreshold, cfg.MediumThreshold, high, medium)
		}
	}
}

func TestScoreUnansweredAndUnknownOptionsScoreZero(t *testing.T) {
	t.Parallel()

	bank := DefaultQuestionBank()
	answers := models.AnswerSet{
		"q1":      bank.Questions[0].CorrectOption(),
		"q2":      "not an option",
		"unknown": bank.Questions[2].CorrectOption(),
	}

	got := newTestScorer().Score(answers, bank.Questions, bank.Table)
	if got.TotalScore != 2 {
		t.Errorf("TotalScore = %d, want 2", got.TotalScore)
	}

	want := []models.QuestionScore{
		{QuestionID: "q1", Answer: bank.Questions[0].CorrectOption(), Answered: true, Points: 2},
		{QuestionID: "q2", Answer: "not an option", Answered: true, Points: 0},
		{QuestionID: "q3"},
		{QuestionID: "q4"},
		{QuestionID: "q5"},
		{QuestionID: "q6"},
	}
	if diff := cmp.Diff(want, got.Breakdown); diff != "" {
		t.Errorf("Breakdown mismatch (-want +got):\n%s", diff)
	}
}

func TestScoreCaseSensitive(t *testing.T) {
	t.Parallel()

	bank := DefaultQuestionBank()
	answers := models.AnswerSet{"q1": "make it long and complex"}

	if got := newTestScorer().Score(answers, bank.Questions, bank.Table); got.TotalScore != 0 {
		t.Errorf("TotalScore = %d, want 0 for a case-mismatched answer", got.TotalScore)
	}
}

func TestCheckComplete(t *testing.T) {
	t.Parallel()

	bank := DefaultQuestionBank()

	if err := CheckComplete(answersWithCorrect(bank.Questions, 6), bank.Questions); err != nil {
		t.Fatalf("CheckComplete(complete) = %v, want nil", err)
	}

	answers := answersWithCorrect(bank.Questions, 6)
	delete(answers, "q2")
	delete(answers, "q5")

	err := CheckComplete(answers, bank.Questions)
	if !errors.Is(err, ErrIncompleteSurvey) {
		t.Fatalf("CheckComplete = %v, want ErrIncompleteSurvey", err)
	}
	var incomplete *IncompleteSurveyError
	if !errors.As(err, &incomplete) {
		t.Fatalf("CheckComplete error is %T, want *IncompleteSurveyError", err)
	}
	if diff := cmp.Diff([]string{"q2", "q5"}, incomplete.Missing); diff != "" {
		t.Errorf("Missing mismatch (-want +got):\n%s", diff)
	}
}
