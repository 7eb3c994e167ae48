package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"checkcheck-api/internal/domain/models"
)

func TestDefaultQuestionBank(t *testing.T) {
	t.Parallel()

	bank := DefaultQuestionBank()
	if len(bank.Questions) != 6 {
		t.Fatalf("len(Questions) = %d, want 6", len(bank.Questions))
	}
	if len(bank.Table) != 6 {
		t.Errorf("len(Table) = %d, want 6", len(bank.Table))
	}
	for _, q := range bank.Questions {
		if got := bank.Table[q.CorrectOption()]; got != 2 {
			t.Errorf("%s: table[%q] = %d, want 2", q.ID, q.CorrectOption(), got)
		}
	}
	if issues := ValidateScoreTable(bank.Questions, bank.Table); len(issues) != 0 {
		t.Errorf("ValidateScoreTable(default) = %v, want none", issues)
	}
}

func TestValidateQuestions(t *testing.T) {
	t.Parallel()

	valid := func() models.SurveyQuestion {
		return models.SurveyQuestion{ID: "a", Options: []string{"x", "y"}, CorrectIndex: 1, Points: 2}
	}

	testCases := []struct {
		name    string
		mutate  func(qs []models.SurveyQuestion) []models.SurveyQuestion
		wantErr bool
	}{
		{"valid", func(qs []models.SurveyQuestion) []models.SurveyQuestion { return qs }, false},
		{"empty", func([]models.SurveyQuestion) []models.SurveyQuestion { return nil }, true},
		{"missing id", func(qs []models.SurveyQuestion) []models.SurveyQuestion { qs[0].ID = ""; return qs }, true},
		{"duplicate id", func(qs []models.SurveyQuestion) []models.SurveyQuestion { return append(qs, qs[0]) }, true},
		{"one option", func(qs []models.SurveyQuestion) []models.SurveyQuestion { qs[0].Options = []string{"x"}; return qs }, true},
		{"duplicate option", func(qs []models.SurveyQuestion) []models.SurveyQuestion { qs[0].Options = []string{"x", "x"}; return qs }, true},
		{"index out of range", func(qs []models.SurveyQuestion) []models.SurveyQuestion { qs[0].CorrectIndex = 2; return qs }, true},
		{"negative points", func(qs []models.SurveyQuestion) []models.SurveyQuestion { qs[0].Points = -1; return qs }, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateQuestions(tc.mutate([]models.SurveyQuestion{valid()}))
			if (err != nil) != tc.wantErr {
				t.Errorf("ValidateQuestions() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestValidateScoreTableSuggestsClosestOption(t *testing.T) {
	t.Parallel()

	bank := DefaultQuestionBank()
	table := models.ScoreTable{
		"Make it long and complex":               2,
		"Install the update immediatly":          2,
		"completely unrelated text that is long": 2,
	}

	want := []TableIssue{
		{Key: "Install the update immediatly", Suggestion: "Install the update immediately", Distance: 1},
		{Key: "completely unrelated text that is long"},
	}
	if diff := cmp.Diff(want, ValidateScoreTable(bank.Questions, table)); diff != "" {
		t.Errorf("ValidateScoreTable mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadQuestionBank(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "questions.yaml")
	data := `questions:
  - id: pin
    prompt: Do you use a screen lock PIN?
    options: ["Yes", "No"]
    correct_index: 0
  - id: backup
    prompt: How often do you back up?
    options: [Never, Weekly, Daily]
    correct_index: 2
    points: 3
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	bank, err := LoadQuestionBank(path)
	if err != nil {
		t.Fatalf("LoadQuestionBank() error = %v", err)
	}

	wantTable := models.ScoreTable{"Yes": 2, "Daily": 3}
	if diff := cmp.Diff(wantTable, bank.Table); diff != "" {
		t.Errorf("Table mismatch (-want +got):\n%s", diff)
	}
	if got := MaxScore(bank.Questions, bank.Table); got != 5 {
		t.Errorf("MaxScore = %d, want 5", got)
	}
}

func TestLoadQuestionBankInvalid(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "questions.yaml")
	data := "questions:\n  - id: a\n    options: [x, y]\n    correct_index: 5\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadQuestionBank(path); err == nil {
		t.Fatal("LoadQuestionBank() error = nil, want out-of-range error")
	}
	if _, err := LoadQuestionBank(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("LoadQuestionBank(missing) error = nil")
	}
}
