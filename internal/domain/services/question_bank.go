package services

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"gopkg.in/yaml.v3"

	"checkcheck-api/internal/domain/models"
)

// pointsPerCorrectAnswer is used when a question bank entry omits points
const pointsPerCorrectAnswer = 2

// QuestionBank is an ordered question set together with its derived score table
type QuestionBank struct {
	Questions []models.SurveyQuestion
	Table     models.ScoreTable
}

// NewQuestionBank validates the questions and derives the score table
func NewQuestionBank(questions []models.SurveyQuestion) (*QuestionBank, error) {
	for i := range questions {
		if questions[i].Points == 0 {
			questions[i].Points = pointsPerCorrectAnswer
		}
	}
	if err := ValidateQuestions(questions); err != nil {
		return nil, err
	}
	return &QuestionBank{
		Questions: questions,
		Table:     DeriveScoreTable(questions),
	}, nil
}

// DefaultQuestionBank returns the built-in six-question security-habit quiz
func DefaultQuestionBank() *QuestionBank {
	qb, err := NewQuestionBank(DefaultQuestions())
	if err != nil {
		panic(fmt.Sprintf("built-in question bank is invalid: %v", err))
	}
	return qb
}

// DefaultQuestions returns the reference question set
func DefaultQuestions() []models.SurveyQuestion {
	return []models.SurveyQuestion{
		{
			ID:     "q1",
			Prompt: "What matters most when you create a password?",
			Options: []string{
				"Make it long and complex",
				"Make it easy to remember",
				"Include words I use often",
			},
			CorrectIndex: 0,
			Points:       pointsPerCorrectAnswer,
		},
		{
			ID:     "q2",
			Prompt: "What do you think about clicking a link in an e-mail from someone you don't know?",
			Options: []string{
				"Click it if needed",
				"Never click it",
				"Check the sender first, then decide",
			},
			CorrectIndex: 2,
			Points:       pointsPerCorrectAnswer,
		},
		{
			ID:     "q3",
			Prompt: "Is it safe to do online banking on public Wi-Fi, such as in a cafe?",
			Options: []string{
				"It's fine if urgent",
				"It's not safe and should be avoided",
				"It's fine as long as I don't type a password",
			},
			CorrectIndex: 1,
			Points:       pointsPerCorrectAnswer,
		},
		{
			ID:     "q4",
			Prompt: "You receive a text from your bank saying \"your account has been locked\". What should you do?",
			Options: []string{
				"Click the link in the text to check",
				"Check directly through the bank's official app or website",
				"Reply and ask whether my information is correct",
			},
			CorrectIndex: 1,
			Points:       pointsPerCorrectAnswer,
		},
		{
			ID:     "q5",
			Prompt: "What is the safest thing to do when a software update notification appears on your phone or computer?",
			Options: []string{
				"Tap \"Later\"",
				"Install the update immediately",
				"Ignore it, updates are unnecessary",
			},
			CorrectIndex: 1,
			Points:       pointsPerCorrectAnswer,
		},
		{
			ID:     "q6",
			Prompt: "Which best describes two-factor authentication (2FA) at login?",
			Options: []string{
				"It's inconvenient, better not to use it",
				"An essential feature that greatly strengthens account security",
				"It's useless against hackers",
			},
			CorrectIndex: 1,
			Points:       pointsPerCorrectAnswer,
		},
	}
}

// DeriveScoreTable builds the option-text table from each question's
// correct option, so the table can never drift from the displayed text
func DeriveScoreTable(questions []models.SurveyQuestion) models.ScoreTable {
	table := make(models.ScoreTable, len(questions))
	for _, q := range questions {
		if opt := q.CorrectOption(); opt != "" {
			table[opt] = q.Points
		}
	}
	return table
}

// ValidateQuestions enforces the question set invariants
func ValidateQuestions(questions []models.SurveyQuestion) error {
	if len(questions) == 0 {
		return errors.New("question bank is empty")
	}

	seen := make(map[string]bool, len(questions))
	for i, q := range questions {
		if q.ID == "" {
			return fmt.Errorf("question %d: missing id", i)
		}
		if seen[q.ID] {
			return fmt.Errorf("question %q: duplicate id", q.ID)
		}
		seen[q.ID] = true

		if len(q.Options) < 2 {
			return fmt.Errorf("question %q: needs at least 2 options, has %d", q.ID, len(q.Options))
		}
		opts := make(map[string]bool, len(q.Options))
		for _, opt := range q.Options {
			if opts[opt] {
				return fmt.Errorf("question %q: duplicate option %q", q.ID, opt)
			}
			opts[opt] = true
		}
		if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
			return fmt.Errorf("question %q: correct_index %d out of range", q.ID, q.CorrectIndex)
		}
		if q.Points < 0 {
			return fmt.Errorf("question %q: negative points", q.ID)
		}
	}
	return nil
}

// TableIssue describes a score table key that matches no option
type TableIssue struct {
	Key        string `json:"key"`
	Suggestion string `json:"suggestion,omitempty"`
	Distance   int    `json:"distance,omitempty"`
}

// maxSuggestionDistance bounds how far a suggestion may be from the key
const maxSuggestionDistance = 8

// ValidateScoreTable reports table keys that match no option text. Such keys
// silently score zero, which usually means an option was reworded without
// updating the table. The closest option by edit distance is suggested.
func ValidateScoreTable(questions []models.SurveyQuestion, table models.ScoreTable) []TableIssue {
	var options []string
	known := make(map[string]bool)
	for _, q := range questions {
		for _, opt := range q.Options {
			known[opt] = true
			options = append(options, opt)
		}
	}

	var issues []TableIssue
	for key := range table {
		if known[key] {
			continue
		}
		issue := TableIssue{Key: key}
		best := -1
		for _, opt := range options {
			d := fuzzy.LevenshteinDistance(key, opt)
			if best < 0 || d < best {
				best = d
				issue.Suggestion = opt
			}
		}
		if best > maxSuggestionDistance {
			issue.Suggestion = ""
		} else {
			issue.Distance = best
		}
		issues = append(issues, issue)
	}

	sort.Slice(issues, func(i, j int) bool { return issues[i].Key < issues[j].Key })
	return issues
}

type questionBankFile struct {
	Questions []models.SurveyQuestion `yaml:"questions"`
}

// LoadQuestionBank reads a YAML question bank:
//
//	questions:
//	  - id: q1
//	    prompt: ...
//	    options: [a, b, c]
//	    correct_index: 0
//	    points: 2
func LoadQuestionBank(path string) (*QuestionBank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read question bank: %w", err)
	}

	var f questionBankFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse question bank: %w", err)
	}

	qb, err := NewQuestionBank(f.Questions)
	if err != nil {
		return nil, fmt.Errorf("invalid question bank %s: %w", path, err)
	}
	return qb, nil
}
