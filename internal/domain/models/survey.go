package models

// SurveyQuestion is one multiple-choice question of the security-habit quiz.
// Options are in display order. CorrectIndex points at the option that earns
// Points; every other option earns zero.
type SurveyQuestion struct {
	ID           string   `json:"id" yaml:"id"`
	Prompt       string   `json:"prompt" yaml:"prompt"`
	Options      []string `json:"options" yaml:"options"`
	CorrectIndex int      `json:"-" yaml:"correct_index"`
	Points       int      `json:"-" yaml:"points"`
}

// CorrectOption returns the text of the correct option, or "" when the index
// is out of range
func (q SurveyQuestion) CorrectOption() string {
	if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
		return ""
	}
	return q.Options[q.CorrectIndex]
}

// ScoreTable maps exact option text to its point value. Options missing from
// the table score zero.
type ScoreTable map[string]int

// AnswerSet maps a question ID to the chosen option text
type AnswerSet map[string]string

// RiskTier classifies a survey total
type RiskTier string

const (
	RiskTierSafe                RiskTier = "safe"
	RiskTierSecurityRecommended RiskTier = "security_recommended"
	RiskTierDangerous           RiskTier = "dangerous"
)

// DisplayName is the label forwarded as surveyResult in diagnosis submissions
func (t RiskTier) DisplayName() string {
	switch t {
	case RiskTierSafe:
		return "Safe"
	case RiskTierSecurityRecommended:
		return "Security Recommended"
	case RiskTierDangerous:
		return "Dangerous"
	default:
		return "Unknown"
	}
}

// Advice returns the result-screen message for the tier
func (t RiskTier) Advice() string {
	switch t {
	case RiskTierSafe:
		return "Great job! You are following the basic security rules well."
	case RiskTierSecurityRecommended:
		return "Good. Improving a few habits would make you even safer."
	case RiskTierDangerous:
		return "Attention needed. Your account security habits need immediate improvement."
	default:
		return ""
	}
}

// ParseRiskTier accepts either the tier code or its display name
func ParseRiskTier(s string) (RiskTier, bool) {
	for _, t := range []RiskTier{RiskTierSafe, RiskTierSecurityRecommended, RiskTierDangerous} {
		if s == string(t) || s == t.DisplayName() {
			return t, true
		}
	}
	return "", false
}

// QuestionScore is the per-question contribution to a survey result
type QuestionScore struct {
	QuestionID string `json:"question_id"`
	Answer     string `json:"answer,omitempty"`
	Answered   bool   `json:"answered"`
	Points     int    `json:"points"`
}

// SurveyResult is derived from an AnswerSet on every submission
type SurveyResult struct {
	TotalScore int             `json:"total_score"`
	MaxScore   int             `json:"max_score"`
	Tier       RiskTier        `json:"tier"`
	TierLabel  string          `json:"tier_label"`
	Advice     string          `json:"advice"`
	Breakdown  []QuestionScore `json:"breakdown"`
}
