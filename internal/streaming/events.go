package streaming

import (
	"time"

	"github.com/google/uuid"

	"checkcheck-api/internal/domain/models"
)

// EventType identifies a published event
type EventType string

const (
	EventTypeDiagnosisSaved   EventType = "diagnosis_saved"
	EventTypeSmishingDetected EventType = "smishing_detected"
)

// DiagnosisSavedEvent is emitted after a device-scan submission is stored.
// Raw answers and network details stay out of the event.
type DiagnosisSavedEvent struct {
	ID          string                `json:"id"`
	Type        EventType             `json:"type"`
	Timestamp   time.Time             `json:"timestamp"`
	DiagnosisID string                `json:"diagnosis_id"`
	UserID      string                `json:"user_id"`
	Platform    models.DevicePlatform `json:"platform,omitempty"`
	OSVersion   string                `json:"os_version,omitempty"`
	SurveyTier  string                `json:"survey_result"`
	SurveyScore int                   `json:"survey_score"`
	Advisories  []string              `json:"advisories,omitempty"`
}

// NewDiagnosisSavedEvent summarises a stored record
func NewDiagnosisSavedEvent(rec *models.DiagnosisRecord) *DiagnosisSavedEvent {
	codes := make([]string, 0, len(rec.Advisories))
	for _, a := range rec.Advisories {
		codes = append(codes, a.Code)
	}
	return &DiagnosisSavedEvent{
		ID:          uuid.New().String(),
		Type:        EventTypeDiagnosisSaved,
		Timestamp:   time.Now().UTC(),
		DiagnosisID: rec.ID.String(),
		UserID:      rec.UserID,
		Platform:    rec.Platform,
		OSVersion:   rec.OSVersion,
		SurveyTier:  rec.SurveyResult,
		SurveyScore: rec.SurveyScore,
		Advisories:  codes,
	}
}

// SmishingDetectedEvent is emitted when the local pre-check flags smishing
type SmishingDetectedEvent struct {
	ID          string                  `json:"id"`
	Type        EventType               `json:"type"`
	Timestamp   time.Time               `json:"timestamp"`
	PhoneNumber string                  `json:"phone_number,omitempty"`
	URL         string                  `json:"url,omitempty"`
	Verdict     models.HeuristicVerdict `json:"verdict"`
	Source      models.VerdictSource    `json:"source"`
	Rules       []string                `json:"rules"`
	Region      string                  `json:"region,omitempty"`
}

// NewSmishingDetectedEvent summarises a check result
func NewSmishingDetectedEvent(result *models.SmishingCheckResult) *SmishingDetectedEvent {
	rules := make([]string, 0, len(result.Local.Findings))
	for _, f := range result.Local.Findings {
		rules = append(rules, f.Rule)
	}
	event := &SmishingDetectedEvent{
		ID:          uuid.New().String(),
		Type:        EventTypeSmishingDetected,
		Timestamp:   time.Now().UTC(),
		PhoneNumber: result.Input.PhoneNumber,
		URL:         result.Input.URL,
		Verdict:     result.Verdict,
		Source:      result.Source,
		Rules:       rules,
	}
	if result.Phone != nil {
		event.Region = result.Phone.RegionCode
	}
	return event
}
