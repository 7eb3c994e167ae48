package models

import (
	"time"

	"github.com/google/uuid"
)

// ScanTypeAutomatic is the scan type recorded for app-initiated scans
const ScanTypeAutomatic = "automatic"

// DiagnosisRecord is a stored device-scan submission. SurveyResult carries
// the tier display label and SurveyScore the survey total.
type DiagnosisRecord struct {
	ID             uuid.UUID         `json:"id"`
	ScanType       string            `json:"scanType"`
	UserID         string            `json:"userId"`
	DeviceName     string            `json:"deviceName"`
	Platform       DevicePlatform    `json:"platform,omitempty"`
	OSVersion      string            `json:"osVersion"`
	IsSecureDevice *bool             `json:"isSecureDevice"`
	IsJailbroken   *bool             `json:"isJailbroken"`
	IPAddress      string            `json:"ipAddress"`
	NetworkInfo    *NetworkInfo      `json:"networkInfo"`
	CarrierStatus  string            `json:"carrierStatus"`
	SurveyResult   string            `json:"surveyResult"`
	SurveyScore    int               `json:"surveyScore"`
	SurveyAnswers  AnswerSet         `json:"surveyAnswers,omitempty"`
	Advisories     []PostureAdvisory `json:"advisories,omitempty"`
	CreatedAt      time.Time         `json:"createdAt"`
}
