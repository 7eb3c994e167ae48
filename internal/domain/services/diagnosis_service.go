package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"checkcheck-api/internal/domain/models"
	"checkcheck-api/pkg/logger"
)

var (
	// ErrDiagnosisNotFound is returned when no record has the requested id
	ErrDiagnosisNotFound = errors.New("diagnosis not found")
	// ErrDiagnosisForbidden is returned when a caller touches another user's record
	ErrDiagnosisForbidden = errors.New("diagnosis belongs to another user")
	// ErrMissingUserID is returned when a submission has no owner
	ErrMissingUserID = errors.New("userId is required")
)

// DiagnosisRepository persists diagnosis records. GetByID returns nil, nil
// when the record does not exist.
type DiagnosisRepository interface {
	Create(ctx context.Context, rec *models.DiagnosisRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.DiagnosisRecord, error)
	ListByUser(ctx context.Context, userID string) ([]*models.DiagnosisRecord, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// DiagnosisEventPublisher is notified after a record is stored
type DiagnosisEventPublisher interface {
	PublishDiagnosisSaved(ctx context.Context, rec *models.DiagnosisRecord) error
}

// BuildDiagnosis assembles a device-scan submission from the collected facts
// and the survey outcome
func BuildDiagnosis(userID string, facts models.DeviceFacts, survey models.SurveyResult, answers models.AnswerSet) *models.DiagnosisRecord {
	return &models.DiagnosisRecord{
		ScanType:       models.ScanTypeAutomatic,
		UserID:         strings.TrimSpace(userID),
		DeviceName:     facts.DeviceName,
		Platform:       facts.Platform,
		OSVersion:      facts.OSVersion,
		IsSecureDevice: facts.IsSecureDevice,
		IsJailbroken:   facts.IsJailbroken,
		IPAddress:      facts.IPAddress,
		NetworkInfo:    facts.Network,
		CarrierStatus:  facts.Carrier,
		SurveyResult:   survey.Tier.DisplayName(),
		SurveyScore:    survey.TotalScore,
		SurveyAnswers:  answers,
	}
}

// DiagnosisService stores and lists device-scan submissions
type DiagnosisService struct {
	repo      DiagnosisRepository
	advisor   *PostureAdvisor
	publisher DiagnosisEventPublisher
	logger    *logger.Logger
}

// NewDiagnosisService creates the service. advisor and publisher may be nil.
func NewDiagnosisService(repo DiagnosisRepository, advisor *PostureAdvisor, publisher DiagnosisEventPublisher, log *logger.Logger) *DiagnosisService {
	return &DiagnosisService{
		repo:      repo,
		advisor:   advisor,
		publisher: publisher,
		logger:    log.WithComponent("diagnosis-service"),
	}
}

// Save assigns an id and timestamp, attaches posture advisories and stores
// the record
func (s *DiagnosisService) Save(ctx context.Context, rec *models.DiagnosisRecord) error {
	if rec.UserID == "" {
		return ErrMissingUserID
	}
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.ScanType == "" {
		rec.ScanType = models.ScanTypeAutomatic
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	if s.advisor != nil && rec.Advisories == nil {
		rec.Advisories = s.advisor.Advise(models.DeviceFacts{
			Platform:       rec.Platform,
			OSVersion:      rec.OSVersion,
			IsSecureDevice: rec.IsSecureDevice,
			IsJailbroken:   rec.IsJailbroken,
			Network:        rec.NetworkInfo,
		})
	}

	if err := s.repo.Create(ctx, rec); err != nil {
		return fmt.Errorf("failed to store diagnosis: %w", err)
	}

	s.logger.Info().
		Str("diagnosis_id", rec.ID.String()).
		Str("user_id", rec.UserID).
		Str("survey_result", rec.SurveyResult).
		Msg("diagnosis saved")

	if s.publisher != nil {
		if err := s.publisher.PublishDiagnosisSaved(ctx, rec); err != nil {
			s.logger.Warn().Err(err).Msg("failed to publish diagnosis event")
		}
	}

	return nil
}

// ListByUser returns the user's records, newest first
func (s *DiagnosisService) ListByUser(ctx context.Context, userID string) ([]*models.DiagnosisRecord, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}
	recs, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list diagnoses: %w", err)
	}
	if recs == nil {
		recs = []*models.DiagnosisRecord{}
	}
	return recs, nil
}

// Delete removes a record owned by userID
func (s *DiagnosisService) Delete(ctx context.Context, id uuid.UUID, userID string) error {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load diagnosis: %w", err)
	}
	if rec == nil {
		return ErrDiagnosisNotFound
	}
	if rec.UserID != userID {
		return ErrDiagnosisForbidden
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete diagnosis: %w", err)
	}
	s.logger.Info().Str("diagnosis_id", id.String()).Str("user_id", userID).Msg("diagnosis deleted")
	return nil
}
