package streaming

import (
	"context"
	"encoding/json"
	"fmt"

	"checkcheck-api/internal/config"
	"checkcheck-api/internal/domain/models"
)

// RawPublisher sends an encoded event to a subject
type RawPublisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
}

// EventPublisher implements the services' event publisher interfaces on top
// of a RawPublisher, normally the JetStream publisher
type EventPublisher struct {
	raw      RawPublisher
	subjects config.NATSSubjectsConfig
}

// NewEventPublisher creates a publisher adapter
func NewEventPublisher(raw RawPublisher, subjects config.NATSSubjectsConfig) *EventPublisher {
	return &EventPublisher{raw: raw, subjects: subjects}
}

// PublishDiagnosisSaved publishes a diagnosis_saved event
func (p *EventPublisher) PublishDiagnosisSaved(ctx context.Context, rec *models.DiagnosisRecord) error {
	return p.publish(ctx, p.subjects.DiagnosisSaved, NewDiagnosisSavedEvent(rec))
}

// PublishSmishingDetected publishes a smishing_detected event
func (p *EventPublisher) PublishSmishingDetected(ctx context.Context, result *models.SmishingCheckResult) error {
	return p.publish(ctx, p.subjects.SmishingDetected, NewSmishingDetectedEvent(result))
}

func (p *EventPublisher) publish(ctx context.Context, subject string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	return p.raw.Publish(ctx, subject, data)
}
