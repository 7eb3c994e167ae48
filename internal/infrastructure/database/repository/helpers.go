package repository

import (
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"

	"checkcheck-api/internal/domain/models"
)

// Text conversion helpers

func textOrNull(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: s, Valid: true}
}

func nullTextToString(t pgtype.Text) string {
	if !t.Valid {
		return ""
	}
	return t.String
}

// diagnosisDocs are the JSON-encoded columns of a diagnosis row. Nil slices
// are stored as NULL.
type diagnosisDocs struct {
	network    []byte
	answers    []byte
	advisories []byte
}

func encodeDiagnosisDocs(rec *models.DiagnosisRecord) (diagnosisDocs, error) {
	var docs diagnosisDocs
	var err error
	if rec.NetworkInfo != nil {
		if docs.network, err = json.Marshal(rec.NetworkInfo); err != nil {
			return docs, fmt.Errorf("failed to encode network info: %w", err)
		}
	}
	if len(rec.SurveyAnswers) > 0 {
		if docs.answers, err = json.Marshal(rec.SurveyAnswers); err != nil {
			return docs, fmt.Errorf("failed to encode survey answers: %w", err)
		}
	}
	if len(rec.Advisories) > 0 {
		if docs.advisories, err = json.Marshal(rec.Advisories); err != nil {
			return docs, fmt.Errorf("failed to encode advisories: %w", err)
		}
	}
	return docs, nil
}

func (d diagnosisDocs) decodeInto(rec *models.DiagnosisRecord) error {
	if len(d.network) > 0 {
		rec.NetworkInfo = &models.NetworkInfo{}
		if err := json.Unmarshal(d.network, rec.NetworkInfo); err != nil {
			return fmt.Errorf("failed to decode network info: %w", err)
		}
	}
	if len(d.answers) > 0 {
		if err := json.Unmarshal(d.answers, &rec.SurveyAnswers); err != nil {
			return fmt.Errorf("failed to decode survey answers: %w", err)
		}
	}
	if len(d.advisories) > 0 {
		if err := json.Unmarshal(d.advisories, &rec.Advisories); err != nil {
			return fmt.Errorf("failed to decode advisories: %w", err)
		}
	}
	return nil
}

const diagnosisColumns = `id, scan_type, user_id, device_name, platform, os_version,
	is_secure_device, is_jailbroken, ip_address, network_info, carrier_status,
	survey_result, survey_score, survey_answers, advisories, created_at`
