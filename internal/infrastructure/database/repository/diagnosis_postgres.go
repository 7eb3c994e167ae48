package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"checkcheck-api/internal/domain/models"
	"checkcheck-api/internal/infrastructure/database"
)

// PostgresDiagnosisRepository stores diagnosis records in PostgreSQL
type PostgresDiagnosisRepository struct {
	db database.DBTX
}

// NewPostgresDiagnosisRepository creates a repository on a pool or transaction
func NewPostgresDiagnosisRepository(db database.DBTX) *PostgresDiagnosisRepository {
	return &PostgresDiagnosisRepository{db: db}
}

// Create inserts a record
func (r *PostgresDiagnosisRepository) Create(ctx context.Context, rec *models.DiagnosisRecord) error {
	docs, err := encodeDiagnosisDocs(rec)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO diagnoses (` + diagnosisColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

	_, err = r.db.Exec(ctx, query,
		rec.ID, rec.ScanType, rec.UserID, textOrNull(rec.DeviceName), textOrNull(string(rec.Platform)),
		textOrNull(rec.OSVersion), rec.IsSecureDevice, rec.IsJailbroken, textOrNull(rec.IPAddress),
		docs.network, textOrNull(rec.CarrierStatus), rec.SurveyResult, rec.SurveyScore,
		docs.answers, docs.advisories, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create diagnosis: %w", err)
	}
	return nil
}

// GetByID returns nil, nil when the record does not exist
func (r *PostgresDiagnosisRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.DiagnosisRecord, error) {
	query := `SELECT ` + diagnosisColumns + ` FROM diagnoses WHERE id = $1`

	rec, err := scanPostgresDiagnosis(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return rec, nil
}

// ListByUser returns the user's records, newest first
func (r *PostgresDiagnosisRepository) ListByUser(ctx context.Context, userID string) ([]*models.DiagnosisRecord, error) {
	query := `SELECT ` + diagnosisColumns + ` FROM diagnoses WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list diagnoses: %w", err)
	}
	defer rows.Close()

	var recs []*models.DiagnosisRecord
	for rows.Next() {
		rec, err := scanPostgresDiagnosis(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// Delete removes a record
func (r *PostgresDiagnosisRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM diagnoses WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete diagnosis: %w", err)
	}
	return nil
}

func scanPostgresDiagnosis(row pgx.Row) (*models.DiagnosisRecord, error) {
	var (
		rec                                      models.DiagnosisRecord
		deviceName, platform, osVersion, ip, car pgtype.Text
		docs                                     diagnosisDocs
	)

	err := row.Scan(
		&rec.ID, &rec.ScanType, &rec.UserID, &deviceName, &platform, &osVersion,
		&rec.IsSecureDevice, &rec.IsJailbroken, &ip, &docs.network, &car,
		&rec.SurveyResult, &rec.SurveyScore, &docs.answers, &docs.advisories, &rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan diagnosis: %w", err)
	}

	rec.DeviceName = nullTextToString(deviceName)
	rec.Platform = models.DevicePlatform(nullTextToString(platform))
	rec.OSVersion = nullTextToString(osVersion)
	rec.IPAddress = nullTextToString(ip)
	rec.CarrierStatus = nullTextToString(car)

	if err := docs.decodeInto(&rec); err != nil {
		return nil, err
	}
	return &rec, nil
}
