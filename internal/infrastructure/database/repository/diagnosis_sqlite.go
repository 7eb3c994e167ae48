package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"checkcheck-api/internal/domain/models"
)

// SQLiteDiagnosisRepository stores diagnosis records in a local SQLite file.
// created_at is kept as Unix nanoseconds.
type SQLiteDiagnosisRepository struct {
	db *sql.DB
}

// NewSQLiteDiagnosisRepository creates a repository on a database opened
// with database.OpenSQLite
func NewSQLiteDiagnosisRepository(db *sql.DB) *SQLiteDiagnosisRepository {
	return &SQLiteDiagnosisRepository{db: db}
}

// Create inserts a record
func (r *SQLiteDiagnosisRepository) Create(ctx context.Context, rec *models.DiagnosisRecord) error {
	docs, err := encodeDiagnosisDocs(rec)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO diagnoses (` + diagnosisColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = r.db.ExecContext(ctx, query,
		rec.ID.String(), rec.ScanType, rec.UserID, rec.DeviceName, string(rec.Platform),
		rec.OSVersion, rec.IsSecureDevice, rec.IsJailbroken, rec.IPAddress,
		nullableText(docs.network), rec.CarrierStatus, rec.SurveyResult, rec.SurveyScore,
		nullableText(docs.answers), nullableText(docs.advisories), rec.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to create diagnosis: %w", err)
	}
	return nil
}

// GetByID returns nil, nil when the record does not exist
func (r *SQLiteDiagnosisRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.DiagnosisRecord, error) {
	query := `SELECT ` + diagnosisColumns + ` FROM diagnoses WHERE id = ?`

	rec, err := scanSQLiteDiagnosis(r.db.QueryRowContext(ctx, query, id.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return rec, err
}

// ListByUser returns the user's records, newest first
func (r *SQLiteDiagnosisRepository) ListByUser(ctx context.Context, userID string) ([]*models.DiagnosisRecord, error) {
	query := `SELECT ` + diagnosisColumns + ` FROM diagnoses WHERE user_id = ? ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list diagnoses: %w", err)
	}
	defer rows.Close()

	var recs []*models.DiagnosisRecord
	for rows.Next() {
		rec, err := scanSQLiteDiagnosis(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// Delete removes a record
func (r *SQLiteDiagnosisRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM diagnoses WHERE id = ?`, id.String()); err != nil {
		return fmt.Errorf("failed to delete diagnosis: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteDiagnosis(row rowScanner) (*models.DiagnosisRecord, error) {
	var (
		rec                                           models.DiagnosisRecord
		id                                            string
		deviceName, platform, osVersion, ip, carrier sql.NullString
		secure, jailbroken                            sql.NullBool
		network, answers, advisories                  sql.NullString
		createdAt                                     int64
	)

	err := row.Scan(
		&id, &rec.ScanType, &rec.UserID, &deviceName, &platform, &osVersion,
		&secure, &jailbroken, &ip, &network, &carrier,
		&rec.SurveyResult, &rec.SurveyScore, &answers, &advisories, &createdAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan diagnosis: %w", err)
	}

	if rec.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("invalid diagnosis id %q: %w", id, err)
	}
	rec.DeviceName = deviceName.String
	rec.Platform = models.DevicePlatform(platform.String)
	rec.OSVersion = osVersion.String
	rec.IPAddress = ip.String
	rec.CarrierStatus = carrier.String
	if secure.Valid {
		rec.IsSecureDevice = &secure.Bool
	}
	if jailbroken.Valid {
		rec.IsJailbroken = &jailbroken.Bool
	}
	rec.CreatedAt = time.Unix(0, createdAt).UTC()

	docs := diagnosisDocs{
		network:    []byte(network.String),
		answers:    []byte(answers.String),
		advisories: []byte(advisories.String),
	}
	if err := docs.decodeInto(&rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func nullableText(b []byte) sql.NullString {
	if b == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(b), Valid: true}
}
