package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"truetrace/internal/platform/postgres"
	"truetrace/internal/qrcode/models"
	"truetrace/pkg/domain"
	"truetrace/pkg/platform/sentinel"
)

// PostgresStore persists records in PostgreSQL. Uniqueness is enforced by the
// registrations primary key and the partial consumer index on verifications.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed record store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) FindRegistration(ctx context.Context, fingerprint string) (*models.RegistrationRecord, error) {
	query := `
		SELECT fingerprint, digest, batch_id, carton_id, product_id, production_date, expiry_date,
			account_id, transaction_id, topic_id, registered_at
		FROM registrations
		WHERE fingerprint = $1
	`
	var rec models.RegistrationRecord
	var accountID string
	err := s.db.QueryRowContext(ctx, query, fingerprint).Scan(
		&rec.Fingerprint, &rec.Digest, &rec.BatchID, &rec.CartonID, &rec.ProductID,
		&rec.ProductionDate, &rec.ExpiryDate, &accountID, &rec.TransactionID, &rec.TopicID, &rec.RegisteredAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find registration: %w", err)
	}
	rec.AccountID = domain.AccountID(accountID)
	rec.RegisteredAt = rec.RegisteredAt.UTC()
	return &rec, nil
}

func (s *PostgresStore) InsertRegistration(ctx context.Context, rec *models.RegistrationRecord) error {
	query := `
		INSERT INTO registrations (fingerprint, digest, batch_id, carton_id, product_id, production_date,
			expiry_date, account_id, transaction_id, topic_id, registered_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := s.db.ExecContext(ctx, query,
		rec.Fingerprint, rec.Digest, rec.BatchID, rec.CartonID, rec.ProductID, rec.ProductionDate,
		rec.ExpiryDate, rec.AccountID.String(), rec.TransactionID, rec.TopicID, rec.RegisteredAt,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return errors.Join(sentinel.ErrConflict, err)
		}
		return fmt.Errorf("insert registration: %w", err)
	}
	return nil
}

const verificationColumns = `id, batch_id, carton_id, product_id, production_date, expiry_date,
	subject_key, event_type, role, account_id, transaction_id, topic_id, verified_at`

func (s *PostgresStore) FindConsumerVerification(ctx context.Context, subjectKey string) (*models.VerificationRecord, error) {
	query := `SELECT ` + verificationColumns + `
		FROM verifications
		WHERE subject_key = $1 AND role = $2
	`
	rec, err := scanVerification(s.db.QueryRowContext(ctx, query, subjectKey, domain.RoleConsumer.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find consumer verification: %w", err)
	}
	return rec, nil
}

func (s *PostgresStore) InsertVerification(ctx context.Context, rec *models.VerificationRecord) error {
	query := `
		INSERT INTO verifications (` + verificationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := s.db.ExecContext(ctx, query,
		rec.ID, rec.BatchID, rec.CartonID, rec.ProductID, rec.ProductionDate, rec.ExpiryDate,
		rec.SubjectKey, rec.EventType, rec.Role.String(), rec.AccountID.String(),
		rec.TransactionID, rec.TopicID, rec.VerifiedAt,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return errors.Join(sentinel.ErrConflict, err)
		}
		return fmt.Errorf("insert verification: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListVerifications(ctx context.Context, subjectKey string) ([]*models.VerificationRecord, error) {
	query := `SELECT ` + verificationColumns + `
		FROM verifications
		WHERE subject_key = $1
		ORDER BY verified_at ASC, id ASC
	`
	rows, err := s.db.QueryContext(ctx, query, subjectKey)
	if err != nil {
		return nil, fmt.Errorf("list verifications: %w", err)
	}
	defer rows.Close()

	out := make([]*models.VerificationRecord, 0)
	for rows.Next() {
		rec, err := scanVerification(rows)
		if err != nil {
			return nil, fmt.Errorf("scan verification: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate verifications: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVerification(row rowScanner) (*models.VerificationRecord, error) {
	var rec models.VerificationRecord
	var role, accountID string
	err := row.Scan(
		&rec.ID, &rec.BatchID, &rec.CartonID, &rec.ProductID, &rec.ProductionDate, &rec.ExpiryDate,
		&rec.SubjectKey, &rec.EventType, &role, &accountID, &rec.TransactionID, &rec.TopicID, &rec.VerifiedAt,
	)
	if err != nil {
		return nil, err
	}
	rec.Role = domain.Role(role)
	rec.AccountID = domain.AccountID(accountID)
	rec.VerifiedAt = rec.VerifiedAt.UTC()
	return &rec, nil
}
