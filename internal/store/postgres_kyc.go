/**
 * @description
 * Postgres-backed KYC store using a pgx connection pool. The schema is a
 * single table keyed by ledger address; Set is an upsert so resubmissions
 * simply refresh the record.
 */

package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/facterra/oracle-service/internal/domain"
)

// PostgresKYCStore persists KYC records in Postgres.
type PostgresKYCStore struct {
	pool *pgxpool.Pool
}

func NewPostgresKYCStore(pool *pgxpool.Pool) *PostgresKYCStore {
	return &PostgresKYCStore{pool: pool}
}

// EnsureSchema creates the kyc_records table if it does not exist.
func (s *PostgresKYCStore) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS kyc_records (
			address      TEXT PRIMARY KEY,
			status       TEXT NOT NULL,
			submitted_at BIGINT NOT NULL,
			verified_at  BIGINT
		)`)
	if err != nil {
		return fmt.Errorf("failed to ensure kyc_records schema: %w", err)
	}
	return nil
}

func (s *PostgresKYCStore) Get(ctx context.Context, address string) (*domain.KYCStatus, error) {
	var record domain.KYCStatus
	err := s.pool.QueryRow(ctx,
		`SELECT address, status, submitted_at, verified_at FROM kyc_records WHERE address = $1`,
		address,
	).Scan(&record.Address, &record.Status, &record.SubmittedAt, &record.VerifiedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrKYCNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query kyc record: %w", err)
	}
	return &record, nil
}

func (s *PostgresKYCStore) Set(ctx context.Context, status domain.KYCStatus) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO kyc_records (address, status, submitted_at, verified_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (address) DO UPDATE SET
			status       = EXCLUDED.status,
			submitted_at = EXCLUDED.submitted_at,
			verified_at  = EXCLUDED.verified_at`,
		status.Address, status.Status, status.SubmittedAt, status.VerifiedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert kyc record: %w", err)
	}
	return nil
}

func (s *PostgresKYCStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}
