package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"truetrace/internal/feedback"
)

type InMemoryStore struct {
	mu      sync.Mutex
	records []feedback.Record
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Insert(_ context.Context, rec *feedback.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, *rec)
	return nil
}

// All returns a copy of the stored records in insertion order.
func (s *InMemoryStore) All() []feedback.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]feedback.Record(nil), s.records...)
}

// PostgresStore persists feedback in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Insert(ctx context.Context, rec *feedback.Record) error {
	query := `
		INSERT INTO feedback (id, text, account_id, role, client_ip, user_agent, device, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.ExecContext(ctx, query,
		rec.ID, rec.Text, rec.AccountID.String(), rec.Role.String(),
		rec.ClientIP, rec.UserAgent, rec.Device, rec.SubmittedAt,
	)
	if err != nil {
		return fmt.Errorf("insert feedback: %w", err)
	}
	return nil
}
