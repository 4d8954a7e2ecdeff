// Package store persists minted token records.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/lib/pq"

	"truetrace/internal/minting"
	"truetrace/internal/platform/postgres"
	"truetrace/pkg/domain"
	"truetrace/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu     sync.RWMutex
	tokens map[string]minting.MintedToken
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{tokens: make(map[string]minting.MintedToken)}
}

func (s *InMemoryStore) Insert(_ context.Context, token *minting.MintedToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.tokens[token.TokenID]; exists {
		return sentinel.ErrConflict
	}
	s.tokens[token.TokenID] = *token
	return nil
}

func (s *InMemoryStore) ListByBatch(_ context.Context, batchID string) ([]*minting.MintedToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*minting.MintedToken, 0)
	for _, tok := range s.tokens {
		if tok.BatchID == batchID {
			t := tok
			out = append(out, &t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].MintedAt.Equal(out[j].MintedAt) {
			return out[i].TokenID < out[j].TokenID
		}
		return out[i].MintedAt.Before(out[j].MintedAt)
	})
	return out, nil
}

// PostgresStore persists minted tokens in PostgreSQL. Serials are stored as
// BIGINT[].
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Insert(ctx context.Context, token *minting.MintedToken) error {
	query := `
		INSERT INTO minted_tokens (token_id, kind, batch_id, carton_id, product_id, metadata, serials,
			account_id, transaction_id, minted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.db.ExecContext(ctx, query,
		token.TokenID, string(token.Kind), token.BatchID, token.CartonID, token.ProductID,
		token.Metadata, pq.Int64Array(token.Serials), token.AccountID.String(),
		token.TransactionID, token.MintedAt,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return errors.Join(sentinel.ErrConflict, err)
		}
		return fmt.Errorf("insert minted token: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByBatch(ctx context.Context, batchID string) ([]*minting.MintedToken, error) {
	query := `
		SELECT token_id, kind, batch_id, carton_id, product_id, metadata, serials,
			account_id, transaction_id, minted_at
		FROM minted_tokens
		WHERE batch_id = $1
		ORDER BY minted_at ASC, token_id ASC
	`
	rows, err := s.db.QueryContext(ctx, query, batchID)
	if err != nil {
		return nil, fmt.Errorf("list minted tokens: %w", err)
	}
	defer rows.Close()

	out := make([]*minting.MintedToken, 0)
	for rows.Next() {
		var tok minting.MintedToken
		var kind, accountID string
		var serials pq.Int64Array
		if err := rows.Scan(&tok.TokenID, &kind, &tok.BatchID, &tok.CartonID, &tok.ProductID,
			&tok.Metadata, &serials, &accountID, &tok.TransactionID, &tok.MintedAt); err != nil {
			return nil, fmt.Errorf("scan minted token: %w", err)
		}
		tok.Kind = minting.Kind(kind)
		tok.AccountID = domain.AccountID(accountID)
		tok.Serials = []int64(serials)
		tok.MintedAt = tok.MintedAt.UTC()
		out = append(out, &tok)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate minted tokens: %w", err)
	}
	return out, nil
}
