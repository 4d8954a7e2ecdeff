//go:build integration

package store_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"truetrace/internal/qrcode/models"
	"truetrace/internal/qrcode/store"
	"truetrace/pkg/domain"
	"truetrace/pkg/platform/sentinel"
	"truetrace/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "registrations", "verifications"))
}

func newRegistration(fp string) *models.RegistrationRecord {
	return &models.RegistrationRecord{
		Fingerprint:    fp,
		Digest:         "d-" + fp,
		BatchID:        "B1",
		ProductionDate: "2025-01-01",
		ExpiryDate:     "2026-01-01",
		AccountID:      "0.0.6451900",
		TransactionID:  "0.0.6451900@1.1",
		TopicID:        "0.0.4242",
		RegisteredAt:   time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func newVerification(subject string, role domain.Role, at time.Time) *models.VerificationRecord {
	return &models.VerificationRecord{
		ID:             uuid.New(),
		ProductID:      "P1",
		ProductionDate: "2025-01-01",
		ExpiryDate:     "2026-01-01",
		SubjectKey:     subject,
		EventType:      string(role) + " Verified Product P1",
		Role:           role,
		AccountID:      "0.0.2",
		TransactionID:  "tx",
		TopicID:        "0.0.4242",
		VerifiedAt:     at,
	}
}

func (s *PostgresStoreSuite) TestRegistrationRoundTrip() {
	ctx := context.Background()
	_, err := s.store.FindRegistration(ctx, "B1::::")
	s.ErrorIs(err, sentinel.ErrNotFound)

	rec := newRegistration("B1::::")
	s.Require().NoError(s.store.InsertRegistration(ctx, rec))

	got, err := s.store.FindRegistration(ctx, "B1::::")
	s.Require().NoError(err)
	s.Equal(rec.Digest, got.Digest)
	s.Equal(rec.AccountID, got.AccountID)
	s.True(rec.RegisteredAt.Equal(got.RegisteredAt))

	s.ErrorIs(s.store.InsertRegistration(ctx, rec), sentinel.ErrConflict)
}

// TestConcurrentRegistrationHasOneWinner verifies that the primary key is the
// authoritative duplicate signal.
func (s *PostgresStoreSuite) TestConcurrentRegistrationHasOneWinner() {
	ctx := context.Background()
	const goroutines = 20

	var wg sync.WaitGroup
	var wins, conflicts atomic.Int32
	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.store.InsertRegistration(ctx, newRegistration("race"))
			switch {
			case err == nil:
				wins.Add(1)
			case errors.Is(err, sentinel.ErrConflict):
				conflicts.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), wins.Load(), "exactly one insert should succeed")
	s.Equal(int32(goroutines-1), conflicts.Load())
}

func (s *PostgresStoreSuite) TestConsumerUniquenessAndHistory() {
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	s.Require().NoError(s.store.InsertVerification(ctx, newVerification("product:P1", domain.RoleRetailer, base.Add(time.Hour))))
	s.Require().NoError(s.store.InsertVerification(ctx, newVerification("product:P1", domain.RoleRetailer, base.Add(2*time.Hour))))
	s.Require().NoError(s.store.InsertVerification(ctx, newVerification("product:P1", domain.RoleWholesaler, base)))

	_, err := s.store.FindConsumerVerification(ctx, "product:P1")
	s.ErrorIs(err, sentinel.ErrNotFound)

	s.Require().NoError(s.store.InsertVerification(ctx, newVerification("product:P1", domain.RoleConsumer, base.Add(3*time.Hour))))
	err = s.store.InsertVerification(ctx, newVerification("product:P1", domain.RoleConsumer, base.Add(4*time.Hour)))
	s.ErrorIs(err, sentinel.ErrConflict)

	found, err := s.store.FindConsumerVerification(ctx, "product:P1")
	s.Require().NoError(err)
	s.Equal(domain.RoleConsumer, found.Role)

	history, err := s.store.ListVerifications(ctx, "product:P1")
	s.Require().NoError(err)
	s.Require().Len(history, 4)
	s.Equal(domain.RoleWholesaler, history[0].Role)
	s.Equal(domain.RoleConsumer, history[3].Role)
}
