package store

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"truetrace/internal/qrcode/models"
	"truetrace/pkg/domain"
	"truetrace/pkg/platform/sentinel"
)

func TestInMemoryRegistrations(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()

	_, err := s.FindRegistration(ctx, "B1:C1:P1:2025-01-01:2026-01-01")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)

	rec := &models.RegistrationRecord{Fingerprint: "B1:C1:P1:2025-01-01:2026-01-01", AccountID: "0.0.1"}
	require.NoError(t, s.InsertRegistration(ctx, rec))

	got, err := s.FindRegistration(ctx, rec.Fingerprint)
	require.NoError(t, err)
	assert.Equal(t, domain.AccountID("0.0.1"), got.AccountID)

	assert.ErrorIs(t, s.InsertRegistration(ctx, rec), sentinel.ErrConflict)
}

func TestInMemoryConcurrentRegistrationHasOneWinner(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()

	var wins atomic.Int32
	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.InsertRegistration(ctx, &models.RegistrationRecord{Fingerprint: "same"}) == nil {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), wins.Load())
}

func TestInMemoryVerifications(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	verification := func(role domain.Role, at time.Time) *models.VerificationRecord {
		return &models.VerificationRecord{ID: uuid.New(), SubjectKey: "product:P1", Role: role, VerifiedAt: at}
	}

	require.NoError(t, s.InsertVerification(ctx, verification(domain.RoleRetailer, base.Add(2*time.Hour))))
	require.NoError(t, s.InsertVerification(ctx, verification(domain.RoleWholesaler, base.Add(time.Hour))))
	require.NoError(t, s.InsertVerification(ctx, verification(domain.RoleRetailer, base.Add(3*time.Hour))))

	_, err := s.FindConsumerVerification(ctx, "product:P1")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)

	require.NoError(t, s.InsertVerification(ctx, verification(domain.RoleConsumer, base.Add(4*time.Hour))))
	assert.ErrorIs(t, s.InsertVerification(ctx, verification(domain.RoleConsumer, base.Add(5*time.Hour))), sentinel.ErrConflict)

	found, err := s.FindConsumerVerification(ctx, "product:P1")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleConsumer, found.Role)

	history, err := s.ListVerifications(ctx, "product:P1")
	require.NoError(t, err)
	require.Len(t, history, 4)
	assert.Equal(t, domain.RoleWholesaler, history[0].Role)
	assert.Equal(t, domain.RoleConsumer, history[3].Role)

	empty, err := s.ListVerifications(ctx, "batch:B9")
	require.NoError(t, err)
	assert.Empty(t, empty)
}
