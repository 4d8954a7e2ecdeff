package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"truetrace/internal/wallet"
	"truetrace/pkg/domain"
	"truetrace/pkg/platform/sentinel"
)

func TestInMemory(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory()

	_, err := s.Current(ctx)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)

	sess := wallet.Session{
		Topic:          "topic-1",
		PairedAccounts: []domain.AccountID{"0.0.6451900"},
		Relay:          "wss://relay.walletconnect.com",
		EstablishedAt:  time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
	}
	require.NoError(t, s.Save(ctx, sess))

	got, err := s.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, sess, got)

	require.NoError(t, s.Clear(ctx))
	_, err = s.Current(ctx)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}
