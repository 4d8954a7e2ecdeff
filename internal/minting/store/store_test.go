package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"truetrace/internal/minting"
	"truetrace/pkg/platform/sentinel"
)

func TestInMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, s.Insert(ctx, &minting.MintedToken{TokenID: "0.0.30", Kind: minting.KindCarton, BatchID: "B1", MintedAt: base.Add(time.Minute)}))
	require.NoError(t, s.Insert(ctx, &minting.MintedToken{TokenID: "0.0.20", Kind: minting.KindBatch, BatchID: "B1", MintedAt: base}))
	require.NoError(t, s.Insert(ctx, &minting.MintedToken{TokenID: "0.0.40", Kind: minting.KindBatch, BatchID: "B2", MintedAt: base}))
	assert.ErrorIs(t, s.Insert(ctx, &minting.MintedToken{TokenID: "0.0.20"}), sentinel.ErrConflict)

	tokens, err := s.ListByBatch(ctx, "B1")
	require.NoError(t, err)
	require.Len(t, tokens, 2)
	assert.Equal(t, minting.KindBatch, tokens[0].Kind)
	assert.Equal(t, "0.0.30", tokens[1].TokenID)
}
