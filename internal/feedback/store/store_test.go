package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"truetrace/internal/feedback"
	"truetrace/pkg/domain"
)

func TestInMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	first := &feedback.Record{ID: uuid.New(), Text: "great", AccountID: "0.0.100", Role: domain.RoleConsumer, SubmittedAt: at}
	second := &feedback.Record{ID: uuid.New(), Text: "late delivery", AccountID: "0.0.101", Role: domain.RoleRetailer, SubmittedAt: at.Add(time.Minute)}
	require.NoError(t, s.Insert(ctx, first))
	require.NoError(t, s.Insert(ctx, second))

	all := s.All()
	require.Len(t, all, 2)
	assert.Equal(t, "great", all[0].Text)
	assert.Equal(t, domain.RoleRetailer, all[1].Role)

	all[0].Text = "mutated"
	assert.Equal(t, "great", s.All()[0].Text)
}
