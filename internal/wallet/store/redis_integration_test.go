//go:build integration

package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"truetrace/internal/wallet"
	"truetrace/pkg/domain"
	"truetrace/pkg/platform/sentinel"
	"truetrace/pkg/testutil/containers"
)

type RedisSessionStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *Redis
}

func TestRedisSessionStoreSuite(t *testing.T) {
	suite.Run(t, new(RedisSessionStoreSuite))
}

func (s *RedisSessionStoreSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
	s.store = NewRedis(s.redis.Client, WithKey("test:wallet:session"))
}

func (s *RedisSessionStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisSessionStoreSuite) TestRoundTrip() {
	ctx := context.Background()

	_, err := s.store.Current(ctx)
	s.ErrorIs(err, sentinel.ErrNotFound)

	sess := wallet.Session{
		Topic:          "topic-1",
		PairedAccounts: []domain.AccountID{"0.0.6451900", "0.0.6451901"},
		Relay:          "wss://relay.walletconnect.org",
		EstablishedAt:  time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
	}
	s.Require().NoError(s.store.Save(ctx, sess))

	got, err := s.store.Current(ctx)
	s.Require().NoError(err)
	s.Equal(sess.Topic, got.Topic)
	s.Equal(sess.PairedAccounts, got.PairedAccounts)
	s.True(sess.EstablishedAt.Equal(got.EstablishedAt))

	s.Require().NoError(s.store.Clear(ctx))
	_, err = s.store.Current(ctx)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *RedisSessionStoreSuite) TestTTLExpiresSession() {
	ctx := context.Background()
	store := NewRedis(s.redis.Client, WithKey("test:wallet:ttl"), WithTTL(time.Second))
	s.Require().NoError(store.Save(ctx, wallet.Session{Topic: "short"}))

	s.Eventually(func() bool {
		_, err := store.Current(ctx)
		return err == sentinel.ErrNotFound
	}, 5*time.Second, 100*time.Millisecond)
}
