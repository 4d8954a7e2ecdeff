// Package service issues access tokens to accounts paired through the wallet
// and starts new wallet pairings.
package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"truetrace/internal/auth/models"
	jwttoken "truetrace/internal/jwt_token"
	"truetrace/internal/wallet"
	"truetrace/pkg/domain"
	dErrors "truetrace/pkg/domain-errors"
	"truetrace/pkg/requestcontext"
)

// Wallet starts pairings and answers whether an account is paired.
type Wallet interface {
	Begin(ctx context.Context) (*wallet.Pairing, error)
	IsPaired(ctx context.Context, accountID domain.AccountID) (bool, error)
}

// TokenIssuer signs access tokens.
type TokenIssuer interface {
	GenerateAccessToken(accountID domain.AccountID, role domain.Role, expiresIn time.Duration) (string, error)
}

// Service connects wallets and issues tokens.
type Service struct {
	wallet   Wallet
	tokens   TokenIssuer
	roles    RoleTable
	tokenTTL time.Duration
	logger   *slog.Logger

	waits sync.WaitGroup
}

// Option configures a Service.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithTokenTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.tokenTTL = ttl
		}
	}
}

// New constructs an auth Service.
func New(w Wallet, tokens TokenIssuer, roles RoleTable, opts ...Option) (*Service, error) {
	if w == nil {
		return nil, errors.New("wallet is required")
	}
	if tokens == nil {
		return nil, errors.New("token issuer is required")
	}
	s := &Service{
		wallet:   w,
		tokens:   tokens,
		roles:    roles,
		tokenTTL: jwttoken.DefaultTokenTTL,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// ConnectWallet starts a pairing and returns its URI without waiting for the
// wallet. The wait continues in the background, bounded by the pairing
// timeout.
func (s *Service) ConnectWallet(ctx context.Context) (*models.ConnectResult, error) {
	pairing, err := s.wallet.Begin(ctx)
	if err != nil {
		return nil, err
	}

	requestID := requestcontext.RequestID(ctx)
	waitCtx := context.WithoutCancel(ctx)
	s.waits.Add(1)
	go func() {
		defer s.waits.Done()
		sess, err := pairing.Wait(waitCtx)
		if err != nil {
			s.logger.WarnContext(waitCtx, "wallet pairing did not complete",
				"request_id", requestID,
				"pairing_topic", pairing.Topic,
				"error", err,
			)
			return
		}
		s.logger.InfoContext(waitCtx, "wallet paired",
			"request_id", requestID,
			"topic", sess.Topic,
			"accounts", len(sess.PairedAccounts),
		)
	}()

	return &models.ConnectResult{PairingURI: pairing.URI}, nil
}

// WalletPaired issues a token for an account of the active session. The role
// comes from the role table and is fixed in the token.
func (s *Service) WalletPaired(ctx context.Context, rawAccountID string) (*models.TokenResult, error) {
	unpaired := dErrors.New(dErrors.CodeInvalidInput, "invalid or unpaired account")

	accountID, err := domain.ParseAccountID(rawAccountID)
	if err != nil {
		return nil, unpaired
	}

	paired, err := s.wallet.IsPaired(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if !paired {
		return nil, unpaired
	}

	role := s.roles.RoleOf(accountID)
	token, err := s.tokens.GenerateAccessToken(accountID, role, s.tokenTTL)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "access token issued",
		"request_id", requestcontext.RequestID(ctx),
		"account_id", accountID,
		"role", role,
	)
	return &models.TokenResult{Token: token, Role: role, AccountID: accountID}, nil
}

// Shutdown waits for background pairing waits to finish or ctx to end.
func (s *Service) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.waits.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
