// Package minting creates the NFT collections that stand for batches,
// cartons and products, and logs each mint to the event topic.
package minting

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"truetrace/internal/envelope"
	"truetrace/internal/identity"
	"truetrace/internal/ledger"
	"truetrace/pkg/domain"
	dErrors "truetrace/pkg/domain-errors"
	"truetrace/pkg/platform/sentinel"
	"truetrace/pkg/requestcontext"
)

// Ledger is the part of the network port minting uses.
type Ledger interface {
	OperatorID() domain.AccountID
	CreateNFT(ctx context.Context, spec ledger.TokenSpec) (ledger.TokenResult, error)
	MintNFT(ctx context.Context, tokenID string, metadata []byte) (ledger.MintResult, error)
	AssociateToken(ctx context.Context, account domain.AccountID, privateKey, tokenID string) error
}

// Events resolves the current topic and submits operator paid events to it.
type Events interface {
	Current(ctx context.Context) (string, error)
	SubmitOperator(ctx context.Context, key string, payload []byte) (ledger.Receipt, error)
}

// KeyResolver returns the private key of a provisioned account, or
// sentinel.ErrNotFound.
type KeyResolver interface {
	PrivateKey(ctx context.Context, accountID domain.AccountID) (string, error)
}

// Store persists minted tokens.
type Store interface {
	Insert(ctx context.Context, token *MintedToken) error
	ListByBatch(ctx context.Context, batchID string) ([]*MintedToken, error)
}

// Service mints tokens with the operator as treasury and supply key.
type Service struct {
	ledger Ledger
	events Events
	keys   KeyResolver
	store  Store
	logger *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithKeyResolver enables carton association with provisioned accounts.
func WithKeyResolver(keys KeyResolver) Option {
	return func(s *Service) {
		s.keys = keys
	}
}

func NewService(l Ledger, events Events, store Store, opts ...Option) (*Service, error) {
	if l == nil {
		return nil, errors.New("ledger is required")
	}
	if events == nil {
		return nil, errors.New("event submitter is required")
	}
	if store == nil {
		return nil, errors.New("token store is required")
	}
	s := &Service{ledger: l, events: events, store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Service) MintBatch(ctx context.Context, req BatchRequest) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	meta := envelope.TokenMetadata{BatchID: req.BatchID, ProductName: req.ProductName, Eco: req.EcoPackaging}
	return s.mint(ctx, mintPlan{
		kind:      KindBatch,
		name:      "Batch " + req.BatchID,
		eventType: envelope.EventBatchMinted,
		identity:  identityOf(req.BatchID, "", ""),
		metadata:  meta,
	})
}

func (s *Service) MintCarton(ctx context.Context, req CartonRequest) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	meta := envelope.TokenMetadata{BatchID: req.BatchID, CartonID: req.CartonID, Eco: req.EcoPackaging}
	return s.mint(ctx, mintPlan{
		kind:      KindCarton,
		name:      "Carton " + req.CartonID,
		eventType: envelope.EventCartonMinted,
		identity:  identityOf(req.BatchID, req.CartonID, ""),
		metadata:  meta,
		associate: domain.AccountID(req.AccountID),
	})
}

func (s *Service) MintProduct(ctx context.Context, req ProductRequest) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	meta := envelope.TokenMetadata{
		BatchID:     req.BatchID,
		CartonID:    req.CartonID,
		ProductID:   req.ProductID,
		ProductName: req.ProductName,
		Eco:         req.EcoPackaging,
	}
	return s.mint(ctx, mintPlan{
		kind:      KindProduct,
		name:      "Product " + req.ProductID,
		eventType: envelope.EventProductMinted,
		identity:  identityOf(req.BatchID, req.CartonID, req.ProductID),
		metadata:  meta,
	})
}

// Tokens lists the collections minted for a batch.
func (s *Service) Tokens(ctx context.Context, batchID string) ([]*MintedToken, error) {
	if batchID == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "batchId is required")
	}
	tokens, err := s.store.ListByBatch(ctx, batchID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeCollaboratorUnavailable, "failed to list tokens")
	}
	return tokens, nil
}

type mintPlan struct {
	kind      Kind
	name      string
	eventType string
	identity  identity.ProductIdentity
	metadata  envelope.TokenMetadata
	associate domain.AccountID
}

func (s *Service) mint(ctx context.Context, plan mintPlan) (*Result, error) {
	requestID := requestcontext.RequestID(ctx)
	actor := requestcontext.AccountID(ctx)
	now := requestcontext.Now(ctx).UTC()

	metadata, err := envelope.EncodeTokenMetadata(plan.metadata)
	if err != nil {
		return nil, err
	}

	// resolve the topic before anything is created on the ledger
	if _, err := s.events.Current(ctx); err != nil {
		return nil, err
	}

	// the treasury holds every token already
	associate := plan.associate
	if associate == s.ledger.OperatorID() {
		associate = ""
	}
	var privateKey string
	if !associate.IsNil() {
		privateKey, err = s.accountKey(ctx, associate)
		if err != nil {
			return nil, err
		}
	}

	token, err := s.ledger.CreateNFT(ctx, ledger.TokenSpec{Name: plan.name, Symbol: ledger.TokenSymbol, Metadata: metadata})
	if err != nil {
		return nil, err
	}
	minted, err := s.ledger.MintNFT(ctx, token.TokenID, metadata)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "token minted",
		"request_id", requestID,
		"kind", plan.kind,
		"token_id", token.TokenID,
		"serials", minted.Serials,
	)

	if !associate.IsNil() {
		if err := s.ledger.AssociateToken(ctx, associate, privateKey, token.TokenID); err != nil {
			return nil, err
		}
	}

	payload, err := envelope.Encode(envelope.Build(plan.eventType, plan.identity, actor, now, map[string]string{"tokenId": token.TokenID}))
	if err != nil {
		return nil, err
	}
	key := identity.Digest(identity.Fingerprint(plan.identity))
	receipt, err := s.events.SubmitOperator(ctx, key, payload)
	if err != nil {
		return nil, err
	}

	rec := &MintedToken{
		TokenID:       token.TokenID,
		Kind:          plan.kind,
		BatchID:       plan.identity.BatchID,
		CartonID:      plan.identity.CartonID,
		ProductID:     plan.identity.ProductID,
		Metadata:      metadata,
		Serials:       minted.Serials,
		AccountID:     actor,
		TransactionID: minted.TransactionID,
		MintedAt:      now,
	}
	if err := s.store.Insert(ctx, rec); err != nil {
		s.logger.ErrorContext(ctx, "minted token not persisted",
			"request_id", requestID,
			"token_id", token.TokenID,
			"error", err,
		)
		return nil, dErrors.Wrap(err, dErrors.CodeCollaboratorUnavailable, "failed to store minted token")
	}

	return &Result{
		TokenID:       token.TokenID,
		Serials:       minted.Serials,
		TransactionID: minted.TransactionID,
		TopicID:       receipt.TopicID,
	}, nil
}

func (s *Service) accountKey(ctx context.Context, accountID domain.AccountID) (string, error) {
	if s.keys == nil {
		return "", dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("account %s cannot be associated: no provisioned keys", accountID))
	}
	key, err := s.keys.PrivateKey(ctx, accountID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return "", dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("account %s is not provisioned", accountID))
		}
		return "", dErrors.Wrap(err, dErrors.CodeCollaboratorUnavailable, "failed to resolve account key")
	}
	return key, nil
}
