// Package service implements product registration and verification: the
// checks that decide whether an event may be written, the ledger submission,
// and the record that prevents it being written twice.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"truetrace/internal/ledger"
	"truetrace/internal/qrcode/metrics"
	"truetrace/internal/qrcode/models"
	"truetrace/internal/wallet"
	dErrors "truetrace/pkg/domain-errors"
)

// Store persists registration and verification records. Finds return
// sentinel.ErrNotFound; inserts return sentinel.ErrConflict on a unique
// violation.
type Store interface {
	FindRegistration(ctx context.Context, fingerprint string) (*models.RegistrationRecord, error)
	InsertRegistration(ctx context.Context, rec *models.RegistrationRecord) error
	FindConsumerVerification(ctx context.Context, subjectKey string) (*models.VerificationRecord, error)
	InsertVerification(ctx context.Context, rec *models.VerificationRecord) error
	ListVerifications(ctx context.Context, subjectKey string) ([]*models.VerificationRecord, error)
}

// Sessions exposes the active wallet session.
type Sessions interface {
	ActiveSession(ctx context.Context) (wallet.Session, error)
}

// Submitter writes an encoded event to the topic with the wallet.
type Submitter interface {
	SubmitSigned(ctx context.Context, session wallet.Session, key string, payload []byte) (ledger.Receipt, error)
}

// Service runs the registration and verification workflows.
type Service struct {
	store     Store
	sessions  Sessions
	submitter Submitter
	logger    *slog.Logger
	metrics   *metrics.Metrics
	tracer    trace.Tracer
}

// Option configures a Service.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

// New constructs a Service.
func New(store Store, sessions Sessions, submitter Submitter, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("record store is required")
	}
	if sessions == nil {
		return nil, errors.New("session source is required")
	}
	if submitter == nil {
		return nil, errors.New("submitter is required")
	}
	s := &Service{
		store:     store,
		sessions:  sessions,
		submitter: submitter,
		logger:    slog.Default(),
		tracer:    otel.Tracer("truetrace/qrcode"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// activeSession maps session lookup failures: no session stays
// NoWalletConnected, anything else means the session store is unreachable.
func (s *Service) activeSession(ctx context.Context) (wallet.Session, error) {
	sess, err := s.sessions.ActiveSession(ctx)
	if err == nil {
		return sess, nil
	}
	if dErrors.HasCode(err, dErrors.CodeNoWalletConnected) {
		return wallet.Session{}, err
	}
	return wallet.Session{}, dErrors.Wrap(err, dErrors.CodeCollaboratorUnavailable, "wallet session unavailable")
}

// finish records the span status and returns the outcome code used as
// metric label.
func finish(span trace.Span, err error) string {
	defer span.End()
	if err == nil {
		span.SetStatus(codes.Ok, "")
		return "success"
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, string(dErrors.CodeOf(err)))
	return string(dErrors.CodeOf(err))
}

func utc(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}
