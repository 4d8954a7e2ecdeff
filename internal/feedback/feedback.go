// Package feedback stores free text feedback from authenticated actors
// together with the client they sent it from.
package feedback

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"truetrace/pkg/domain"
	dErrors "truetrace/pkg/domain-errors"
	"truetrace/pkg/platform/middleware/metadata"
	"truetrace/pkg/requestcontext"
)

// MaxTextLength bounds a single feedback entry, in characters.
const MaxTextLength = 4000

// Record is one stored feedback entry.
type Record struct {
	ID          uuid.UUID
	Text        string
	AccountID   domain.AccountID
	Role        domain.Role
	ClientIP    string
	UserAgent   string
	Device      string
	SubmittedAt time.Time
}

// Store persists feedback.
type Store interface {
	Insert(ctx context.Context, rec *Record) error
}

// Service accepts feedback.
type Service struct {
	store  Store
	logger *slog.Logger
}

func NewService(store Store, logger *slog.Logger) (*Service, error) {
	if store == nil {
		return nil, errors.New("feedback store is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, logger: logger}, nil
}

// Submit stores text for the actor in ctx.
func (s *Service) Submit(ctx context.Context, text string) (*Record, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "Feedback is required")
	}
	if utf8.RuneCountInString(text) > MaxTextLength {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "Feedback is too long")
	}

	ua := requestcontext.UserAgent(ctx)
	rec := &Record{
		ID:          uuid.New(),
		Text:        text,
		AccountID:   requestcontext.AccountID(ctx),
		Role:        requestcontext.Role(ctx),
		ClientIP:    requestcontext.ClientIP(ctx),
		UserAgent:   ua,
		Device:      metadata.ParseDevice(ua).String(),
		SubmittedAt: requestcontext.Now(ctx).UTC(),
	}
	if err := s.store.Insert(ctx, rec); err != nil {
		s.logger.ErrorContext(ctx, "failed to store feedback",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		return nil, dErrors.Wrap(err, dErrors.CodeCollaboratorUnavailable, "Failed to submit feedback")
	}
	s.logger.InfoContext(ctx, "feedback submitted",
		"request_id", requestcontext.RequestID(ctx),
		"account_id", rec.AccountID,
		"device", rec.Device,
	)
	return rec, nil
}
