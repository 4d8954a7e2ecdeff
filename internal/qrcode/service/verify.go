package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"truetrace/internal/envelope"
	"truetrace/internal/identity"
	"truetrace/internal/qrcode/models"
	"truetrace/pkg/domain"
	dErrors "truetrace/pkg/domain-errors"
	"truetrace/pkg/platform/sentinel"
	"truetrace/pkg/requestcontext"
)

// Verify appends a "<Role> Verified Product <subject>" event. Expired
// products are refused, and a subject can be verified by a Consumer once.
func (s *Service) Verify(ctx context.Context, id identity.ProductIdentity, actor domain.AccountID, role domain.Role) (result *models.VerificationResult, err error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "qrcode.Verify")
	defer func() {
		s.metrics.ObserveVerification(start, role.String(), finish(span, err))
	}()

	if !role.IsValid() {
		return nil, dErrors.New(dErrors.CodeForbidden, "Unauthorized role")
	}

	session, err := s.activeSession(ctx)
	if err != nil {
		return nil, err
	}

	id = id.Normalize()
	if err := id.Validate(); err != nil {
		return nil, err
	}

	now := utc(requestcontext.Now(ctx))
	expired, err := id.IsExpired(now)
	if err != nil {
		return nil, err
	}
	if expired {
		return nil, dErrors.New(dErrors.CodeProductExpired, "Product expired")
	}

	subjectKey := id.SubjectKey()
	span.SetAttributes(attribute.String("subject.key", subjectKey), attribute.String("actor.role", role.String()))

	if role == domain.RoleConsumer {
		_, err := s.store.FindConsumerVerification(ctx, subjectKey)
		switch {
		case err == nil:
			return nil, dErrors.New(dErrors.CodeAlreadyVerifiedByConsumer, "Product already verified by a consumer")
		case !errors.Is(err, sentinel.ErrNotFound):
			return nil, dErrors.Wrap(err, dErrors.CodeCollaboratorUnavailable, "failed to look up verification")
		}
	}

	_, subject := id.Subject()
	eventType := envelope.VerifiedEventType(role, subject)
	payload, err := envelope.Encode(envelope.Build(eventType, id, actor, now, nil))
	if err != nil {
		return nil, err
	}

	digest := identity.Digest(identity.Fingerprint(id))
	receipt, err := s.submitter.SubmitSigned(ctx, session, digest, payload)
	if err != nil {
		s.logger.ErrorContext(ctx, "verification event submission failed",
			"request_id", requestcontext.RequestID(ctx),
			"subject_key", subjectKey,
			"error", err,
		)
		return nil, err
	}

	rec := &models.VerificationRecord{
		ID:             uuid.New(),
		BatchID:        id.BatchID,
		CartonID:       id.CartonID,
		ProductID:      id.ProductID,
		ProductionDate: id.ProductionDate,
		ExpiryDate:     id.ExpiryDate,
		SubjectKey:     subjectKey,
		EventType:      eventType,
		Role:           role,
		AccountID:      actor,
		TransactionID:  receipt.TransactionID,
		TopicID:        receipt.TopicID,
		VerifiedAt:     now,
	}
	if err := s.store.InsertVerification(ctx, rec); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeAlreadyVerifiedByConsumer, "Product already verified by a consumer")
		}
		s.metrics.IncrementPersistFailure()
		s.logger.ErrorContext(ctx, "verification record not persisted after submission",
			"request_id", requestcontext.RequestID(ctx),
			"subject_key", subjectKey,
			"transaction_id", receipt.TransactionID,
			"error", err,
		)
		return nil, dErrors.Wrap(err, dErrors.CodeCollaboratorUnavailable, "failed to store verification")
	}

	s.logger.InfoContext(ctx, "product verified",
		"request_id", requestcontext.RequestID(ctx),
		"account_id", actor,
		"role", role,
		"subject_key", subjectKey,
		"transaction_id", receipt.TransactionID,
	)
	return &models.VerificationResult{
		EventType:     eventType,
		TransactionID: receipt.TransactionID,
		TopicID:       receipt.TopicID,
		VerifiedAt:    now,
	}, nil
}

// History lists the verifications of a subject, oldest first.
func (s *Service) History(ctx context.Context, id identity.ProductIdentity) ([]*models.VerificationRecord, error) {
	id = id.Normalize()
	if id.BatchID == "" && id.CartonID == "" && id.ProductID == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "at least one of batchId, cartonId, or productId is required")
	}
	records, err := s.store.ListVerifications(ctx, id.SubjectKey())
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeCollaboratorUnavailable, "failed to list verifications")
	}
	return records, nil
}
