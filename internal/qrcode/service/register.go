package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"truetrace/internal/envelope"
	"truetrace/internal/identity"
	"truetrace/internal/qrcode/models"
	"truetrace/pkg/domain"
	dErrors "truetrace/pkg/domain-errors"
	"truetrace/pkg/platform/sentinel"
	"truetrace/pkg/requestcontext"
)

// Register records a Manufacturer's product on the ledger, once per
// fingerprint. Checks run before any event is submitted; the record is
// inserted only after the ledger accepted the event.
func (s *Service) Register(ctx context.Context, id identity.ProductIdentity, actor domain.AccountID, role domain.Role) (result *models.RegistrationResult, err error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "qrcode.Register")
	defer func() {
		s.metrics.ObserveRegistration(start, finish(span, err))
	}()

	if role != domain.RoleManufacturer {
		return nil, dErrors.New(dErrors.CodeForbidden, "Unauthorized role")
	}

	id = id.Normalize()
	if err := id.Validate(); err != nil {
		return nil, err
	}

	session, err := s.activeSession(ctx)
	if err != nil {
		return nil, err
	}

	fp := identity.Fingerprint(id)
	digest := identity.Digest(fp)
	span.SetAttributes(attribute.String("identity.digest", digest))

	_, err = s.store.FindRegistration(ctx, fp)
	switch {
	case err == nil:
		return nil, dErrors.New(dErrors.CodeDuplicateRegistration, "Duplicate QR Code")
	case !errors.Is(err, sentinel.ErrNotFound):
		return nil, dErrors.Wrap(err, dErrors.CodeCollaboratorUnavailable, "failed to look up registration")
	}

	now := utc(requestcontext.Now(ctx))
	payload, err := envelope.Encode(envelope.Build(envelope.EventQRCodeRegistered, id, actor, now, nil))
	if err != nil {
		return nil, err
	}

	receipt, err := s.submitter.SubmitSigned(ctx, session, digest, payload)
	if err != nil {
		s.logger.ErrorContext(ctx, "registration event submission failed",
			"request_id", requestcontext.RequestID(ctx),
			"digest", digest,
			"error", err,
		)
		return nil, err
	}

	rec := &models.RegistrationRecord{
		Fingerprint:    fp,
		Digest:         digest,
		BatchID:        id.BatchID,
		CartonID:       id.CartonID,
		ProductID:      id.ProductID,
		ProductionDate: id.ProductionDate,
		ExpiryDate:     id.ExpiryDate,
		AccountID:      actor,
		TransactionID:  receipt.TransactionID,
		TopicID:        receipt.TopicID,
		RegisteredAt:   now,
	}
	if err := s.store.InsertRegistration(ctx, rec); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			// a concurrent registration of the same fingerprint won the insert
			return nil, dErrors.New(dErrors.CodeDuplicateRegistration, "Duplicate QR Code")
		}
		s.metrics.IncrementPersistFailure()
		s.logger.ErrorContext(ctx, "registration record not persisted after submission",
			"request_id", requestcontext.RequestID(ctx),
			"digest", digest,
			"transaction_id", receipt.TransactionID,
			"error", err,
		)
		return nil, dErrors.Wrap(err, dErrors.CodeCollaboratorUnavailable, "failed to store registration")
	}

	s.logger.InfoContext(ctx, "product registered",
		"request_id", requestcontext.RequestID(ctx),
		"account_id", actor,
		"digest", digest,
		"transaction_id", receipt.TransactionID,
		"topic_id", receipt.TopicID,
	)
	return &models.RegistrationResult{
		Message:       fmt.Sprintf("QR Code registered on topic %s", receipt.TopicID),
		TransactionID: receipt.TransactionID,
		TopicID:       receipt.TopicID,
		Fingerprint:   fp,
		RegisteredAt:  now,
	}, nil
}
