package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Store,Sessions,Submitter

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"truetrace/internal/envelope"
	"truetrace/internal/identity"
	"truetrace/internal/ledger"
	"truetrace/internal/qrcode/models"
	"truetrace/internal/qrcode/service/mocks"
	"truetrace/internal/wallet"
	"truetrace/pkg/domain"
	dErrors "truetrace/pkg/domain-errors"
	"truetrace/pkg/platform/sentinel"
	"truetrace/pkg/requestcontext"
)

// ServiceSuite covers the check, submit, persist ordering of both workflows.
// Each failing check must stop before the submitter is called; gomock fails
// the test on any unexpected SubmitSigned.
type ServiceSuite struct {
	suite.Suite
	ctrl      *gomock.Controller
	store     *mocks.MockStore
	sessions  *mocks.MockSessions
	submitter *mocks.MockSubmitter
	service   *Service
	session   wallet.Session
	now       time.Time
	ctx       context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.store = mocks.NewMockStore(s.ctrl)
	s.sessions = mocks.NewMockSessions(s.ctrl)
	s.submitter = mocks.NewMockSubmitter(s.ctrl)
	s.session = wallet.Session{Topic: "live", PairedAccounts: []domain.AccountID{"0.0.6451900"}}
	s.now = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)

	var err error
	s.service, err = New(s.store, s.sessions, s.submitter,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	s.Require().NoError(err)
}

func (s *ServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

func validIdentity() identity.ProductIdentity {
	return identity.ProductIdentity{
		BatchID:        "B1",
		CartonID:       "C1",
		ProductID:      "P1",
		ProductionDate: "2025-01-01",
		ExpiryDate:     "2026-01-01",
	}
}

func (s *ServiceSuite) TestNewRequiresCollaborators() {
	_, err := New(nil, s.sessions, s.submitter)
	s.ErrorContains(err, "record store is required")
	_, err = New(s.store, nil, s.submitter)
	s.ErrorContains(err, "session source is required")
	_, err = New(s.store, s.sessions, nil)
	s.ErrorContains(err, "submitter is required")
}

func (s *ServiceSuite) TestRegister() {
	id := validIdentity()
	fp := identity.Fingerprint(id)
	actor := domain.AccountID("0.0.6451900")

	s.Run("non manufacturer is forbidden before anything else", func() {
		_, err := s.service.Register(s.ctx, id, "0.0.2", domain.RoleRetailer)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("invalid identity is rejected before the session is read", func() {
		_, err := s.service.Register(s.ctx, identity.ProductIdentity{ProductionDate: "2025-01-01", ExpiryDate: "2026-01-01"}, actor, domain.RoleManufacturer)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("no wallet connected", func() {
		s.sessions.EXPECT().ActiveSession(gomock.Any()).
			Return(wallet.Session{}, dErrors.New(dErrors.CodeNoWalletConnected, "No wallet connected"))
		_, err := s.service.Register(s.ctx, id, actor, domain.RoleManufacturer)
		s.True(dErrors.HasCode(err, dErrors.CodeNoWalletConnected))
	})

	s.Run("session store failure is collaborator unavailable", func() {
		s.sessions.EXPECT().ActiveSession(gomock.Any()).Return(wallet.Session{}, errors.New("redis down"))
		_, err := s.service.Register(s.ctx, id, actor, domain.RoleManufacturer)
		s.True(dErrors.HasCode(err, dErrors.CodeCollaboratorUnavailable))
	})

	s.Run("existing fingerprint is a duplicate and nothing is submitted", func() {
		s.sessions.EXPECT().ActiveSession(gomock.Any()).Return(s.session, nil)
		s.store.EXPECT().FindRegistration(gomock.Any(), fp).Return(&models.RegistrationRecord{Fingerprint: fp}, nil)
		_, err := s.service.Register(s.ctx, id, actor, domain.RoleManufacturer)
		s.True(dErrors.HasCode(err, dErrors.CodeDuplicateRegistration))
		s.ErrorIs(err, dErrors.New(dErrors.CodeDuplicateRegistration, "Duplicate QR Code"))
	})

	s.Run("lookup failure is collaborator unavailable", func() {
		s.sessions.EXPECT().ActiveSession(gomock.Any()).Return(s.session, nil)
		s.store.EXPECT().FindRegistration(gomock.Any(), fp).Return(nil, sentinel.ErrUnavailable)
		_, err := s.service.Register(s.ctx, id, actor, domain.RoleManufacturer)
		s.True(dErrors.HasCode(err, dErrors.CodeCollaboratorUnavailable))
	})

	s.Run("oversized event is rejected before submission", func() {
		big := id
		big.ProductID = strings.Repeat("P", envelope.TopicMessageBudget)
		s.sessions.EXPECT().ActiveSession(gomock.Any()).Return(s.session, nil)
		s.store.EXPECT().FindRegistration(gomock.Any(), identity.Fingerprint(big)).Return(nil, sentinel.ErrNotFound)
		_, err := s.service.Register(s.ctx, big, actor, domain.RoleManufacturer)
		s.True(dErrors.HasCode(err, dErrors.CodePayloadTooLarge))
	})

	s.Run("submission failure leaves no record", func() {
		s.sessions.EXPECT().ActiveSession(gomock.Any()).Return(s.session, nil)
		s.store.EXPECT().FindRegistration(gomock.Any(), fp).Return(nil, sentinel.ErrNotFound)
		s.submitter.EXPECT().SubmitSigned(gomock.Any(), s.session, identity.Digest(fp), gomock.Any()).
			Return(ledger.Receipt{}, dErrors.New(dErrors.CodeSubmissionFailed, "INSUFFICIENT_PAYER_BALANCE"))
		_, err := s.service.Register(s.ctx, id, actor, domain.RoleManufacturer)
		s.True(dErrors.HasCode(err, dErrors.CodeSubmissionFailed))
	})

	s.Run("success submits the event then stores the record", func() {
		s.sessions.EXPECT().ActiveSession(gomock.Any()).Return(s.session, nil)
		s.store.EXPECT().FindRegistration(gomock.Any(), fp).Return(nil, sentinel.ErrNotFound)
		submit := s.submitter.EXPECT().SubmitSigned(gomock.Any(), s.session, identity.Digest(fp), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ wallet.Session, _ string, payload []byte) (ledger.Receipt, error) {
				ev, err := envelope.Decode(payload)
				s.Require().NoError(err)
				s.Equal(envelope.EventQRCodeRegistered, ev.EventType)
				s.Equal(actor, ev.AccountID)
				s.True(s.now.Equal(ev.Timestamp))
				return ledger.Receipt{TransactionID: "0.0.6451900@1740823200.000000000", TopicID: "0.0.4242"}, nil
			})
		s.store.EXPECT().InsertRegistration(gomock.Any(), gomock.Any()).After(submit).
			DoAndReturn(func(_ context.Context, rec *models.RegistrationRecord) error {
				s.Equal(fp, rec.Fingerprint)
				s.Equal(identity.Digest(fp), rec.Digest)
				s.Equal(actor, rec.AccountID)
				s.Equal("0.0.4242", rec.TopicID)
				return nil
			})

		res, err := s.service.Register(s.ctx, id, actor, domain.RoleManufacturer)
		s.Require().NoError(err)
		s.Equal("QR Code registered on topic 0.0.4242", res.Message)
		s.Equal("0.0.6451900@1740823200.000000000", res.TransactionID)
		s.Equal(fp, res.Fingerprint)
		s.True(s.now.Equal(res.RegisteredAt))
	})

	s.Run("insert conflict after submission is a duplicate", func() {
		s.sessions.EXPECT().ActiveSession(gomock.Any()).Return(s.session, nil)
		s.store.EXPECT().FindRegistration(gomock.Any(), fp).Return(nil, sentinel.ErrNotFound)
		s.submitter.EXPECT().SubmitSigned(gomock.Any(), s.session, gomock.Any(), gomock.Any()).
			Return(ledger.Receipt{TransactionID: "tx", TopicID: "0.0.4242"}, nil)
		s.store.EXPECT().InsertRegistration(gomock.Any(), gomock.Any()).Return(sentinel.ErrConflict)
		_, err := s.service.Register(s.ctx, id, actor, domain.RoleManufacturer)
		s.True(dErrors.HasCode(err, dErrors.CodeDuplicateRegistration))
	})

	s.Run("other insert failure is collaborator unavailable", func() {
		s.sessions.EXPECT().ActiveSession(gomock.Any()).Return(s.session, nil)
		s.store.EXPECT().FindRegistration(gomock.Any(), fp).Return(nil, sentinel.ErrNotFound)
		s.submitter.EXPECT().SubmitSigned(gomock.Any(), s.session, gomock.Any(), gomock.Any()).
			Return(ledger.Receipt{TransactionID: "tx", TopicID: "0.0.4242"}, nil)
		s.store.EXPECT().InsertRegistration(gomock.Any(), gomock.Any()).Return(errors.New("connection reset"))
		_, err := s.service.Register(s.ctx, id, actor, domain.RoleManufacturer)
		s.True(dErrors.HasCode(err, dErrors.CodeCollaboratorUnavailable))
	})
}

func (s *ServiceSuite) TestVerify() {
	id := validIdentity()
	subjectKey := id.SubjectKey()

	s.Run("unknown role is forbidden", func() {
		_, err := s.service.Verify(s.ctx, id, "0.0.1", domain.Role("Admin"))
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("session is checked before the identity", func() {
		s.sessions.EXPECT().ActiveSession(gomock.Any()).
			Return(wallet.Session{}, dErrors.New(dErrors.CodeNoWalletConnected, "No wallet connected"))
		_, err := s.service.Verify(s.ctx, identity.ProductIdentity{}, "0.0.2", domain.RoleRetailer)
		s.True(dErrors.HasCode(err, dErrors.CodeNoWalletConnected))
	})

	s.Run("invalid identity", func() {
		s.sessions.EXPECT().ActiveSession(gomock.Any()).Return(s.session, nil)
		_, err := s.service.Verify(s.ctx, identity.ProductIdentity{BatchID: "B1"}, "0.0.2", domain.RoleRetailer)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("expired product emits no event", func() {
		expired := id
		expired.ProductionDate = "2024-01-01"
		expired.ExpiryDate = "2025-02-28"
		s.sessions.EXPECT().ActiveSession(gomock.Any()).Return(s.session, nil)
		_, err := s.service.Verify(s.ctx, expired, "0.0.2", domain.RoleRetailer)
		s.True(dErrors.HasCode(err, dErrors.CodeProductExpired))
	})

	s.Run("consumer already verified", func() {
		s.sessions.EXPECT().ActiveSession(gomock.Any()).Return(s.session, nil)
		s.store.EXPECT().FindConsumerVerification(gomock.Any(), subjectKey).
			Return(&models.VerificationRecord{SubjectKey: subjectKey, Role: domain.RoleConsumer}, nil)
		_, err := s.service.Verify(s.ctx, id, "0.0.3", domain.RoleConsumer)
		s.True(dErrors.HasCode(err, dErrors.CodeAlreadyVerifiedByConsumer))
	})

	s.Run("retailer verifies without the consumer lookup", func() {
		s.sessions.EXPECT().ActiveSession(gomock.Any()).Return(s.session, nil)
		submit := s.submitter.EXPECT().SubmitSigned(gomock.Any(), s.session, gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ wallet.Session, _ string, payload []byte) (ledger.Receipt, error) {
				var ev map[string]any
				s.Require().NoError(json.Unmarshal(payload, &ev))
				s.Equal("Retailer Verified Product P1", ev["eventType"])
				return ledger.Receipt{TransactionID: "tx-r", TopicID: "0.0.4242"}, nil
			})
		s.store.EXPECT().InsertVerification(gomock.Any(), gomock.Any()).After(submit).
			DoAndReturn(func(_ context.Context, rec *models.VerificationRecord) error {
				s.Equal(domain.RoleRetailer, rec.Role)
				s.Equal(subjectKey, rec.SubjectKey)
				s.NotEqual("00000000-0000-0000-0000-000000000000", rec.ID.String())
				return nil
			})
		res, err := s.service.Verify(s.ctx, id, "0.0.2", domain.RoleRetailer)
		s.Require().NoError(err)
		s.Equal("Retailer Verified Product P1", res.EventType)
		s.Equal("tx-r", res.TransactionID)
	})

	s.Run("first consumer verification succeeds", func() {
		carton := identity.ProductIdentity{BatchID: "B1", CartonID: "C9", ProductionDate: "2025-01-01", ExpiryDate: "2026-01-01"}
		s.sessions.EXPECT().ActiveSession(gomock.Any()).Return(s.session, nil)
		s.store.EXPECT().FindConsumerVerification(gomock.Any(), "carton:C9").Return(nil, sentinel.ErrNotFound)
		s.submitter.EXPECT().SubmitSigned(gomock.Any(), s.session, gomock.Any(), gomock.Any()).
			Return(ledger.Receipt{TransactionID: "tx-c", TopicID: "0.0.4242"}, nil)
		s.store.EXPECT().InsertVerification(gomock.Any(), gomock.Any()).Return(nil)
		res, err := s.service.Verify(s.ctx, carton, "0.0.3", domain.RoleConsumer)
		s.Require().NoError(err)
		s.Equal("Consumer Verified Product C9", res.EventType)
	})

	s.Run("submission failure stores nothing", func() {
		s.sessions.EXPECT().ActiveSession(gomock.Any()).Return(s.session, nil)
		s.submitter.EXPECT().SubmitSigned(gomock.Any(), s.session, gomock.Any(), gomock.Any()).
			Return(ledger.Receipt{}, dErrors.New(dErrors.CodeSubmissionFailed, "wallet rejected"))
		_, err := s.service.Verify(s.ctx, id, "0.0.1", domain.RoleManufacturer)
		s.True(dErrors.HasCode(err, dErrors.CodeSubmissionFailed))
	})

	s.Run("concurrent consumer insert conflict", func() {
		s.sessions.EXPECT().ActiveSession(gomock.Any()).Return(s.session, nil)
		s.store.EXPECT().FindConsumerVerification(gomock.Any(), subjectKey).Return(nil, sentinel.ErrNotFound)
		s.submitter.EXPECT().SubmitSigned(gomock.Any(), s.session, gomock.Any(), gomock.Any()).
			Return(ledger.Receipt{TransactionID: "tx", TopicID: "0.0.4242"}, nil)
		s.store.EXPECT().InsertVerification(gomock.Any(), gomock.Any()).Return(sentinel.ErrConflict)
		_, err := s.service.Verify(s.ctx, id, "0.0.3", domain.RoleConsumer)
		s.True(dErrors.HasCode(err, dErrors.CodeAlreadyVerifiedByConsumer))
	})
}

func (s *ServiceSuite) TestHistory() {
	s.Run("requires an identifier", func() {
		_, err := s.service.History(s.ctx, identity.ProductIdentity{})
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("lists by subject key", func() {
		want := []*models.VerificationRecord{{SubjectKey: "batch:B1", Role: domain.RoleWholesaler}}
		s.store.EXPECT().ListVerifications(gomock.Any(), "batch:B1").Return(want, nil)
		got, err := s.service.History(s.ctx, identity.ProductIdentity{BatchID: " B1 "})
		s.Require().NoError(err)
		s.Equal(want, got)
	})

	s.Run("store failure", func() {
		s.store.EXPECT().ListVerifications(gomock.Any(), "product:P1").Return(nil, errors.New("boom"))
		_, err := s.service.History(s.ctx, identity.ProductIdentity{ProductID: "P1"})
		s.True(dErrors.HasCode(err, dErrors.CodeCollaboratorUnavailable))
	})
}
