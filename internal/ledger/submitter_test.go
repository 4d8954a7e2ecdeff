package ledger_test

//go:generate mockgen -source=ledger.go -destination=mocks/ledger.go -package=mocks Ledger
//go:generate mockgen -source=submitter.go -destination=mocks/submitter.go -package=mocks Wallet,Topics,Mirror

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"truetrace/internal/ledger"
	"truetrace/internal/ledger/mocks"
	"truetrace/internal/wallet"
	"truetrace/pkg/domain"
	dErrors "truetrace/pkg/domain-errors"
	"truetrace/pkg/platform/circuit"
)

type SubmitterSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	ledger  *mocks.MockLedger
	wallet  *mocks.MockWallet
	topics  *mocks.MockTopics
	mirror  *mocks.MockMirror
	sub     *ledger.Submitter
	session wallet.Session
}

func TestSubmitterSuite(t *testing.T) {
	suite.Run(t, new(SubmitterSuite))
}

func (s *SubmitterSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.ledger = mocks.NewMockLedger(s.ctrl)
	s.wallet = mocks.NewMockWallet(s.ctrl)
	s.topics = mocks.NewMockTopics(s.ctrl)
	s.mirror = mocks.NewMockMirror(s.ctrl)
	s.session = wallet.Session{Topic: "live", PairedAccounts: []domain.AccountID{"0.0.5"}}

	var err error
	s.sub, err = ledger.NewSubmitter(s.ledger, s.wallet, s.topics,
		ledger.WithMirror(s.mirror),
		ledger.WithBreaker(circuit.New("test", circuit.WithFailureThreshold(1))),
		ledger.WithSubmitterLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	s.Require().NoError(err)
}

func (s *SubmitterSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *SubmitterSuite) TestNewSubmitterRequiresCollaborators() {
	_, err := ledger.NewSubmitter(nil, s.wallet, s.topics)
	s.ErrorContains(err, "ledger is required")
	_, err = ledger.NewSubmitter(s.ledger, s.wallet, nil)
	s.ErrorContains(err, "topic source is required")
}

func (s *SubmitterSuite) TestOperatorOnlySubmitter() {
	sub, err := ledger.NewSubmitter(s.ledger, nil, s.topics, ledger.WithMirror(s.mirror))
	s.Require().NoError(err)

	_, err = sub.SubmitSigned(context.Background(), wallet.Session{Topic: "t1", PairedAccounts: []domain.AccountID{"0.0.5"}}, "k", []byte(`{}`))
	s.True(dErrors.HasCode(err, dErrors.CodeSubmissionFailed))

	s.topics.EXPECT().Current(gomock.Any()).Return("0.0.4242", nil)
	s.ledger.EXPECT().SubmitMessage(gomock.Any(), "0.0.4242", []byte(`{}`)).Return("0.0.2@9.9", nil)
	s.mirror.EXPECT().Publish(gomock.Any(), "k", []byte(`{}`)).Return(nil)
	r, err := sub.SubmitOperator(context.Background(), "k", []byte(`{}`))
	s.Require().NoError(err)
	s.Equal("0.0.2@9.9", r.TransactionID)
}

func (s *SubmitterSuite) TestSubmitSigned() {
	ctx := context.Background()
	payload := []byte(`{"eventType":"QRCodeRegistered"}`)

	s.Run("wallet signs the frozen message and the event is mirrored", func() {
		s.topics.EXPECT().Current(ctx).Return("0.0.4242", nil)
		s.ledger.EXPECT().FreezeTopicMessage(ctx, "0.0.4242", domain.AccountID("0.0.5"), payload).
			Return(ledger.FrozenTransaction{Bytes: []byte{0x01, 0x02}, TransactionID: "0.0.5@1.1"}, nil)
		s.wallet.EXPECT().Request(ctx, s.session, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ wallet.Session, req wallet.SignRequest) (wallet.SignResponse, error) {
				s.Equal(wallet.MethodSignAndExecuteTransaction, req.Method)
				var params wallet.TransactionParams
				s.Require().NoError(json.Unmarshal(req.Params, &params))
				s.Equal("0102", params.Transaction)
				return wallet.SignResponse{}, nil
			})
		s.mirror.EXPECT().Publish(ctx, "digest", payload).Return(nil)

		r, err := s.sub.SubmitSigned(ctx, s.session, "digest", payload)
		s.Require().NoError(err)
		s.Equal("0.0.5@1.1", r.TransactionID)
		s.Equal("0.0.4242", r.TopicID)
	})

	s.Run("wallet failure is submission failed and nothing is mirrored", func() {
		s.topics.EXPECT().Current(ctx).Return("0.0.4242", nil)
		s.ledger.EXPECT().FreezeTopicMessage(ctx, "0.0.4242", domain.AccountID("0.0.5"), payload).
			Return(ledger.FrozenTransaction{Bytes: []byte{0x01}}, nil)
		s.wallet.EXPECT().Request(ctx, s.session, gomock.Any()).
			Return(wallet.SignResponse{}, errors.New("user rejected"))

		_, err := s.sub.SubmitSigned(ctx, s.session, "digest", payload)
		s.True(dErrors.HasCode(err, dErrors.CodeSubmissionFailed))
	})

	s.Run("oversized payload is rejected before any ledger call", func() {
		big := []byte(strings.Repeat("x", 1025))
		_, err := s.sub.SubmitSigned(ctx, s.session, "digest", big)
		s.True(dErrors.HasCode(err, dErrors.CodePayloadTooLarge))
	})

	s.Run("session without accounts cannot pay", func() {
		s.topics.EXPECT().Current(ctx).Return("0.0.4242", nil)
		_, err := s.sub.SubmitSigned(ctx, wallet.Session{Topic: "empty"}, "digest", payload)
		s.True(dErrors.HasCode(err, dErrors.CodeSubmissionFailed))
	})

	s.Run("freeze failure is submission failed", func() {
		s.topics.EXPECT().Current(ctx).Return("0.0.4242", nil)
		s.ledger.EXPECT().FreezeTopicMessage(ctx, "0.0.4242", domain.AccountID("0.0.5"), payload).
			Return(ledger.FrozenTransaction{}, dErrors.New(dErrors.CodeCollaboratorUnavailable, "network down"))

		_, err := s.sub.SubmitSigned(ctx, s.session, "digest", payload)
		s.True(dErrors.HasCode(err, dErrors.CodeSubmissionFailed))
	})
}

func (s *SubmitterSuite) TestMirrorFailureOpensBreaker() {
	ctx := context.Background()
	payload := []byte(`{"eventType":"BatchMinted"}`)

	s.topics.EXPECT().Current(ctx).Return("0.0.4242", nil).Times(2)
	s.ledger.EXPECT().SubmitMessage(ctx, "0.0.4242", payload).Return("0.0.2@1.1", nil).Times(2)
	// threshold 1: the first failure opens the breaker, the second call skips the mirror
	s.mirror.EXPECT().Publish(ctx, "k", payload).Return(errors.New("broker down")).Times(1)

	r, err := s.sub.SubmitOperator(ctx, "k", payload)
	s.Require().NoError(err)
	s.Equal("0.0.2@1.1", r.TransactionID)

	_, err = s.sub.SubmitOperator(ctx, "k", payload)
	s.Require().NoError(err)
}

func (s *SubmitterSuite) TestSubmitOperatorFailure() {
	ctx := context.Background()
	payload := []byte(`{}`)

	s.topics.EXPECT().Current(ctx).Return("0.0.4242", nil)
	s.ledger.EXPECT().SubmitMessage(ctx, "0.0.4242", payload).Return("", errors.New("INSUFFICIENT_PAYER_BALANCE"))

	_, err := s.sub.SubmitOperator(ctx, "k", payload)
	s.True(dErrors.HasCode(err, dErrors.CodeSubmissionFailed))
}

func (s *SubmitterSuite) TestNoTopic() {
	ctx := context.Background()
	s.topics.EXPECT().Current(ctx).Return("", dErrors.New(dErrors.CodeCollaboratorUnavailable, "no topic configured"))

	_, err := s.sub.SubmitOperator(ctx, "k", []byte(`{}`))
	s.True(dErrors.HasCode(err, dErrors.CodeSubmissionFailed))
}
