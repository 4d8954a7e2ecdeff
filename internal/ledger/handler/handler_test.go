package handler

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks TopicService,RecordService

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"truetrace/internal/ledger"
	"truetrace/internal/ledger/handler/mocks"
	dErrors "truetrace/pkg/domain-errors"
)

type LedgerHandlerSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	topics  *mocks.MockTopicService
	records *mocks.MockRecordService
	router  http.Handler
}

func TestLedgerHandlerSuite(t *testing.T) {
	suite.Run(t, new(LedgerHandlerSuite))
}

func (s *LedgerHandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.topics = mocks.NewMockTopicService(s.ctrl)
	s.records = mocks.NewMockRecordService(s.ctrl)
	h := New(s.topics, s.records, slog.New(slog.NewTextHandler(io.Discard, nil)))
	r := chi.NewRouter()
	h.RegisterTopics(r)
	h.RegisterRecords(r)
	s.router = r
}

func (s *LedgerHandlerSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *LedgerHandlerSuite) TestCreateTopic() {
	s.Run("returns the new topic id", func() {
		s.topics.EXPECT().Create(gomock.Any()).Return("0.0.4242", nil)
		rr := httptest.NewRecorder()
		s.router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/create-topic", nil))
		s.Equal(http.StatusOK, rr.Code)
		s.JSONEq(`{"topicId":"0.0.4242"}`, rr.Body.String())
	})

	s.Run("ledger failure is 500 without description", func() {
		s.topics.EXPECT().Create(gomock.Any()).Return("", dErrors.New(dErrors.CodeSubmissionFailed, "create topic: INSUFFICIENT_PAYER_BALANCE"))
		rr := httptest.NewRecorder()
		s.router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/create-topic", nil))
		s.Equal(http.StatusInternalServerError, rr.Code)
		s.JSONEq(`{"error":"submission_failed"}`, rr.Body.String())
	})
}

func (s *LedgerHandlerSuite) TestTransaction() {
	s.Run("returns the record", func() {
		ts := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
		s.records.EXPECT().TransactionRecord(gomock.Any(), "0.0.5@1700000000.1").
			Return(ledger.Record{TransactionID: "0.0.5@1700000000.1", Memo: "m", Status: "SUCCESS", ConsensusTimestamp: ts}, nil)
		rr := httptest.NewRecorder()
		s.router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/transactions/0.0.5@1700000000.1", nil))
		s.Equal(http.StatusOK, rr.Code)

		var got ledger.Record
		s.Require().NoError(json.Unmarshal(rr.Body.Bytes(), &got))
		s.Equal("SUCCESS", got.Status)
		s.True(ts.Equal(got.ConsensusTimestamp))
	})

	s.Run("invalid id is 400", func() {
		s.records.EXPECT().TransactionRecord(gomock.Any(), "junk").
			Return(ledger.Record{}, dErrors.New(dErrors.CodeInvalidInput, "invalid transaction id"))
		rr := httptest.NewRecorder()
		s.router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/transactions/junk", nil))
		s.Equal(http.StatusBadRequest, rr.Code)
		s.Contains(rr.Body.String(), "invalid transaction id")
	})
}
