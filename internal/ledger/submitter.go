package ledger

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"truetrace/internal/envelope"
	"truetrace/internal/wallet"
	dErrors "truetrace/pkg/domain-errors"
	"truetrace/pkg/platform/circuit"
)

// Wallet signs and executes transactions over the active session.
type Wallet interface {
	Request(ctx context.Context, session wallet.Session, req wallet.SignRequest) (wallet.SignResponse, error)
}

// Topics resolves the topic events are submitted to.
type Topics interface {
	Current(ctx context.Context) (string, error)
}

// Mirror republishes submitted events, best effort.
type Mirror interface {
	Publish(ctx context.Context, key string, payload []byte) error
}

// Receipt identifies a submitted event.
type Receipt struct {
	TransactionID string
	TopicID       string
}

// Submitter puts encoded events on the topic, either signed by the paired
// wallet or paid by the operator, and mirrors them afterwards.
type Submitter struct {
	ledger  Ledger
	wallet  Wallet
	topics  Topics
	mirror  Mirror
	breaker *circuit.Breaker
	logger  *slog.Logger
}

// SubmitterOption configures a Submitter.
type SubmitterOption func(*Submitter)

// WithMirror enables event mirroring behind a circuit breaker.
func WithMirror(m Mirror) SubmitterOption {
	return func(s *Submitter) { s.mirror = m }
}

// WithBreaker replaces the mirror circuit breaker.
func WithBreaker(b *circuit.Breaker) SubmitterOption {
	return func(s *Submitter) { s.breaker = b }
}

// WithSubmitterLogger sets the logger.
func WithSubmitterLogger(l *slog.Logger) SubmitterOption {
	return func(s *Submitter) { s.logger = l }
}

// NewSubmitter constructs a Submitter. A nil wallet limits it to operator
// submissions.
func NewSubmitter(l Ledger, w Wallet, topics Topics, opts ...SubmitterOption) (*Submitter, error) {
	if l == nil {
		return nil, errors.New("ledger is required")
	}
	if topics == nil {
		return nil, errors.New("topic source is required")
	}
	s := &Submitter{
		ledger:  l,
		wallet:  w,
		topics:  topics,
		breaker: circuit.New("event-mirror"),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// SubmitSigned freezes the event as a topic message paid by the session's
// primary account, has the wallet sign and execute it, then mirrors it.
// key is the mirror partition key, usually the identity digest.
func (s *Submitter) SubmitSigned(ctx context.Context, session wallet.Session, key string, payload []byte) (Receipt, error) {
	if err := checkBudget(payload); err != nil {
		return Receipt{}, err
	}
	if s.wallet == nil {
		return Receipt{}, dErrors.New(dErrors.CodeSubmissionFailed, "no wallet configured")
	}
	topicID, err := s.topics.Current(ctx)
	if err != nil {
		return Receipt{}, dErrors.Wrap(err, dErrors.CodeSubmissionFailed, "no topic available")
	}
	payer := session.PrimaryAccount()
	if payer.IsNil() {
		return Receipt{}, dErrors.New(dErrors.CodeSubmissionFailed, "wallet session has no paired account")
	}

	frozen, err := s.ledger.FreezeTopicMessage(ctx, topicID, payer, payload)
	if err != nil {
		return Receipt{}, submissionFailed(err, "failed to prepare topic message")
	}

	params, err := json.Marshal(wallet.TransactionParams{Transaction: hex.EncodeToString(frozen.Bytes)})
	if err != nil {
		return Receipt{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to encode sign request")
	}
	resp, err := s.wallet.Request(ctx, session, wallet.SignRequest{
		Method: wallet.MethodSignAndExecuteTransaction,
		Params: params,
	})
	if err != nil {
		return Receipt{}, submissionFailed(err, "wallet submission failed")
	}

	txID := resp.TransactionID
	if txID == "" {
		txID = frozen.TransactionID
	}
	r := Receipt{TransactionID: txID, TopicID: topicID}
	s.publish(ctx, key, payload)
	return r, nil
}

// Current returns the topic events are submitted to.
func (s *Submitter) Current(ctx context.Context) (string, error) {
	return s.topics.Current(ctx)
}

// SubmitOperator submits the event paid and signed by the operator account.
func (s *Submitter) SubmitOperator(ctx context.Context, key string, payload []byte) (Receipt, error) {
	if err := checkBudget(payload); err != nil {
		return Receipt{}, err
	}
	topicID, err := s.topics.Current(ctx)
	if err != nil {
		return Receipt{}, dErrors.Wrap(err, dErrors.CodeSubmissionFailed, "no topic available")
	}
	txID, err := s.ledger.SubmitMessage(ctx, topicID, payload)
	if err != nil {
		return Receipt{}, submissionFailed(err, "operator submission failed")
	}
	s.publish(ctx, key, payload)
	return Receipt{TransactionID: txID, TopicID: topicID}, nil
}

func (s *Submitter) publish(ctx context.Context, key string, payload []byte) {
	if s.mirror == nil {
		return
	}
	if !s.breaker.Allow() {
		s.logger.DebugContext(ctx, "event mirror skipped, breaker open", "breaker", s.breaker.Name())
		return
	}
	if err := s.mirror.Publish(ctx, key, payload); err != nil {
		if _, change := s.breaker.RecordFailure(); change.Opened {
			s.logger.WarnContext(ctx, "event mirror breaker opened", "breaker", s.breaker.Name())
		}
		s.logger.WarnContext(ctx, "event mirror publish failed", "key", key, "error", err)
		return
	}
	if _, change := s.breaker.RecordSuccess(); change.Closed {
		s.logger.InfoContext(ctx, "event mirror breaker closed", "breaker", s.breaker.Name())
	}
}

func checkBudget(payload []byte) error {
	if len(payload) > envelope.TopicMessageBudget {
		return dErrors.New(dErrors.CodePayloadTooLarge,
			fmt.Sprintf("event too large: %d bytes (limit %d)", len(payload), envelope.TopicMessageBudget))
	}
	return nil
}

// submissionFailed keeps SubmissionFailed errors as they are and wraps any
// other failure into one.
func submissionFailed(err error, msg string) error {
	if dErrors.HasCode(err, dErrors.CodeSubmissionFailed) {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeSubmissionFailed, msg)
}
