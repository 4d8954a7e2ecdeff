// Package ledger defines the port to the Hedera network and the submitter
// that gets workflow events onto the consensus topic.
package ledger

import (
	"context"
	"time"

	"truetrace/pkg/domain"
)

// Ledger is the set of network operations the service depends on.
type Ledger interface {
	OperatorID() domain.AccountID
	CreateAccount(ctx context.Context, spec AccountSpec) (AccountResult, error)
	// TransferHbar moves tinybars from one account to another, paid by the operator.
	TransferHbar(ctx context.Context, from, to domain.AccountID, tinybars int64) (string, error)
	CreateNFT(ctx context.Context, spec TokenSpec) (TokenResult, error)
	MintNFT(ctx context.Context, tokenID string, metadata []byte) (MintResult, error)
	// AssociateToken signs with the account's own key. Associating the
	// treasury or an already associated account is a no-op.
	AssociateToken(ctx context.Context, account domain.AccountID, privateKey, tokenID string) error
	CreateTopic(ctx context.Context, memo string, withSubmitKey bool) (string, error)
	// SubmitMessage submits an operator paid topic message.
	SubmitMessage(ctx context.Context, topicID string, message []byte) (string, error)
	// FreezeTopicMessage builds a topic message paid by payer, ready for the
	// wallet to sign.
	FreezeTopicMessage(ctx context.Context, topicID string, payer domain.AccountID, message []byte) (FrozenTransaction, error)
	TransactionRecord(ctx context.Context, transactionID string) (Record, error)
}

// AccountSpec parameterises CreateAccount. A new ED25519 key is generated.
type AccountSpec struct {
	InitialBalanceTinybar int64
	MaxAutoAssociations   int32
}

// AccountResult is a created account and its keys, DER hex encoded.
type AccountResult struct {
	AccountID  domain.AccountID `json:"accountId"`
	PrivateKey string           `json:"privateKey"`
	PublicKey  string           `json:"publicKey"`
}

// TokenSymbol is the symbol of every minted collection.
const TokenSymbol = "TTRACE"

// TokenSpec parameterises CreateNFT. The operator is treasury and supply key.
type TokenSpec struct {
	Name     string
	Symbol   string
	Metadata []byte
}

// TokenResult is a created token collection.
type TokenResult struct {
	TokenID       string
	TransactionID string
}

// MintResult lists the serials minted by MintNFT.
type MintResult struct {
	Serials       []int64
	TransactionID string
}

// FrozenTransaction is a serialized transaction awaiting signatures.
type FrozenTransaction struct {
	Bytes         []byte
	TransactionID string
}

// Record is the outcome of an executed transaction.
type Record struct {
	TransactionID      string    `json:"transactionId"`
	Memo               string    `json:"memo"`
	Status             string    `json:"status"`
	ConsensusTimestamp time.Time `json:"consensusTimestamp"`
}
