// Package local implements the wallet client with the operator key, for
// development setups without a paired wallet.
package local

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	hedera "github.com/hashgraph/hedera-sdk-go/v2"

	"truetrace/internal/wallet"
	"truetrace/pkg/domain"
)

// Provider hands out operator signers. The relay URL is ignored.
type Provider struct {
	client     *hedera.Client
	operatorID domain.AccountID
	key        hedera.PrivateKey
	accounts   []domain.AccountID
	logger     *slog.Logger
}

// NewProvider builds a local provider that signs as operatorID. extra lists
// further accounts reported as paired, so role mapped demo accounts can log in.
func NewProvider(client *hedera.Client, operatorID domain.AccountID, key hedera.PrivateKey, extra []domain.AccountID, logger *slog.Logger) *Provider {
	if logger == nil {
		logger = slog.Default()
	}
	accounts := []domain.AccountID{operatorID}
	for _, a := range extra {
		if a != operatorID {
			accounts = append(accounts, a)
		}
	}
	return &Provider{client: client, operatorID: operatorID, key: key, accounts: accounts, logger: logger}
}

func (p *Provider) Init(_ context.Context, relayURL string) (wallet.Client, error) {
	p.logger.Info("using local operator signer", "relay", relayURL, "operator", p.operatorID)
	return &Signer{p: p, notes: make(chan wallet.Notification)}, nil
}

// Signer signs and executes frozen transactions with the operator key.
type Signer struct {
	p     *Provider
	notes chan wallet.Notification
	once  sync.Once
}

// Connect returns an immediate session for the operator.
func (s *Signer) Connect(_ context.Context, _ wallet.Namespaces) (wallet.ConnectResult, error) {
	topic := "local:" + s.p.operatorID.String()
	return wallet.ConnectResult{
		URI:          "local://" + s.p.operatorID.String(),
		PairingTopic: topic,
		Session: &wallet.Session{
			Topic:          topic,
			PairedAccounts: append([]domain.AccountID(nil), s.p.accounts...),
			EstablishedAt:  time.Now().UTC(),
		},
	}, nil
}

func (s *Signer) Approve(context.Context, string, wallet.Namespaces) (wallet.Session, error) {
	return wallet.Session{}, errors.New("local signer does not receive session proposals")
}

// Request signs the frozen transaction in the params. hedera_signTransaction
// returns the signed bytes; hedera_signAndExecuteTransaction also executes it
// and waits for the receipt.
func (s *Signer) Request(ctx context.Context, _ string, req wallet.SignRequest) (wallet.SignResponse, error) {
	var params wallet.TransactionParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return wallet.SignResponse{}, fmt.Errorf("decode params: %w", err)
	}
	raw, err := hex.DecodeString(params.Transaction)
	if err != nil {
		return wallet.SignResponse{}, fmt.Errorf("decode transaction hex: %w", err)
	}
	decoded, err := hedera.TransactionFromBytes(raw)
	if err != nil {
		return wallet.SignResponse{}, fmt.Errorf("decode transaction: %w", err)
	}

	var tx *hedera.TopicMessageSubmitTransaction
	switch v := decoded.(type) {
	case hedera.TopicMessageSubmitTransaction:
		tx = &v
	case *hedera.TopicMessageSubmitTransaction:
		tx = v
	default:
		return wallet.SignResponse{}, fmt.Errorf("unsupported transaction type %T", decoded)
	}
	tx = tx.Sign(s.p.key)

	switch req.Method {
	case wallet.MethodSignTransaction:
		signed, err := tx.ToBytes()
		if err != nil {
			return wallet.SignResponse{}, fmt.Errorf("encode signed transaction: %w", err)
		}
		result, _ := json.Marshal(wallet.TransactionParams{Transaction: hex.EncodeToString(signed)})
		return wallet.SignResponse{TransactionID: tx.GetTransactionID().String(), Result: result}, nil
	case wallet.MethodSignAndExecuteTransaction:
		if err := ctx.Err(); err != nil {
			return wallet.SignResponse{}, err
		}
		resp, err := tx.Execute(s.p.client)
		if err != nil {
			return wallet.SignResponse{}, fmt.Errorf("execute transaction: %w", err)
		}
		if _, err := resp.GetReceipt(s.p.client); err != nil {
			return wallet.SignResponse{}, fmt.Errorf("transaction receipt: %w", err)
		}
		return wallet.SignResponse{TransactionID: resp.TransactionID.String()}, nil
	default:
		return wallet.SignResponse{}, fmt.Errorf("unsupported method %q", req.Method)
	}
}

func (s *Signer) Notifications() <-chan wallet.Notification {
	return s.notes
}

func (s *Signer) Close() error {
	s.once.Do(func() { close(s.notes) })
	return nil
}
