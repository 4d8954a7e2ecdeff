// Package hedera adapts hedera-sdk-go to the ledger port.
package hedera

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	hsdk "github.com/hashgraph/hedera-sdk-go/v2"

	"truetrace/internal/ledger"
	"truetrace/internal/platform/config"
	"truetrace/pkg/domain"
	dErrors "truetrace/pkg/domain-errors"
)

// maxTokenCreateFee caps the fee of token creation.
var maxTokenCreateFee = hsdk.NewHbar(10)

// Client executes ledger operations as the configured operator.
type Client struct {
	client      *hsdk.Client
	operatorID  hsdk.AccountID
	operatorKey hsdk.PrivateKey
	logger      *slog.Logger
}

// New builds an operator client for cfg.Network.
func New(cfg config.HederaConfig, logger *slog.Logger) (*Client, error) {
	if cfg.OperatorID == "" || cfg.OperatorKey == "" {
		return nil, errors.New("HEDERA_OPERATOR_ID and HEDERA_OPERATOR_KEY are required")
	}
	operatorID, err := hsdk.AccountIDFromString(cfg.OperatorID)
	if err != nil {
		return nil, fmt.Errorf("parse operator id: %w", err)
	}
	key, err := ParsePrivateKey(cfg.OperatorKey, cfg.KeyType)
	if err != nil {
		return nil, fmt.Errorf("parse operator key: %w", err)
	}
	client, err := ClientForNetwork(cfg.Network)
	if err != nil {
		return nil, err
	}
	client.SetOperator(operatorID, key)
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{client: client, operatorID: operatorID, operatorKey: key, logger: logger}, nil
}

// ClientForNetwork returns an SDK client for a named network.
func ClientForNetwork(network string) (*hsdk.Client, error) {
	switch strings.ToLower(network) {
	case "", "testnet":
		return hsdk.ClientForTestnet(), nil
	case "mainnet":
		return hsdk.ClientForMainnet(), nil
	case "previewnet":
		return hsdk.ClientForPreviewnet(), nil
	case "local":
		c := hsdk.ClientForNetwork(map[string]hsdk.AccountID{"127.0.0.1:50211": {Account: 3}})
		c.SetMirrorNetwork([]string{"127.0.0.1:5600"})
		return c, nil
	default:
		return nil, fmt.Errorf("unknown hedera network %q", network)
	}
}

// ParsePrivateKey parses a DER or raw hex key. keyType selects the curve for
// raw keys; empty relies on DER detection.
func ParsePrivateKey(s, keyType string) (hsdk.PrivateKey, error) {
	switch strings.ToUpper(keyType) {
	case "ECDSA":
		return hsdk.PrivateKeyFromStringECDSA(s)
	case "ED25519":
		return hsdk.PrivateKeyFromStringEd25519(s)
	default:
		return hsdk.PrivateKeyFromString(s)
	}
}

// SDK exposes the underlying client for the local wallet signer.
func (c *Client) SDK() *hsdk.Client {
	return c.client
}

// OperatorKey returns the operator private key.
func (c *Client) OperatorKey() hsdk.PrivateKey {
	return c.operatorKey
}

func (c *Client) OperatorID() domain.AccountID {
	return domain.AccountID(c.operatorID.String())
}

// Close releases network connections.
func (c *Client) Close() error {
	return c.client.Close()
}

func (c *Client) CreateAccount(ctx context.Context, spec ledger.AccountSpec) (ledger.AccountResult, error) {
	if err := ctx.Err(); err != nil {
		return ledger.AccountResult{}, err
	}
	key, err := hsdk.PrivateKeyGenerateEd25519()
	if err != nil {
		return ledger.AccountResult{}, dErrors.Wrap(err, dErrors.CodeInternal, "generate account key")
	}
	resp, err := hsdk.NewAccountCreateTransaction().
		SetKey(key.PublicKey()).
		SetInitialBalance(hsdk.HbarFromTinybar(spec.InitialBalanceTinybar)).
		SetMaxAutomaticTokenAssociations(spec.MaxAutoAssociations).
		Execute(c.client)
	if err != nil {
		return ledger.AccountResult{}, MapError(err, "create account")
	}
	receipt, err := resp.GetReceipt(c.client)
	if err != nil {
		return ledger.AccountResult{}, MapError(err, "create account")
	}
	if receipt.AccountID == nil {
		return ledger.AccountResult{}, dErrors.New(dErrors.CodeSubmissionFailed, "create account: receipt has no account id")
	}
	return ledger.AccountResult{
		AccountID:  domain.AccountID(receipt.AccountID.String()),
		PrivateKey: key.String(),
		PublicKey:  key.PublicKey().String(),
	}, nil
}

func (c *Client) TransferHbar(ctx context.Context, from, to domain.AccountID, tinybars int64) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	fromID, err := accountID(from)
	if err != nil {
		return "", err
	}
	toID, err := accountID(to)
	if err != nil {
		return "", err
	}
	resp, err := hsdk.NewTransferTransaction().
		AddHbarTransfer(fromID, hsdk.HbarFromTinybar(-tinybars)).
		AddHbarTransfer(toID, hsdk.HbarFromTinybar(tinybars)).
		Execute(c.client)
	if err != nil {
		return "", MapError(err, "transfer hbar")
	}
	if _, err := resp.GetReceipt(c.client); err != nil {
		return "", MapError(err, "transfer hbar")
	}
	return resp.TransactionID.String(), nil
}

func (c *Client) CreateNFT(ctx context.Context, spec ledger.TokenSpec) (ledger.TokenResult, error) {
	if err := ctx.Err(); err != nil {
		return ledger.TokenResult{}, err
	}
	symbol := spec.Symbol
	if symbol == "" {
		symbol = ledger.TokenSymbol
	}
	tx, err := hsdk.NewTokenCreateTransaction().
		SetTokenName(spec.Name).
		SetTokenSymbol(symbol).
		SetTokenType(hsdk.TokenTypeNonFungibleUnique).
		SetDecimals(0).
		SetInitialSupply(0).
		SetTreasuryAccountID(c.operatorID).
		SetSupplyKey(c.operatorKey.PublicKey()).
		SetTokenMetadata(spec.Metadata).
		SetMaxTransactionFee(maxTokenCreateFee).
		FreezeWith(c.client)
	if err != nil {
		return ledger.TokenResult{}, MapError(err, "create token")
	}
	resp, err := tx.Sign(c.operatorKey).Execute(c.client)
	if err != nil {
		return ledger.TokenResult{}, MapError(err, "create token")
	}
	receipt, err := resp.GetReceipt(c.client)
	if err != nil {
		return ledger.TokenResult{}, MapError(err, "create token")
	}
	if receipt.TokenID == nil {
		return ledger.TokenResult{}, dErrors.New(dErrors.CodeSubmissionFailed, "create token: receipt has no token id")
	}
	return ledger.TokenResult{TokenID: receipt.TokenID.String(), TransactionID: resp.TransactionID.String()}, nil
}

func (c *Client) MintNFT(ctx context.Context, tokenID string, metadata []byte) (ledger.MintResult, error) {
	if err := ctx.Err(); err != nil {
		return ledger.MintResult{}, err
	}
	tid, err := hsdk.TokenIDFromString(tokenID)
	if err != nil {
		return ledger.MintResult{}, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid token id")
	}
	tx, err := hsdk.NewTokenMintTransaction().
		SetTokenID(tid).
		SetMetadata(metadata).
		FreezeWith(c.client)
	if err != nil {
		return ledger.MintResult{}, MapError(err, "mint token")
	}
	resp, err := tx.Sign(c.operatorKey).Execute(c.client)
	if err != nil {
		return ledger.MintResult{}, MapError(err, "mint token")
	}
	receipt, err := resp.GetReceipt(c.client)
	if err != nil {
		return ledger.MintResult{}, MapError(err, "mint token")
	}
	return ledger.MintResult{Serials: receipt.SerialNumbers, TransactionID: resp.TransactionID.String()}, nil
}

func (c *Client) AssociateToken(ctx context.Context, account domain.AccountID, privateKey, tokenID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if account == c.OperatorID() {
		// the treasury is implicitly associated
		return nil
	}
	aid, err := accountID(account)
	if err != nil {
		return err
	}
	tid, err := hsdk.TokenIDFromString(tokenID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid token id")
	}
	key, err := hsdk.PrivateKeyFromString(privateKey)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid account key")
	}
	tx, err := hsdk.NewTokenAssociateTransaction().
		SetAccountID(aid).
		SetTokenIDs(tid).
		FreezeWith(c.client)
	if err != nil {
		return MapError(err, "associate token")
	}
	resp, err := tx.Sign(key).Execute(c.client)
	if err == nil {
		_, err = resp.GetReceipt(c.client)
	}
	if err != nil {
		if IsAlreadyAssociated(err) {
			c.logger.InfoContext(ctx, "token already associated", "account_id", account, "token_id", tokenID)
			return nil
		}
		return MapError(err, "associate token")
	}
	return nil
}

func (c *Client) CreateTopic(ctx context.Context, memo string, withSubmitKey bool) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	tx := hsdk.NewTopicCreateTransaction().
		SetTopicMemo(memo).
		SetAdminKey(c.operatorKey.PublicKey())
	if withSubmitKey {
		tx = tx.SetSubmitKey(c.operatorKey.PublicKey())
	}
	resp, err := tx.Execute(c.client)
	if err != nil {
		return "", MapError(err, "create topic")
	}
	receipt, err := resp.GetReceipt(c.client)
	if err != nil {
		return "", MapError(err, "create topic")
	}
	if receipt.TopicID == nil {
		return "", dErrors.New(dErrors.CodeSubmissionFailed, "create topic: receipt has no topic id")
	}
	return receipt.TopicID.String(), nil
}

func (c *Client) SubmitMessage(ctx context.Context, topicID string, message []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	tid, err := hsdk.TopicIDFromString(topicID)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid topic id")
	}
	resp, err := hsdk.NewTopicMessageSubmitTransaction().
		SetTopicID(tid).
		SetMessage(message).
		Execute(c.client)
	if err != nil {
		return "", MapError(err, "submit message")
	}
	if _, err := resp.GetReceipt(c.client); err != nil {
		return "", MapError(err, "submit message")
	}
	return resp.TransactionID.String(), nil
}

// FreezeTopicMessage also signs with the operator key so topics created with
// the operator submit key accept the message.
func (c *Client) FreezeTopicMessage(ctx context.Context, topicID string, payer domain.AccountID, message []byte) (ledger.FrozenTransaction, error) {
	if err := ctx.Err(); err != nil {
		return ledger.FrozenTransaction{}, err
	}
	tid, err := hsdk.TopicIDFromString(topicID)
	if err != nil {
		return ledger.FrozenTransaction{}, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid topic id")
	}
	payerID, err := accountID(payer)
	if err != nil {
		return ledger.FrozenTransaction{}, err
	}
	txID := hsdk.TransactionIDGenerate(payerID)
	tx, err := hsdk.NewTopicMessageSubmitTransaction().
		SetTopicID(tid).
		SetMessage(message).
		SetTransactionID(txID).
		FreezeWith(c.client)
	if err != nil {
		return ledger.FrozenTransaction{}, MapError(err, "freeze topic message")
	}
	raw, err := tx.Sign(c.operatorKey).ToBytes()
	if err != nil {
		return ledger.FrozenTransaction{}, dErrors.Wrap(err, dErrors.CodeInternal, "serialize topic message")
	}
	return ledger.FrozenTransaction{Bytes: raw, TransactionID: txID.String()}, nil
}

func (c *Client) TransactionRecord(ctx context.Context, transactionID string) (ledger.Record, error) {
	if err := ctx.Err(); err != nil {
		return ledger.Record{}, err
	}
	id, err := hsdk.TransactionIdFromString(transactionID)
	if err != nil {
		return ledger.Record{}, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid transaction id")
	}
	rec, err := hsdk.NewTransactionRecordQuery().
		SetTransactionID(id).
		Execute(c.client)
	if err != nil {
		return ledger.Record{}, MapError(err, "transaction record")
	}
	return ledger.Record{
		TransactionID:      rec.TransactionID.String(),
		Memo:               rec.TransactionMemo,
		Status:             rec.Receipt.Status.String(),
		ConsensusTimestamp: rec.ConsensusTimestamp.UTC(),
	}, nil
}

func accountID(a domain.AccountID) (hsdk.AccountID, error) {
	id, err := hsdk.AccountIDFromString(a.String())
	if err != nil {
		return hsdk.AccountID{}, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid account id")
	}
	return id, nil
}
