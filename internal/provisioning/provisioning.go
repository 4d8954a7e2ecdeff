// Package provisioning creates and funds the demo supply chain accounts and
// keeps their keys available to the server for token association.
package provisioning

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"truetrace/internal/envelope"
	"truetrace/internal/ledger"
	"truetrace/pkg/domain"
	dErrors "truetrace/pkg/domain-errors"
)

const (
	// FundingTinybar is 10 hbar.
	FundingTinybar int64 = 10 * 100_000_000
	// MaxAutoAssociations lets the account receive NFTs without an explicit
	// association.
	MaxAutoAssociations int32 = 10
)

// User is a named participant to provision.
type User struct {
	Name string
	Role domain.Role
}

// DefaultUsers are the demo participants downstream of the manufacturer.
var DefaultUsers = []User{
	{Name: "Chukwudi", Role: domain.RoleWholesaler},
	{Name: "Esther", Role: domain.RoleRetailer},
	{Name: "Simi", Role: domain.RoleConsumer},
}

// Account is one entry of the accounts file.
type Account struct {
	AccountID  domain.AccountID `json:"accountId"`
	PrivateKey string           `json:"privateKey"`
	PublicKey  string           `json:"publicKey"`
	Role       domain.Role      `json:"role"`
}

// Ledger is the subset of the network port provisioning needs.
type Ledger interface {
	OperatorID() domain.AccountID
	CreateAccount(ctx context.Context, spec ledger.AccountSpec) (ledger.AccountResult, error)
	TransferHbar(ctx context.Context, from, to domain.AccountID, tinybars int64) (string, error)
}

// Events resolves the event topic and submits operator paid events to it.
type Events interface {
	Current(ctx context.Context) (string, error)
	SubmitOperator(ctx context.Context, key string, payload []byte) (ledger.Receipt, error)
}

type Provisioner struct {
	ledger Ledger
	events Events
	logger *slog.Logger
	now    func() time.Time
}

func New(l Ledger, events Events, logger *slog.Logger) (*Provisioner, error) {
	if l == nil {
		return nil, errors.New("ledger is required")
	}
	if events == nil {
		return nil, errors.New("event submitter is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Provisioner{ledger: l, events: events, logger: logger, now: time.Now}, nil
}

// CreateAccounts creates, funds and announces one account per user, in
// order. Accounts created before a failure are returned with the error so the
// caller can still persist their keys.
func (p *Provisioner) CreateAccounts(ctx context.Context, users []User) ([]Account, error) {
	if _, err := p.events.Current(ctx); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "topic id is required")
	}
	operator := p.ledger.OperatorID()
	accounts := make([]Account, 0, len(users))
	for _, u := range users {
		acct, err := p.createAccount(ctx, operator, u)
		if err != nil {
			return accounts, fmt.Errorf("provision %s: %w", u.Name, err)
		}
		accounts = append(accounts, acct)
	}
	return accounts, nil
}

func (p *Provisioner) createAccount(ctx context.Context, operator domain.AccountID, u User) (Account, error) {
	created, err := p.ledger.CreateAccount(ctx, ledger.AccountSpec{
		InitialBalanceTinybar: 0,
		MaxAutoAssociations:   MaxAutoAssociations,
	})
	if err != nil {
		return Account{}, err
	}
	acct := Account{
		AccountID:  created.AccountID,
		PrivateKey: created.PrivateKey,
		PublicKey:  created.PublicKey,
		Role:       u.Role,
	}

	if _, err := p.ledger.TransferHbar(ctx, operator, created.AccountID, FundingTinybar); err != nil {
		return acct, err
	}

	eventType := envelope.AccountCreatedEventType(u.Name, u.Role)
	payload, err := envelope.EncodeAccountEvent(envelope.AccountEvent{
		EventType: eventType,
		AccountID: created.AccountID,
		Role:      u.Role,
		Timestamp: p.now().UTC().Truncate(time.Millisecond),
	})
	if err != nil {
		return acct, err
	}
	receipt, err := p.events.SubmitOperator(ctx, created.AccountID.String(), payload)
	if err != nil {
		return acct, err
	}
	p.logger.InfoContext(ctx, "logged event",
		"event_type", eventType,
		"account_id", created.AccountID,
		"topic_id", receipt.TopicID,
	)
	return acct, nil
}

// WriteAccounts writes accounts as indented JSON.
func WriteAccounts(w io.Writer, accounts []Account) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(accounts); err != nil {
		return fmt.Errorf("encode accounts: %w", err)
	}
	return nil
}

// ReadAccounts parses an accounts file.
func ReadAccounts(r io.Reader) ([]Account, error) {
	var accounts []Account
	if err := json.NewDecoder(r).Decode(&accounts); err != nil {
		return nil, fmt.Errorf("decode accounts: %w", err)
	}
	return accounts, nil
}

// RoleMapLine renders the ROLE_MAP assignment for the provisioned accounts,
// prefixed by existing entries such as the manufacturer.
func RoleMapLine(existing string, accounts []Account) string {
	entries := make([]string, 0, len(accounts)+1)
	if existing = strings.TrimSpace(existing); existing != "" {
		entries = append(entries, existing)
	}
	for _, a := range accounts {
		if a.Role == domain.RoleConsumer {
			continue
		}
		entries = append(entries, fmt.Sprintf("%s=%s", a.AccountID, a.Role))
	}
	return "ROLE_MAP=" + strings.Join(entries, ",")
}
