package wallet

import (
	"encoding/json"
	"slices"
	"time"

	"truetrace/pkg/domain"
)

// Capabilities requested from and granted to the wallet.
const (
	NamespaceHedera = "hedera"
	ChainTestnet    = "hedera:testnet"
	ChainMainnet    = "hedera:mainnet"

	MethodSignAndExecuteTransaction = "hedera_signAndExecuteTransaction"
	MethodSignTransaction           = "hedera_signTransaction"

	EventChainChanged    = "chainChanged"
	EventAccountsChanged = "accountsChanged"
)

// Namespace is one capability set of a pairing proposal or approval.
type Namespace struct {
	Chains   []string `json:"chains"`
	Methods  []string `json:"methods"`
	Events   []string `json:"events"`
	Accounts []string `json:"accounts,omitempty"`
}

// Namespaces keys capability sets by namespace name.
type Namespaces map[string]Namespace

// HederaNamespaces is the namespace set requested on connect and granted on
// approval. accounts is empty when requesting.
func HederaNamespaces(chain string, accounts []string) Namespaces {
	return Namespaces{
		NamespaceHedera: {
			Chains:   []string{chain},
			Methods:  []string{MethodSignAndExecuteTransaction, MethodSignTransaction},
			Events:   []string{EventChainChanged, EventAccountsChanged},
			Accounts: accounts,
		},
	}
}

// Session is an established pairing with an external wallet.
type Session struct {
	Topic          string             `json:"topic"`
	PairedAccounts []domain.AccountID `json:"pairedAccounts"`
	// Handle is the provider specific session object, kept opaque.
	Handle        json.RawMessage `json:"handle,omitempty"`
	Relay         string          `json:"relay"`
	EstablishedAt time.Time       `json:"establishedAt"`
}

// HasAccount reports whether accountID was paired in this session.
func (s Session) HasAccount(accountID domain.AccountID) bool {
	return slices.Contains(s.PairedAccounts, accountID)
}

// PrimaryAccount is the first paired account, used as the payer of wallet
// signed transactions.
func (s Session) PrimaryAccount() domain.AccountID {
	if len(s.PairedAccounts) == 0 {
		return ""
	}
	return s.PairedAccounts[0]
}

// ParseAccounts reduces CAIP-10 account strings to account ids, dropping
// malformed entries and duplicates.
func ParseAccounts(caip []string) []domain.AccountID {
	out := make([]domain.AccountID, 0, len(caip))
	for _, raw := range caip {
		id, err := domain.AccountFromCAIP(raw)
		if err != nil || slices.Contains(out, id) {
			continue
		}
		out = append(out, id)
	}
	return out
}

// ConnectResult is the outcome of one connect attempt: a pairing URI to show
// the user and, for synchronous pairings, the session itself.
type ConnectResult struct {
	URI          string   `json:"uri"`
	PairingTopic string   `json:"pairingTopic"`
	Session      *Session `json:"session,omitempty"`
}

// SignRequest asks the wallet to sign (and optionally execute) a transaction.
type SignRequest struct {
	Chain  string          `json:"chainId"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
}

// SignResponse is the wallet reply.
type SignResponse struct {
	TransactionID string          `json:"transactionId"`
	Result        json.RawMessage `json:"result,omitempty"`
}

// NotificationKind distinguishes wallet side notifications.
type NotificationKind string

const (
	NotificationProposal NotificationKind = "session_proposal"
	NotificationDeleted  NotificationKind = "session_delete"
)

// Notification is pushed by the provider when the wallet proposes or
// deletes a session.
type Notification struct {
	Kind         NotificationKind `json:"kind"`
	ProposalID   string           `json:"proposalId,omitempty"`
	PairingTopic string           `json:"pairingTopic,omitempty"`
	// Accounts are the CAIP-10 accounts offered in a proposal.
	Accounts []string `json:"accounts,omitempty"`
	// Topic is the session topic of a deletion.
	Topic string `json:"topic,omitempty"`
}

// TransactionParams is the params object of both sign methods: the frozen
// transaction bytes, hex encoded.
type TransactionParams struct {
	Transaction string `json:"transaction"`
}
