package domain

import (
	"strconv"
	"strings"

	dErrors "truetrace/pkg/domain-errors"
)

// AccountID is a ledger account in shard.realm.num form, e.g. "0.0.6451900".
type AccountID string

// ParseAccountID validates the shard.realm.num form.
func ParseAccountID(s string) (AccountID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "account id cannot be empty")
	}
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return "", dErrors.New(dErrors.CodeInvalidInput, "account id must be shard.realm.num")
	}
	for _, p := range parts {
		if p == "" {
			return "", dErrors.New(dErrors.CodeInvalidInput, "account id must be shard.realm.num")
		}
		if _, err := strconv.ParseUint(p, 10, 64); err != nil {
			return "", dErrors.New(dErrors.CodeInvalidInput, "account id must be numeric")
		}
	}
	return AccountID(s), nil
}

// AccountFromCAIP reduces a chain qualified account ("hedera:testnet:0.0.5")
// to its trailing account segment and validates it.
func AccountFromCAIP(s string) (AccountID, error) {
	if idx := strings.LastIndex(s, ":"); idx != -1 {
		s = s[idx+1:]
	}
	return ParseAccountID(s)
}

// CAIP returns the chain qualified form of the account for chain ("hedera:testnet").
func (a AccountID) CAIP(chain string) string {
	return chain + ":" + string(a)
}

func (a AccountID) String() string {
	return string(a)
}

// IsNil returns true if the account is unset.
func (a AccountID) IsNil() bool {
	return a == ""
}
