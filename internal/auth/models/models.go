package models

import "truetrace/pkg/domain"

// ConnectResult carries the pairing URI shown to the user.
type ConnectResult struct {
	PairingURI string
}

// TokenResult is issued for an account present in the wallet session.
type TokenResult struct {
	Token     string
	Role      domain.Role
	AccountID domain.AccountID
}
