package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Record stores, session stores and
// ledger adapters return these (optionally wrapped) so services can translate
// them into domain errors.
//
//   - ErrNotFound: no record matches the lookup
//   - ErrConflict: a unique key (fingerprint, consumer subject) already exists
//   - ErrAlreadyUsed: a one time resource (pairing, proof) was consumed
//   - ErrInvalidState: entity in wrong state for requested operation
//   - ErrUnavailable: backend or collaborator temporarily unreachable
//
// For validation errors use pkg/domain-errors directly.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrAlreadyUsed  = errors.New("already used")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)
