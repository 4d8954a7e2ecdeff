// Package domainerrors carries the error taxonomy shared by services and the
// HTTP layer. Services return *Error values; transports map the Code to a
// status without inspecting messages.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code is a stable, machine readable error identifier.
type Code string

// Generic codes.
const (
	CodeInternal           Code = "internal_error"
	CodeBadRequest         Code = "bad_request"
	CodeValidation         Code = "validation_error"
	CodeInvalidInput       Code = "invalid_input"
	CodeInvariantViolation Code = "invariant_violation"
	CodeUnauthorized       Code = "unauthorized"
	CodeForbidden          Code = "forbidden"
	CodeNotFound           Code = "not_found"
	CodeConflict           Code = "conflict"
	CodeTimeout            Code = "timeout"
)

// Provenance workflow codes.
const (
	CodeNoWalletConnected         Code = "no_wallet_connected"
	CodeDuplicateRegistration     Code = "duplicate_registration"
	CodeProductExpired            Code = "product_expired"
	CodeAlreadyVerifiedByConsumer Code = "already_verified_by_consumer"
	CodePayloadTooLarge           Code = "payload_too_large"
	CodeSubmissionFailed          Code = "submission_failed"
	CodeAllRelaysExhausted        Code = "all_relays_exhausted"
	CodePairingTimeout            Code = "pairing_timeout"
	CodeCollaboratorUnavailable   Code = "collaborator_unavailable"
)

// Error is a domain error with a code, a client safe message and an optional cause.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error with the same code and message, so tests can use
// errors.Is against a freshly constructed value.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// New creates a domain error.
func New(code Code, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, Err: err}
}

// As returns the outermost *Error in the chain.
func As(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// CodeOf returns the code of the outermost domain error, or CodeInternal.
func CodeOf(err error) Code {
	if de, ok := As(err); ok {
		return de.Code
	}
	return CodeInternal
}

// HasCode reports whether any domain error in the chain carries code.
func HasCode(err error, code Code) bool {
	for err != nil {
		var de *Error
		if !errors.As(err, &de) {
			return false
		}
		if de.Code == code {
			return true
		}
		err = de.Err
	}
	return false
}

// Is reports whether the outermost domain error carries code.
func Is(err error, code Code) bool {
	return CodeOf(err) == code
}
