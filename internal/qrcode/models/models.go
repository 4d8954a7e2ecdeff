package models

import (
	"time"

	"github.com/google/uuid"

	"truetrace/internal/identity"
	"truetrace/pkg/domain"
)

// RegistrationRecord is written once per identity fingerprint.
type RegistrationRecord struct {
	Fingerprint    string
	Digest         string
	BatchID        string
	CartonID       string
	ProductID      string
	ProductionDate string
	ExpiryDate     string
	AccountID      domain.AccountID
	TransactionID  string
	TopicID        string
	RegisteredAt   time.Time
}

// Identity returns the registered product identity.
func (r RegistrationRecord) Identity() identity.ProductIdentity {
	return identity.ProductIdentity{
		BatchID:        r.BatchID,
		CartonID:       r.CartonID,
		ProductID:      r.ProductID,
		ProductionDate: r.ProductionDate,
		ExpiryDate:     r.ExpiryDate,
	}
}

// VerificationRecord is one successful verification. For Consumer
// verifications SubjectKey is unique.
type VerificationRecord struct {
	ID             uuid.UUID
	BatchID        string
	CartonID       string
	ProductID      string
	ProductionDate string
	ExpiryDate     string
	SubjectKey     string
	EventType      string
	Role           domain.Role
	AccountID      domain.AccountID
	TransactionID  string
	TopicID        string
	VerifiedAt     time.Time
}

// Identity returns the verified product identity.
func (r VerificationRecord) Identity() identity.ProductIdentity {
	return identity.ProductIdentity{
		BatchID:        r.BatchID,
		CartonID:       r.CartonID,
		ProductID:      r.ProductID,
		ProductionDate: r.ProductionDate,
		ExpiryDate:     r.ExpiryDate,
	}
}

// RegistrationResult is returned by a successful registration.
type RegistrationResult struct {
	Message       string
	TransactionID string
	TopicID       string
	Fingerprint   string
	RegisteredAt  time.Time
}

// VerificationResult is returned by a successful verification.
type VerificationResult struct {
	EventType     string
	TransactionID string
	TopicID       string
	VerifiedAt    time.Time
}
