package handler

import (
	"time"

	"truetrace/internal/identity"
	"truetrace/internal/qrcode/models"
)

// productRequest is the body of POST /api/register and POST /api/verify.
// Validation happens in the service so that role and session checks keep
// their order.
type productRequest struct {
	BatchID        string `json:"batchId"`
	CartonID       string `json:"cartonId"`
	ProductID      string `json:"productId"`
	ProductionDate string `json:"productionDate"`
	ExpiryDate     string `json:"expiryDate"`
}

func (r productRequest) identity() identity.ProductIdentity {
	return identity.ProductIdentity{
		BatchID:        r.BatchID,
		CartonID:       r.CartonID,
		ProductID:      r.ProductID,
		ProductionDate: r.ProductionDate,
		ExpiryDate:     r.ExpiryDate,
	}
}

type registerResponse struct {
	Message       string    `json:"message"`
	TransactionID string    `json:"transactionId"`
	TopicID       string    `json:"topicId"`
	Fingerprint   string    `json:"fingerprint"`
	RegisteredAt  time.Time `json:"registeredAt"`
}

func toRegisterResponse(res *models.RegistrationResult) registerResponse {
	return registerResponse{
		Message:       res.Message,
		TransactionID: res.TransactionID,
		TopicID:       res.TopicID,
		Fingerprint:   res.Fingerprint,
		RegisteredAt:  res.RegisteredAt,
	}
}

type verifyResponse struct {
	EventType     string    `json:"eventType"`
	TransactionID string    `json:"transactionId"`
	TopicID       string    `json:"topicId"`
	VerifiedAt    time.Time `json:"verifiedAt"`
}

func toVerifyResponse(res *models.VerificationResult) verifyResponse {
	return verifyResponse{
		EventType:     res.EventType,
		TransactionID: res.TransactionID,
		TopicID:       res.TopicID,
		VerifiedAt:    res.VerifiedAt,
	}
}

type verificationEntry struct {
	EventType     string    `json:"eventType"`
	Role          string    `json:"role"`
	AccountID     string    `json:"accountId"`
	TransactionID string    `json:"transactionId"`
	VerifiedAt    time.Time `json:"verifiedAt"`
}

type historyResponse struct {
	Subject       string              `json:"subject"`
	Verifications []verificationEntry `json:"verifications"`
}

func toHistoryResponse(subject string, records []*models.VerificationRecord) historyResponse {
	entries := make([]verificationEntry, 0, len(records))
	for _, rec := range records {
		entries = append(entries, verificationEntry{
			EventType:     rec.EventType,
			Role:          rec.Role.String(),
			AccountID:     rec.AccountID.String(),
			TransactionID: rec.TransactionID,
			VerifiedAt:    rec.VerifiedAt,
		})
	}
	return historyResponse{Subject: subject, Verifications: entries}
}
