// Package envelope assembles the events written to the consensus topic and
// the compact metadata attached to minted tokens, and enforces their byte
// budgets before anything reaches the ledger.
package envelope

import (
	"encoding/json"
	"fmt"
	"time"

	"truetrace/internal/identity"
	"truetrace/pkg/domain"
	dErrors "truetrace/pkg/domain-errors"
)

// Byte budgets for ledger bound payloads.
const (
	// TokenMetadataBudget is the on-chain NFT metadata ceiling.
	TokenMetadataBudget = 100
	// TopicMessageBudget is the largest topic message sent in one chunk.
	TopicMessageBudget = 1024
)

// Event types.
const (
	EventQRCodeRegistered = "QRCodeRegistered"
	EventBatchMinted      = "BatchMinted"
	EventCartonMinted     = "CartonMinted"
	EventProductMinted    = "ProductMinted"
)

// VerifiedEventType renders "<Role> Verified Product <subject>".
func VerifiedEventType(role domain.Role, subject string) string {
	return fmt.Sprintf("%s Verified Product %s", role, subject)
}

// AccountCreatedEventType renders "Account Created for <name> (<role>)".
func AccountCreatedEventType(name string, role domain.Role) string {
	return fmt.Sprintf("Account Created for %s (%s)", name, role)
}

// Event is the canonical, write-once record submitted to the topic.
type Event struct {
	EventType      string            `json:"eventType"`
	BatchID        string            `json:"batchId"`
	CartonID       string            `json:"cartonId"`
	ProductID      string            `json:"productId"`
	ProductionDate string            `json:"productionDate"`
	ExpiryDate     string            `json:"expiryDate"`
	AccountID      domain.AccountID  `json:"accountId"`
	Timestamp      time.Time         `json:"timestamp"`
	Extra          map[string]string `json:"extra,omitempty"`
}

// Build assembles an event. now is captured once by the caller (request time)
// and stored in UTC with millisecond precision.
func Build(eventType string, id identity.ProductIdentity, accountID domain.AccountID, now time.Time, extra map[string]string) Event {
	var copied map[string]string
	if len(extra) > 0 {
		copied = make(map[string]string, len(extra))
		for k, v := range extra {
			copied[k] = v
		}
	}
	return Event{
		EventType:      eventType,
		BatchID:        id.BatchID,
		CartonID:       id.CartonID,
		ProductID:      id.ProductID,
		ProductionDate: id.ProductionDate,
		ExpiryDate:     id.ExpiryDate,
		AccountID:      accountID,
		Timestamp:      now.UTC().Truncate(time.Millisecond),
		Extra:          copied,
	}
}

// Identity returns the identity fields of the event.
func (e Event) Identity() identity.ProductIdentity {
	return identity.ProductIdentity{
		BatchID:        e.BatchID,
		CartonID:       e.CartonID,
		ProductID:      e.ProductID,
		ProductionDate: e.ProductionDate,
		ExpiryDate:     e.ExpiryDate,
	}
}

// Encode serialises the event for the topic.
func Encode(e Event) ([]byte, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to encode event")
	}
	if err := checkBudget(payload, TopicMessageBudget, "event"); err != nil {
		return nil, err
	}
	return payload, nil
}

// Decode parses a topic message.
func Decode(payload []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(payload, &e); err != nil {
		return Event{}, dErrors.Wrap(err, dErrors.CodeInvalidInput, "malformed event")
	}
	return e, nil
}

// TokenMetadata is the compact descriptor stored on a minted NFT.
type TokenMetadata struct {
	BatchID     string `json:"bId"`
	CartonID    string `json:"cId,omitempty"`
	ProductID   string `json:"pId,omitempty"`
	ProductName string `json:"pName,omitempty"`
	Eco         bool   `json:"eco"`
}

// EncodeTokenMetadata serialises token metadata within TokenMetadataBudget.
func EncodeTokenMetadata(m TokenMetadata) ([]byte, error) {
	payload, err := json.Marshal(m)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to encode token metadata")
	}
	if err := checkBudget(payload, TokenMetadataBudget, "metadata"); err != nil {
		return nil, err
	}
	return payload, nil
}

// AccountEvent is logged when provisioning creates a ledger account.
type AccountEvent struct {
	EventType string           `json:"eventType"`
	AccountID domain.AccountID `json:"accountId"`
	Role      domain.Role      `json:"role"`
	Timestamp time.Time        `json:"timestamp"`
}

// EncodeAccountEvent serialises an account event for the topic.
func EncodeAccountEvent(e AccountEvent) ([]byte, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to encode account event")
	}
	if err := checkBudget(payload, TopicMessageBudget, "event"); err != nil {
		return nil, err
	}
	return payload, nil
}

func checkBudget(payload []byte, budget int, what string) error {
	if len(payload) > budget {
		return dErrors.New(dErrors.CodePayloadTooLarge,
			fmt.Sprintf("%s too long: %d bytes (limit %d)", what, len(payload), budget))
	}
	return nil
}
