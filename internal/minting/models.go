package minting

import (
	"strings"
	"time"

	"truetrace/internal/identity"
	"truetrace/pkg/domain"
	dErrors "truetrace/pkg/domain-errors"
)

// Kind is the supply chain level a token stands for.
type Kind string

const (
	KindBatch   Kind = "batch"
	KindCarton  Kind = "carton"
	KindProduct Kind = "product"
)

// MintedToken is the stored record of a created collection.
type MintedToken struct {
	TokenID       string
	Kind          Kind
	BatchID       string
	CartonID      string
	ProductID     string
	Metadata      []byte
	Serials       []int64
	AccountID     domain.AccountID
	TransactionID string
	MintedAt      time.Time
}

// BatchRequest mints the token for a production batch.
type BatchRequest struct {
	BatchID      string `json:"batchId"`
	ProductName  string `json:"productName"`
	EcoPackaging bool   `json:"ecoPackaging"`
}

func (r *BatchRequest) Validate() error {
	r.BatchID = strings.TrimSpace(r.BatchID)
	r.ProductName = strings.TrimSpace(r.ProductName)
	if r.BatchID == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "batchId is required")
	}
	if r.ProductName == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "productName is required")
	}
	return nil
}

// CartonRequest mints a carton token, optionally associating it with
// AccountID.
type CartonRequest struct {
	BatchID      string `json:"batchId"`
	CartonID     string `json:"cartonId"`
	EcoPackaging bool   `json:"ecoPackaging"`
	AccountID    string `json:"accountId,omitempty"`
}

func (r *CartonRequest) Validate() error {
	r.BatchID = strings.TrimSpace(r.BatchID)
	r.CartonID = strings.TrimSpace(r.CartonID)
	r.AccountID = strings.TrimSpace(r.AccountID)
	if r.BatchID == "" || r.CartonID == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "batchId and cartonId are required")
	}
	if r.AccountID != "" {
		if _, err := domain.ParseAccountID(r.AccountID); err != nil {
			return err
		}
	}
	return nil
}

// ProductRequest mints the token for a single product.
type ProductRequest struct {
	BatchID      string `json:"batchId"`
	CartonID     string `json:"cartonId"`
	ProductID    string `json:"productId"`
	ProductName  string `json:"productName,omitempty"`
	EcoPackaging bool   `json:"ecoPackaging"`
}

func (r *ProductRequest) Validate() error {
	r.BatchID = strings.TrimSpace(r.BatchID)
	r.CartonID = strings.TrimSpace(r.CartonID)
	r.ProductID = strings.TrimSpace(r.ProductID)
	r.ProductName = strings.TrimSpace(r.ProductName)
	if r.BatchID == "" || r.CartonID == "" || r.ProductID == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "batchId, cartonId and productId are required")
	}
	return nil
}

// Result is returned by every mint.
type Result struct {
	TokenID       string
	Serials       []int64
	TransactionID string
	TopicID       string
}

func identityOf(batchID, cartonID, productID string) identity.ProductIdentity {
	return identity.ProductIdentity{BatchID: batchID, CartonID: cartonID, ProductID: productID}
}
