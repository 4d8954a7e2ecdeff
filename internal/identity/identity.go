// Package identity derives the fingerprint that makes a product registration
// unique. Everything here is pure; persistence lives in qrcode/store.
package identity

import (
	"encoding/hex"
	"strings"
	"time"

	"golang.org/x/crypto/blake2b"

	dErrors "truetrace/pkg/domain-errors"
)

// DateLayout is the calendar date form accepted for production and expiry dates.
const DateLayout = "2006-01-02"

// fieldSeparator joins fingerprint fields. Occurrences inside a field are escaped.
const fieldSeparator = ":"

// ProductIdentity names a batch, carton or product instance together with its
// production window.
type ProductIdentity struct {
	BatchID        string `json:"batchId"`
	CartonID       string `json:"cartonId"`
	ProductID      string `json:"productId"`
	ProductionDate string `json:"productionDate"`
	ExpiryDate     string `json:"expiryDate"`
}

// Normalize trims surrounding whitespace from every field.
func (p ProductIdentity) Normalize() ProductIdentity {
	return ProductIdentity{
		BatchID:        strings.TrimSpace(p.BatchID),
		CartonID:       strings.TrimSpace(p.CartonID),
		ProductID:      strings.TrimSpace(p.ProductID),
		ProductionDate: strings.TrimSpace(p.ProductionDate),
		ExpiryDate:     strings.TrimSpace(p.ExpiryDate),
	}
}

// Validate enforces: at least one identifier, both dates present and well
// formed, production not after expiry.
func (p ProductIdentity) Validate() error {
	if p.BatchID == "" && p.CartonID == "" && p.ProductID == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "at least one of batchId, cartonId, or productId is required")
	}
	if p.ProductionDate == "" || p.ExpiryDate == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "production and expiry dates are required")
	}
	produced, err := ParseDate(p.ProductionDate)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInvalidInput, "productionDate must be YYYY-MM-DD or RFC 3339")
	}
	expires, err := ParseDate(p.ExpiryDate)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInvalidInput, "expiryDate must be YYYY-MM-DD or RFC 3339")
	}
	if produced.After(expires) {
		return dErrors.New(dErrors.CodeInvalidInput, "productionDate must not be after expiryDate")
	}
	return nil
}

// ExpiresAt parses ExpiryDate.
func (p ProductIdentity) ExpiresAt() (time.Time, error) {
	return ParseDate(p.ExpiryDate)
}

// IsExpired reports whether now is past the expiry instant.
func (p ProductIdentity) IsExpired(now time.Time) (bool, error) {
	expires, err := p.ExpiresAt()
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInvalidInput, "expiryDate must be YYYY-MM-DD or RFC 3339")
	}
	return now.After(expires), nil
}

// ParseDate accepts a calendar date (UTC midnight) or an RFC 3339 timestamp.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.ParseInLocation(DateLayout, s, time.UTC); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// SubjectKind names the most specific identifier present.
type SubjectKind string

const (
	SubjectProduct SubjectKind = "product"
	SubjectCarton  SubjectKind = "carton"
	SubjectBatch   SubjectKind = "batch"
)

// Subject returns the most specific identifier: product, then carton, then batch.
func (p ProductIdentity) Subject() (SubjectKind, string) {
	switch {
	case p.ProductID != "":
		return SubjectProduct, p.ProductID
	case p.CartonID != "":
		return SubjectCarton, p.CartonID
	default:
		return SubjectBatch, p.BatchID
	}
}

// SubjectKey is the kind qualified subject ("product:P1"). The kind prefix
// keeps a product and a batch that share an id apart.
func (p ProductIdentity) SubjectKey() string {
	kind, id := p.Subject()
	return string(kind) + ":" + id
}

// Fingerprint joins the five fields in fixed order. Backslashes and
// separators inside a field are escaped so distinct tuples never collide.
// Fields without either character are emitted verbatim.
func Fingerprint(p ProductIdentity) string {
	fields := [...]string{p.BatchID, p.CartonID, p.ProductID, p.ProductionDate, p.ExpiryDate}
	var b strings.Builder
	for i, f := range fields {
		if i > 0 {
			b.WriteString(fieldSeparator)
		}
		b.WriteString(escapeField(f))
	}
	return b.String()
}

var fieldEscaper = strings.NewReplacer(`\`, `\\`, fieldSeparator, `\`+fieldSeparator)

func escapeField(f string) string {
	if !strings.ContainsAny(f, `\`+fieldSeparator) {
		return f
	}
	return fieldEscaper.Replace(f)
}

// Digest is the hex BLAKE2b-256 of a fingerprint, a fixed size key for
// message partitioning and indexes.
func Digest(fingerprint string) string {
	sum := blake2b.Sum256([]byte(fingerprint))
	return hex.EncodeToString(sum[:])
}
