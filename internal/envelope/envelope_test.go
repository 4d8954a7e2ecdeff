package envelope

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"truetrace/internal/identity"
	"truetrace/pkg/domain"
	dErrors "truetrace/pkg/domain-errors"
)

var sampleIdentity = identity.ProductIdentity{BatchID: "B1", ProductionDate: "2025-01-01", ExpiryDate: "2030-01-01"}

func TestBuild(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 30, 0, 123456789, time.FixedZone("WAT", 3600))
	extra := map[string]string{"topicId": "0.0.99"}

	e := Build(EventQRCodeRegistered, sampleIdentity, "0.0.6451900", now, extra)
	extra["topicId"] = "mutated"

	assert.Equal(t, EventQRCodeRegistered, e.EventType)
	assert.Equal(t, "B1", e.BatchID)
	assert.Equal(t, "", e.ProductID)
	assert.Equal(t, domain.AccountID("0.0.6451900"), e.AccountID)
	assert.Equal(t, time.Date(2025, 3, 1, 9, 30, 0, 123000000, time.UTC), e.Timestamp)
	assert.Equal(t, "0.0.99", e.Extra["topicId"], "extra must be copied")
	assert.Equal(t, sampleIdentity, e.Identity())
}

func TestEncode(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 30, 0, 0, time.UTC)

	t.Run("round trips the canonical field names", func(t *testing.T) {
		payload, err := Encode(Build(VerifiedEventType(domain.RoleConsumer, "B1"), sampleIdentity, "0.0.3", now, nil))
		require.NoError(t, err)

		var raw map[string]any
		require.NoError(t, json.Unmarshal(payload, &raw))
		assert.Equal(t, "Consumer Verified Product B1", raw["eventType"])
		assert.Equal(t, "2025-03-01T10:30:00Z", raw["timestamp"])
		assert.NotContains(t, raw, "extra")

		decoded, err := Decode(payload)
		require.NoError(t, err)
		assert.Equal(t, "0.0.3", decoded.AccountID.String())
	})

	t.Run("oversized event fails before any ledger call", func(t *testing.T) {
		big := sampleIdentity
		big.ProductID = strings.Repeat("x", TopicMessageBudget)
		_, err := Encode(Build(EventQRCodeRegistered, big, "0.0.1", now, nil))
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodePayloadTooLarge))
	})
}

func TestEncodeTokenMetadata(t *testing.T) {
	t.Run("fits the budget", func(t *testing.T) {
		payload, err := EncodeTokenMetadata(TokenMetadata{BatchID: "B1", ProductName: "Palm Oil", Eco: true})
		require.NoError(t, err)
		assert.JSONEq(t, `{"bId":"B1","pName":"Palm Oil","eco":true}`, string(payload))
	})

	t.Run("exactly at the budget is accepted", func(t *testing.T) {
		base, err := json.Marshal(TokenMetadata{BatchID: "", Eco: false})
		require.NoError(t, err)
		m := TokenMetadata{BatchID: strings.Repeat("b", TokenMetadataBudget-len(base))}
		payload, err := EncodeTokenMetadata(m)
		require.NoError(t, err)
		assert.Len(t, payload, TokenMetadataBudget)
	})

	t.Run("over the budget is PayloadTooLarge", func(t *testing.T) {
		_, err := EncodeTokenMetadata(TokenMetadata{BatchID: strings.Repeat("b", 60), ProductName: strings.Repeat("n", 40)})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodePayloadTooLarge))
		assert.Contains(t, err.Error(), "metadata too long")
	})
}

func TestEventTypes(t *testing.T) {
	assert.Equal(t, "Retailer Verified Product P9", VerifiedEventType(domain.RoleRetailer, "P9"))
	assert.Equal(t, "Account Created for Simi (Consumer)", AccountCreatedEventType("Simi", domain.RoleConsumer))
}
