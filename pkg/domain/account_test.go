package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "truetrace/pkg/domain-errors"
)

// TestParseAccountID_Invariants validates the parsing invariant:
// "account ids are three dot separated unsigned integers"
func TestParseAccountID_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseAccountID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects wrong shape", func(t *testing.T) {
		for _, in := range []string{"0.0", "0.0.1.2", "0..1", "a.b.c", "0.0.-1"} {
			_, err := ParseAccountID(in)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput), in)
		}
	})

	t.Run("accepts and trims", func(t *testing.T) {
		id, err := ParseAccountID(" 0.0.6451900 ")
		require.NoError(t, err)
		assert.Equal(t, AccountID("0.0.6451900"), id)
	})
}

func TestAccountFromCAIP(t *testing.T) {
	id, err := AccountFromCAIP("hedera:testnet:0.0.6451901")
	require.NoError(t, err)
	assert.Equal(t, AccountID("0.0.6451901"), id)
	assert.Equal(t, "hedera:testnet:0.0.6451901", id.CAIP("hedera:testnet"))

	id, err = AccountFromCAIP("0.0.7")
	require.NoError(t, err)
	assert.Equal(t, AccountID("0.0.7"), id)

	_, err = AccountFromCAIP("hedera:testnet:")
	require.Error(t, err)
}

func TestParseRole(t *testing.T) {
	for _, r := range AllRoles() {
		parsed, err := ParseRole(r.String())
		require.NoError(t, err)
		assert.Equal(t, r, parsed)
	}

	_, err := ParseRole("Distributor")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))

	_, err = ParseRole("")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))

	assert.True(t, RoleRetailer.In(RoleWholesaler, RoleRetailer))
	assert.False(t, RoleConsumer.In(RoleManufacturer))
}
