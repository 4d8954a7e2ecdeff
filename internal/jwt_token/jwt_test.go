package jwttoken

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"truetrace/pkg/domain"
	dErrors "truetrace/pkg/domain-errors"
)

var jwtService = NewJWTService(
	"test-signing-key",
	"test-issuer",
	"test-audience",
)
var accountID = domain.AccountID("0.0.6451900")
var expiresIn = time.Hour

func Test_GenerateAccessToken(t *testing.T) {
	token, err := jwtService.GenerateAccessToken(accountID, domain.RoleManufacturer, expiresIn)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	claims, err := jwtService.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "0.0.6451900", claims.AccountID)
	assert.Equal(t, "Manufacturer", claims.Role)
	assert.NotEmpty(t, claims.ID)
	assert.WithinDuration(t, time.Now().Add(expiresIn), claims.ExpiresAt.Time, time.Minute)
}

func Test_GenerateAccessToken_DefaultTTL(t *testing.T) {
	token, err := jwtService.GenerateAccessToken(accountID, domain.RoleConsumer, 0)
	require.NoError(t, err)
	claims, err := jwtService.ValidateToken(token)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(DefaultTokenTTL), claims.ExpiresAt.Time, time.Minute)
}

func Test_ValidateToken_InvalidToken(t *testing.T) {
	_, err := jwtService.ValidateToken("invalid-token-string")
	require.ErrorIs(t, err, dErrors.New(dErrors.CodeUnauthorized, "invalid token"))
}

func Test_ValidateToken_ExpiredToken(t *testing.T) {
	token, err := jwtService.GenerateAccessToken(accountID, domain.RoleRetailer, -time.Hour)
	require.NoError(t, err)

	_, err = jwtService.ValidateToken(token)
	require.ErrorIs(t, err, dErrors.New(dErrors.CodeUnauthorized, "token has expired"))
}

func Test_ValidateToken_WrongAudienceOrKey(t *testing.T) {
	other := NewJWTService("test-signing-key", "test-issuer", "other-audience")
	token, err := other.GenerateAccessToken(accountID, domain.RoleRetailer, expiresIn)
	require.NoError(t, err)
	_, err = jwtService.ValidateToken(token)
	require.ErrorIs(t, err, dErrors.New(dErrors.CodeUnauthorized, "invalid token"))

	forged := NewJWTService("another-key", "test-issuer", "test-audience")
	token, err = forged.GenerateAccessToken(accountID, domain.RoleManufacturer, expiresIn)
	require.NoError(t, err)
	_, err = jwtService.ValidateToken(token)
	require.ErrorIs(t, err, dErrors.New(dErrors.CodeUnauthorized, "invalid token"))
}

func Test_Adapter(t *testing.T) {
	token, err := jwtService.GenerateAccessToken(accountID, domain.RoleWholesaler, expiresIn)
	require.NoError(t, err)
	claims, err := NewJWTServiceAdapter(jwtService).ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "0.0.6451900", claims.AccountID)
	assert.Equal(t, "Wholesaler", claims.Role)
	assert.NotEmpty(t, claims.JTI)
}
