package auth

import (
	"testing"
	"time"

	"github.com/caretech-io/telesession/pkg/domain/session"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestValidate_AcceptsSignedIdentityToken(t *testing.T) {
	validator := NewHMACTokenValidator(testSecret)
	token := signToken(t, testSecret, identityClaims{
		IdentityClass: string(session.ClassParticipant),
		IdentityUUID:  "p1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	identity, err := validator.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, session.ClassParticipant, identity.Class)
	assert.Equal(t, "p1", identity.UUID)
}

func TestValidate_RejectsWrongSecret(t *testing.T) {
	validator := NewHMACTokenValidator(testSecret)
	token := signToken(t, "other-secret", identityClaims{
		IdentityClass: string(session.ClassUser),
		IdentityUUID:  "u1",
	})

	_, err := validator.Validate(token)
	assert.Error(t, err)
}

func TestValidate_RejectsExpiredToken(t *testing.T) {
	validator := NewHMACTokenValidator(testSecret)
	token := signToken(t, testSecret, identityClaims{
		IdentityClass: string(session.ClassUser),
		IdentityUUID:  "u1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})

	_, err := validator.Validate(token)
	assert.Error(t, err)
}

func TestValidate_RejectsUnknownIdentityClass(t *testing.T) {
	validator := NewHMACTokenValidator(testSecret)
	token := signToken(t, testSecret, identityClaims{
		IdentityClass: "admin",
		IdentityUUID:  "u1",
	})

	_, err := validator.Validate(token)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "identity class")
}

func TestValidate_RejectsMissingUUID(t *testing.T) {
	validator := NewHMACTokenValidator(testSecret)
	token := signToken(t, testSecret, identityClaims{
		IdentityClass: string(session.ClassDevice),
	})

	_, err := validator.Validate(token)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "identity uuid")
}

func TestValidate_RejectsGarbage(t *testing.T) {
	validator := NewHMACTokenValidator(testSecret)

	_, err := validator.Validate("not.a.token")
	assert.Error(t, err)
}
