package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ibrahem-ghaybour/storefront/models"
)

var testSecret = []byte("unit-test-secret")

func TestIssueAndParseToken(t *testing.T) {
	token, err := IssueToken(testSecret, "665f1c0ffee0ddba11ad0001", models.RoleCustomer, time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, "665f1c0ffee0ddba11ad0001", claims.UserID)
	assert.Equal(t, models.RoleCustomer, claims.Role)
	assert.True(t, claims.ExpiresAt.After(time.Now()))
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	token, err := IssueToken(testSecret, "665f1c0ffee0ddba11ad0001", models.RoleAdmin, time.Hour)
	require.NoError(t, err)

	_, err = ParseToken([]byte("other-secret"), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseTokenRejectsExpired(t *testing.T) {
	token, err := IssueToken(testSecret, "665f1c0ffee0ddba11ad0001", models.RoleCustomer, -time.Minute)
	require.NoError(t, err)

	_, err = ParseToken(testSecret, token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	_, err := ParseToken(testSecret, "not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
