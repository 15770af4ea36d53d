package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskhub/internal/domain/user"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func testUser() *user.User {
	return &user.User{ID: 42, Email: "a@example.com", Role: user.RoleMember}
}

func TestTokenRoundTrip(t *testing.T) {
	token, err := IssueToken(testSecret, time.Hour, testUser())
	require.NoError(t, err)

	claims, err := ParseToken(testSecret, token)
	require.NoError(t, err)

	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	assert.Equal(t, string(user.RoleMember), claims.Role)
}

func TestParseTokenWrongSecret(t *testing.T) {
	token, err := IssueToken(testSecret, time.Hour, testUser())
	require.NoError(t, err)

	_, err = ParseToken([]byte("another-secret-another-secret-xx"), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseTokenExpired(t *testing.T) {
	token, err := IssueToken(testSecret, -time.Minute, testUser())
	require.NoError(t, err)

	_, err = ParseToken(testSecret, token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseTokenGarbage(t *testing.T) {
	_, err := ParseToken(testSecret, "not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
