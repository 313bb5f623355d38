package jwthelper

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var key = []byte("test-signing-key")

func TestGenerateAndParseToken(t *testing.T) {
	token, err := GenerateToken(key, 12, "cashier", "go-test", time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken(key, token)
	require.NoError(t, err)
	assert.Equal(t, uint(12), claims.UserID)
	assert.Equal(t, "cashier", claims.Role)
	assert.Equal(t, "12", claims.Subject)
	assert.NotEmpty(t, claims.ID)
}

func TestGenerateToken_UniqueIDs(t *testing.T) {
	first, err := GenerateToken(key, 1, "waiter", "", time.Hour)
	require.NoError(t, err)
	second, err := GenerateToken(key, 1, "waiter", "", time.Hour)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestParseToken_Rejects(t *testing.T) {
	expired, err := GenerateToken(key, 1, "waiter", "", -time.Minute)
	require.NoError(t, err)

	otherKey, err := GenerateToken([]byte("another-key"), 1, "waiter", "", time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "expired", token: expired},
		{name: "wrong key", token: otherKey},
		{name: "garbage", token: "not.a.token"},
		{name: "empty", token: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseToken(key, tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
