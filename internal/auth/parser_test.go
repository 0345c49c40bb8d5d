package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParse(t *testing.T) {
	p := NewParser("secret")

	token, err := p.Issue(42, time.Hour)
	require.NoError(t, err)

	id, err := p.ProfileID(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
}

func TestProfileIDRejectsBadTokens(t *testing.T) {
	p := NewParser("secret")

	expired, err := p.Issue(1, -time.Minute)
	require.NoError(t, err)
	foreign, err := NewParser("other").Issue(1, time.Hour)
	require.NoError(t, err)
	nonNumeric, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "harry"}).SignedString([]byte("secret"))
	require.NoError(t, err)
	wrongAlg, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.RegisteredClaims{Subject: "1"}).SignedString([]byte("secret"))
	require.NoError(t, err)

	for name, token := range map[string]string{
		"garbage":     "not-a-jwt",
		"expired":     expired,
		"foreign key": foreign,
		"non numeric": nonNumeric,
		"wrong alg":   wrongAlg,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := p.ProfileID(token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestDisabledParser(t *testing.T) {
	p := NewParser("")

	assert.False(t, p.Enabled())
	_, err := p.ProfileID("anything")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
