package tokens

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIssuer() *Issuer {
	return &Issuer{
		AccessSecret:  []byte("test-jwt-secret"),
		RefreshSecret: []byte("test-refresh-secret"),
	}
}

func TestIssuer_NewAccess_SetsExpectedClaims(t *testing.T) {
	t.Parallel()

	iss := newTestIssuer()
	now := time.Now().UTC()

	token, exp, err := iss.NewAccess("42", "admin", now)
	require.NoError(t, err)
	assert.WithinDuration(t, now.Add(DefaultAccessTTL), exp, time.Second)

	claims, err := AccessClaimsFromToken(token, iss.AccessSecret)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "42", claims.Subject)
	assert.WithinDuration(t, exp, claims.ExpiresAt.Time, time.Second)
}

func TestIssuer_NewPair(t *testing.T) {
	t.Parallel()

	iss := newTestIssuer()
	pair, err := iss.NewPair("7", "user", time.Now())
	require.NoError(t, err)

	claims, err := RefreshClaimsFromToken(pair.RefreshToken, iss.RefreshSecret)
	require.NoError(t, err)
	assert.Equal(t, "7", claims.Subject)
	assert.Equal(t, pair.RefreshJTI, claims.ID)

	_, err = AccessClaimsFromToken(pair.RefreshToken, iss.AccessSecret)
	assert.ErrorIs(t, err, ErrInvalidToken, "refresh token is not an access token")
}

func TestAccessClaimsFromToken_Rejects(t *testing.T) {
	t.Parallel()

	iss := newTestIssuer()

	expired, _, err := iss.NewAccess("1", "user", time.Now().Add(-time.Hour))
	require.NoError(t, err)
	_, err = AccessClaimsFromToken(expired, iss.AccessSecret)
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	good, _, err := iss.NewAccess("1", "user", time.Now())
	require.NoError(t, err)
	_, err = AccessClaimsFromToken(good, []byte("other"))
	assert.ErrorIs(t, err, ErrInvalidToken)

	none := jwt.NewWithClaims(jwt.SigningMethodHS512, AccessClaims{Role: "admin"})
	signed, err := none.SignedString(iss.AccessSecret)
	require.NoError(t, err)
	_, err = AccessClaimsFromToken(signed, iss.AccessSecret)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = AccessClaimsFromToken("garbage", iss.AccessSecret)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSha256Hex(t *testing.T) {
	t.Parallel()

	assert.Len(t, Sha256Hex("abc"), 64)
	assert.Equal(t, Sha256Hex("abc"), Sha256Hex("abc"))
	assert.NotEqual(t, Sha256Hex("abc"), Sha256Hex("abd"))
}
