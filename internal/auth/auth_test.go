package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTM() *TokenManager {
	return NewTokenManager("access-secret", "refresh-secret", "maverick-bank", 15*time.Minute, time.Hour)
}

func TestGeneratePair_RoundTrip(t *testing.T) {
	tm := newTM()
	pair, err := tm.GeneratePair(7, 42, "Customer")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), pair.AccessExp, 5*time.Second)

	c, err := tm.ParseAccess(pair.Access)
	require.NoError(t, err)
	assert.Equal(t, int64(7), c.UserID)
	assert.Equal(t, int64(42), c.SubjectID)
	assert.Equal(t, "Customer", c.Role)
	assert.Equal(t, "maverick-bank", c.Issuer)

	r, err := tm.ParseRefresh(pair.Refresh)
	require.NoError(t, err)
	assert.Equal(t, "refresh", r.Type)
}

func TestParse_RejectsWrongTokenKind(t *testing.T) {
	tm := newTM()
	pair, err := tm.GeneratePair(1, 1, "Admin")
	require.NoError(t, err)

	_, err = tm.ParseAccess(pair.Refresh)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = tm.ParseRefresh(pair.Access)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParse_RejectsExpired(t *testing.T) {
	tm := newTM()
	tm.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	pair, err := tm.GeneratePair(1, 1, "Admin")
	require.NoError(t, err)

	tm.now = time.Now
	_, err = tm.ParseAccess(pair.Access)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParse_RejectsOtherIssuerAndAlg(t *testing.T) {
	other := NewTokenManager("access-secret", "refresh-secret", "someone-else", time.Minute, time.Minute)
	pair, err := other.GeneratePair(1, 1, "Admin")
	require.NoError(t, err)
	_, err = newTM().ParseAccess(pair.Access)
	assert.ErrorIs(t, err, ErrInvalidToken)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{Type: "access"}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = newTM().ParseAccess(none)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", hash)
	assert.NoError(t, VerifyPassword("s3cret-pass", hash))
	assert.Error(t, VerifyPassword("wrong", hash))
}
