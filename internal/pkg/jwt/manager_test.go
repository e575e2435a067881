package jwt

import (
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_IssueAndVerify(t *testing.T) {
	m, err := NewManager("secret", "agency-core", time.Hour)
	require.NoError(t, err)

	token, expiresAt, err := m.Issue(42, "agent", true)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "agent", claims.Username)
	assert.True(t, claims.IsStaff)
	assert.Equal(t, "42", claims.Subject)
}

func TestManager_Verify_Rejects(t *testing.T) {
	m, err := NewManager("secret", "agency-core", time.Hour)
	require.NoError(t, err)
	token, _, err := m.Issue(1, "agent", false)
	require.NoError(t, err)

	other, err := NewManager("other", "agency-core", time.Hour)
	require.NoError(t, err)
	_, err = other.Verify(token)
	assert.Error(t, err, "wrong secret")

	foreignIssuer, err := NewManager("secret", "someone-else", time.Hour)
	require.NoError(t, err)
	_, err = foreignIssuer.Verify(token)
	assert.Error(t, err, "wrong issuer")

	expired, err := NewManager("secret", "agency-core", time.Minute)
	require.NoError(t, err)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, _, err := expired.Issue(1, "agent", false)
	require.NoError(t, err)
	_, err = m.Verify(old)
	assert.Error(t, err, "expired")

	_, err = m.Verify("not-a-token")
	assert.Error(t, err)
}

func TestManager_Verify_RejectsNoneAlgorithm(t *testing.T) {
	m, err := NewManager("secret", "agency-core", time.Hour)
	require.NoError(t, err)

	unsigned := gojwt.NewWithClaims(gojwt.SigningMethodNone, &Claims{
		UserID:           1,
		RegisteredClaims: gojwt.RegisteredClaims{Issuer: "agency-core"},
	})
	token, err := unsigned.SignedString(gojwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = m.Verify(token)
	assert.Error(t, err)
}

func TestNewManager_RequiresSecret(t *testing.T) {
	_, err := NewManager("", "agency-core", 0)
	assert.ErrorIs(t, err, ErrMissingSecret)

	m, err := NewManager("s", "", 0)
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, m.ttl)
}
