package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func newTestManager(t *testing.T, accessTTL time.Duration) *Manager {
	t.Helper()
	m, err := NewManager(Config{
		Secret:    testSecret,
		AccessTTL: accessTTL,
		Issuer:    "vipconnect-test",
	})
	require.NoError(t, err)
	return m
}

func testIdentity() Identity {
	return Identity{
		AccountID:   "acct-1",
		Email:       "alice@example.com",
		AccountType: "fan",
	}
}

func TestNewManagerRejectsShortSecret(t *testing.T) {
	_, err := NewManager(Config{Secret: []byte("short"), AccessTTL: time.Minute})
	assert.Error(t, err)
}

func TestAccessTokenRoundTrip(t *testing.T) {
	m := newTestManager(t, 15*time.Minute)

	token, err := m.CreateAccess(testIdentity())
	require.NoError(t, err)

	claims, err := m.ParseAccess(token)
	require.NoError(t, err)
	assert.Equal(t, "acct-1", claims.AccountID)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, "fan", claims.AccountType)
	assert.Equal(t, TypeAccess, claims.TokenType)
	assert.Equal(t, "vipconnect-test", claims.Issuer)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	m := newTestManager(t, 15*time.Minute)

	token, err := m.CreateRefresh(testIdentity(), 7*24*time.Hour)
	require.NoError(t, err)

	claims, err := m.ParseRefresh(token)
	require.NoError(t, err)
	assert.Equal(t, TypeRefresh, claims.TokenType)
	assert.WithinDuration(t,
		time.Now().Add(7*24*time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestTypeConfusionRejected(t *testing.T) {
	m := newTestManager(t, 15*time.Minute)

	access, err := m.CreateAccess(testIdentity())
	require.NoError(t, err)
	refresh, err := m.CreateRefresh(testIdentity(), time.Hour)
	require.NoError(t, err)

	_, err = m.ParseRefresh(access)
	assert.ErrorIs(t, err, ErrTokenMalformed)

	_, err = m.ParseAccess(refresh)
	assert.ErrorIs(t, err, ErrTokenMalformed)
}

func TestExpiredToken(t *testing.T) {
	m := newTestManager(t, time.Millisecond)

	token, err := m.CreateAccess(testIdentity())
	require.NoError(t, err)

	// exp is serialized at second precision, so wait out a full second
	time.Sleep(1100 * time.Millisecond)
	_, err = m.ParseAccess(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestTamperedToken(t *testing.T) {
	m := newTestManager(t, 15*time.Minute)

	token, err := m.CreateAccess(testIdentity())
	require.NoError(t, err)

	tampered := token[:len(token)-2] + "xx"
	_, err = m.ParseAccess(tampered)
	assert.ErrorIs(t, err, ErrTokenMalformed)
}

func TestWrongSecretRejected(t *testing.T) {
	m := newTestManager(t, 15*time.Minute)
	token, err := m.CreateAccess(testIdentity())
	require.NoError(t, err)

	other, err := NewManager(Config{
		Secret:    []byte("ffffffffffffffffffffffffffffffff"),
		AccessTTL: 15 * time.Minute,
		Issuer:    "vipconnect-test",
	})
	require.NoError(t, err)

	_, err = other.ParseAccess(token)
	assert.ErrorIs(t, err, ErrTokenMalformed)
}

func TestGarbageRejected(t *testing.T) {
	m := newTestManager(t, 15*time.Minute)

	for _, token := range []string{"", "garbage", "a.b.c"} {
		_, err := m.ParseAccess(token)
		assert.ErrorIs(t, err, ErrTokenMalformed, "token %q", token)
	}
}
