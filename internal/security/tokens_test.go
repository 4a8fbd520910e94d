package security_test

import (
	"testing"
	"time"

	"github.com/dom/blog-website/internal/security"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSigner() *security.TokenSigner {
	return security.NewTokenSigner("blog-test", "blog-test",
		security.SignerConfig{Secret: "access-secret", TTL: time.Hour},
		security.SignerConfig{Secret: "refresh-secret", TTL: 7 * time.Hour},
	)
}

func TestTokenSigner_SignAndVerify(t *testing.T) {
	signer := newTestSigner()

	access, accessExp, err := signer.SignAccess("user-1", "alice", "token-1")
	require.NoError(t, err)
	refresh, refreshExp, err := signer.SignRefresh("user-1", "alice", "token-1")
	require.NoError(t, err)

	assert.NotEqual(t, access, refresh)
	assert.True(t, refreshExp.After(accessExp), "refresh must outlive access")

	claims, err := signer.VerifyAccess(access)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "token-1", claims.TokenID)

	claims, err = signer.VerifyRefresh(refresh)
	require.NoError(t, err)
	assert.Equal(t, "token-1", claims.TokenID)
}

func TestTokenSigner_IndependentContexts(t *testing.T) {
	signer := newTestSigner()

	access, _, err := signer.SignAccess("user-1", "alice", "token-1")
	require.NoError(t, err)
	refresh, _, err := signer.SignRefresh("user-1", "alice", "token-1")
	require.NoError(t, err)

	// A token signed under one context must not verify under the other.
	_, err = signer.VerifyRefresh(access)
	assert.ErrorIs(t, err, security.ErrInvalidToken)
	_, err = signer.VerifyAccess(refresh)
	assert.ErrorIs(t, err, security.ErrInvalidToken)
}

func TestTokenSigner_VerifyFailures(t *testing.T) {
	signer := newTestSigner()

	valid, _, err := signer.SignAccess("user-1", "alice", "token-1")
	require.NoError(t, err)

	otherSecret := security.NewTokenSigner("blog-test", "blog-test",
		security.SignerConfig{Secret: "different-secret", TTL: time.Hour},
		security.SignerConfig{Secret: "refresh-secret", TTL: 7 * time.Hour},
	)
	forged, _, err := otherSecret.SignAccess("user-1", "alice", "token-1")
	require.NoError(t, err)

	otherIssuer := security.NewTokenSigner("someone-else", "blog-test",
		security.SignerConfig{Secret: "access-secret", TTL: time.Hour},
		security.SignerConfig{Secret: "refresh-secret", TTL: 7 * time.Hour},
	)
	wrongIssuer, _, err := otherIssuer.SignAccess("user-1", "alice", "token-1")
	require.NoError(t, err)

	expiredSigner := security.NewTokenSigner("blog-test", "blog-test",
		security.SignerConfig{Secret: "access-secret", TTL: -time.Minute},
		security.SignerConfig{Secret: "refresh-secret", TTL: 7 * time.Hour},
	)
	expired, _, err := expiredSigner.SignAccess("user-1", "alice", "token-1")
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "wrong secret", token: forged},
		{name: "wrong issuer", token: wrongIssuer},
		{name: "expired", token: expired},
		{name: "tampered", token: valid + "x"},
		{name: "malformed", token: "notavalidjwt"},
		{name: "empty", token: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := signer.VerifyAccess(tt.token)
			assert.ErrorIs(t, err, security.ErrInvalidToken)
		})
	}
}

func TestTokenFingerprint(t *testing.T) {
	a := security.TokenFingerprint("token-a")
	b := security.TokenFingerprint("token-b")

	assert.Len(t, a, 64) // hex-encoded SHA-256
	assert.NotEqual(t, a, b)
	assert.Equal(t, a, security.TokenFingerprint("token-a"))

	assert.True(t, security.TokenFingerprintEqual("token-a", a))
	assert.False(t, security.TokenFingerprintEqual("token-b", a))
	assert.False(t, security.TokenFingerprintEqual("token-a", "not-a-fingerprint"))
}
