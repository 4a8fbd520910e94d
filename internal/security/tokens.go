package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken covers every verification failure: bad signature, expiry,
// issuer/audience mismatch, wrong algorithm, malformed input. Callers get no
// finer detail.
var ErrInvalidToken = errors.New("invalid token")

// TokenClaims is the payload carried by both access and refresh tokens.
// TokenID correlates the access/refresh pair of one issuance with the
// session record that stores their fingerprints.
type TokenClaims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
	TokenID  string `json:"token_id"`
}

// SignerConfig is one signing context: its own secret and lifetime.
type SignerConfig struct {
	Secret string
	TTL    time.Duration
}

// TokenSigner issues and verifies HS256 JWTs under two independent signing
// contexts: short-lived access tokens and longer-lived refresh tokens. It
// holds only static configuration; signing and verification are pure.
type TokenSigner struct {
	issuer   string
	audience string
	access   SignerConfig
	refresh  SignerConfig
}

func NewTokenSigner(issuer, audience string, access, refresh SignerConfig) *TokenSigner {
	return &TokenSigner{
		issuer:   issuer,
		audience: audience,
		access:   access,
		refresh:  refresh,
	}
}

// AccessTTL returns the configured access-token lifetime.
func (s *TokenSigner) AccessTTL() time.Duration { return s.access.TTL }

// RefreshTTL returns the configured refresh-token lifetime.
func (s *TokenSigner) RefreshTTL() time.Duration { return s.refresh.TTL }

// SignAccess issues an access token for the given subject. Returns the
// signed string and its expiration time.
func (s *TokenSigner) SignAccess(userID, username, tokenID string) (string, time.Time, error) {
	return s.sign(s.access, userID, username, tokenID)
}

// SignRefresh issues a refresh token for the given subject.
func (s *TokenSigner) SignRefresh(userID, username, tokenID string) (string, time.Time, error) {
	return s.sign(s.refresh, userID, username, tokenID)
}

func (s *TokenSigner) sign(cfg SignerConfig, userID, username, tokenID string) (string, time.Time, error) {
	now := time.Now().UTC()
	expiresAt := now.Add(cfg.TTL)

	claims := TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    s.issuer,
			Audience:  jwt.ClaimStrings{s.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Username: username,
		TokenID:  tokenID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(cfg.Secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// VerifyAccess validates an access token's signature, expiry, issuer and
// audience, and returns its claims.
func (s *TokenSigner) VerifyAccess(tokenString string) (*TokenClaims, error) {
	return s.verify(s.access, tokenString)
}

// VerifyRefresh validates a refresh token.
func (s *TokenSigner) VerifyRefresh(tokenString string) (*TokenClaims, error) {
	return s.verify(s.refresh, tokenString)
}

func (s *TokenSigner) verify(cfg SignerConfig, tokenString string) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(cfg.Secret), nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*TokenClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Issuer != s.issuer {
		return nil, ErrInvalidToken
	}
	audOK := false
	for _, a := range claims.Audience {
		if a == s.audience {
			audOK = true
			break
		}
	}
	if !audOK {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
