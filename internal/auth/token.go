// Package auth issues and checks the credentials of the roster API: bcrypt
// password hashes and the token keys clients send in the Authorization header.
//
// TOKEN KEYS:
// A key is a signed JWT, but it is NOT a stateless session. The server stores
// one key per user (auth_tokens table) and a request is only authenticated if
// its key is the stored one. The signature lets the middleware reject forged
// or garbled keys before touching the database; the table lets logout revoke
// a key immediately.
//
// KEY STRUCTURE (three base64-encoded parts separated by dots):
//
//	HEADER.PAYLOAD.SIGNATURE
//	- Header: {"alg":"HS256","typ":"JWT"}
//	- Payload: {"iss":"club-roster","sub":"<userID>","jti":"<xid>","iat":...}
//	- Signature: HMAC-SHA256(header+"."+payload, secretKey)
//
// "exp" is only present when a token TTL is configured. With the default TTL
// of zero a key lives until it is revoked.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/xid"
)

const tokenIssuer = "club-roster"

// MinSecretLength is the shortest HMAC secret NewTokenService accepts.
const MinSecretLength = 16

var (
	// ErrInvalidToken covers every key that does not verify: bad signature,
	// wrong issuer, wrong algorithm, missing subject, or not a JWT at all.
	ErrInvalidToken = errors.New("auth: invalid token")

	// ErrTokenExpired is returned for a well-signed key past its "exp".
	ErrTokenExpired = errors.New("auth: token expired")
)

// TokenService signs and verifies token keys.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService creates a TokenService. A ttl of zero issues keys without
// an expiry.
// Example: TOKEN_SECRET=$(openssl rand -hex 32)
func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("auth: token secret must be at least %d characters", MinSecretLength)
	}
	if ttl < 0 {
		return nil, errors.New("auth: token ttl must not be negative")
	}
	return &TokenService{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// TTL returns the configured key lifetime; zero means keys never expire.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Expired reports whether a key issued at issuedAt is past the TTL.
// Always false when no TTL is configured.
func (s *TokenService) Expired(issuedAt time.Time) bool {
	return s.ttl > 0 && s.now().After(issuedAt.Add(s.ttl))
}

// Generate signs a new key for userID.
//
// The jti claim is a fresh xid, so two keys for the same user issued in the
// same second still differ. That matters after logout: the next login must
// not hand back the revoked key.
func (s *TokenService) Generate(userID string) (string, error) {
	if userID == "" {
		return "", errors.New("auth: cannot issue a token without a user id")
	}
	now := s.now()

	c := jwt.RegisteredClaims{
		ID:       xid.New().String(),
		Subject:  userID,
		Issuer:   tokenIssuer,
		IssuedAt: jwt.NewNumericDate(now),
	}
	if s.ttl > 0 {
		c.ExpiresAt = jwt.NewNumericDate(now.Add(s.ttl))
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}
	return signed, nil
}

// Validate verifies a key and returns the user id in its "sub" claim.
//
// jwt.WithValidMethods pins HS256: without it a key claiming "alg":"none"
// (or an RSA key confusion) could get through. "exp" is checked by the
// library whenever it is present.
func (s *TokenService) Validate(key string) (string, error) {
	token, err := jwt.ParseWithClaims(
		key,
		&jwt.RegisteredClaims{},
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	c, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid || c.Subject == "" {
		return "", ErrInvalidToken
	}
	return c.Subject, nil
}
