// Package auth provides password hashing, bearer-token issuance and the HTTP
// middleware that turns a bearer token into an authenticated user.
//
// AUTHENTICATION FLOW OVERVIEW:
//  1. Client registers (POST /api/v1/users) or logs in (POST /api/v1/session/email)
//  2. Server verifies the credentials and issues a signed access token
//  3. Client sends it back as "Authorization: Bearer <token>"
//  4. Middleware validates the token, loads the user and puts it in the
//     request context
//
// JWT STRUCTURE (three base64-encoded parts separated by dots):
//
//	HEADER.PAYLOAD.SIGNATURE
//	- Header: {"alg":"HS256","typ":"JWT"}
//	- Payload: {"sub":"<userID>","iat":1234567890}
//	- Signature: HMAC-SHA256(header+"."+payload, secretKey)
//
// The payload carries only the user id and the issue time. Lifetime is not
// baked into the token: Validate compares iat against the TTL this service
// was configured with, so shortening the TTL takes effect for tokens that are
// already out there.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is wrapped by every Validate failure: bad signature,
// wrong algorithm, missing claims, expired, or issued in the future.
var ErrInvalidToken = errors.New("auth: invalid token")

// MinSecretLength is the shortest HMAC secret NewTokenService accepts.
const MinSecretLength = 16

// TokenService issues and validates HS256 access tokens.
//
// The secret and TTL are fixed at construction; the service is safe for
// concurrent use.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService creates a TokenService.
// Example secret: JWT_SECRET=$(openssl rand -hex 32)
func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("auth: JWT secret must be at least %d characters", MinSecretLength)
	}
	if ttl <= 0 {
		return nil, errors.New("auth: token TTL must be positive")
	}
	return &TokenService{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// TTL returns the configured token lifetime.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// claims is the JWT payload: "sub" and "iat" from the registered set,
// nothing else.
type claims struct {
	jwt.RegisteredClaims
}

// Issue signs a new token for userID.
func (s *TokenService) Issue(userID string) (string, error) {
	if userID == "" {
		return "", errors.New("auth: cannot issue token without a user id")
	}

	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  userID,
			IssuedAt: jwt.NewNumericDate(s.now()),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Validate parses and verifies a token and returns the user id it carries.
//
// VALIDATION CHECKS:
//   - Algorithm is HS256 (jwt.WithValidMethods blocks "none" and RS/HS confusion)
//   - Signature matches our secret
//   - "iat" is present and not in the future (jwt.WithIssuedAt)
//   - now < iat + TTL
//   - "sub" is non-empty
//
// Whether the user still exists is the caller's concern.
func (s *TokenService) Validate(tokenStr string) (string, error) {
	if tokenStr == "" {
		return "", fmt.Errorf("%w: empty token", ErrInvalidToken)
	}

	var c claims
	_, err := jwt.ParseWithClaims(
		tokenStr,
		&c,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if c.IssuedAt == nil {
		return "", fmt.Errorf("%w: missing iat", ErrInvalidToken)
	}
	if !s.now().Before(c.IssuedAt.Add(s.ttl)) {
		return "", fmt.Errorf("%w: token expired", ErrInvalidToken)
	}
	if c.Subject == "" {
		return "", fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	return c.Subject, nil
}
