package auth

import (
	"fmt"
	"strconv"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

const tokenIssuer = "unicrossed"

type accessClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Signer mints HS256 access tokens. The session id travels as the jti.
type Signer struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

func NewSigner(secret string, ttl time.Duration) *Signer {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &Signer{key: []byte(secret), ttl: ttl, now: time.Now}
}

func (s *Signer) Issue(session Session) (string, time.Time, error) {
	if len(s.key) == 0 {
		return "", time.Time{}, fmt.Errorf("signing key is empty")
	}
	if session.ID == "" || session.UserID <= 0 {
		return "", time.Time{}, ErrInvalidInput
	}

	now := s.now().UTC()
	expiresAt := now.Add(s.ttl)
	if expiresAt.After(session.ExpiresAt) {
		expiresAt = session.ExpiresAt
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims{
		Role: session.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        session.ID,
			Issuer:    tokenIssuer,
			Subject:   strconv.FormatInt(session.UserID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}).SignedString(s.key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign access token: %w", err)
	}
	return signed, expiresAt, nil
}

func (s *Signer) Verify(raw string) (Claims, error) {
	var parsed accessClaims
	_, err := jwt.ParseWithClaims(raw, &parsed, func(*jwt.Token) (any, error) {
		return s.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return Claims{}, ErrUnauthorized
	}

	userID, err := strconv.ParseInt(parsed.Subject, 10, 64)
	if err != nil || userID <= 0 || parsed.ID == "" {
		return Claims{}, ErrUnauthorized
	}
	return Claims{
		SessionID: parsed.ID,
		UserID:    userID,
		Role:      parsed.Role,
		ExpiresAt: parsed.ExpiresAt.Time,
	}, nil
}
