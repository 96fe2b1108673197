package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

const (
	sessionIDBytes    = 20
	refreshTokenBytes = 32
)

// Session is one identity-provider hand-off. Refreshing keeps the ID and
// replaces the refresh token.
type Session struct {
	ID        string
	UserID    int64
	Role      string
	ExpiresAt time.Time
}

func (s Session) expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Grant is what a caller receives after IssueSession or Refresh.
type Grant struct {
	Session         Session
	AccessToken     string
	AccessExpiresAt time.Time
	RefreshToken    string
}

type Claims struct {
	SessionID string
	UserID    int64
	Role      string
	ExpiresAt time.Time
}

func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
