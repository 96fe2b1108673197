package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/unicrossed/backend/internal/domain/enums"
)

const (
	MinRefreshTTL = 24 * time.Hour
	MaxRefreshTTL = 90 * 24 * time.Hour
)

// SessionStore persists sessions keyed by id and by current refresh token.
// Lookups of unknown or expired entries return ErrSessionNotFound.
type SessionStore interface {
	Put(ctx context.Context, session Session, refreshToken string) error
	Get(ctx context.Context, sessionID string) (Session, error)
	ByRefreshToken(ctx context.Context, refreshToken string) (Session, error)
	Rotate(ctx context.Context, session Session, oldToken, newToken string) error
	Revoke(ctx context.Context, sessionID string) error
	RevokeUser(ctx context.Context, userID int64) error
}

type Service struct {
	signer     *Signer
	store      SessionStore
	refreshTTL time.Duration
	now        func() time.Time
}

func NewService(signer *Signer, store SessionStore, refreshTTL time.Duration) *Service {
	refreshTTL = min(max(refreshTTL, MinRefreshTTL), MaxRefreshTTL)
	return &Service{
		signer:     signer,
		store:      store,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// IssueSession opens a session for a user the identity provider has already authenticated.
func (s *Service) IssueSession(ctx context.Context, userID int64, role string) (Grant, error) {
	role, ok := normalizeRole(role)
	if userID <= 0 || !ok {
		return Grant{}, ErrInvalidInput
	}

	id, err := randomHex(sessionIDBytes)
	if err != nil {
		return Grant{}, fmt.Errorf("generate session id: %w", err)
	}
	refreshToken, err := randomHex(refreshTokenBytes)
	if err != nil {
		return Grant{}, fmt.Errorf("generate refresh token: %w", err)
	}

	session := Session{ID: id, UserID: userID, Role: role, ExpiresAt: s.now().Add(s.refreshTTL)}
	if err := s.store.Put(ctx, session, refreshToken); err != nil {
		return Grant{}, fmt.Errorf("store session: %w", err)
	}
	return s.grant(session, refreshToken)
}

// Refresh exchanges a refresh token for a new grant. The old token stops
// working even when two refreshes race.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (Grant, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return Grant{}, ErrInvalidInput
	}

	session, err := s.store.ByRefreshToken(ctx, refreshToken)
	if err != nil {
		return Grant{}, s.storeErr("resolve refresh token", err)
	}
	if session.expired(s.now()) {
		return Grant{}, ErrUnauthorized
	}

	next, err := randomHex(refreshTokenBytes)
	if err != nil {
		return Grant{}, fmt.Errorf("generate refresh token: %w", err)
	}
	session.ExpiresAt = s.now().Add(s.refreshTTL)
	if err := s.store.Rotate(ctx, session, refreshToken, next); err != nil {
		return Grant{}, s.storeErr("rotate refresh token", err)
	}
	return s.grant(session, next)
}

func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return ErrInvalidInput
	}
	if err := s.store.Revoke(ctx, sessionID); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

func (s *Service) LogoutAll(ctx context.Context, userID int64) error {
	if userID <= 0 {
		return ErrInvalidInput
	}
	if err := s.store.RevokeUser(ctx, userID); err != nil {
		return fmt.Errorf("revoke user sessions: %w", err)
	}
	return nil
}

// ValidateAccessToken checks the signature and that the session behind the
// token is still live.
func (s *Service) ValidateAccessToken(ctx context.Context, accessToken string) (Claims, error) {
	claims, err := s.signer.Verify(accessToken)
	if err != nil {
		return Claims{}, ErrUnauthorized
	}

	session, err := s.store.Get(ctx, claims.SessionID)
	if err != nil {
		return Claims{}, s.storeErr("load session", err)
	}
	if session.UserID != claims.UserID || session.Role != claims.Role || session.expired(s.now()) {
		return Claims{}, ErrUnauthorized
	}
	return claims, nil
}

func (s *Service) grant(session Session, refreshToken string) (Grant, error) {
	access, expiresAt, err := s.signer.Issue(session)
	if err != nil {
		return Grant{}, err
	}
	return Grant{
		Session:         session,
		AccessToken:     access,
		AccessExpiresAt: expiresAt,
		RefreshToken:    refreshToken,
	}, nil
}

func (s *Service) storeErr(action string, err error) error {
	if errors.Is(err, ErrSessionNotFound) {
		return ErrUnauthorized
	}
	return fmt.Errorf("%s: %w", action, err)
}

func normalizeRole(role string) (string, bool) {
	switch enums.Role(strings.ToLower(strings.TrimSpace(role))) {
	case "", enums.RoleUser:
		return string(enums.RoleUser), true
	case enums.RoleStaff:
		return string(enums.RoleStaff), true
	default:
		return "", false
	}
}
