package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	authsvc "github.com/unicrossed/backend/internal/services/auth"
)

const authPrefix = "unicrossed:auth:"

// SessionStore keeps each session as one JSON value. Refresh tokens are only
// stored as sha256 digests pointing at the session id.
type SessionStore struct {
	client *goredis.Client
	now    func() time.Time
}

type storedSession struct {
	UserID      int64  `json:"user_id"`
	Role        string `json:"role"`
	ExpiresAt   int64  `json:"expires_at"`
	RefreshHash string `json:"refresh_hash"`
}

func NewSessionStore(client *goredis.Client) *SessionStore {
	return &SessionStore{client: client, now: time.Now}
}

func (s *SessionStore) Put(ctx context.Context, session authsvc.Session, refreshToken string) error {
	if err := s.ready(); err != nil {
		return err
	}
	if session.ID == "" || session.UserID <= 0 || refreshToken == "" {
		return authsvc.ErrInvalidInput
	}

	_, err := s.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		return s.write(ctx, pipe, session, refreshToken)
	})
	if err != nil {
		return fmt.Errorf("put session: %w", err)
	}
	return nil
}

func (s *SessionStore) Get(ctx context.Context, sessionID string) (authsvc.Session, error) {
	if err := s.ready(); err != nil {
		return authsvc.Session{}, err
	}
	stored, err := s.load(ctx, s.client, sessionID)
	if err != nil {
		return authsvc.Session{}, err
	}
	return stored.session(sessionID), nil
}

func (s *SessionStore) ByRefreshToken(ctx context.Context, refreshToken string) (authsvc.Session, error) {
	if err := s.ready(); err != nil {
		return authsvc.Session{}, err
	}

	digest := refreshDigest(refreshToken)
	sessionID, err := s.client.Get(ctx, refreshKey(digest)).Result()
	if errors.Is(err, goredis.Nil) {
		return authsvc.Session{}, authsvc.ErrSessionNotFound
	}
	if err != nil {
		return authsvc.Session{}, fmt.Errorf("resolve refresh token: %w", err)
	}

	stored, err := s.load(ctx, s.client, sessionID)
	if err != nil {
		return authsvc.Session{}, err
	}
	if stored.RefreshHash != digest {
		return authsvc.Session{}, authsvc.ErrSessionNotFound
	}
	return stored.session(sessionID), nil
}

// Rotate swaps the refresh token under WATCH on the old pointer, so of two
// concurrent rotations with the same token only one commits.
func (s *SessionStore) Rotate(ctx context.Context, session authsvc.Session, oldToken, newToken string) error {
	if err := s.ready(); err != nil {
		return err
	}
	if newToken == "" {
		return authsvc.ErrInvalidInput
	}

	oldKey := refreshKey(refreshDigest(oldToken))
	err := s.client.Watch(ctx, func(tx *goredis.Tx) error {
		owner, err := tx.Get(ctx, oldKey).Result()
		if errors.Is(err, goredis.Nil) || (err == nil && owner != session.ID) {
			return authsvc.ErrSessionNotFound
		}
		if err != nil {
			return fmt.Errorf("read refresh pointer: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			pipe.Del(ctx, oldKey)
			return s.write(ctx, pipe, session, newToken)
		})
		return err
	}, oldKey)
	switch {
	case errors.Is(err, goredis.TxFailedErr):
		return authsvc.ErrSessionNotFound
	case errors.Is(err, authsvc.ErrSessionNotFound):
		return err
	case err != nil:
		return fmt.Errorf("rotate refresh token: %w", err)
	}
	return nil
}

func (s *SessionStore) Revoke(ctx context.Context, sessionID string) error {
	if err := s.ready(); err != nil {
		return err
	}

	stored, err := s.load(ctx, s.client, sessionID)
	if errors.Is(err, authsvc.ErrSessionNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	_, err = s.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Del(ctx, sessionKey(sessionID), refreshKey(stored.RefreshHash))
		pipe.SRem(ctx, userKey(stored.UserID), sessionID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

func (s *SessionStore) RevokeUser(ctx context.Context, userID int64) error {
	if err := s.ready(); err != nil {
		return err
	}
	if userID <= 0 {
		return authsvc.ErrInvalidInput
	}

	ids, err := s.client.SMembers(ctx, userKey(userID)).Result()
	if err != nil {
		return fmt.Errorf("list user sessions: %w", err)
	}
	for _, id := range ids {
		if err := s.Revoke(ctx, id); err != nil {
			return err
		}
	}
	if err := s.client.Del(ctx, userKey(userID)).Err(); err != nil {
		return fmt.Errorf("drop user session index: %w", err)
	}
	return nil
}

func (s *SessionStore) write(ctx context.Context, pipe goredis.Pipeliner, session authsvc.Session, refreshToken string) error {
	ttl := session.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return authsvc.ErrInvalidInput
	}

	digest := refreshDigest(refreshToken)
	payload, err := json.Marshal(storedSession{
		UserID:      session.UserID,
		Role:        session.Role,
		ExpiresAt:   session.ExpiresAt.Unix(),
		RefreshHash: digest,
	})
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	pipe.Set(ctx, sessionKey(session.ID), payload, ttl)
	pipe.Set(ctx, refreshKey(digest), session.ID, ttl)
	pipe.SAdd(ctx, userKey(session.UserID), session.ID)
	pipe.Expire(ctx, userKey(session.UserID), ttl)
	return nil
}

func (s *SessionStore) load(ctx context.Context, cmd goredis.Cmdable, sessionID string) (storedSession, error) {
	if sessionID == "" {
		return storedSession{}, authsvc.ErrSessionNotFound
	}

	raw, err := cmd.Get(ctx, sessionKey(sessionID)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return storedSession{}, authsvc.ErrSessionNotFound
	}
	if err != nil {
		return storedSession{}, fmt.Errorf("load session: %w", err)
	}

	var stored storedSession
	if err := json.Unmarshal(raw, &stored); err != nil || stored.UserID <= 0 {
		return storedSession{}, authsvc.ErrSessionNotFound
	}
	return stored, nil
}

func (s *SessionStore) ready() error {
	if s.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	return nil
}

func (st storedSession) session(id string) authsvc.Session {
	return authsvc.Session{
		ID:        id,
		UserID:    st.UserID,
		Role:      st.Role,
		ExpiresAt: time.Unix(st.ExpiresAt, 0).UTC(),
	}
}

func refreshDigest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func sessionKey(id string) string {
	return authPrefix + "session:" + id
}

func refreshKey(digest string) string {
	return authPrefix + "refresh:" + digest
}

func userKey(userID int64) string {
	return authPrefix + "user:" + strconv.FormatInt(userID, 10)
}
