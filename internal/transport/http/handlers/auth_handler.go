package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	authsvc "github.com/unicrossed/backend/internal/services/auth"
	"github.com/unicrossed/backend/internal/transport/http/dto"
	httperrors "github.com/unicrossed/backend/internal/transport/http/errors"
)

// AuthHandler exposes session issuance to the identity provider and the
// refresh/logout lifecycle to clients.
type AuthHandler struct {
	service *authsvc.Service
	now     func() time.Time
}

func NewAuthHandler(service *authsvc.Service) *AuthHandler {
	return &AuthHandler{service: service, now: time.Now}
}

func (h *AuthHandler) IssueSession(w http.ResponseWriter, r *http.Request) {
	var req dto.IssueSessionRequest
	if !h.ready(w) || !decodeOrReject(w, r, &req) {
		return
	}
	h.writeGrant(r.Context(), w, func(ctx context.Context) (authsvc.Grant, error) {
		return h.service.IssueSession(ctx, req.UserID, req.Role)
	})
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req dto.RefreshRequest
	if !h.ready(w) || !decodeOrReject(w, r, &req) {
		return
	}
	h.writeGrant(r.Context(), w, func(ctx context.Context) (authsvc.Grant, error) {
		return h.service.Refresh(ctx, req.RefreshToken)
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.endSessions(w, r, func(ctx context.Context, identity authsvc.Identity) error {
		return h.service.Logout(ctx, identity.SessionID)
	})
}

func (h *AuthHandler) LogoutAll(w http.ResponseWriter, r *http.Request) {
	h.endSessions(w, r, func(ctx context.Context, identity authsvc.Identity) error {
		return h.service.LogoutAll(ctx, identity.UserID)
	})
}

func (h *AuthHandler) endSessions(w http.ResponseWriter, r *http.Request, end func(context.Context, authsvc.Identity) error) {
	if !h.ready(w) {
		return
	}
	identity, ok := currentIdentity(w, r)
	if !ok {
		return
	}
	if err := end(r.Context(), identity); err != nil {
		writeAuthError(w, err)
		return
	}
	httperrors.Write(w, http.StatusOK, dto.LogoutResponse{OK: true})
}

func (h *AuthHandler) writeGrant(ctx context.Context, w http.ResponseWriter, issue func(context.Context) (authsvc.Grant, error)) {
	grant, err := issue(ctx)
	if err != nil {
		writeAuthError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.AuthTokensResponse{
		AccessToken:  grant.AccessToken,
		RefreshToken: grant.RefreshToken,
		ExpiresInSec: max(int64(grant.AccessExpiresAt.Sub(h.now()).Seconds()), 0),
		Me: dto.AuthMeResponse{
			ID:   grant.Session.UserID,
			Role: grant.Session.Role,
		},
	})
}

func (h *AuthHandler) ready(w http.ResponseWriter) bool {
	if h.service == nil {
		writeInternal(w, "AUTH_SERVICE_UNAVAILABLE", "auth service is unavailable")
		return false
	}
	return true
}

func decodeOrReject(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := decodeJSON(r, target); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return false
	}
	return true
}

func writeAuthError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, authsvc.ErrInvalidInput):
		writeBadRequest(w, "INVALID_REQUEST", "request validation failed")
	case errors.Is(err, authsvc.ErrUnauthorized):
		writeUnauthorized(w, "UNAUTHORIZED", "authentication failed")
	default:
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
	}
}
