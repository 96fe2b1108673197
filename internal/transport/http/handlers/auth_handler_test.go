package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	redrepo "github.com/unicrossed/backend/internal/repo/redis"
	authsvc "github.com/unicrossed/backend/internal/services/auth"
	"github.com/unicrossed/backend/internal/transport/http/dto"
)

func newAuthHandlerForTest(t *testing.T) *AuthHandler {
	t.Helper()

	mini, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	client := goredis.NewClient(&goredis.Options{Addr: mini.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
		mini.Close()
	})

	svc := authsvc.NewService(authsvc.NewSigner("test-secret", 15*time.Minute), redrepo.NewSessionStore(client), 30*24*time.Hour)
	return NewAuthHandler(svc)
}

func TestAuthHandlerIssueAndRefresh(t *testing.T) {
	h := newAuthHandlerForTest(t)

	rec := httptest.NewRecorder()
	h.IssueSession(rec, httptest.NewRequest(http.MethodPost, "/v1/auth/sessions", strings.NewReader(`{"user_id":12,"role":"user"}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("issue session status: %d body=%s", rec.Code, rec.Body.String())
	}

	var issued dto.AuthTokensResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &issued); err != nil {
		t.Fatalf("decode issue response: %v", err)
	}
	if issued.AccessToken == "" || issued.RefreshToken == "" || issued.Me.ID != 12 || issued.ExpiresInSec <= 0 {
		t.Fatalf("unexpected issue response: %+v", issued)
	}

	rec = httptest.NewRecorder()
	h.Refresh(rec, httptest.NewRequest(http.MethodPost, "/v1/auth/refresh", strings.NewReader(`{"refresh_token":"`+issued.RefreshToken+`"}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("refresh status: %d", rec.Code)
	}
}

func TestAuthHandlerRejectsInvalidSessionRequest(t *testing.T) {
	h := newAuthHandlerForTest(t)

	rec := httptest.NewRecorder()
	h.IssueSession(rec, httptest.NewRequest(http.MethodPost, "/v1/auth/sessions", strings.NewReader(`{"user_id":0}`)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.Refresh(rec, httptest.NewRequest(http.MethodPost, "/v1/auth/refresh", strings.NewReader(`{"refresh_token":"nope"}`)))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected refresh status: %d", rec.Code)
	}
}
