package apiapp

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/unicrossed/backend/internal/config"
	"github.com/unicrossed/backend/internal/domain/model"
	"github.com/unicrossed/backend/internal/repo/memory"
	redrepo "github.com/unicrossed/backend/internal/repo/redis"
	authsvc "github.com/unicrossed/backend/internal/services/auth"
	discoverysvc "github.com/unicrossed/backend/internal/services/discovery"
	interactionsvc "github.com/unicrossed/backend/internal/services/interactions"
	linkssvc "github.com/unicrossed/backend/internal/services/links"
)

const testIdentityToken = "provider-token"

func newAuthServiceForTest(t *testing.T) (*authsvc.Service, *miniredis.Miniredis) {
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

	signer := authsvc.NewSigner("test-secret", 15*time.Minute)
	return authsvc.NewService(signer, redrepo.NewSessionStore(client), 30*24*time.Hour), mini
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	store := memory.NewStore()
	store.AddUser(model.User{ID: 1, Username: "ana"})
	store.AddUser(model.User{ID: 2, Username: "bruno"})

	authService, _ := newAuthServiceForTest(t)
	linksService := linkssvc.NewService(linkssvc.Dependencies{Interactions: store, Links: store}, linkssvc.Config{})

	cfg := config.Default()
	cfg.Auth.IdentityProviderToken = testIdentityToken

	r := chi.NewRouter()
	ApplyMiddlewares(r, zap.NewNop())
	RegisterRoutes(r, Dependencies{
		AuthService:      authService,
		DiscoveryService: discoverysvc.NewService(store),
		InteractionService: interactionsvc.NewService(interactionsvc.Dependencies{
			Tx:           store,
			Users:        store,
			Interactions: store,
			Links:        linksService,
		}),
		LinksService: linksService,
		Logger:       zap.NewNop(),
		Config:       cfg,
	})
	return r
}

func issueToken(t *testing.T, router http.Handler, userID int64) string {
	t.Helper()

	body := []byte(`{"user_id":` + strconv.FormatInt(userID, 10) + `}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/sessions", bytes.NewReader(body))
	req.Header.Set(IdentityTokenHeader, testIdentityToken)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("issue session: status %d body=%s", rr.Code, rr.Body.String())
	}

	var resp struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	return resp.AccessToken
}

func doJSON(t *testing.T, router http.Handler, method, path, token string) (int, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	payload := map[string]any{}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode %s %s: %v (%q)", method, path, err, rr.Body.String())
	}
	return rr.Code, payload
}

func TestRoutesMutualLikeFormsLink(t *testing.T) {
	router := newTestRouter(t)
	ana := issueToken(t, router, 1)
	bruno := issueToken(t, router, 2)

	status, body := doJSON(t, router, http.MethodGet, "/v1/next-profile", ana)
	if status != http.StatusOK || body["status"] != "success" {
		t.Fatalf("unexpected next profile: %d %v", status, body)
	}

	if status, body = doJSON(t, router, http.MethodPost, "/v1/like/2", ana); body["linked"] != false {
		t.Fatalf("unexpected first like: %d %v", status, body)
	}
	if status, body = doJSON(t, router, http.MethodPost, "/v1/like/1", bruno); body["linked"] != true {
		t.Fatalf("unexpected second like: %d %v", status, body)
	}

	status, body = doJSON(t, router, http.MethodGet, "/v1/links", ana)
	links, _ := body["links"].([]any)
	if status != http.StatusOK || len(links) != 1 {
		t.Fatalf("unexpected links: %d %v", status, body)
	}

	status, body = doJSON(t, router, http.MethodGet, "/v1/next-profile", ana)
	if status != http.StatusOK || body["status"] != "no_more_candidates" {
		t.Fatalf("unexpected next profile after like: %d %v", status, body)
	}
}

func TestRoutesRequireAuthentication(t *testing.T) {
	router := newTestRouter(t)

	for _, path := range []string{"/v1/next-profile", "/v1/links"} {
		if status, body := doJSON(t, router, http.MethodGet, path, ""); status != http.StatusUnauthorized || body["code"] != "UNAUTHORIZED" {
			t.Fatalf("%s: unexpected response %d %v", path, status, body)
		}
	}
	if status, _ := doJSON(t, router, http.MethodPost, "/v1/like/2", "garbage"); status != http.StatusUnauthorized {
		t.Fatalf("unexpected like status: %d", status)
	}
}

func TestRoutesRejectSessionWithoutProviderToken(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/auth/sessions", bytes.NewReader([]byte(`{"user_id":1}`)))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestRoutesMethodNotAllowedIsJSON(t *testing.T) {
	router := newTestRouter(t)
	token := issueToken(t, router, 1)

	status, body := doJSON(t, router, http.MethodGet, "/v1/like/2", token)
	if status != http.StatusMethodNotAllowed || body["code"] != "METHOD_NOT_ALLOWED" {
		t.Fatalf("unexpected response: %d %v", status, body)
	}
}

func TestRoutesUnknownPathIsJSON(t *testing.T) {
	router := newTestRouter(t)

	status, body := doJSON(t, router, http.MethodGet, "/nope", "")
	if status != http.StatusNotFound || body["code"] != "NOT_FOUND" {
		t.Fatalf("unexpected response: %d %v", status, body)
	}
}

func TestRoutesHealth(t *testing.T) {
	router := newTestRouter(t)

	status, body := doJSON(t, router, http.MethodGet, "/healthz", "")
	if status != http.StatusOK || body["ok"] != true {
		t.Fatalf("unexpected health: %d %v", status, body)
	}
}
