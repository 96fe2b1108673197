package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/unicrossed/backend/internal/domain/model"
	"github.com/unicrossed/backend/internal/repo/memory"
	authsvc "github.com/unicrossed/backend/internal/services/auth"
	discoverysvc "github.com/unicrossed/backend/internal/services/discovery"
	interactionsvc "github.com/unicrossed/backend/internal/services/interactions"
	linkssvc "github.com/unicrossed/backend/internal/services/links"
)

type testEnv struct {
	store        *memory.Store
	discovery    *DiscoveryHandler
	interactions *InteractionHandler
	links        *LinksHandler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := memory.NewStore()
	store.AddUser(model.User{ID: 1, Username: "ana", City: "Recife", State: "PE"}, "go")
	store.AddUser(model.User{ID: 2, Username: "bruno", City: "Natal", State: "RN", Bio: "algebra"}, "python", "sql")
	store.AddUser(model.User{ID: 3, Username: "staff", Excluded: true})

	linksService := linkssvc.NewService(linkssvc.Dependencies{Interactions: store, Links: store}, linkssvc.Config{})
	interactionService := interactionsvc.NewService(interactionsvc.Dependencies{
		Tx:           store,
		Users:        store,
		Interactions: store,
		Links:        linksService,
	})

	return &testEnv{
		store:        store,
		discovery:    NewDiscoveryHandler(discoverysvc.NewService(store), nil),
		interactions: NewInteractionHandler(interactionService, nil),
		links:        NewLinksHandler(linksService, nil),
	}
}

func withURLParam(ctx context.Context, key, value string) context.Context {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add(key, value)
	return context.WithValue(ctx, chi.RouteCtxKey, routeCtx)
}

func newAuthedRequest(method, target string, userID int64, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, target, body)
	return req.WithContext(authsvc.WithIdentity(req.Context(), authsvc.Identity{
		UserID:    userID,
		SessionID: "sid-test",
		Role:      "user",
	}))
}

func react(t *testing.T, handler http.HandlerFunc, userID int64, target, body string) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := newAuthedRequest(http.MethodPost, "/v1/react/"+target, userID, reader)
	req = req.WithContext(withURLParam(req.Context(), TargetIDParam, target))
	rec := httptest.NewRecorder()
	handler(rec, req)

	return rec.Code, decodeBody(t, rec)
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	payload := map[string]any{}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return payload
}
