package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLinksHandlerListsCounterparts(t *testing.T) {
	env := newTestEnv(t)
	react(t, env.interactions.Like, 1, "2", "")
	react(t, env.interactions.Like, 2, "1", "")

	rec := httptest.NewRecorder()
	env.links.List(rec, newAuthedRequest(http.MethodGet, "/v1/links", 1, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}

	body := decodeBody(t, rec)
	links, ok := body["links"].([]any)
	if !ok || len(links) != 1 {
		t.Fatalf("unexpected links: %v", body)
	}
	user := links[0].(map[string]any)["user"].(map[string]any)
	if user["id"] != float64(2) || user["username"] != "bruno" {
		t.Fatalf("unexpected counterpart: %v", user)
	}
}

func TestLinksHandlerEmptyListIsArray(t *testing.T) {
	env := newTestEnv(t)

	rec := httptest.NewRecorder()
	env.links.List(rec, newAuthedRequest(http.MethodGet, "/v1/links", 1, nil))
	body := decodeBody(t, rec)
	links, ok := body["links"].([]any)
	if !ok || len(links) != 0 {
		t.Fatalf("expected empty array, got %v", body["links"])
	}
}

func TestLinksHandlerRejectsBadLimit(t *testing.T) {
	env := newTestEnv(t)

	rec := httptest.NewRecorder()
	env.links.List(rec, newAuthedRequest(http.MethodGet, "/v1/links?limit=-3", 1, nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
}
