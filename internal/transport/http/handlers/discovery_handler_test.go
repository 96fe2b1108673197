package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDiscoveryHandlerReturnsCandidate(t *testing.T) {
	env := newTestEnv(t)

	rec := httptest.NewRecorder()
	env.discovery.NextProfile(rec, newAuthedRequest(http.MethodGet, "/v1/next-profile", 1, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}

	body := decodeBody(t, rec)
	if body["status"] != "success" {
		t.Fatalf("unexpected status field: %v", body)
	}
	candidate, ok := body["candidate"].(map[string]any)
	if !ok {
		t.Fatalf("candidate missing: %v", body)
	}
	if candidate["id"] != float64(2) || candidate["username"] != "bruno" || candidate["bio"] != "algebra" {
		t.Fatalf("unexpected candidate: %v", candidate)
	}
	skills, ok := candidate["skills"].([]any)
	if !ok || len(skills) != 2 || skills[0] != "python" {
		t.Fatalf("unexpected skills: %v", candidate["skills"])
	}
}

func TestDiscoveryHandlerNoMoreCandidates(t *testing.T) {
	env := newTestEnv(t)
	if status, _ := react(t, env.interactions.Like, 1, "2", ""); status != http.StatusOK {
		t.Fatalf("like failed: %d", status)
	}

	rec := httptest.NewRecorder()
	env.discovery.NextProfile(rec, newAuthedRequest(http.MethodGet, "/v1/next-profile", 1, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["status"] != "no_more_candidates" {
		t.Fatalf("unexpected body: %v", body)
	}
	if _, ok := body["candidate"]; ok {
		t.Fatalf("candidate must be omitted: %v", body)
	}
}

func TestDiscoveryHandlerRequiresIdentity(t *testing.T) {
	env := newTestEnv(t)

	rec := httptest.NewRecorder()
	env.discovery.NextProfile(rec, httptest.NewRequest(http.MethodGet, "/v1/next-profile", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
}
