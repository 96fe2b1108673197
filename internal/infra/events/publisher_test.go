package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/unicrossed/backend/internal/domain/model"
)

func TestLinkFormedMessagePayload(t *testing.T) {
	createdAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	msg, err := linkFormedMessage(context.Background(), DefaultLinkFormedSubject, model.Link{
		ID:        42,
		UserAID:   3,
		UserBID:   8,
		CreatedAt: createdAt,
	})
	if err != nil {
		t.Fatalf("build message: %v", err)
	}
	if msg.Subject != "links.formed" {
		t.Fatalf("unexpected subject: %s", msg.Subject)
	}

	var payload LinkFormedEvent
	if err := json.Unmarshal(msg.Data, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.LinkID != 42 || payload.UserAID != 3 || payload.UserBID != 8 {
		t.Fatalf("unexpected payload: %+v", payload)
	}
	if !payload.CreatedAt.Equal(createdAt) {
		t.Fatalf("unexpected created_at: %s", payload.CreatedAt)
	}
	if _, err := uuid.Parse(payload.EventID); err != nil {
		t.Fatalf("event id is not a uuid: %q", payload.EventID)
	}
}

func TestConnectRequiresURL(t *testing.T) {
	if _, err := Connect("  ", "", nil); err == nil {
		t.Fatalf("expected error for empty url")
	}
}
