package model

import (
	"time"

	"github.com/unicrossed/backend/internal/domain/enums"
)

type Interaction struct {
	ID         int64                 `json:"id"`
	FromUserID int64                 `json:"from_user_id"`
	ToUserID   int64                 `json:"to_user_id"`
	Kind       enums.InteractionKind `json:"kind"`
	Message    string                `json:"message,omitempty"`
	CreatedAt  time.Time             `json:"created_at"`
}
