package model

import "time"

// Link is stored with UserAID < UserBID.
type Link struct {
	ID        int64     `json:"id"`
	UserAID   int64     `json:"user_a_id"`
	UserBID   int64     `json:"user_b_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (l Link) Counterpart(userID int64) int64 {
	if l.UserAID == userID {
		return l.UserBID
	}
	return l.UserAID
}

type LinkedUser struct {
	LinkID   int64     `json:"link_id"`
	User     User      `json:"user"`
	LinkedAt time.Time `json:"linked_at"`
}
