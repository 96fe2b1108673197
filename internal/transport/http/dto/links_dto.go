package dto

import "time"

type LinkedUserResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	City     string `json:"city"`
	State    string `json:"state"`
	Bio      string `json:"bio"`
}

type LinkItem struct {
	LinkID   int64              `json:"link_id"`
	User     LinkedUserResponse `json:"user"`
	LinkedAt time.Time          `json:"linked_at"`
}

type LinksResponse struct {
	Status string     `json:"status"`
	Links  []LinkItem `json:"links"`
}
