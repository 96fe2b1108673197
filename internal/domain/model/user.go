package model

type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	City     string `json:"city"`
	State    string `json:"state"`
	Bio      string `json:"bio"`
	Excluded bool   `json:"excluded"`
}

type Candidate struct {
	ID       int64    `json:"id"`
	Username string   `json:"username"`
	City     string   `json:"city"`
	State    string   `json:"state"`
	Bio      string   `json:"bio"`
	Skills   []string `json:"skills"`
}
