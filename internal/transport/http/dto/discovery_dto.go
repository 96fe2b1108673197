package dto

const (
	StatusSuccess          = "success"
	StatusInfo             = "info"
	StatusNoMoreCandidates = "no_more_candidates"
)

type CandidateResponse struct {
	ID       int64    `json:"id"`
	Username string   `json:"username"`
	City     string   `json:"city"`
	State    string   `json:"state"`
	Bio      string   `json:"bio"`
	Skills   []string `json:"skills"`
}

type NextProfileResponse struct {
	Status    string             `json:"status"`
	Message   string             `json:"message,omitempty"`
	Candidate *CandidateResponse `json:"candidate,omitempty"`
}
