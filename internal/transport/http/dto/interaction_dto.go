package dto

type SuperlikeRequest struct {
	Message string `json:"message"`
}

type InteractionResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Linked  bool   `json:"linked"`
	LinkID  int64  `json:"link_id,omitempty"`
}
