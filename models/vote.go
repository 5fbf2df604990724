package models

// VoteRequest casts an up (1) or down (-1) vote. Repeating the current vote
// withdraws it.
type VoteRequest struct {
	Value int `json:"value" validate:"oneof=-1 1"`
}

func (r *VoteRequest) Validate() error {
	return validateStruct(r)
}

// VoteResult is the caller's vote after the request (0 = none) and the
// rating's new total.
type VoteResult struct {
	RatingID  string `json:"rating_id"`
	Value     int    `json:"value"`
	VoteScore int    `json:"vote_score"`
}
