package dto

type CreateFriendRequest struct {
	Receiver string `json:"receiver" validate:"required"`
}

// FriendshipStatusResponse reports the relationship between the caller
// and another user. Status is "True" for accepted, "False" for pending,
// "None" when no row exists; Sender says which side initiated.
type FriendshipStatusResponse struct {
	Detail string `json:"detail"`
	Status string `json:"status"`
	Sender string `json:"sender"`
}
