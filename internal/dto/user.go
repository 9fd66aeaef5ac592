package dto

type UserResponse struct {
	ID        int64   `json:"id"`
	Username  string  `json:"username"`
	Email     string  `json:"email"`
	StudentID *string `json:"student_id"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
}

type UserNameResponse struct {
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type ChangeAccountTypeRequest struct {
	AccountType string `json:"account_type" validate:"required,visibility"`
}

type AccountTypeResponse struct {
	AccountType string `json:"account_type"`
}

type ProfileResponse struct {
	ID             int64   `json:"id"`
	UserID         int64   `json:"user_id"`
	ProfilePicture string  `json:"profile_picture"`
	Birthday       *string `json:"birthday"`
	Course         string  `json:"course"`
	Year           int     `json:"year"`
	Description    *string `json:"description"`
	Verified       bool    `json:"verified"`
}

type ProfileUpdateRequest struct {
	Birthday    *string `json:"birthday"`
	Course      *string `json:"course" validate:"omitempty,max=100"`
	Year        *int    `json:"year" validate:"omitempty,gte=1,lte=10"`
	Description *string `json:"description" validate:"omitempty,max=500"`
}

// PublicProfileResponse carries the viewer-dependent profile page. For
// closed accounts the name is replaced with a placeholder and every
// profile field is null, even for accepted friends.
type PublicProfileResponse struct {
	Username       string  `json:"username"`
	FirstName      string  `json:"first_name"`
	LastName       string  `json:"last_name"`
	AccountType    string  `json:"account_type"`
	ProfilePicture *string `json:"profile_picture"`
	Course         *string `json:"course"`
	Year           *int    `json:"year"`
	Description    *string `json:"description"`
	Verified       *bool   `json:"verified"`
}

type FriendUserResponse struct {
	Username       string  `json:"username"`
	FirstName      string  `json:"first_name"`
	LastName       string  `json:"last_name"`
	ProfilePicture *string `json:"profile_picture"`
	Verified       bool    `json:"verified"`
}

type CommonFriendResponse struct {
	Username       string  `json:"username"`
	ProfilePicture *string `json:"profile_picture"`
}
