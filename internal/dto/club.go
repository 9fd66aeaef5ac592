package dto

type CreateClubRequest struct {
	Name        string `json:"name" validate:"required,max=50"`
	Description string `json:"description" validate:"max=50"`
	Email       string `json:"email" validate:"required,email"`
	Website     string `json:"website" validate:"omitempty,url"`
	Content     string `json:"content"`
}

type UpdateClubRequest struct {
	Name        *string `json:"name" validate:"omitempty,max=50"`
	Description *string `json:"description" validate:"omitempty,max=50"`
	Email       *string `json:"email" validate:"omitempty,email"`
	Website     *string `json:"website" validate:"omitempty,url"`
	Content     *string `json:"content"`
}

type ClubResponse struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Email       string  `json:"email"`
	ClubLogo    string  `json:"club_logo"`
	ClubCover   string  `json:"club_cover"`
	Website     *string `json:"website"`
	Content     string  `json:"content"`
}

type AddAdminsRequest struct {
	// Usernames accepts either a JSON string or a list of strings.
	Usernames StringList `json:"usernames" validate:"required,min=1"`
}

type AdminUserResponse struct {
	Username       string  `json:"username"`
	FirstName      string  `json:"first_name"`
	LastName       string  `json:"last_name"`
	ProfilePicture string  `json:"profile_picture"`
	Course         string  `json:"course"`
	Year           int     `json:"year"`
	Verified       bool    `json:"verified"`
	Description    *string `json:"description"`
}

type FollowRequest struct {
	UserID int64 `json:"user" validate:"required,gt=0"`
	ClubID int64 `json:"club" validate:"required,gt=0"`
}

type FollowStatusResponse struct {
	Following bool `json:"following"`
}

type DetailResponse struct {
	Detail string `json:"detail"`
}
