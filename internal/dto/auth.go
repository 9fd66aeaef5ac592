package dto

type ProfileSeed struct {
	Course      string `json:"course" validate:"max=100"`
	Year        int    `json:"year" validate:"gte=0,lte=10"`
	Description string `json:"description" validate:"max=500"`
}

type RegisterRequest struct {
	Email     string      `json:"email" validate:"required,email"`
	Username  string      `json:"username" validate:"required,min=3,max=50"`
	StudentID string      `json:"student_id" validate:"max=50"`
	FirstName string      `json:"first_name" validate:"required,max=150"`
	LastName  string      `json:"last_name" validate:"required,max=150"`
	Password  string      `json:"password" validate:"required,min=8"`
	Password2 string      `json:"password2" validate:"required"`
	Profile   ProfileSeed `json:"profile"`
}

type TokenRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	Refresh string `json:"refresh" validate:"required"`
}

type TokenResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}
