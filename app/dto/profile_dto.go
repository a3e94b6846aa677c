package dto

// UpdateProfileRequest represents a profile update. All fields are
// optional; Password requires CurrentPassword.
type UpdateProfileRequest struct {
	UserID          uint    `json:"-"`
	Name            *string `json:"name,omitempty" validate:"omitempty,min=2,max=255"`
	Email           *string `json:"email,omitempty" validate:"omitempty,email,max=255"`
	CurrentPassword *string `json:"current_password,omitempty" validate:"omitempty,min=8,max=100"`
	Password        *string `json:"password,omitempty" validate:"omitempty,min=8,max=100"`
}

// UpdateProfileResponse returns the updated user
type UpdateProfileResponse struct {
	User AuthUserDTO `json:"user"`
}
