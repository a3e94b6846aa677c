package dto

// RegisterRequest represents the request payload for account registration
type RegisterRequest struct {
	Name            string `json:"name" validate:"required,min=2,max=255" example:"Hanif Maulana"`
	Email           string `json:"email" validate:"required,email,max=255" example:"owner@example.com"`
	Password        string `json:"password" validate:"required,min=8,max=100" example:"SecurePass123!"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password" example:"SecurePass123!"`
}

// LoginRequest represents the request payload for user login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email,max=255" example:"owner@example.com"`
	Password string `json:"password" validate:"required,min=8,max=100" example:"SecurePass123!"`
}

// AuthUserDTO represents user information returned in auth responses
type AuthUserDTO struct {
	ID          uint   `json:"id" example:"123"`
	UUID        string `json:"uuid" example:"550e8400-e29b-41d4-a716-446655440000"`
	Name        string `json:"name" example:"Hanif Maulana"`
	Email       string `json:"email" example:"owner@example.com"`
	IsActive    bool   `json:"is_active" example:"true"`
	CreatedAt   string `json:"created_at" example:"2025-01-15T10:30:00Z"`
	LastLoginAt string `json:"last_login_at,omitempty" example:"2025-02-01T08:00:00Z"`
}

// SessionDTO represents token material returned in auth responses
type SessionDTO struct {
	SessionToken string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type" example:"Bearer"`
	ExpiresIn    int    `json:"expires_in" example:"86400"`
	CreatedAt    string `json:"created_at"`
}

// RegisterResponse represents the successful registration response
type RegisterResponse struct {
	User    AuthUserDTO `json:"user"`
	Session SessionDTO  `json:"session"`
}

// LoginResponse represents the successful login response
type LoginResponse struct {
	User    AuthUserDTO `json:"user"`
	Session SessionDTO  `json:"session"`
}

// LogoutResponse represents the logout acknowledgement
type LogoutResponse struct {
	Message string `json:"message" example:"Logged out"`
}
