package auth

// RegisterRequest represents the register request body.
type RegisterRequest struct {
	Username          string  `json:"username"`
	Email             string  `json:"email"`
	Password          string  `json:"password"`
	ProfilePictureRef *string `json:"profile_picture_ref,omitempty"`
}

// LoginRequest represents the login request body.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse represents the login response body.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
}
