package transport

type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type VerifyEmailRequest struct {
	Token string `json:"token" validate:"required"`
}

type AuthResponse struct {
	Success     bool   `json:"success"`
	AccessToken string `json:"accessToken"`
}

type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
