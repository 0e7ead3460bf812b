package users

import "github.com/mcdev12/survivor/go/internal/models"

// RegisterRequest represents the data needed to create an account
type RegisterRequest struct {
	Email           string `json:"email"`
	Username        string `json:"username"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// LoginRequest represents email/password credentials
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// GoogleLoginRequest carries the Google ID token obtained by the client
type GoogleLoginRequest struct {
	IDToken    string `json:"idToken"`
	RequestURI string `json:"requestUri,omitempty"`
}

// UpdateProfileRequest holds the profile fields a user may change. Nil
// fields are left alone.
type UpdateProfileRequest struct {
	DisplayName *string `json:"displayName,omitempty"`
	Username    *string `json:"username,omitempty"`
	PhotoURL    *string `json:"photoURL,omitempty"`
}

// AuthResult is returned by every sign-in path
type AuthResult struct {
	Token        string       `json:"token"`
	RefreshToken string       `json:"refreshToken,omitempty"`
	ExpiresIn    string       `json:"expiresIn,omitempty"`
	User         *models.User `json:"user"`
}
