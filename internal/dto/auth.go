package dto

import "github.com/neptunetech/storefront/internal/core/domain"

var credentialMessages = map[string]string{
	"Email.required":    "Email is required",
	"Email.email":       "Email is required",
	"Password.required": "Password is required",
	"Password.min":      "Minimum of 6 characters required",
	"Name.required":     "Name is required",
	"NewPassword.min":   "Minimum of 6 characters required",
	"Role.oneof":        "Invalid role",
	"Code.numeric":      "Invalid code!",
	"Code.len":          "Invalid code!",
}

// RegisterRequest is the credential sign-up payload.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Name     string `json:"name" validate:"required"`
}

func (RegisterRequest) ValidationMessages() map[string]string { return credentialMessages }

// LoginRequest is the credential sign-in payload. Code carries the emailed
// two-factor code on the second step of a two-factor sign-in.
type LoginRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required"`
	Code        string `json:"code,omitempty" validate:"omitempty,numeric,len=6"`
	CallbackURL string `json:"callbackUrl,omitempty"`
}

func (LoginRequest) ValidationMessages() map[string]string { return credentialMessages }

// ResetRequest asks for a password reset email.
type ResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

func (ResetRequest) ValidationMessages() map[string]string { return credentialMessages }

// NewPasswordRequest completes a password reset.
type NewPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password" validate:"required,min=6"`
}

func (NewPasswordRequest) ValidationMessages() map[string]string { return credentialMessages }

// NewVerificationRequest confirms an email address.
type NewVerificationRequest struct {
	Token string `json:"token"`
}

// SettingsRequest updates the signed-in user's profile. Omitted fields are left unchanged.
type SettingsRequest struct {
	Name               *string          `json:"name,omitempty"`
	Email              *string          `json:"email,omitempty" validate:"omitempty,email"`
	Password           *string          `json:"password,omitempty" validate:"omitempty,min=6"`
	NewPassword        *string          `json:"newPassword,omitempty" validate:"omitempty,min=6"`
	Role               *domain.UserRole `json:"role,omitempty" validate:"omitempty,oneof=ADMIN USER"`
	IsTwoFactorEnabled *bool            `json:"isTwoFactorEnabled,omitempty"`
}

func (SettingsRequest) ValidationMessages() map[string]string { return credentialMessages }

// ExchangeCodeRequest carries a Google authorization code from a browser client.
type ExchangeCodeRequest struct {
	Code        string `json:"code" binding:"required"`
	CallbackURL string `json:"callbackUrl,omitempty"`
}

// ActionResponse is the result object returned by form-style endpoints.
type ActionResponse struct {
	Success string `json:"success,omitempty"`
	Warning string `json:"warning,omitempty"`
}

// LoginResponse is returned by credential and OAuth sign-in.
type LoginResponse struct {
	Success    string          `json:"success,omitempty"`
	TwoFactor  bool            `json:"twoFactor,omitempty"`
	Token      string          `json:"token,omitempty"`
	Session    *domain.Session `json:"session,omitempty"`
	RedirectTo string          `json:"redirectTo,omitempty"`
}
