package http

// PasswordResetRequest captures the payload for requesting a reset code.
type PasswordResetRequest struct {
	Email string `json:"email" example:"user@example.com"`
}

// PasswordResetConfirmRequest captures the payload for redeeming a reset code.
type PasswordResetConfirmRequest struct {
	Email       string `json:"email" example:"user@example.com"`
	Code        string `json:"code" example:"482913"`
	NewPassword string `json:"newPassword" example:"NewPass45"`
}

// PasswordResetResponse is the envelope returned by both reset endpoints.
type PasswordResetResponse struct {
	Success    bool   `json:"success" example:"true"`
	Message    string `json:"message" example:"Password reset successfully."`
	RedirectTo string `json:"redirectTo,omitempty" example:"/subscribe"`
}
