package auth

import "github.com/yashng7/zero-grid/internal/shared"

var registerMessages = shared.Messages{
	"email.required":    "Email is required",
	"email.address":     "Invalid email format",
	"password.required": "Password is required",
	"password.min":      "Password must be at least 6 characters",
	"name.required":     "Name is required",
	"name.min":          "Name must be at least 2 characters",
}

var loginMessages = shared.Messages{
	"email.required":    "Email is required",
	"password.required": "Password is required",
}

var forgotPasswordMessages = shared.Messages{
	"email.required": "Email is required",
	"email.address":  "Invalid email format",
}

var resetPasswordMessages = shared.Messages{
	"token.required":          "Reset token is required",
	"password.required":       "Password is required",
	"password.min":            "Password must be at least 6 characters",
	"confirmPassword.eqfield": "Passwords do not match",
	"confirmPassword.type":    "Passwords do not match",
}

// ValidateRegister checks a registration request.
func ValidateRegister(in RegisterInput) error {
	return shared.Validate(in, registerMessages)
}

// ValidateLogin checks a login request.
func ValidateLogin(in LoginInput) error {
	return shared.Validate(in, loginMessages)
}

// ValidateForgotPassword checks a reset link request.
func ValidateForgotPassword(in ForgotPasswordInput) error {
	return shared.Validate(in, forgotPasswordMessages)
}

// ValidateResetPassword checks a password reset request.
func ValidateResetPassword(in ResetPasswordInput) error {
	return shared.Validate(in, resetPasswordMessages)
}
