package users

import "github.com/yashng7/zero-grid/internal/shared"

var profileMessages = shared.Messages{
	"name.min":      "Name must be a non-empty string",
	"name.type":     "Name must be a non-empty string",
	"email.address": "Invalid email format",
	"email.type":    "Email must be a string",
}

// ValidateProfileUpdate checks the optional profile fields.
func ValidateProfileUpdate(update ProfileUpdate) error {
	return shared.Validate(update, profileMessages)
}
