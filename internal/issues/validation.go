package issues

import "github.com/yashng7/zero-grid/internal/shared"

const (
	invalidTypeMessage     = "Invalid issue type. Must be one of: cloud-security, reteam-assessment, vapt"
	invalidPriorityMessage = "Invalid priority. Must be one of: low, medium, high"
	invalidStatusMessage   = "Invalid status. Must be one of: open, in-progress, closed"
)

var issueMessages = shared.Messages{
	"type.required":        "Issue type is required",
	"type.oneof":           invalidTypeMessage,
	"title.required":       "Title is required",
	"title.min":            "Title must be at least 3 characters",
	"description.required": "Description is required",
	"description.min":      "Description must be at least 10 characters",
	"priority.oneof":       invalidPriorityMessage,
	"priority.type":        invalidPriorityMessage,
	"status.oneof":         invalidStatusMessage,
	"status.type":          invalidStatusMessage,
}

// ValidateCreate checks a new issue.
func ValidateCreate(in CreateInput) error {
	return shared.Validate(in, issueMessages)
}

// ValidateUpdate checks the fields present in a partial update against the
// same rules as creation.
func ValidateUpdate(in UpdateInput) error {
	return shared.Validate(in, issueMessages)
}
