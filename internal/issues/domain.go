package issues

import "time"

// Type classifies the security engagement an issue belongs to.
type Type string

const (
	TypeCloudSecurity    Type = "cloud-security"
	TypeReteamAssessment Type = "reteam-assessment"
	TypeVAPT             Type = "vapt"
)

// Priority ranks an issue.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Status tracks issue progress.
type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in-progress"
	StatusClosed     Status = "closed"
)

// Issue is a security finding owned by a single user.
type Issue struct {
	ID          string    `json:"id"`
	Type        Type      `json:"type"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Priority    Priority  `json:"priority"`
	Status      Status    `json:"status"`
	UserID      string    `json:"userId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// CreateInput carries a new issue. Priority and Status are optional.
type CreateInput struct {
	Type        Type     `json:"type" validate:"required,oneof=cloud-security reteam-assessment vapt"`
	Title       string   `json:"title" validate:"required,min=3"`
	Description string   `json:"description" validate:"required,min=10"`
	Priority    Priority `json:"priority" validate:"omitempty,oneof=low medium high"`
	Status      Status   `json:"status" validate:"omitempty,oneof=open in-progress closed"`
}

// UpdateInput carries a partial issue change. Only these fields are writable.
type UpdateInput struct {
	Type        *Type     `json:"type" validate:"omitnil,oneof=cloud-security reteam-assessment vapt"`
	Title       *string   `json:"title" validate:"omitnil,min=3"`
	Description *string   `json:"description" validate:"omitnil,min=10"`
	Priority    *Priority `json:"priority" validate:"omitnil,oneof=low medium high"`
	Status      *Status   `json:"status" validate:"omitnil,oneof=open in-progress closed"`
}

// Empty reports whether the update changes nothing.
func (u UpdateInput) Empty() bool {
	return u.Type == nil && u.Title == nil && u.Description == nil && u.Priority == nil && u.Status == nil
}
