package issues

import (
	"context"
	"errors"

	"github.com/yashng7/zero-grid/internal/shared"
	"github.com/yashng7/zero-grid/internal/users"
)

// Notifier tells owners about new issues. Implementations must not block on
// delivery.
type Notifier interface {
	IssueCreated(ctx context.Context, to, name string, issue Issue)
}

// OwnerLookup resolves the issue owner's contact details.
type OwnerLookup interface {
	FindByID(ctx context.Context, id string) (*users.User, error)
}

// Service enforces ownership over issue CRUD.
type Service struct {
	repo     Repository
	owners   OwnerLookup
	notifier Notifier
}

// NewService constructs a Service.
func NewService(repo Repository, owners OwnerLookup, notifier Notifier) *Service {
	return &Service{repo: repo, owners: owners, notifier: notifier}
}

// CreateIssue stores a new issue owned by userID.
func (s *Service) CreateIssue(ctx context.Context, userID string, in CreateInput) (*Issue, error) {
	issue := Issue{
		Type:        in.Type,
		Title:       in.Title,
		Description: in.Description,
		Priority:    in.Priority,
		Status:      in.Status,
		UserID:      userID,
	}
	if issue.Priority == "" {
		issue.Priority = PriorityMedium
	}
	if issue.Status == "" {
		issue.Status = StatusOpen
	}

	created, err := s.repo.Create(ctx, issue)
	if err != nil {
		return nil, err
	}
	s.notifyCreated(ctx, userID, *created)
	return created, nil
}

// GetIssues lists the caller's issues, optionally filtered by type.
func (s *Service) GetIssues(ctx context.Context, userID string, typ *Type) ([]Issue, error) {
	return s.repo.FindByUserID(ctx, userID, typ)
}

// GetIssueByID returns an issue owned by userID.
func (s *Service) GetIssueByID(ctx context.Context, userID, id string) (*Issue, error) {
	return s.owned(ctx, userID, id, "access")
}

// UpdateIssue applies a partial update to an issue owned by userID.
func (s *Service) UpdateIssue(ctx context.Context, userID, id string, in UpdateInput) (*Issue, error) {
	if _, err := s.owned(ctx, userID, id, "update"); err != nil {
		return nil, err
	}
	updated, err := s.repo.Update(ctx, id, in)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NotFound("Issue not found")
		}
		return nil, err
	}
	return updated, nil
}

// DeleteIssue removes an issue owned by userID.
func (s *Service) DeleteIssue(ctx context.Context, userID, id string) error {
	if _, err := s.owned(ctx, userID, id, "delete"); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NotFound("Issue not found")
		}
		return err
	}
	return nil
}

func (s *Service) owned(ctx context.Context, userID, id, action string) (*Issue, error) {
	issue, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if issue == nil {
		return nil, shared.NotFound("Issue not found")
	}
	if issue.UserID != userID {
		return nil, shared.Forbidden("Not authorized to " + action + " this issue")
	}
	return issue, nil
}

func (s *Service) notifyCreated(ctx context.Context, userID string, issue Issue) {
	if s.notifier == nil || s.owners == nil {
		return
	}
	owner, err := s.owners.FindByID(ctx, userID)
	if err != nil || owner == nil {
		return
	}
	s.notifier.IssueCreated(ctx, owner.Email, owner.DisplayName("User"), issue)
}
