package users

import (
	"context"
	"errors"

	"github.com/yashng7/zero-grid/internal/shared"
)

// Notifier delivers profile notifications. Implementations must not block on
// delivery.
type Notifier interface {
	ProfileUpdated(ctx context.Context, to, name string)
}

// Service handles profile business logic.
type Service struct {
	repo     Repository
	notifier Notifier
}

// NewService builds Service instance.
func NewService(repo Repository, notifier Notifier) *Service {
	return &Service{repo: repo, notifier: notifier}
}

// GetProfile returns the user's profile.
func (s *Service) GetProfile(ctx context.Context, userID string) (*User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, shared.NotFound("User not found")
	}
	return user, nil
}

// UpdateProfile changes the user's name and/or email.
func (s *Service) UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) (*User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, shared.NotFound("User not found")
	}

	if update.Email != nil {
		email := NormalizeEmail(*update.Email)
		update.Email = &email
		if email != user.Email {
			existing, err := s.repo.FindByEmail(ctx, email)
			if err != nil {
				return nil, err
			}
			if existing != nil && existing.ID != user.ID {
				return nil, shared.Validation("Email is already in use")
			}
		}
	}

	updated, err := s.repo.Update(ctx, userID, update)
	if err != nil {
		if errors.Is(err, shared.ErrConflict) {
			return nil, shared.Validation("Email is already in use")
		}
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NotFound("User not found")
		}
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.ProfileUpdated(ctx, updated.Email, updated.DisplayName("User"))
	}
	return updated, nil
}
