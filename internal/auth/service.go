package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/yashng7/zero-grid/internal/shared"
	"github.com/yashng7/zero-grid/internal/users"
)

// ResetTokenTTL bounds how long a reset link stays usable.
const ResetTokenTTL = time.Hour

const resetTokenBytes = 32

// Notifier delivers account emails. Implementations must not block on
// delivery.
type Notifier interface {
	Welcome(ctx context.Context, to, name string)
	PasswordReset(ctx context.Context, to, name, token string)
	PasswordChanged(ctx context.Context, to, name string)
}

// Service wraps authentication business rules.
type Service struct {
	users    users.Repository
	tokens   ResetTokenRepository
	tx       TxRunner
	hasher   *Hasher
	issuer   *TokenIssuer
	notifier Notifier
	logger   *slog.Logger
	now      func() time.Time
}

// ServiceParams groups Service dependencies.
type ServiceParams struct {
	Users    users.Repository
	Tokens   ResetTokenRepository
	Tx       TxRunner
	Hasher   *Hasher
	Issuer   *TokenIssuer
	Notifier Notifier
	Logger   *slog.Logger
}

// NewService constructs a new Service.
func NewService(p ServiceParams) *Service {
	if p.Hasher == nil {
		p.Hasher = NewHasher()
	}
	if p.Logger == nil {
		p.Logger = slog.Default()
	}
	return &Service{
		users:    p.Users,
		tokens:   p.Tokens,
		tx:       p.Tx,
		hasher:   p.Hasher,
		issuer:   p.Issuer,
		notifier: p.Notifier,
		logger:   p.Logger,
		now:      time.Now,
	}
}

// Issuer exposes the token issuer used for cookies and middleware.
func (s *Service) Issuer() *TokenIssuer {
	return s.issuer
}

// Register creates an account and signs the caller in.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Result, error) {
	existing, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, shared.Conflict("User with this email already exists")
	}

	digest, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("auth: hash password: %w", err)
	}
	user, err := s.users.Create(ctx, users.NewUser{Email: in.Email, Password: digest, Name: in.Name})
	if err != nil {
		if errors.Is(err, shared.ErrConflict) {
			return nil, shared.Conflict("User with this email already exists")
		}
		return nil, err
	}

	tokens, err := s.issuer.IssuePair(Payload{UserID: user.ID, Email: user.Email})
	if err != nil {
		return nil, fmt.Errorf("auth: issue tokens: %w", err)
	}
	if s.notifier != nil {
		s.notifier.Welcome(ctx, user.Email, user.DisplayName("User"))
	}
	return &Result{User: user, Tokens: tokens}, nil
}

// Login verifies credentials. Unknown emails and wrong passwords fail alike.
func (s *Service) Login(ctx context.Context, in LoginInput) (*Result, error) {
	user, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if user == nil || !s.hasher.Verify(in.Password, user.Password) {
		return nil, shared.Unauthorized("Invalid credentials")
	}

	tokens, err := s.issuer.IssuePair(Payload{UserID: user.ID, Email: user.Email})
	if err != nil {
		return nil, fmt.Errorf("auth: issue tokens: %w", err)
	}
	return &Result{User: user, Tokens: tokens}, nil
}

// CurrentUser loads the authenticated user.
func (s *Service) CurrentUser(ctx context.Context, userID string) (*users.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, shared.Unauthorized("User not found")
	}
	return user, nil
}

// Refresh exchanges a refresh token for a new token pair.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*Result, error) {
	payload, err := s.issuer.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, shared.Unauthorized("Invalid or expired refresh token")
	}
	user, err := s.CurrentUser(ctx, payload.UserID)
	if err != nil {
		return nil, err
	}
	tokens, err := s.issuer.IssuePair(Payload{UserID: user.ID, Email: user.Email})
	if err != nil {
		return nil, fmt.Errorf("auth: issue tokens: %w", err)
	}
	return &Result{User: user, Tokens: tokens}, nil
}

// ForgotPassword issues a reset token and emails the link. Unknown emails
// succeed silently.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil {
		s.logger.Info("password reset requested for unknown email")
		return nil
	}

	if err := s.tokens.DeleteUserTokens(ctx, user.ID); err != nil {
		return err
	}
	token, err := newResetToken()
	if err != nil {
		return fmt.Errorf("auth: generate reset token: %w", err)
	}
	if _, err := s.tokens.Create(ctx, user.ID, token, s.now().Add(ResetTokenTTL)); err != nil {
		return err
	}

	if s.notifier != nil {
		s.notifier.PasswordReset(ctx, user.Email, user.DisplayName("Operative"), token)
	}
	return nil
}

// ResetPassword sets a new password using a valid reset token. The password
// change and token invalidation commit together.
func (s *Service) ResetPassword(ctx context.Context, token, password string) error {
	found, err := s.tokens.FindValidToken(ctx, token)
	if err != nil {
		return err
	}
	if found == nil || !found.Token.Valid(s.now()) {
		return shared.Validation("Invalid or expired reset token")
	}

	digest, err := s.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("auth: hash password: %w", err)
	}

	err = s.tx.WithTx(ctx, func(ctx context.Context, userRepo users.Repository, tokens ResetTokenRepository) error {
		if err := userRepo.UpdatePassword(ctx, found.User.ID, digest); err != nil {
			return err
		}
		if err := tokens.MarkAsUsed(ctx, found.Token.ID); err != nil {
			return err
		}
		return tokens.DeleteUserTokens(ctx, found.User.ID)
	})
	if err != nil {
		return err
	}

	if s.notifier != nil {
		s.notifier.PasswordChanged(ctx, found.User.Email, found.User.DisplayName("Operative"))
	}
	return nil
}

// VerifyResetToken reports whether token can still be used.
func (s *Service) VerifyResetToken(ctx context.Context, token string) (bool, error) {
	found, err := s.tokens.FindValidToken(ctx, token)
	if err != nil {
		return false, err
	}
	return found != nil && found.Token.Valid(s.now()), nil
}

// PurgeExpiredTokens removes reset tokens past their expiry.
func (s *Service) PurgeExpiredTokens(ctx context.Context) (int64, error) {
	return s.tokens.DeleteExpiredTokens(ctx)
}

func newResetToken() (string, error) {
	buf := make([]byte, resetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
