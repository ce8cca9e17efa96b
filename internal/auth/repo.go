package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/yashng7/zero-grid/internal/platform/db"
	"github.com/yashng7/zero-grid/internal/shared"
	"github.com/yashng7/zero-grid/internal/users"
)

// ResetTokenRepository persists password reset tokens.
type ResetTokenRepository interface {
	Create(ctx context.Context, userID, token string, expiresAt time.Time) (*ResetToken, error)
	// FindValidToken returns nil when the token is unknown, used or expired.
	FindValidToken(ctx context.Context, token string) (*ResetTokenWithUser, error)
	MarkAsUsed(ctx context.Context, id string) error
	DeleteUserTokens(ctx context.Context, userID string) error
	DeleteExpiredTokens(ctx context.Context) (int64, error)
}

// TxRunner runs account writes that must commit together.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, userRepo users.Repository, tokens ResetTokenRepository) error) error
}

// PGResetTokenRepository implements ResetTokenRepository using PostgreSQL.
type PGResetTokenRepository struct {
	db db.DBTX
}

// NewResetTokenRepository constructs a PostgreSQL repository.
func NewResetTokenRepository(conn db.DBTX) *PGResetTokenRepository {
	return &PGResetTokenRepository{db: conn}
}

// Create stores a new token for userID.
func (r *PGResetTokenRepository) Create(ctx context.Context, userID, token string, expiresAt time.Time) (*ResetToken, error) {
	rt := ResetToken{
		ID:        uuid.NewString(),
		UserID:    userID,
		Token:     token,
		ExpiresAt: expiresAt.UTC(),
		CreatedAt: time.Now().UTC(),
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO password_reset_tokens (id, user_id, token, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, rt.ID, rt.UserID, rt.Token, rt.ExpiresAt, rt.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("auth: create reset token: %w", err)
	}
	return &rt, nil
}

// FindValidToken joins the owning user and filters out used or expired tokens.
func (r *PGResetTokenRepository) FindValidToken(ctx context.Context, token string) (*ResetTokenWithUser, error) {
	var out ResetTokenWithUser
	err := r.db.QueryRow(ctx, `
		SELECT t.id, t.user_id, t.token, t.expires_at, t.used_at, t.created_at,
		       u.id, u.email, u.password, u.name, u.created_at, u.updated_at
		FROM password_reset_tokens t
		JOIN users u ON u.id = t.user_id
		WHERE t.token = $1 AND t.used_at IS NULL AND t.expires_at > now()
	`, token).Scan(
		&out.Token.ID, &out.Token.UserID, &out.Token.Token, &out.Token.ExpiresAt, &out.Token.UsedAt, &out.Token.CreatedAt,
		&out.User.ID, &out.User.Email, &out.User.Password, &out.User.Name, &out.User.CreatedAt, &out.User.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("auth: find reset token: %w", err)
	}
	return &out, nil
}

// MarkAsUsed stamps used_at on the token. A token consumed by a concurrent
// reset matches no row and yields a validation error so the transaction
// rolls back.
func (r *PGResetTokenRepository) MarkAsUsed(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `UPDATE password_reset_tokens SET used_at = now() WHERE id = $1 AND used_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("auth: mark reset token used: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.Validation("Invalid or expired reset token")
	}
	return nil
}

// DeleteUserTokens removes every token belonging to userID.
func (r *PGResetTokenRepository) DeleteUserTokens(ctx context.Context, userID string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM password_reset_tokens WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("auth: delete user reset tokens: %w", err)
	}
	return nil
}

// DeleteExpiredTokens sweeps tokens past their expiry.
func (r *PGResetTokenRepository) DeleteExpiredTokens(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM password_reset_tokens WHERE expires_at < now()`)
	if err != nil {
		return 0, fmt.Errorf("auth: delete expired reset tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}

// PGTxRunner binds repositories to a RepeatableRead transaction.
type PGTxRunner struct {
	conn db.Beginner
}

// NewTxRunner constructs a transaction runner over a pool.
func NewTxRunner(conn db.Beginner) *PGTxRunner {
	return &PGTxRunner{conn: conn}
}

// WithTx runs fn with transaction-bound repositories.
func (r *PGTxRunner) WithTx(ctx context.Context, fn func(ctx context.Context, userRepo users.Repository, tokens ResetTokenRepository) error) error {
	return db.WithTx(ctx, r.conn, func(tx db.DBTX) error {
		return fn(ctx, users.NewRepository(tx), NewResetTokenRepository(tx))
	})
}

var (
	_ ResetTokenRepository = (*PGResetTokenRepository)(nil)
	_ TxRunner             = (*PGTxRunner)(nil)
)
