package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/yashng7/zero-grid/internal/platform/db"
	"github.com/yashng7/zero-grid/internal/shared"
)

// Repository defines data access methods for users.
type Repository interface {
	Create(ctx context.Context, input NewUser) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, id string, update ProfileUpdate) (*User, error)
	UpdatePassword(ctx context.Context, id, digest string) error
}

// NormalizeEmail trims and lowercases an address for storage and lookup.
// Casers are stateful, so one is built per call.
func NormalizeEmail(email string) string {
	return cases.Lower(language.Und).String(strings.TrimSpace(email))
}

// PGRepository provides PostgreSQL backed persistence.
type PGRepository struct {
	db db.DBTX
}

// NewRepository constructs a repository over a pool or transaction.
func NewRepository(conn db.DBTX) *PGRepository {
	return &PGRepository{db: conn}
}

const userColumns = `id, email, password, name, created_at, updated_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	if err := row.Scan(&u.ID, &u.Email, &u.Password, &u.Name, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a user. A taken email yields shared.ErrConflict.
func (r *PGRepository) Create(ctx context.Context, input NewUser) (*User, error) {
	var name *string
	if input.Name != "" {
		name = &input.Name
	}
	now := time.Now().UTC()
	row := r.db.QueryRow(ctx, `
		INSERT INTO users (id, email, password, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		RETURNING `+userColumns,
		uuid.NewString(), NormalizeEmail(input.Email), input.Password, name, now)
	user, err := scanUser(row)
	if err != nil {
		if db.UniqueViolation(err) {
			return nil, shared.ErrConflict
		}
		return nil, fmt.Errorf("users: create: %w", err)
	}
	return user, nil
}

// FindByID returns nil when no user has the id.
func (r *PGRepository) FindByID(ctx context.Context, id string) (*User, error) {
	user, err := scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("users: find by id: %w", err)
	}
	return user, nil
}

// FindByEmail returns nil when no user has the address, in any casing.
func (r *PGRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	user, err := scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, NormalizeEmail(email)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("users: find by email: %w", err)
	}
	return user, nil
}

// Update merges the provided profile fields and touches updated_at.
func (r *PGRepository) Update(ctx context.Context, id string, update ProfileUpdate) (*User, error) {
	var setClauses []string
	var args []any
	argPos := 1

	if update.Name != nil {
		setClauses = append(setClauses, fmt.Sprintf("name = $%d", argPos))
		args = append(args, *update.Name)
		argPos++
	}
	if update.Email != nil {
		setClauses = append(setClauses, fmt.Sprintf("email = $%d", argPos))
		args = append(args, NormalizeEmail(*update.Email))
		argPos++
	}

	setClauses = append(setClauses, fmt.Sprintf("updated_at = $%d", argPos))
	args = append(args, time.Now().UTC())
	argPos++

	args = append(args, id)

	query := fmt.Sprintf(`
		UPDATE users
		SET %s
		WHERE id = $%d
		RETURNING %s
	`, strings.Join(setClauses, ", "), argPos, userColumns)

	user, err := scanUser(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		if db.UniqueViolation(err) {
			return nil, shared.ErrConflict
		}
		return nil, fmt.Errorf("users: update: %w", err)
	}
	return user, nil
}

// UpdatePassword replaces the stored digest.
func (r *PGRepository) UpdatePassword(ctx context.Context, id, digest string) error {
	tag, err := r.db.Exec(ctx, `UPDATE users SET password = $1, updated_at = $2 WHERE id = $3`, digest, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("users: update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
