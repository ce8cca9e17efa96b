package issues

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/yashng7/zero-grid/internal/platform/db"
	"github.com/yashng7/zero-grid/internal/shared"
)

// Repository defines persistence operations for issues.
type Repository interface {
	Create(ctx context.Context, issue Issue) (*Issue, error)
	FindByID(ctx context.Context, id string) (*Issue, error)
	FindByUserID(ctx context.Context, userID string, typ *Type) ([]Issue, error)
	Update(ctx context.Context, id string, in UpdateInput) (*Issue, error)
	Delete(ctx context.Context, id string) error
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	db db.DBTX
}

// NewRepository constructs a repository.
func NewRepository(conn db.DBTX) *PGRepository {
	return &PGRepository{db: conn}
}

const issueColumns = `id, type, title, description, priority, status, user_id, created_at, updated_at`

func scanIssue(row pgx.Row) (*Issue, error) {
	var i Issue
	err := row.Scan(&i.ID, &i.Type, &i.Title, &i.Description, &i.Priority, &i.Status, &i.UserID, &i.CreatedAt, &i.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

// Create inserts issue, assigning id and timestamps.
func (r *PGRepository) Create(ctx context.Context, issue Issue) (*Issue, error) {
	now := time.Now().UTC()
	created, err := scanIssue(r.db.QueryRow(ctx, `
		INSERT INTO issues (id, type, title, description, priority, status, user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		RETURNING `+issueColumns,
		uuid.NewString(), issue.Type, issue.Title, issue.Description, issue.Priority, issue.Status, issue.UserID, now))
	if err != nil {
		return nil, fmt.Errorf("issues: create: %w", err)
	}
	return created, nil
}

// FindByID returns nil when the issue does not exist.
func (r *PGRepository) FindByID(ctx context.Context, id string) (*Issue, error) {
	issue, err := scanIssue(r.db.QueryRow(ctx, `SELECT `+issueColumns+` FROM issues WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("issues: find by id: %w", err)
	}
	return issue, nil
}

// FindByUserID lists the owner's issues newest first, optionally by type.
func (r *PGRepository) FindByUserID(ctx context.Context, userID string, typ *Type) ([]Issue, error) {
	conditions := []string{"user_id = $1"}
	args := []any{userID}
	if typ != nil {
		conditions = append(conditions, "type = $2")
		args = append(args, *typ)
	}
	query := fmt.Sprintf(`SELECT %s FROM issues WHERE %s ORDER BY created_at DESC`, issueColumns, strings.Join(conditions, " AND "))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("issues: list: %w", err)
	}
	defer rows.Close()

	out := make([]Issue, 0)
	for rows.Next() {
		issue, err := scanIssue(rows)
		if err != nil {
			return nil, fmt.Errorf("issues: scan: %w", err)
		}
		out = append(out, *issue)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("issues: list: %w", err)
	}
	return out, nil
}

// Update merges the provided fields and touches updated_at.
func (r *PGRepository) Update(ctx context.Context, id string, in UpdateInput) (*Issue, error) {
	updates := make(map[string]any)
	if in.Type != nil {
		updates["type"] = *in.Type
	}
	if in.Title != nil {
		updates["title"] = *in.Title
	}
	if in.Description != nil {
		updates["description"] = *in.Description
	}
	if in.Priority != nil {
		updates["priority"] = *in.Priority
	}
	if in.Status != nil {
		updates["status"] = *in.Status
	}

	var setClauses []string
	var args []any
	argPos := 1

	for field, value := range updates {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", field, argPos))
		args = append(args, value)
		argPos++
	}

	// Always update updated_at
	setClauses = append(setClauses, fmt.Sprintf("updated_at = $%d", argPos))
	args = append(args, time.Now().UTC())
	argPos++

	args = append(args, id)

	query := fmt.Sprintf(`
		UPDATE issues
		SET %s
		WHERE id = $%d
		RETURNING %s
	`, strings.Join(setClauses, ", "), argPos, issueColumns)

	issue, err := scanIssue(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("issues: update: %w", err)
	}
	return issue, nil
}

// Delete removes the issue.
func (r *PGRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM issues WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("issues: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ Repository = (*PGRepository)(nil)
