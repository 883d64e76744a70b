package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/cuongbtq/email-verifier-be/internal/api/domain"
	"github.com/cuongbtq/email-verifier-be/internal/api/model"
	"github.com/google/uuid"
)

const validationColumns = `id, user_id, email, status, provider, used_credits, result, folder_id, created_at`

func (s *Storage) CreateValidation(ctx context.Context, v *model.EmailValidation) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}

	query := `
		INSERT INTO email_validations (
			id, user_id, email, status, provider, used_credits, result, folder_id, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, NOW()
		)
		RETURNING created_at
	`

	err := s.db.QueryRowxContext(ctx, query,
		v.ID, v.UserID, v.Email, v.Status, v.Provider, v.UsedCredits, v.Result, v.FolderID,
	).Scan(&v.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create validation: %w", err)
	}

	return nil
}

func (s *Storage) MoveValidationToFolder(ctx context.Context, id, userID string, folderID *string) (*model.EmailValidation, error) {
	query := `
		UPDATE email_validations
		SET folder_id = $1
		WHERE id = $2 AND user_id = $3
		  AND ($1::uuid IS NULL OR EXISTS (SELECT 1 FROM folders WHERE id = $1::uuid AND user_id = $3))
		RETURNING ` + validationColumns

	var v model.EmailValidation
	if err := s.db.GetContext(ctx, &v, query, folderID, id, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) || isForeignKeyViolation(err) {
			return nil, fmt.Errorf("%w: validation %s or folder", domain.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to move validation: %w", err)
	}

	return &v, nil
}

func (s *Storage) DeleteValidation(ctx context.Context, id, userID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM email_validations WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete validation: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete validation: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: validation %s", domain.ErrNotFound, id)
	}

	return nil
}

func validationPredicates(filter ListFilter) *predicates {
	p := userPredicates(filter.UserID)
	if filter.Search != "" {
		p.and("email ILIKE ?", "%"+filter.Search+"%")
	}
	return p
}

// ListValidations pages single validations with the ListLists keyset. The
// cursor key of a validation is its id with the single_ prefix. Status is
// not filtered here; every stored validation is a completed check.
func (s *Storage) ListValidations(ctx context.Context, filter ListFilter) ([]model.EmailValidation, error) {
	p := validationPredicates(filter)
	if filter.Cursor != nil {
		p.and("(created_at, 'single_' || id::text) < (?, ?)", filter.Cursor.CreatedAt, filter.Cursor.JobID)
	}

	query := `SELECT ` + validationColumns + ` FROM email_validations` + p.where.String() +
		` ORDER BY created_at DESC, id DESC LIMIT ` + p.bind(filter.PageSize+1)

	var validations []model.EmailValidation
	if err := s.db.SelectContext(ctx, &validations, query, p.args...); err != nil {
		return nil, fmt.Errorf("failed to list validations: %w", err)
	}

	return validations, nil
}

// ValidationStats counts the validations matching the search filter
func (s *Storage) ValidationStats(ctx context.Context, filter ListFilter) (*model.StatusStat, error) {
	p := validationPredicates(filter)
	query := `
		SELECT COUNT(*) AS count, COALESCE(SUM(used_credits), 0) AS credits_used
		FROM email_validations` + p.where.String()

	var stat model.StatusStat
	if err := s.db.GetContext(ctx, &stat, query, p.args...); err != nil {
		return nil, fmt.Errorf("failed to count validations: %w", err)
	}
	stat.Status = domain.JobStatusCompleted
	stat.TotalEmails = int64(stat.Count)

	return &stat, nil
}
