package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cuongbtq/email-verifier-be/internal/api/domain"
	"github.com/cuongbtq/email-verifier-be/internal/api/model"
	"github.com/cuongbtq/email-verifier-be/shared/postgresql"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
)

const listColumns = `id, job_id, user_id, list_name, filename, size,
	total_emails, status, report, folder_id, created_at, updated_at`

type Storage struct {
	db *sqlx.DB
}

func NewStorage(pg *postgresql.Client) *Storage {
	return New(pg.DB())
}

func New(db *sqlx.DB) *Storage {
	return &Storage{db: db}
}

// CreateList inserts a new list record. Status always starts UNPROCESSED.
func (s *Storage) CreateList(ctx context.Context, list *model.EmailList) error {
	if list.ID == "" {
		list.ID = uuid.NewString()
	}
	list.Status = domain.JobStatusUnprocessed
	if len(list.Report) == 0 {
		list.Report = types.JSONText(`{}`)
	}

	query := `
		INSERT INTO email_lists (
			id, job_id, user_id, list_name, filename, size,
			total_emails, status, report, folder_id, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10, NOW(), NOW()
		)
		RETURNING created_at, updated_at
	`

	err := s.db.QueryRowxContext(
		ctx,
		query,
		list.ID,
		list.JobID,
		list.UserID,
		list.ListName,
		list.Filename,
		list.Size,
		list.TotalEmails,
		list.Status,
		list.Report,
		list.FolderID,
	).Scan(&list.CreatedAt, &list.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", domain.ErrDuplicateJob, list.JobID)
		}
		return fmt.Errorf("failed to create list: %w", err)
	}

	return nil
}

func (s *Storage) GetByJobID(ctx context.Context, jobID string) (*model.EmailList, error) {
	var list model.EmailList
	query := `SELECT ` + listColumns + ` FROM email_lists WHERE job_id = $1`

	if err := s.db.GetContext(ctx, &list, query, jobID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: list %s", domain.ErrNotFound, jobID)
		}
		return nil, fmt.Errorf("failed to get list: %w", err)
	}

	return &list, nil
}

// GetByJobIDForUser returns ErrNotFound for lists owned by someone else
func (s *Storage) GetByJobIDForUser(ctx context.Context, jobID, userID string) (*model.EmailList, error) {
	var list model.EmailList
	query := `SELECT ` + listColumns + ` FROM email_lists WHERE job_id = $1 AND user_id = $2`

	if err := s.db.GetContext(ctx, &list, query, jobID, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: list %s", domain.ErrNotFound, jobID)
		}
		return nil, fmt.Errorf("failed to get list: %w", err)
	}

	return &list, nil
}

type ListFilter struct {
	UserID   string
	Status   string
	Search   string
	PageSize int
	Cursor   *ListCursor
}

type ListCursor struct {
	CreatedAt time.Time
	JobID     string
}

// predicates renders a WHERE clause with numbered placeholders
type predicates struct {
	where strings.Builder
	args  []any
}

func userPredicates(userID string) *predicates {
	p := &predicates{args: []any{userID}}
	p.where.WriteString(" WHERE user_id = $1")
	return p
}

// and appends cond, numbering each ? in order of vals
func (p *predicates) and(cond string, vals ...any) {
	for _, v := range vals {
		p.args = append(p.args, v)
		cond = strings.Replace(cond, "?", fmt.Sprintf("$%d", len(p.args)), 1)
	}
	p.where.WriteString(" AND " + cond)
}

// bind adds a value used outside the WHERE clause and returns its placeholder
func (p *predicates) bind(v any) string {
	p.args = append(p.args, v)
	return fmt.Sprintf("$%d", len(p.args))
}

func listPredicates(filter ListFilter) *predicates {
	p := userPredicates(filter.UserID)
	if filter.Status != "" {
		p.and("status = ?", filter.Status)
	}
	if filter.Search != "" {
		p.and("list_name ILIKE ?", "%"+filter.Search+"%")
	}
	return p
}

// ListLists returns up to PageSize+1 rows so callers can tell whether
// another page exists.
func (s *Storage) ListLists(ctx context.Context, filter ListFilter) ([]model.EmailList, error) {
	p := listPredicates(filter)
	if filter.Cursor != nil {
		p.and("(created_at, job_id) < (?, ?)", filter.Cursor.CreatedAt, filter.Cursor.JobID)
	}

	query := `SELECT ` + listColumns + ` FROM email_lists` + p.where.String() +
		` ORDER BY created_at DESC, job_id DESC LIMIT ` + p.bind(filter.PageSize+1)

	var lists []model.EmailList
	if err := s.db.SelectContext(ctx, &lists, query, p.args...); err != nil {
		return nil, fmt.Errorf("failed to list lists: %w", err)
	}

	return lists, nil
}

// ListStats counts every list matching the status and search filters,
// grouped by status. Credits are summed over completed lists only.
func (s *Storage) ListStats(ctx context.Context, filter ListFilter) ([]model.StatusStat, error) {
	p := listPredicates(filter)
	query := `
		SELECT status, COUNT(*) AS count,
		       COALESCE(SUM(total_emails), 0) AS total_emails,
		       COALESCE(SUM(CASE WHEN status = 'COMPLETED' THEN (report->>'verified')::bigint END), 0) AS credits_used
		FROM email_lists` + p.where.String() + `
		GROUP BY status`

	var stats []model.StatusStat
	if err := s.db.SelectContext(ctx, &stats, query, p.args...); err != nil {
		return nil, fmt.Errorf("failed to count lists: %w", err)
	}

	return stats, nil
}

// ListAllForUser returns every list of the user, newest first
func (s *Storage) ListAllForUser(ctx context.Context, userID string) ([]model.EmailList, error) {
	query := `SELECT ` + listColumns + ` FROM email_lists WHERE user_id = $1 ORDER BY created_at DESC, job_id DESC`

	var lists []model.EmailList
	if err := s.db.SelectContext(ctx, &lists, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list lists: %w", err)
	}

	return lists, nil
}

// TransitionJob moves a job from one status to another and overwrites its
// report. The write only applies while the stored status still equals from.
// A non-nil charge is deducted in the same transaction; if the deduction
// fails nothing is written.
func (s *Storage) TransitionJob(
	ctx context.Context,
	jobID string,
	from, to domain.JobStatus,
	report domain.Report,
	charge *domain.Charge,
) (*model.EmailList, error) {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return nil, fmt.Errorf("failed to encode report: %w", err)
	}

	var list model.EmailList
	err = postgresql.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if charge != nil {
			if _, err := s.deductTx(ctx, tx, *charge); err != nil {
				return err
			}
		}

		query := `
			UPDATE email_lists
			SET status = $1, report = $2, updated_at = NOW()
			WHERE job_id = $3 AND status = $4
			RETURNING ` + listColumns

		err := tx.GetContext(ctx, &list, query, to, types.JSONText(reportJSON), jobID, from)
		if err == nil {
			return nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("failed to update list status: %w", err)
		}

		var exists bool
		if err := tx.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM email_lists WHERE job_id = $1)`, jobID); err != nil {
			return fmt.Errorf("failed to check list: %w", err)
		}
		if !exists {
			return fmt.Errorf("%w: list %s", domain.ErrNotFound, jobID)
		}
		return fmt.Errorf("%w: list %s is no longer %s", domain.ErrStatusConflict, jobID, from)
	})
	if err != nil {
		return nil, err
	}

	return &list, nil
}

// MoveToFolder sets or clears the folder of a list. Both the list and the
// folder must belong to userID.
func (s *Storage) MoveToFolder(ctx context.Context, jobID, userID string, folderID *string) (*model.EmailList, error) {
	query := `
		UPDATE email_lists
		SET folder_id = $1, updated_at = NOW()
		WHERE job_id = $2 AND user_id = $3
		  AND ($1::uuid IS NULL OR EXISTS (SELECT 1 FROM folders WHERE id = $1::uuid AND user_id = $3))
		RETURNING ` + listColumns

	var list model.EmailList
	if err := s.db.GetContext(ctx, &list, query, folderID, jobID, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) || isForeignKeyViolation(err) {
			return nil, fmt.Errorf("%w: list %s or folder", domain.ErrNotFound, jobID)
		}
		return nil, fmt.Errorf("failed to move list: %w", err)
	}

	return &list, nil
}

// DeleteList removes the local record only
func (s *Storage) DeleteList(ctx context.Context, jobID, userID string) (*model.EmailList, error) {
	query := `DELETE FROM email_lists WHERE job_id = $1 AND user_id = $2 RETURNING ` + listColumns

	var list model.EmailList
	if err := s.db.GetContext(ctx, &list, query, jobID, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: list %s", domain.ErrNotFound, jobID)
		}
		return nil, fmt.Errorf("failed to delete list: %w", err)
	}

	return &list, nil
}
