// Package service holds the list lifecycle, credit ledger and single
// address verification flows.
package service

import (
	"context"
	"io"
	"time"

	"github.com/cuongbtq/email-verifier-be/internal/api/domain"
	"github.com/cuongbtq/email-verifier-be/internal/api/model"
	"github.com/cuongbtq/email-verifier-be/internal/api/storage"
	"github.com/cuongbtq/email-verifier-be/shared/bouncify"
)

// Provider is the external verification service
type Provider interface {
	UploadFile(ctx context.Context, filename string, content []byte) (*bouncify.UploadResponse, error)
	StartVerification(ctx context.Context, jobID string) (*bouncify.StartResponse, error)
	GetStatus(ctx context.Context, jobID string) (*bouncify.StatusResponse, error)
	RemoveJob(ctx context.Context, jobID string) (*bouncify.RemoveResponse, error)
	DownloadReport(ctx context.Context, jobID, filterType string) (io.ReadCloser, error)
	VerifySingle(ctx context.Context, email string) (*bouncify.SingleResult, error)
}

type ListStore interface {
	CreateList(ctx context.Context, list *model.EmailList) error
	GetByJobID(ctx context.Context, jobID string) (*model.EmailList, error)
	GetByJobIDForUser(ctx context.Context, jobID, userID string) (*model.EmailList, error)
	ListLists(ctx context.Context, filter storage.ListFilter) ([]model.EmailList, error)
	ListStats(ctx context.Context, filter storage.ListFilter) ([]model.StatusStat, error)
	ListAllForUser(ctx context.Context, userID string) ([]model.EmailList, error)
	TransitionJob(ctx context.Context, jobID string, from, to domain.JobStatus, report domain.Report, charge *domain.Charge) (*model.EmailList, error)
	MoveToFolder(ctx context.Context, jobID, userID string, folderID *string) (*model.EmailList, error)
	DeleteList(ctx context.Context, jobID, userID string) (*model.EmailList, error)
}

type CreditStore interface {
	Balance(ctx context.Context, userID string) (int64, error)
	DeductCredits(ctx context.Context, charge domain.Charge) (*model.CreditEntry, error)
	AddCredits(ctx context.Context, userID string, amount int64, reason string, category domain.CreditCategory) (*model.CreditEntry, error)
	Summary(ctx context.Context, userID string) (*model.CreditSummary, error)
	History(ctx context.Context, userID string, limit, offset int) ([]model.CreditEntry, int, error)
}

type ValidationStore interface {
	CreateValidation(ctx context.Context, v *model.EmailValidation) error
	MoveValidationToFolder(ctx context.Context, id, userID string, folderID *string) (*model.EmailValidation, error)
	DeleteValidation(ctx context.Context, id, userID string) error
	ListValidations(ctx context.Context, filter storage.ListFilter) ([]model.EmailValidation, error)
	ValidationStats(ctx context.Context, filter storage.ListFilter) (*model.StatusStat, error)
}

// Locker serializes work on a key across processes. A false result with a
// nil error means someone else holds the lock.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (func(), bool, error)
}

// ActivityRecorder emits activity log events. Implementations must not fail
// the caller.
type ActivityRecorder interface {
	Record(ctx context.Context, a domain.Activity)
}

type nopRecorder struct{}

func (nopRecorder) Record(context.Context, domain.Activity) {}

func orNop(r ActivityRecorder) ActivityRecorder {
	if r == nil {
		return nopRecorder{}
	}
	return r
}
