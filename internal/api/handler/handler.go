package handler

import (
	"context"
	"io"
	"log/slog"

	"github.com/cuongbtq/email-verifier-be/internal/api/model"
	"github.com/cuongbtq/email-verifier-be/internal/api/service"
	"github.com/cuongbtq/email-verifier-be/internal/api/storage"
)

// UserIDKey is the gin context key holding the authenticated user id
const UserIDKey = "user_id"

type ListService interface {
	Upload(ctx context.Context, userID string, in service.UploadInput) (*model.EmailList, error)
	StartVerification(ctx context.Context, userID, jobID string) (*model.EmailList, error)
	Status(ctx context.Context, userID, jobID string) (*model.EmailList, error)
	BulkStatus(ctx context.Context, userID string) ([]service.JobResult, error)
	Get(ctx context.Context, userID, jobID string) (*model.EmailList, error)
	List(ctx context.Context, filter storage.ListFilter) (*service.ListPage, error)
	Delete(ctx context.Context, userID, id string) error
	MoveToFolder(ctx context.Context, userID, id string, folderID *string) (*service.MoveResult, error)
	Download(ctx context.Context, userID, jobID, filterType string) (io.ReadCloser, *model.EmailList, error)
}

type SingleVerifier interface {
	Verify(ctx context.Context, userID, email string) (*service.SingleVerification, error)
}

type CreditService interface {
	Summary(ctx context.Context, userID string) (*model.CreditSummary, error)
	History(ctx context.Context, userID string, page, limit int) ([]model.CreditEntry, int, error)
}

// HealthChecker is satisfied by *postgresql.Client
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Dependencies holds all dependencies needed by handlers
type Dependencies struct {
	Logger        *slog.Logger
	Health        HealthChecker
	Lists         ListService
	Single        SingleVerifier
	Credits       CreditService
	JWTSecret     []byte
	MaxUploadSize int64
}

// ListHandler handles email list HTTP requests
type ListHandler struct {
	logger        *slog.Logger
	lists         ListService
	single        SingleVerifier
	maxUploadSize int64
}

func NewListHandler(deps *Dependencies) *ListHandler {
	return &ListHandler{
		logger:        deps.Logger,
		lists:         deps.Lists,
		single:        deps.Single,
		maxUploadSize: deps.MaxUploadSize,
	}
}

// CreditHandler handles credit balance HTTP requests
type CreditHandler struct {
	logger  *slog.Logger
	credits CreditService
}

func NewCreditHandler(deps *Dependencies) *CreditHandler {
	return &CreditHandler{
		logger:  deps.Logger,
		credits: deps.Credits,
	}
}
