package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/cuongbtq/email-verifier-be/internal/api/domain"
	"github.com/cuongbtq/email-verifier-be/internal/api/model"
	"github.com/google/uuid"
)

const (
	// SingleIDPrefix marks identifiers of single validation records
	SingleIDPrefix = "single_"

	defaultMaxUploadSize = 10 << 20
)

type ListServiceConfig struct {
	MaxUploadSize int64
}

// ListService runs the bulk list lifecycle: upload, start, status,
// listing, move, download and delete.
type ListService struct {
	lists         ListStore
	validations   ValidationStore
	ledger        *Ledger
	provider      Provider
	reconciler    *Reconciler
	activity      ActivityRecorder
	logger        *slog.Logger
	maxUploadSize int64
}

func NewListService(
	lists ListStore,
	validations ValidationStore,
	ledger *Ledger,
	provider Provider,
	reconciler *Reconciler,
	activity ActivityRecorder,
	cfg ListServiceConfig,
	logger *slog.Logger,
) *ListService {
	if cfg.MaxUploadSize <= 0 {
		cfg.MaxUploadSize = defaultMaxUploadSize
	}
	return &ListService{
		lists:         lists,
		validations:   validations,
		ledger:        ledger,
		provider:      provider,
		reconciler:    reconciler,
		activity:      orNop(activity),
		logger:        logger,
		maxUploadSize: cfg.MaxUploadSize,
	}
}

type UploadInput struct {
	ListName string
	Filename string
	Content  []byte
}

// Upload forwards a CSV file to the provider and records the returned job
func (s *ListService) Upload(ctx context.Context, userID string, in UploadInput) (*model.EmailList, error) {
	if len(in.Content) == 0 {
		return nil, fmt.Errorf("%w: file is empty", domain.ErrValidation)
	}
	if int64(len(in.Content)) > s.maxUploadSize {
		return nil, fmt.Errorf("%w: file exceeds %d bytes", domain.ErrValidation, s.maxUploadSize)
	}
	if !strings.EqualFold(filepath.Ext(in.Filename), ".csv") {
		return nil, fmt.Errorf("%w: only csv files are accepted", domain.ErrValidation)
	}

	totalEmails := bytes.Count(in.Content, []byte("@"))
	if totalEmails == 0 {
		return nil, fmt.Errorf("%w: file contains no email addresses", domain.ErrValidation)
	}

	listName := strings.TrimSpace(in.ListName)
	if listName == "" {
		listName = strings.TrimSuffix(in.Filename, filepath.Ext(in.Filename))
	}

	uploaded, err := s.provider.UploadFile(ctx, in.Filename, in.Content)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrProviderUnavailable, err)
	}

	list := &model.EmailList{
		JobID:       uploaded.JobID,
		UserID:      userID,
		ListName:    listName,
		Filename:    in.Filename,
		Size:        int64(len(in.Content)),
		TotalEmails: totalEmails,
	}
	if err := s.lists.CreateList(ctx, list); err != nil {
		return nil, err
	}

	s.logger.Info("List uploaded",
		slog.String("job_id", list.JobID),
		slog.String("user_id", userID),
		slog.Int("total_emails", totalEmails),
	)

	s.activity.Record(ctx, domain.Activity{
		UserID:      userID,
		Module:      domain.ModuleEmailList,
		Action:      domain.ActionUpload,
		Description: fmt.Sprintf("Uploaded list %q", listName),
		Metadata:    map[string]any{"job_id": list.JobID, "total_emails": totalEmails},
	})

	return list, nil
}

// StartVerification starts provider verification of an uploaded list. The
// user must currently hold enough credits for every address in the list.
func (s *ListService) StartVerification(ctx context.Context, userID, jobID string) (*model.EmailList, error) {
	if jobID == "" {
		return nil, fmt.Errorf("%w: jobId is required", domain.ErrValidation)
	}

	list, err := s.lists.GetByJobIDForUser(ctx, jobID, userID)
	if err != nil {
		return nil, err
	}

	ok, err := s.ledger.HasEnoughCredits(ctx, userID, int64(list.TotalEmails))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: list needs %d credits", domain.ErrInsufficientCredits, list.TotalEmails)
	}

	status, err := s.provider.GetStatus(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrProviderUnavailable, err)
	}
	if status == nil || !strings.EqualFold(strings.TrimSpace(status.Status), domain.ProviderStatusReady) {
		current := ""
		if status != nil {
			current = status.Status
		}
		return nil, fmt.Errorf("%w: list is not ready for verification (provider status %q)", domain.ErrValidation, current)
	}

	started, err := s.provider.StartVerification(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrProviderUnavailable, err)
	}
	if !started.Success {
		return nil, fmt.Errorf("%w: start rejected: %s", domain.ErrProviderUnavailable, started.Message)
	}

	s.activity.Record(ctx, domain.Activity{
		UserID:      userID,
		Module:      domain.ModuleEmailList,
		Action:      domain.ActionStartVerify,
		Description: fmt.Sprintf("Started verification of %q", list.ListName),
		Metadata:    map[string]any{"job_id": jobID, "total_emails": list.TotalEmails},
	})

	updated, err := s.reconciler.reconcileList(ctx, list)
	if err != nil {
		s.logger.Warn("Verification started but status sync failed",
			slog.String("job_id", jobID),
			slog.Any("error", err),
		)
		return list, nil
	}

	return updated, nil
}

func (s *ListService) Status(ctx context.Context, userID, jobID string) (*model.EmailList, error) {
	if jobID == "" {
		return nil, fmt.Errorf("%w: jobId is required", domain.ErrValidation)
	}
	return s.reconciler.Reconcile(ctx, userID, jobID)
}

func (s *ListService) BulkStatus(ctx context.Context, userID string) ([]JobResult, error) {
	return s.reconciler.ReconcileAll(ctx, userID)
}

func (s *ListService) Get(ctx context.Context, userID, jobID string) (*model.EmailList, error) {
	return s.lists.GetByJobIDForUser(ctx, jobID, userID)
}

// Delete removes a list at the provider and then locally. When the provider
// refuses, the local record is kept. Identifiers with the single_ prefix
// delete a single validation record instead.
func (s *ListService) Delete(ctx context.Context, userID, id string) error {
	if id == "" {
		return fmt.Errorf("%w: jobId is required", domain.ErrValidation)
	}

	if validationID, ok := strings.CutPrefix(id, SingleIDPrefix); ok {
		if _, err := uuid.Parse(validationID); err != nil {
			return fmt.Errorf("%w: invalid validation id", domain.ErrValidation)
		}
		if err := s.validations.DeleteValidation(ctx, validationID, userID); err != nil {
			return err
		}
		s.recordDelete(ctx, userID, id, domain.ModuleSingleEmail)
		return nil
	}

	list, err := s.lists.GetByJobIDForUser(ctx, id, userID)
	if err != nil {
		return err
	}

	removed, err := s.provider.RemoveJob(ctx, list.JobID)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrProviderUnavailable, err)
	}
	if !removed.Success {
		return fmt.Errorf("%w: provider refused delete: %s", domain.ErrProviderUnavailable, removed.Message)
	}

	if _, err := s.lists.DeleteList(ctx, list.JobID, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.Warn("List vanished after provider delete", slog.String("job_id", list.JobID))
		}
		return err
	}

	s.logger.Info("List deleted", slog.String("job_id", list.JobID), slog.String("user_id", userID))
	s.recordDelete(ctx, userID, list.JobID, domain.ModuleEmailList)

	return nil
}

func (s *ListService) recordDelete(ctx context.Context, userID, id, module string) {
	s.activity.Record(ctx, domain.Activity{
		UserID:      userID,
		Module:      module,
		Action:      domain.ActionDelete,
		Description: "Deleted " + id,
		Metadata:    map[string]any{"id": id},
	})
}

// MoveResult holds whichever record was moved
type MoveResult struct {
	List       *model.EmailList
	Validation *model.EmailValidation
}

// MoveToFolder assigns a list or single validation record to a folder.
// A nil folderID moves the record back to the root.
func (s *ListService) MoveToFolder(ctx context.Context, userID, id string, folderID *string) (*MoveResult, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: jobId is required", domain.ErrValidation)
	}
	if folderID != nil {
		if _, err := uuid.Parse(*folderID); err != nil {
			return nil, fmt.Errorf("%w: invalid folderId", domain.ErrValidation)
		}
	}

	var result MoveResult
	if validationID, ok := strings.CutPrefix(id, SingleIDPrefix); ok {
		if _, err := uuid.Parse(validationID); err != nil {
			return nil, fmt.Errorf("%w: invalid validation id", domain.ErrValidation)
		}
		v, err := s.validations.MoveValidationToFolder(ctx, validationID, userID, folderID)
		if err != nil {
			return nil, err
		}
		result.Validation = v
	} else {
		list, err := s.lists.MoveToFolder(ctx, id, userID, folderID)
		if err != nil {
			return nil, err
		}
		result.List = list
	}

	folder := ""
	if folderID != nil {
		folder = *folderID
	}
	s.activity.Record(ctx, domain.Activity{
		UserID:      userID,
		Module:      domain.ModuleEmailList,
		Action:      domain.ActionMoveToFolder,
		Description: "Moved " + id,
		Metadata:    map[string]any{"id": id, "folder_id": folder},
	})

	return &result, nil
}

// Download streams the provider report of a completed list
func (s *ListService) Download(ctx context.Context, userID, jobID, filterType string) (io.ReadCloser, *model.EmailList, error) {
	if filterType != "" && !domain.ResultFilters[filterType] {
		return nil, nil, fmt.Errorf("%w: unknown result type %q", domain.ErrValidation, filterType)
	}

	list, err := s.lists.GetByJobIDForUser(ctx, jobID, userID)
	if err != nil {
		return nil, nil, err
	}
	if list.Status != domain.JobStatusCompleted {
		return nil, nil, fmt.Errorf("%w: list verification is not completed", domain.ErrValidation)
	}

	report, err := s.provider.DownloadReport(ctx, jobID, filterType)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", domain.ErrProviderUnavailable, err)
	}

	return report, list, nil
}
