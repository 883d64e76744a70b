package dto

import (
	"encoding/json"
	"time"

	"github.com/cuongbtq/email-verifier-be/internal/api/domain"
	"github.com/cuongbtq/email-verifier-be/internal/api/model"
)

const singleIDPrefix = "single_"

type JobIDRequest struct {
	JobID string `json:"jobId" binding:"required"`
}

type SingleVerifyRequest struct {
	Email string `json:"email"`
}

type MoveToFolderRequest struct {
	JobID    string  `json:"jobId" binding:"required"`
	FolderID *string `json:"folderId"`
}

type StatusQuery struct {
	JobID string `form:"jobId"`
}

type ListListsRequest struct {
	Status   string `form:"status"`
	Search   string `form:"search"`
	PageSize int    `form:"page_size"`
	Cursor   string `form:"cursor"`
}

type ListListsResponse struct {
	Lists      []EmailListDTO `json:"lists"`
	NextCursor string         `json:"nextCursor,omitempty"`
	Stats      ListStatsDTO   `json:"stats"`
}

// ListStatsDTO covers every record matching the filter, across all pages
type ListStatsDTO struct {
	StatusCounts     map[string]int `json:"statusCounts"`
	TotalEmails      int64          `json:"totalEmails"`
	TotalCreditsUsed int64          `json:"totalCreditsUsed"`
}

type EmailListDTO struct {
	JobID       string        `json:"jobId"`
	ListName    string        `json:"listName"`
	Filename    string        `json:"filename"`
	Size        int64         `json:"size"`
	Status      string        `json:"status"`
	TotalEmails int           `json:"totalEmails"`
	Report      domain.Report `json:"report"`
	CreatedAt   string        `json:"createdAt"`
	FolderID    *string       `json:"folderId"`
	IsSingle    bool          `json:"isSingleEmail,omitempty"`
}

// BulkStatusEntry carries either the synced list or the error for one job
type BulkStatusEntry struct {
	JobID string        `json:"jobId"`
	Data  *EmailListDTO `json:"data,omitempty"`
	Error string        `json:"error,omitempty"`
}

type ValidationDTO struct {
	ID          string  `json:"id"`
	Email       string  `json:"email"`
	Status      string  `json:"status"`
	Provider    string  `json:"provider"`
	UsedCredits int     `json:"usedCredits"`
	FolderID    *string `json:"folderId"`
	CreatedAt   string  `json:"createdAt"`
}

// SingleVerifyResponse carries the provider verdict and, once stored, the
// record clients use to move or delete the check.
type SingleVerifyResponse struct {
	Validation *ValidationDTO  `json:"validation,omitempty"`
	Result     json.RawMessage `json:"result"`
}

func NewEmailListDTO(l *model.EmailList) EmailListDTO {
	// an undecodable snapshot is shown as empty
	report, _ := l.DecodeReport()
	return EmailListDTO{
		JobID:       l.JobID,
		ListName:    l.ListName,
		Filename:    l.Filename,
		Size:        l.Size,
		Status:      string(l.Status),
		TotalEmails: l.TotalEmails,
		Report:      report,
		CreatedAt:   l.CreatedAt.Format(time.RFC3339),
		FolderID:    l.FolderID,
	}
}

// NewSingleListDTO presents a single validation as a completed
// one-address list.
func NewSingleListDTO(v *model.EmailValidation) EmailListDTO {
	report := domain.Report{Status: v.Status, Total: 1, Verified: 1}
	switch v.Status {
	case "deliverable":
		report.Results.Deliverable = 1
	case "undeliverable":
		report.Results.Undeliverable = 1
	case "accept_all", "accept-all":
		report.Results.AcceptAll = 1
	default:
		report.Results.Unknown = 1
	}

	return EmailListDTO{
		JobID:       singleIDPrefix + v.ID,
		ListName:    "Single: " + v.Email,
		Status:      string(domain.JobStatusCompleted),
		TotalEmails: 1,
		Report:      report,
		CreatedAt:   v.CreatedAt.Format(time.RFC3339),
		FolderID:    v.FolderID,
		IsSingle:    true,
	}
}

func NewValidationDTO(v *model.EmailValidation) ValidationDTO {
	return ValidationDTO{
		ID:          singleIDPrefix + v.ID,
		Email:       v.Email,
		Status:      v.Status,
		Provider:    v.Provider,
		UsedCredits: v.UsedCredits,
		FolderID:    v.FolderID,
		CreatedAt:   v.CreatedAt.Format(time.RFC3339),
	}
}
