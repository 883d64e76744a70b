package model

import (
	"time"

	"github.com/cuongbtq/email-verifier-be/internal/api/domain"
	"github.com/jmoiron/sqlx/types"
)

// EmailList is one uploaded list tracked by a provider job
type EmailList struct {
	ID          string           `db:"id"`
	JobID       string           `db:"job_id"`
	UserID      string           `db:"user_id"`
	ListName    string           `db:"list_name"`
	Filename    string           `db:"filename"`
	Size        int64            `db:"size"`
	TotalEmails int              `db:"total_emails"`
	Status      domain.JobStatus `db:"status"`
	Report      types.JSONText   `db:"report"`
	FolderID    *string          `db:"folder_id"`
	CreatedAt   time.Time        `db:"created_at"`
	UpdatedAt   time.Time        `db:"updated_at"`
}

// DecodeReport returns the stored provider snapshot
func (l *EmailList) DecodeReport() (domain.Report, error) {
	var r domain.Report
	if len(l.Report) == 0 {
		return r, nil
	}
	err := l.Report.Unmarshal(&r)
	return r, err
}

type CreditEntry struct {
	ID           string                `db:"id"`
	UserID       string                `db:"user_id"`
	Amount       int64                 `db:"amount"`
	Reason       string                `db:"reason"`
	Category     domain.CreditCategory `db:"category"`
	BalanceAfter int64                 `db:"balance_after"`
	CreatedAt    time.Time             `db:"created_at"`
}

type CreditSummary struct {
	Balance  int64 `db:"balance"`
	Consumed int64 `db:"consumed"`
	Added    int64 `db:"added"`
}

// EmailValidation is a persisted single-address verification
type EmailValidation struct {
	ID          string         `db:"id"`
	UserID      string         `db:"user_id"`
	Email       string         `db:"email"`
	Status      string         `db:"status"`
	Provider    string         `db:"provider"`
	UsedCredits int            `db:"used_credits"`
	Result      types.JSONText `db:"result"`
	FolderID    *string        `db:"folder_id"`
	CreatedAt   time.Time      `db:"created_at"`
}

// StatusStat aggregates the listing rows sharing one status
type StatusStat struct {
	Status      domain.JobStatus `db:"status"`
	Count       int              `db:"count"`
	TotalEmails int64            `db:"total_emails"`
	CreditsUsed int64            `db:"credits_used"`
}
