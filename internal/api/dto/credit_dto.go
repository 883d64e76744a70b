package dto

import (
	"time"

	"github.com/cuongbtq/email-verifier-be/internal/api/model"
)

type CreditHistoryRequest struct {
	Page  int `form:"page"`
	Limit int `form:"limit"`
}

type CreditBalanceDTO struct {
	Balance  int64 `json:"balance"`
	Consumed int64 `json:"consumed"`
	Added    int64 `json:"added"`
}

type CreditEntryDTO struct {
	ID           string `json:"id"`
	Amount       int64  `json:"amount"`
	Reason       string `json:"reason"`
	Category     string `json:"category"`
	BalanceAfter int64  `json:"balanceAfter"`
	CreatedAt    string `json:"createdAt"`
}

type CreditHistoryResponse struct {
	Entries []CreditEntryDTO `json:"entries"`
	Page    int              `json:"page"`
	Limit   int              `json:"limit"`
	Total   int              `json:"total"`
}

func NewCreditEntryDTO(e model.CreditEntry) CreditEntryDTO {
	return CreditEntryDTO{
		ID:           e.ID,
		Amount:       e.Amount,
		Reason:       e.Reason,
		Category:     string(e.Category),
		BalanceAfter: e.BalanceAfter,
		CreatedAt:    e.CreatedAt.Format(time.RFC3339),
	}
}
