package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cuongbtq/email-verifier-be/internal/api/domain"
	"github.com/cuongbtq/email-verifier-be/internal/api/model"
)

// Ledger is the per-user credit balance
type Ledger struct {
	store  CreditStore
	logger *slog.Logger
}

func NewLedger(store CreditStore, logger *slog.Logger) *Ledger {
	return &Ledger{store: store, logger: logger}
}

// HasEnoughCredits is a read-only pre-check. DeductCredits re-checks
// atomically, so a true result here is not a reservation.
func (l *Ledger) HasEnoughCredits(ctx context.Context, userID string, amount int64) (bool, error) {
	balance, err := l.store.Balance(ctx, userID)
	if err != nil {
		return false, err
	}
	return balance >= amount, nil
}

func (l *Ledger) DeductCredits(ctx context.Context, userID string, amount int64, description string, category domain.CreditCategory) (*model.CreditEntry, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", domain.ErrValidation)
	}

	entry, err := l.store.DeductCredits(ctx, domain.Charge{
		UserID:   userID,
		Amount:   amount,
		Reason:   description,
		Category: category,
	})
	if err != nil {
		return nil, err
	}

	l.logger.Info("Credits deducted",
		slog.String("user_id", userID),
		slog.Int64("amount", amount),
		slog.String("category", string(category)),
		slog.Int64("balance_after", entry.BalanceAfter),
	)

	return entry, nil
}

func (l *Ledger) AddCredits(ctx context.Context, userID string, amount int64, description string) (*model.CreditEntry, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", domain.ErrValidation)
	}

	entry, err := l.store.AddCredits(ctx, userID, amount, description, domain.CategoryPurchase)
	if err != nil {
		return nil, err
	}

	l.logger.Info("Credits added",
		slog.String("user_id", userID),
		slog.Int64("amount", amount),
		slog.Int64("balance_after", entry.BalanceAfter),
	)

	return entry, nil
}

func (l *Ledger) Summary(ctx context.Context, userID string) (*model.CreditSummary, error) {
	return l.store.Summary(ctx, userID)
}

// History pages through ledger entries. page starts at 1.
func (l *Ledger) History(ctx context.Context, userID string, page, limit int) ([]model.CreditEntry, int, error) {
	if page < 1 || limit < 1 {
		return nil, 0, fmt.Errorf("%w: page and limit must be positive", domain.ErrValidation)
	}
	return l.store.History(ctx, userID, limit, (page-1)*limit)
}
