package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/cuongbtq/email-verifier-be/internal/api/domain"
	"github.com/cuongbtq/email-verifier-be/internal/api/model"
	"github.com/cuongbtq/email-verifier-be/shared/postgresql"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const ledgerColumns = `id, user_id, amount, reason, category, balance_after, created_at`

// Balance returns the current balance; users without a balance row have 0
func (s *Storage) Balance(ctx context.Context, userID string) (int64, error) {
	var balance int64
	err := s.db.GetContext(ctx, &balance, `SELECT balance FROM credit_balances WHERE user_id = $1`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get balance: %w", err)
	}
	return balance, nil
}

// DeductCredits atomically decrements the balance and appends a ledger entry
func (s *Storage) DeductCredits(ctx context.Context, charge domain.Charge) (*model.CreditEntry, error) {
	var entry *model.CreditEntry
	err := postgresql.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		var err error
		entry, err = s.deductTx(ctx, tx, charge)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// deductTx is the decrement-if-sufficient step. Zero affected rows means
// the balance is missing or too low and nothing is applied.
func (s *Storage) deductTx(ctx context.Context, tx *sqlx.Tx, charge domain.Charge) (*model.CreditEntry, error) {
	if charge.Amount <= 0 {
		return nil, fmt.Errorf("%w: deduction amount must be positive, got %d", domain.ErrValidation, charge.Amount)
	}

	var balance int64
	err := tx.GetContext(ctx, &balance, `
		UPDATE credit_balances
		SET balance = balance - $2, updated_at = NOW()
		WHERE user_id = $1 AND balance >= $2
		RETURNING balance
	`, charge.UserID, charge.Amount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || isCheckViolation(err) {
			return nil, fmt.Errorf("%w: need %d", domain.ErrInsufficientCredits, charge.Amount)
		}
		return nil, fmt.Errorf("failed to deduct credits: %w", err)
	}

	return insertLedgerTx(ctx, tx, charge.UserID, -charge.Amount, charge.Reason, charge.Category, balance)
}

// AddCredits tops up the balance, creating the balance row on first use
func (s *Storage) AddCredits(ctx context.Context, userID string, amount int64, reason string, category domain.CreditCategory) (*model.CreditEntry, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: credit amount must be positive, got %d", domain.ErrValidation, amount)
	}

	var entry *model.CreditEntry
	err := postgresql.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		var balance int64
		err := tx.GetContext(ctx, &balance, `
			INSERT INTO credit_balances (user_id, balance, updated_at)
			VALUES ($1, $2, NOW())
			ON CONFLICT (user_id)
			DO UPDATE SET balance = credit_balances.balance + EXCLUDED.balance, updated_at = NOW()
			RETURNING balance
		`, userID, amount)
		if err != nil {
			return fmt.Errorf("failed to add credits: %w", err)
		}

		entry, err = insertLedgerTx(ctx, tx, userID, amount, reason, category, balance)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func insertLedgerTx(
	ctx context.Context,
	tx *sqlx.Tx,
	userID string,
	amount int64,
	reason string,
	category domain.CreditCategory,
	balanceAfter int64,
) (*model.CreditEntry, error) {
	var entry model.CreditEntry
	err := tx.GetContext(ctx, &entry, `
		INSERT INTO credit_ledger (id, user_id, amount, reason, category, balance_after, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING `+ledgerColumns,
		uuid.NewString(), userID, amount, reason, category, balanceAfter,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to append ledger entry: %w", err)
	}
	return &entry, nil
}

// Summary reports the balance with lifetime consumed and added totals
func (s *Storage) Summary(ctx context.Context, userID string) (*model.CreditSummary, error) {
	var summary model.CreditSummary
	query := `
		SELECT
			COALESCE((SELECT balance FROM credit_balances WHERE user_id = $1), 0) AS balance,
			COALESCE(SUM(-amount) FILTER (WHERE amount < 0), 0) AS consumed,
			COALESCE(SUM(amount) FILTER (WHERE amount > 0), 0) AS added
		FROM credit_ledger
		WHERE user_id = $1
	`
	if err := s.db.GetContext(ctx, &summary, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get credit summary: %w", err)
	}
	return &summary, nil
}

// History returns ledger entries newest first, with the total entry count
func (s *Storage) History(ctx context.Context, userID string, limit, offset int) ([]model.CreditEntry, int, error) {
	var total int
	if err := s.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM credit_ledger WHERE user_id = $1`, userID); err != nil {
		return nil, 0, fmt.Errorf("failed to count ledger entries: %w", err)
	}

	entries := []model.CreditEntry{}
	query := `SELECT ` + ledgerColumns + ` FROM credit_ledger WHERE user_id = $1
		ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3`
	if err := s.db.SelectContext(ctx, &entries, query, userID, limit, offset); err != nil {
		return nil, 0, fmt.Errorf("failed to list ledger entries: %w", err)
	}

	return entries, total, nil
}
