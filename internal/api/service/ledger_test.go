package service_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/cuongbtq/email-verifier-be/internal/api/domain"
	"github.com/cuongbtq/email-verifier-be/internal/api/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedger_HasEnoughCredits(t *testing.T) {
	store := newMemStore()
	store.setBalance(testUser, 10)
	ledger := service.NewLedger(store, discardLogger())

	tests := []struct {
		amount int64
		want   bool
	}{
		{0, true},
		{9, true},
		{10, true},
		{11, false},
	}
	for _, tt := range tests {
		ok, err := ledger.HasEnoughCredits(context.Background(), testUser, tt.amount)
		require.NoError(t, err)
		assert.Equal(t, tt.want, ok, "amount %d", tt.amount)
	}

	ok, err := ledger.HasEnoughCredits(context.Background(), "unknown-user", 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLedger_DeductNeverOverdraws(t *testing.T) {
	store := newMemStore()
	store.setBalance(testUser, 10)
	ledger := service.NewLedger(store, discardLogger())

	_, err := ledger.DeductCredits(context.Background(), testUser, 11, "too much", domain.CategoryVerifiedList)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientCredits))
	assert.Equal(t, int64(10), store.balance(testUser))
	assert.Empty(t, store.entries())
}

func TestLedger_ConcurrentDeductions(t *testing.T) {
	store := newMemStore()
	store.setBalance(testUser, 10)
	ledger := service.NewLedger(store, discardLogger())

	var succeeded atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := ledger.DeductCredits(context.Background(), testUser, 1, "single", domain.CategoryVerifiedEmail); err == nil {
				succeeded.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(10), succeeded.Load())
	assert.Equal(t, int64(0), store.balance(testUser))
	assert.Len(t, store.entries(), 10)
}

func TestLedger_SummaryAndHistory(t *testing.T) {
	store := newMemStore()
	ledger := service.NewLedger(store, discardLogger())
	ctx := context.Background()

	_, err := ledger.AddCredits(ctx, testUser, 100, "Purchase")
	require.NoError(t, err)
	_, err = ledger.DeductCredits(ctx, testUser, 42, `Used In Verifying "Leads" List`, domain.CategoryVerifiedList)
	require.NoError(t, err)
	_, err = ledger.DeductCredits(ctx, testUser, 1, "Used In Verifying Email: a@x.io", domain.CategoryVerifiedEmail)
	require.NoError(t, err)

	summary, err := ledger.Summary(ctx, testUser)
	require.NoError(t, err)
	assert.Equal(t, int64(57), summary.Balance)
	assert.Equal(t, int64(43), summary.Consumed)
	assert.Equal(t, int64(100), summary.Added)

	page, total, err := ledger.History(ctx, testUser, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, page, 2)
	assert.Equal(t, int64(-1), page[0].Amount)

	page, _, err = ledger.History(ctx, testUser, 2, 2)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, domain.CategoryPurchase, page[0].Category)

	_, _, err = ledger.History(ctx, testUser, 0, 10)
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestLedger_AddCreditsRejectsNonPositive(t *testing.T) {
	store := newMemStore()
	ledger := service.NewLedger(store, discardLogger())

	for _, amount := range []int64{0, -5} {
		_, err := ledger.AddCredits(context.Background(), testUser, amount, "Purchase")
		assert.True(t, errors.Is(err, domain.ErrValidation), "amount %d", amount)
	}
	assert.Empty(t, store.entries())
}

func TestLedger_DeductRejectsNonPositive(t *testing.T) {
	store := newMemStore()
	store.setBalance(testUser, 10)
	ledger := service.NewLedger(store, discardLogger())

	_, err := ledger.DeductCredits(context.Background(), testUser, 0, "nothing", domain.CategoryVerifiedEmail)
	assert.True(t, errors.Is(err, domain.ErrValidation))
	assert.Equal(t, int64(10), store.balance(testUser))
}
