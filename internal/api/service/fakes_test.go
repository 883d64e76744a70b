package service_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cuongbtq/email-verifier-be/internal/api/domain"
	"github.com/cuongbtq/email-verifier-be/internal/api/model"
	"github.com/cuongbtq/email-verifier-be/internal/api/storage"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memStore is an in-memory ListStore, CreditStore and ValidationStore with
// the same conditional write semantics as the Postgres storage.
type memStore struct {
	mu          sync.Mutex
	lists       map[string]*model.EmailList
	balances    map[string]int64
	ledger      []model.CreditEntry
	validations map[string]*model.EmailValidation
	folders     map[string]string // folder id -> owner
	writes      int
	seq         int

	validationListCalls int

	beforeTransition    func()
	deductErr           error
	createValidationErr error
}

func newMemStore() *memStore {
	return &memStore{
		lists:       map[string]*model.EmailList{},
		balances:    map[string]int64{},
		validations: map[string]*model.EmailValidation{},
		folders:     map[string]string{},
	}
}

func (m *memStore) addList(l model.EmailList) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.Status == "" {
		l.Status = domain.JobStatusUnprocessed
	}
	if len(l.Report) == 0 {
		l.Report = types.JSONText(`{}`)
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Date(2025, 1, 1, 0, 0, m.seq, 0, time.UTC)
	}
	m.lists[l.JobID] = &l
}

func (m *memStore) setBalance(userID string, balance int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[userID] = balance
}

func (m *memStore) balance(userID string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balances[userID]
}

func (m *memStore) entries() []model.CreditEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.CreditEntry(nil), m.ledger...)
}

func (m *memStore) list(jobID string) (model.EmailList, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.lists[jobID]
	if !ok {
		return model.EmailList{}, false
	}
	return *l, true
}

func (m *memStore) writeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

func (m *memStore) CreateList(_ context.Context, list *model.EmailList) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.lists[list.JobID]; ok {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateJob, list.JobID)
	}
	m.seq++
	list.ID = uuid.NewString()
	list.Status = domain.JobStatusUnprocessed
	list.Report = types.JSONText(`{}`)
	list.CreatedAt = time.Date(2025, 1, 1, 0, 0, m.seq, 0, time.UTC)
	list.UpdatedAt = list.CreatedAt
	cp := *list
	m.lists[list.JobID] = &cp
	return nil
}

func (m *memStore) GetByJobID(_ context.Context, jobID string) (*model.EmailList, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.lists[jobID]
	if !ok {
		return nil, fmt.Errorf("%w: list %s", domain.ErrNotFound, jobID)
	}
	cp := *l
	return &cp, nil
}

func (m *memStore) GetByJobIDForUser(ctx context.Context, jobID, userID string) (*model.EmailList, error) {
	l, err := m.GetByJobID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if l.UserID != userID {
		return nil, fmt.Errorf("%w: list %s", domain.ErrNotFound, jobID)
	}
	return l, nil
}

// afterCursor reports whether a row sorts after the cursor in
// created_at, key descending order.
func afterCursor(cursor *storage.ListCursor, createdAt time.Time, key string) bool {
	if cursor == nil {
		return true
	}
	if !createdAt.Equal(cursor.CreatedAt) {
		return createdAt.Before(cursor.CreatedAt)
	}
	return key < cursor.JobID
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func (m *memStore) matchingLists(filter storage.ListFilter) []model.EmailList {
	all, _ := m.ListAllForUser(context.Background(), filter.UserID)
	var out []model.EmailList
	for _, l := range all {
		if filter.Status != "" && string(l.Status) != filter.Status {
			continue
		}
		if filter.Search != "" && !containsFold(l.ListName, filter.Search) {
			continue
		}
		out = append(out, l)
	}
	return out
}

func (m *memStore) ListLists(_ context.Context, filter storage.ListFilter) ([]model.EmailList, error) {
	var out []model.EmailList
	for _, l := range m.matchingLists(filter) {
		if !afterCursor(filter.Cursor, l.CreatedAt, l.JobID) {
			continue
		}
		out = append(out, l)
		if filter.PageSize > 0 && len(out) == filter.PageSize+1 {
			break
		}
	}
	return out, nil
}

func (m *memStore) ListStats(_ context.Context, filter storage.ListFilter) ([]model.StatusStat, error) {
	byStatus := map[domain.JobStatus]*model.StatusStat{}
	var order []domain.JobStatus
	for _, l := range m.matchingLists(filter) {
		st, ok := byStatus[l.Status]
		if !ok {
			st = &model.StatusStat{Status: l.Status}
			byStatus[l.Status] = st
			order = append(order, l.Status)
		}
		st.Count++
		st.TotalEmails += int64(l.TotalEmails)
		if l.Status == domain.JobStatusCompleted {
			report, _ := l.DecodeReport()
			st.CreditsUsed += int64(report.Verified)
		}
	}
	out := make([]model.StatusStat, 0, len(order))
	for _, status := range order {
		out = append(out, *byStatus[status])
	}
	return out, nil
}

func (m *memStore) ListAllForUser(_ context.Context, userID string) ([]model.EmailList, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.EmailList
	for _, l := range m.lists {
		if l.UserID == userID {
			out = append(out, *l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memStore) TransitionJob(
	_ context.Context,
	jobID string,
	from, to domain.JobStatus,
	report domain.Report,
	charge *domain.Charge,
) (*model.EmailList, error) {
	if hook := m.beforeTransition; hook != nil {
		m.beforeTransition = nil
		hook()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	l, ok := m.lists[jobID]
	if !ok {
		return nil, fmt.Errorf("%w: list %s", domain.ErrNotFound, jobID)
	}
	if l.Status != from {
		return nil, fmt.Errorf("%w: list %s", domain.ErrStatusConflict, jobID)
	}
	if charge != nil {
		if _, err := m.deductLocked(*charge); err != nil {
			return nil, err
		}
	}

	raw, _ := json.Marshal(report)
	l.Status = to
	l.Report = types.JSONText(raw)
	l.UpdatedAt = time.Now()
	m.writes++

	cp := *l
	return &cp, nil
}

func (m *memStore) MoveToFolder(_ context.Context, jobID, userID string, folderID *string) (*model.EmailList, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.lists[jobID]
	if !ok || l.UserID != userID {
		return nil, fmt.Errorf("%w: list %s", domain.ErrNotFound, jobID)
	}
	if folderID != nil && m.folders[*folderID] != userID {
		return nil, fmt.Errorf("%w: folder", domain.ErrNotFound)
	}
	l.FolderID = folderID
	cp := *l
	return &cp, nil
}

func (m *memStore) DeleteList(_ context.Context, jobID, userID string) (*model.EmailList, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.lists[jobID]
	if !ok || l.UserID != userID {
		return nil, fmt.Errorf("%w: list %s", domain.ErrNotFound, jobID)
	}
	delete(m.lists, jobID)
	return l, nil
}

func (m *memStore) Balance(_ context.Context, userID string) (int64, error) {
	return m.balance(userID), nil
}

func (m *memStore) DeductCredits(_ context.Context, charge domain.Charge) (*model.CreditEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deductErr != nil {
		return nil, m.deductErr
	}
	return m.deductLocked(charge)
}

func (m *memStore) deductLocked(charge domain.Charge) (*model.CreditEntry, error) {
	if charge.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount", domain.ErrValidation)
	}
	if m.balances[charge.UserID] < charge.Amount {
		return nil, fmt.Errorf("%w: need %d", domain.ErrInsufficientCredits, charge.Amount)
	}
	m.balances[charge.UserID] -= charge.Amount
	entry := model.CreditEntry{
		ID:           uuid.NewString(),
		UserID:       charge.UserID,
		Amount:       -charge.Amount,
		Reason:       charge.Reason,
		Category:     charge.Category,
		BalanceAfter: m.balances[charge.UserID],
		CreatedAt:    time.Now(),
	}
	m.ledger = append(m.ledger, entry)
	return &entry, nil
}

func (m *memStore) AddCredits(_ context.Context, userID string, amount int64, reason string, category domain.CreditCategory) (*model.CreditEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount", domain.ErrValidation)
	}
	m.balances[userID] += amount
	entry := model.CreditEntry{
		ID:           uuid.NewString(),
		UserID:       userID,
		Amount:       amount,
		Reason:       reason,
		Category:     category,
		BalanceAfter: m.balances[userID],
		CreatedAt:    time.Now(),
	}
	m.ledger = append(m.ledger, entry)
	return &entry, nil
}

func (m *memStore) Summary(_ context.Context, userID string) (*model.CreditSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := &model.CreditSummary{Balance: m.balances[userID]}
	for _, e := range m.ledger {
		if e.UserID != userID {
			continue
		}
		if e.Amount < 0 {
			s.Consumed += -e.Amount
		} else {
			s.Added += e.Amount
		}
	}
	return s, nil
}

func (m *memStore) History(_ context.Context, userID string, limit, offset int) ([]model.CreditEntry, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var mine []model.CreditEntry
	for i := len(m.ledger) - 1; i >= 0; i-- {
		if m.ledger[i].UserID == userID {
			mine = append(mine, m.ledger[i])
		}
	}
	total := len(mine)
	if offset >= total {
		return []model.CreditEntry{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return mine[offset:end], total, nil
}

func (m *memStore) CreateValidation(_ context.Context, v *model.EmailValidation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createValidationErr != nil {
		return m.createValidationErr
	}
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	v.CreatedAt = time.Now()
	cp := *v
	m.validations[v.ID] = &cp
	return nil
}

func (m *memStore) MoveValidationToFolder(_ context.Context, id, userID string, folderID *string) (*model.EmailValidation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.validations[id]
	if !ok || v.UserID != userID {
		return nil, fmt.Errorf("%w: validation %s", domain.ErrNotFound, id)
	}
	if folderID != nil && m.folders[*folderID] != userID {
		return nil, fmt.Errorf("%w: folder", domain.ErrNotFound)
	}
	v.FolderID = folderID
	cp := *v
	return &cp, nil
}

func (m *memStore) DeleteValidation(_ context.Context, id, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.validations[id]
	if !ok || v.UserID != userID {
		return fmt.Errorf("%w: validation %s", domain.ErrNotFound, id)
	}
	delete(m.validations, id)
	return nil
}

func (m *memStore) addValidation(v model.EmailValidation) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	if v.UsedCredits == 0 {
		v.UsedCredits = 1
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Date(2025, 1, 1, 0, 0, m.seq, 0, time.UTC)
	}
	m.validations[v.ID] = &v
}

func (m *memStore) matchingValidations(filter storage.ListFilter) []model.EmailValidation {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.EmailValidation
	for _, v := range m.validations {
		if v.UserID != filter.UserID {
			continue
		}
		if filter.Search != "" && !containsFold(v.Email, filter.Search) {
			continue
		}
		out = append(out, *v)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func (m *memStore) ListValidations(_ context.Context, filter storage.ListFilter) ([]model.EmailValidation, error) {
	m.mu.Lock()
	m.validationListCalls++
	m.mu.Unlock()

	var out []model.EmailValidation
	for _, v := range m.matchingValidations(filter) {
		if !afterCursor(filter.Cursor, v.CreatedAt, "single_"+v.ID) {
			continue
		}
		out = append(out, v)
		if filter.PageSize > 0 && len(out) == filter.PageSize+1 {
			break
		}
	}
	return out, nil
}

func (m *memStore) ValidationStats(_ context.Context, filter storage.ListFilter) (*model.StatusStat, error) {
	stat := &model.StatusStat{Status: domain.JobStatusCompleted}
	for _, v := range m.matchingValidations(filter) {
		stat.Count++
		stat.CreditsUsed += int64(v.UsedCredits)
	}
	stat.TotalEmails = int64(stat.Count)
	return stat, nil
}

func (m *memStore) validationCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.validations)
}
