package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/cuongbtq/email-verifier-be/internal/api/domain"
	"github.com/cuongbtq/email-verifier-be/internal/api/model"
	"github.com/cuongbtq/email-verifier-be/internal/api/storage"
	"golang.org/x/sync/errgroup"
)

const defaultPageSize = 20

// ListEntry is one row of the combined listing: a bulk list or a single
// validation, never both.
type ListEntry struct {
	List       *model.EmailList
	Validation *model.EmailValidation
}

// Key is the identifier clients pass back to move, delete or page from
func (e ListEntry) Key() string {
	if e.Validation != nil {
		return SingleIDPrefix + e.Validation.ID
	}
	return e.List.JobID
}

func (e ListEntry) CreatedAt() time.Time {
	if e.Validation != nil {
		return e.Validation.CreatedAt
	}
	return e.List.CreatedAt
}

// ListStats summarizes everything matching the filter, not just one page.
// Single validations count as completed one-address jobs.
type ListStats struct {
	StatusCounts     map[domain.JobStatus]int
	TotalEmails      int64
	TotalCreditsUsed int64
}

type ListPage struct {
	Entries []ListEntry
	HasMore bool
	Stats   ListStats
}

// List returns one page of the user's bulk lists and single validations,
// newest first, with stats over every matching record.
func (s *ListService) List(ctx context.Context, filter storage.ListFilter) (*ListPage, error) {
	if filter.Status != "" && !domain.JobStatus(filter.Status).Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, filter.Status)
	}
	if filter.PageSize <= 0 {
		filter.PageSize = defaultPageSize
	}
	withSingles := filter.Status == "" || filter.Status == string(domain.JobStatusCompleted)

	var (
		lists       []model.EmailList
		listStats   []model.StatusStat
		singles     []model.EmailValidation
		singleStats *model.StatusStat
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		lists, err = s.lists.ListLists(gctx, filter)
		return err
	})
	g.Go(func() (err error) {
		listStats, err = s.lists.ListStats(gctx, filter)
		return err
	})
	if withSingles {
		g.Go(func() (err error) {
			singles, err = s.validations.ListValidations(gctx, filter)
			return err
		})
		g.Go(func() (err error) {
			singleStats, err = s.validations.ValidationStats(gctx, filter)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	entries := make([]ListEntry, 0, len(lists)+len(singles))
	for i := range lists {
		entries = append(entries, ListEntry{List: &lists[i]})
	}
	for i := range singles {
		entries = append(entries, ListEntry{Validation: &singles[i]})
	}

	// same order as the storage keyset: created_at, then key, descending
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if !a.CreatedAt().Equal(b.CreatedAt()) {
			return a.CreatedAt().After(b.CreatedAt())
		}
		return a.Key() > b.Key()
	})

	page := &ListPage{Stats: newListStats(listStats, singleStats)}
	if len(entries) > filter.PageSize {
		entries = entries[:filter.PageSize]
		page.HasMore = true
	}
	page.Entries = entries

	return page, nil
}

func newListStats(lists []model.StatusStat, singles *model.StatusStat) ListStats {
	stats := ListStats{StatusCounts: map[domain.JobStatus]int{}}

	add := func(st model.StatusStat) {
		stats.StatusCounts[st.Status] += st.Count
		stats.TotalEmails += st.TotalEmails
		stats.TotalCreditsUsed += st.CreditsUsed
	}
	for _, st := range lists {
		add(st)
	}
	if singles != nil && singles.Count > 0 {
		add(*singles)
	}

	return stats
}
