package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cuongbtq/email-verifier-be/internal/api/domain"
	"github.com/cuongbtq/email-verifier-be/internal/api/model"
	"github.com/cuongbtq/email-verifier-be/shared/bouncify"
	"golang.org/x/sync/errgroup"
)

const (
	defaultReconcileConcurrency = 8
	defaultLockTTL              = 30 * time.Second
)

type ReconcilerConfig struct {
	Concurrency int
	LockTTL     time.Duration
}

// Reconciler syncs provider job status into list records and charges
// credits when a list first completes.
type Reconciler struct {
	lists       ListStore
	provider    Provider
	locker      Locker
	activity    ActivityRecorder
	logger      *slog.Logger
	concurrency int
	lockTTL     time.Duration
}

// NewReconciler builds a Reconciler. locker and activity may be nil.
func NewReconciler(
	lists ListStore,
	provider Provider,
	locker Locker,
	activity ActivityRecorder,
	cfg ReconcilerConfig,
	logger *slog.Logger,
) *Reconciler {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultReconcileConcurrency
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = defaultLockTTL
	}
	return &Reconciler{
		lists:       lists,
		provider:    provider,
		locker:      locker,
		activity:    orNop(activity),
		logger:      logger,
		concurrency: cfg.Concurrency,
		lockTTL:     cfg.LockTTL,
	}
}

// JobResult is one entry of a batch reconciliation
type JobResult struct {
	JobID string
	List  *model.EmailList
	Err   error
}

// Reconcile syncs a single list owned by userID
func (r *Reconciler) Reconcile(ctx context.Context, userID, jobID string) (*model.EmailList, error) {
	list, err := r.lists.GetByJobIDForUser(ctx, jobID, userID)
	if err != nil {
		return nil, err
	}
	return r.reconcileList(ctx, list)
}

// ReconcileAll syncs every list of the user concurrently. Per-list failures
// are reported in the result slice, which keeps the store order.
func (r *Reconciler) ReconcileAll(ctx context.Context, userID string) ([]JobResult, error) {
	lists, err := r.lists.ListAllForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	results := make([]JobResult, len(lists))

	var g errgroup.Group
	g.SetLimit(r.concurrency)

	for i := range lists {
		list := &lists[i]
		g.Go(func() error {
			updated, err := r.reconcileList(ctx, list)
			if err != nil {
				r.logger.Warn("Failed to reconcile list",
					slog.String("job_id", list.JobID),
					slog.Any("error", err),
				)
				results[i] = JobResult{JobID: list.JobID, Err: err}
				return nil
			}
			results[i] = JobResult{JobID: list.JobID, List: updated}
			return nil
		})
	}

	_ = g.Wait()

	return results, nil
}

func (r *Reconciler) reconcileList(ctx context.Context, list *model.EmailList) (*model.EmailList, error) {
	if list.Status.IsTerminal() {
		return list, nil
	}

	if r.locker != nil {
		release, acquired, err := r.locker.Acquire(ctx, "reconcile:"+list.JobID, r.lockTTL)
		switch {
		case err != nil:
			r.logger.Warn("Reconcile lock unavailable, continuing without it",
				slog.String("job_id", list.JobID),
				slog.Any("error", err),
			)
		case !acquired:
			r.logger.Debug("Reconcile already in progress elsewhere",
				slog.String("job_id", list.JobID),
			)
			return list, nil
		default:
			defer release()
		}
	}

	status, err := r.provider.GetStatus(ctx, list.JobID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrProviderUnavailable, err)
	}
	if status == nil || strings.TrimSpace(status.Status) == "" {
		return nil, fmt.Errorf("%w: job %s", domain.ErrStatusUnavailable, list.JobID)
	}

	next := domain.MapProviderStatus(status.Status)
	if !list.Status.CanTransition(next) {
		return list, nil
	}

	var charge *domain.Charge
	if next == domain.JobStatusCompleted && status.Verified > 0 {
		charge = &domain.Charge{
			UserID:   list.UserID,
			Amount:   int64(status.Verified),
			Reason:   domain.ListChargeReason(list.ListName),
			Category: domain.CategoryVerifiedList,
		}
	}

	updated, err := r.lists.TransitionJob(ctx, list.JobID, list.Status, next, reportFromStatus(status), charge)
	if err != nil {
		if errors.Is(err, domain.ErrStatusConflict) {
			// another reconciliation won; return its result
			return r.lists.GetByJobID(ctx, list.JobID)
		}
		if charge != nil && errors.Is(err, domain.ErrInsufficientCredits) {
			r.logger.Error("List completed at provider but credits could not be charged",
				slog.String("job_id", list.JobID),
				slog.String("user_id", list.UserID),
				slog.Int64("amount", charge.Amount),
			)
		}
		return nil, err
	}

	r.logger.Info("List status changed",
		slog.String("job_id", list.JobID),
		slog.String("from", string(list.Status)),
		slog.String("to", string(next)),
	)

	if next == domain.JobStatusCompleted {
		var charged int64
		if charge != nil {
			charged = charge.Amount
		}
		r.activity.Record(ctx, domain.Activity{
			UserID:      list.UserID,
			Module:      domain.ModuleEmailList,
			Action:      domain.ActionCompleted,
			Description: fmt.Sprintf("Verification of %q completed", list.ListName),
			Metadata: map[string]any{
				"job_id":       list.JobID,
				"credits_used": charged,
				"verified":     status.Verified,
			},
		})
	}

	return updated, nil
}

func reportFromStatus(s *bouncify.StatusResponse) domain.Report {
	return domain.Report{
		Status:   s.Status,
		Total:    s.Total,
		Verified: s.Verified,
		Pending:  s.Pending,
		Analysis: domain.Analysis{
			CommonISP:   s.Analysis.CommonISP,
			RoleBased:   s.Analysis.RoleBased,
			Disposable:  s.Analysis.Disposable,
			Spamtrap:    s.Analysis.Spamtrap,
			SyntaxError: s.Analysis.SyntaxError,
		},
		Results: domain.Results{
			Deliverable:   s.Results.Deliverable,
			Undeliverable: s.Results.Undeliverable,
			AcceptAll:     s.Results.AcceptAll,
			Unknown:       s.Results.Unknown,
		},
	}
}
