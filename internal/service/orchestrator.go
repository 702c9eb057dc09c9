package service

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/kursadbilgin/cosmos-provisioner/internal/domain"
	"github.com/kursadbilgin/cosmos-provisioner/internal/observability"
	"github.com/kursadbilgin/cosmos-provisioner/internal/provisioner"
	"github.com/kursadbilgin/cosmos-provisioner/internal/status"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	minWorkerConcurrency    = 1
	defaultOperationTimeout = 30 * time.Minute

	operationCreate = "create"
	operationDelete = "delete"
)

// Notifier dispatches outcome notifications. Sends are fire-and-forget; the
// orchestrator never sees transport failures.
type Notifier interface {
	CreateSucceeded(ctx context.Context, req domain.AccountRequest)
	CreateFailed(ctx context.Context, accountName string, errorText string)
	DeleteSucceeded(ctx context.Context, accountName string)
	DeleteFailed(ctx context.Context, accountName string, errorText string)
}

// task is one accepted provider operation awaiting completion on the worker
// pool.
type task struct {
	operation     string
	req           domain.AccountRequest
	op            provisioner.Operation
	correlationID string
	acceptedAt    time.Time
}

// Orchestrator drives provisioning flows: it publishes QUEUED on acceptance,
// hands the provider operation to a worker pool, and on completion publishes
// the terminal status and triggers exactly one notification.
type Orchestrator struct {
	statuses    *status.Store
	provisioner provisioner.Provisioner
	notifier    Notifier
	logger      *zap.Logger
	metrics     *observability.Metrics
	tasks       chan task
	opTimeout   time.Duration
	concurrency int
	running     atomic.Bool
	now         func() time.Time
}

func NewOrchestrator(
	statuses *status.Store,
	prov provisioner.Provisioner,
	notifier Notifier,
	concurrency int,
	opTimeout time.Duration,
	logger *zap.Logger,
) (*Orchestrator, error) {
	if statuses == nil {
		return nil, fmt.Errorf("status store is required")
	}
	if prov == nil {
		return nil, fmt.Errorf("provisioner is required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("notifier is required")
	}
	if concurrency < minWorkerConcurrency {
		concurrency = minWorkerConcurrency
	}
	if opTimeout <= 0 {
		opTimeout = defaultOperationTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Orchestrator{
		statuses:    statuses,
		provisioner: prov,
		notifier:    notifier,
		logger:      logger,
		tasks:       make(chan task, concurrency),
		opTimeout:   opTimeout,
		concurrency: concurrency,
		now:         time.Now,
	}, nil
}

func (o *Orchestrator) SetMetrics(metrics *observability.Metrics) {
	if o == nil {
		return
	}
	o.metrics = metrics
}

// Running reports whether the worker pool is accepting work.
func (o *Orchestrator) Running() bool {
	return o.running.Load()
}

// Start runs the worker pool until ctx is canceled.
func (o *Orchestrator) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	o.running.Store(true)
	defer o.running.Store(false)

	g, groupCtx := errgroup.WithContext(ctx)
	for i := 0; i < o.concurrency; i++ {
		workerID := i + 1

		g.Go(func() error {
			o.logger.Info("orchestrator worker started", zap.Int("workerId", workerID))
			for {
				select {
				case <-groupCtx.Done():
					o.logger.Info("orchestrator worker stopped", zap.Int("workerId", workerID))
					return nil
				case t := <-o.tasks:
					o.awaitOperation(groupCtx, t)
				}
			}
		})
	}

	return g.Wait()
}

// SubmitCreate publishes QUEUED, issues the create accept call, and schedules
// the completion wait. The returned record is the QUEUED one the client polls
// against. An accept-stage rejection flips the record to ERROR, notifies, and
// surfaces the provider error to the caller.
func (o *Orchestrator) SubmitCreate(ctx context.Context, req domain.AccountRequest) (domain.AccountStatus, error) {
	record := o.statuses.Update(req.Name, domain.StatusQueued, "provisioning queued")

	op, err := o.provisioner.CreateAccount(ctx, req)
	if err != nil {
		o.statuses.Update(req.Name, domain.StatusError, err.Error())
		o.notifier.CreateFailed(ctx, req.Name, err.Error())
		o.countFinished(operationCreate, domain.StatusError)
		return domain.AccountStatus{}, err
	}

	if err := o.schedule(ctx, task{
		operation:  operationCreate,
		req:        req,
		op:         op,
		acceptedAt: o.now(),
	}); err != nil {
		o.statuses.Update(req.Name, domain.StatusError, err.Error())
		o.notifier.CreateFailed(ctx, req.Name, err.Error())
		o.countFinished(operationCreate, domain.StatusError)
		return domain.AccountStatus{}, err
	}

	return record, nil
}

// SubmitDelete probes existence through the provisioner, then follows the
// same accept-and-schedule path as create. A missing account yields
// domain.ErrNotFound plus exactly one deletion-failure notification.
func (o *Orchestrator) SubmitDelete(ctx context.Context, accountName string) error {
	op, err := o.provisioner.DeleteAccount(ctx, accountName)
	if err != nil {
		o.notifier.DeleteFailed(ctx, accountName, err.Error())
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		o.statuses.Update(accountName, domain.StatusError, err.Error())
		o.countFinished(operationDelete, domain.StatusError)
		return err
	}

	o.statuses.Update(accountName, domain.StatusQueued, "deletion queued")

	if err := o.schedule(ctx, task{
		operation:  operationDelete,
		req:        domain.AccountRequest{Name: accountName},
		op:         op,
		acceptedAt: o.now(),
	}); err != nil {
		o.statuses.Update(accountName, domain.StatusError, err.Error())
		o.notifier.DeleteFailed(ctx, accountName, err.Error())
		o.countFinished(operationDelete, domain.StatusError)
		return err
	}

	return nil
}

// Status returns the current record for an account.
func (o *Orchestrator) Status(ctx context.Context, accountName string) (domain.AccountStatus, error) {
	record, ok := o.statuses.Get(accountName)
	if !ok {
		return domain.AccountStatus{}, fmt.Errorf("%w: no status for account %q", domain.ErrNotFound, accountName)
	}
	return record, nil
}

func (o *Orchestrator) schedule(ctx context.Context, t task) error {
	if correlationID, ok := observability.CorrelationIDFromContext(ctx); ok {
		t.correlationID = correlationID
	}

	select {
	case o.tasks <- t:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("failed to schedule %s for account %q: %w", t.operation, t.req.Name, ctx.Err())
	}
}

// awaitOperation is the only place a flow blocks on the provider. It runs on
// the worker pool, never the request path.
func (o *Orchestrator) awaitOperation(ctx context.Context, t task) {
	if t.correlationID != "" {
		ctx = observability.WithCorrelationID(ctx, t.correlationID)
	}
	logger := observability.WithAccount(observability.WithContextLogger(o.logger, ctx), t.req.Name).
		With(zap.String("operation", t.operation))

	o.statuses.Update(t.req.Name, domain.StatusInProgress, t.operation+" in progress")
	logger.Info("operation in progress")

	if o.metrics != nil {
		o.metrics.IncOperationInFlight(t.operation)
		defer o.metrics.DecOperationInFlight(t.operation)
	}

	waitCtx, cancel := context.WithTimeout(ctx, o.opTimeout)
	err := t.op.Wait(waitCtx)
	cancel()

	if o.metrics != nil {
		o.metrics.ObserveOperationDuration(t.operation, o.now().Sub(t.acceptedAt))
	}

	if err != nil {
		message := err.Error()
		if errors.Is(err, context.DeadlineExceeded) {
			message = fmt.Sprintf("%s of account %q timed out after %s", t.operation, t.req.Name, o.opTimeout)
		}
		o.statuses.Update(t.req.Name, domain.StatusError, message)
		o.countFinished(t.operation, domain.StatusError)
		logger.Error("operation failed", zap.Error(err))

		switch t.operation {
		case operationDelete:
			o.notifier.DeleteFailed(ctx, t.req.Name, message)
		default:
			o.notifier.CreateFailed(ctx, t.req.Name, message)
		}
		return
	}

	o.countFinished(t.operation, domain.StatusCompleted)
	logger.Info("operation completed")

	switch t.operation {
	case operationDelete:
		o.statuses.Update(t.req.Name, domain.StatusCompleted, "account deleted")
		o.notifier.DeleteSucceeded(ctx, t.req.Name)
	default:
		o.statuses.Update(t.req.Name, domain.StatusCompleted, "account provisioned")
		o.notifier.CreateSucceeded(ctx, t.req)
	}
}

func (o *Orchestrator) countFinished(operation string, result domain.Status) {
	if o.metrics == nil {
		return
	}
	o.metrics.IncOperationFinished(operation, result.String())
}
