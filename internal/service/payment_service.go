package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/nurpe/ledger-service/internal/metrics"
	"github.com/nurpe/ledger-service/internal/policy"
	"github.com/nurpe/ledger-service/internal/repository"
)

type PaymentService struct {
	store   repository.LedgerStore
	metrics *metrics.Metrics
	log     zerolog.Logger
	now     func() time.Time
}

func NewPaymentService(store repository.LedgerStore, m *metrics.Metrics, log zerolog.Logger) *PaymentService {
	return &PaymentService{
		store:   store,
		metrics: m,
		log:     log.With().Str("component", "payments").Logger(),
		now:     time.Now,
	}
}

// SettleJob pays for a job on behalf of its client: the job is marked paid
// and its price moves from the client's balance to the contractor's in one
// unit of work. A concurrent settlement of the same job fails with
// ErrConflict and is never retried here.
func (s *PaymentService) SettleJob(ctx context.Context, actorID, jobID int64) (err error) {
	defer func() {
		s.metrics.RecordSettlement(outcome(err))
	}()

	settlement, err := s.store.GetJobSettlement(ctx, jobID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound.With("job with id %d not found", jobID)
		}
		return internalError("load job", err)
	}

	job := settlement.Job
	if !policy.CanSettleJob(actorID, settlement.Contract) {
		return ErrPermissionDenied.With("profile %d may not pay for job %d", actorID, jobID)
	}
	if job.Paid {
		return ErrAlreadyPaid
	}
	if job.Price.GreaterThan(settlement.Client.Balance) {
		return ErrInsufficientFunds
	}

	paidAt := s.now().UTC()
	err = s.store.WithinUnitOfWork(ctx, func(uow repository.UnitOfWork) error {
		if err := uow.MarkJobPaid(ctx, job.ID, job.Version, paidAt); err != nil {
			return err
		}
		if err := uow.CreditBalance(ctx, settlement.Contractor.ID, job.Price); err != nil {
			return err
		}
		return uow.DebitBalance(ctx, settlement.Client.ID, job.Price)
	})
	switch {
	case err == nil:
	case errors.Is(err, repository.ErrConcurrentModification):
		s.log.Warn().Int64("job_id", jobID).Int64("version", job.Version).Msg("settlement lost optimistic lock")
		return ErrConflict.With("job %d was modified concurrently, retry the request", jobID)
	case errors.Is(err, repository.ErrInsufficientBalance):
		return ErrInsufficientFunds
	default:
		return internalError("settle job", err)
	}

	s.log.Info().
		Int64("job_id", jobID).
		Int64("client_id", settlement.Client.ID).
		Int64("contractor_id", settlement.Contractor.ID).
		Str("price", job.Price.StringFixed(2)).
		Msg("job settled")
	return nil
}

// outcome turns a service result into a metrics label.
func outcome(err error) string {
	if err == nil {
		return "success"
	}
	var svcErr *Error
	if errors.As(err, &svcErr) && svcErr.Kind == KindValidation {
		return svcErr.Code
	}
	return KindOf(err).String()
}
