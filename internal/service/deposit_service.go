package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/nurpe/ledger-service/internal/metrics"
	"github.com/nurpe/ledger-service/internal/model"
	"github.com/nurpe/ledger-service/internal/policy"
	"github.com/nurpe/ledger-service/internal/repository"
)

// DefaultDepositLimitRatio caps a deposit at a quarter of the client's unpaid jobs.
var DefaultDepositLimitRatio = decimal.RequireFromString("0.25")

type DepositService struct {
	store      repository.LedgerStore
	limitRatio decimal.Decimal
	metrics    *metrics.Metrics
	log        zerolog.Logger
}

func NewDepositService(store repository.LedgerStore, limitRatio decimal.Decimal, m *metrics.Metrics, log zerolog.Logger) *DepositService {
	if limitRatio.Sign() <= 0 {
		limitRatio = DefaultDepositLimitRatio
	}
	return &DepositService{
		store:      store,
		limitRatio: limitRatio,
		metrics:    m,
		log:        log.With().Str("component", "deposits").Logger(),
	}
}

func (s *DepositService) Deposit(ctx context.Context, actorID, targetID int64, amount decimal.Decimal) (err error) {
	defer func() {
		s.metrics.RecordDeposit(outcome(err))
	}()

	if !policy.CanDeposit(actorID, targetID) {
		return ErrPermissionDenied.With("profile %d can only deposit into its own balance", actorID)
	}
	if amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	// Balances hold whole cents; anything finer would be rounded away on write.
	if !amount.Equal(amount.Round(model.MoneyPlaces)) {
		return ErrInvalidAmount.With("amount must have at most %d decimal places", model.MoneyPlaces)
	}

	due, err := s.store.SumUnpaidJobs(ctx, targetID)
	if err != nil {
		return internalError("sum unpaid jobs", err)
	}
	limit := due.Mul(s.limitRatio)
	if amount.GreaterThan(limit) {
		return ErrDepositLimit.With("cannot deposit more than %s, %s of unpaid jobs", limit.StringFixed(2), s.limitRatio.Shift(2).String()+"%")
	}

	err = s.store.WithinUnitOfWork(ctx, func(uow repository.UnitOfWork) error {
		return uow.CreditBalance(ctx, targetID, amount)
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound.With("profile %d not found", targetID)
		}
		return internalError("credit balance", err)
	}

	s.log.Info().Int64("profile_id", targetID).Str("amount", amount.StringFixed(2)).Msg("deposit applied")
	return nil
}
