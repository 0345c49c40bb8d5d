package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nurpe/ledger-service/internal/metrics"
	"github.com/nurpe/ledger-service/internal/model"
	"github.com/nurpe/ledger-service/internal/repository"
	"github.com/nurpe/ledger-service/internal/repository/memory"
)

func TestSettleJobTransfersPrice(t *testing.T) {
	store := newScenarioStore(t)
	svc := NewPaymentService(store, metrics.New(), zerolog.Nop())
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	require.NoError(t, svc.SettleJob(context.Background(), clientHarry, 1))

	assert.True(t, balanceOf(t, store, clientHarry).Equal(money(t, "949")))
	assert.True(t, balanceOf(t, store, contractorNeo).Equal(money(t, "1415")))

	settlement, err := store.GetJobSettlement(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, settlement.Job.Paid)
	require.NotNil(t, settlement.Job.PaymentDate)
	assert.True(t, settlement.Job.PaymentDate.Equal(fixed))
	assert.Equal(t, int64(1), settlement.Job.Version)
}

func TestSettleJobConservesTotalBalance(t *testing.T) {
	store := newScenarioStore(t)
	svc := NewPaymentService(store, nil, zerolog.Nop())
	before := balanceOf(t, store, clientHarry).Add(balanceOf(t, store, contractorNeo))

	require.NoError(t, svc.SettleJob(context.Background(), clientHarry, 1))

	after := balanceOf(t, store, clientHarry).Add(balanceOf(t, store, contractorNeo))
	assert.True(t, before.Equal(after), "before=%s after=%s", before, after)
}

func TestSettleJobNotFound(t *testing.T) {
	svc := NewPaymentService(newScenarioStore(t), nil, zerolog.Nop())

	err := svc.SettleJob(context.Background(), clientHarry, 404)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestSettleJobForbiddenForContractor(t *testing.T) {
	store := newScenarioStore(t)
	svc := NewPaymentService(store, nil, zerolog.Nop())

	err := svc.SettleJob(context.Background(), contractorNeo, 1)
	assert.ErrorIs(t, err, ErrPermissionDenied)
	assert.True(t, balanceOf(t, store, clientHarry).Equal(money(t, "1150")))
}

func TestSettleJobAlreadyPaid(t *testing.T) {
	store := newScenarioStore(t)
	svc := NewPaymentService(store, nil, zerolog.Nop())
	require.NoError(t, svc.SettleJob(context.Background(), clientHarry, 1))

	err := svc.SettleJob(context.Background(), clientHarry, 1)
	assert.ErrorIs(t, err, ErrAlreadyPaid)
	assert.Equal(t, KindValidation, KindOf(err))
	assert.True(t, balanceOf(t, store, clientHarry).Equal(money(t, "949")))
	assert.True(t, balanceOf(t, store, contractorNeo).Equal(money(t, "1415")))
}

func TestSettleJobInsufficientFunds(t *testing.T) {
	store := newScenarioStore(t)
	addJob(t, store, 2, 1, "1150.01", nil)
	svc := NewPaymentService(store, nil, zerolog.Nop())

	err := svc.SettleJob(context.Background(), clientHarry, 2)
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	assert.True(t, balanceOf(t, store, clientHarry).Equal(money(t, "1150")))
	assert.True(t, balanceOf(t, store, contractorNeo).Equal(money(t, "1214")))
}

func TestSettleJobExactBalanceIsAllowed(t *testing.T) {
	store := newScenarioStore(t)
	addJob(t, store, 2, 1, "1150", nil)
	svc := NewPaymentService(store, nil, zerolog.Nop())

	require.NoError(t, svc.SettleJob(context.Background(), clientHarry, 2))
	assert.True(t, balanceOf(t, store, clientHarry).IsZero())
}

// barrierStore holds every settlement read until all expected readers have
// loaded the job, so their writes are guaranteed to race.
type barrierStore struct {
	*memory.Store
	readers sync.WaitGroup
}

func (b *barrierStore) GetJobSettlement(ctx context.Context, jobID int64) (*model.JobSettlement, error) {
	settlement, err := b.Store.GetJobSettlement(ctx, jobID)
	b.readers.Done()
	b.readers.Wait()
	return settlement, err
}

func TestSettleJobConcurrentAttemptsSettleOnce(t *testing.T) {
	store := &barrierStore{Store: newScenarioStore(t)}
	store.readers.Add(2)
	svc := NewPaymentService(store, nil, zerolog.Nop())

	results := make([]error, 2)
	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = svc.SettleJob(context.Background(), clientHarry, 1)
		}(i)
	}
	wg.Wait()

	var succeeded, conflicted int
	for _, err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrConflict):
			conflicted++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, conflicted)
	assert.True(t, balanceOf(t, store.Store, clientHarry).Equal(money(t, "949")))
	assert.True(t, balanceOf(t, store.Store, contractorNeo).Equal(money(t, "1415")))
}

// drainingStore spends the client's balance on another job between the
// precondition read and the unit of work.
type drainingStore struct {
	*memory.Store
	drain func()
}

func (d *drainingStore) WithinUnitOfWork(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	if d.drain != nil {
		drain := d.drain
		d.drain = nil
		drain()
	}
	return d.Store.WithinUnitOfWork(ctx, fn)
}

func TestSettleJobRollsBackWhenBalanceDrainedConcurrently(t *testing.T) {
	base := newScenarioStore(t)
	addJob(t, base, 2, 1, "1000", nil)
	store := &drainingStore{Store: base}
	svc := NewPaymentService(store, nil, zerolog.Nop())
	store.drain = func() {
		require.NoError(t, NewPaymentService(base, nil, zerolog.Nop()).SettleJob(context.Background(), clientHarry, 2))
	}

	err := svc.SettleJob(context.Background(), clientHarry, 1)
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	settlement, err := base.GetJobSettlement(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, settlement.Job.Paid, "job must stay unpaid after rollback")
	assert.True(t, balanceOf(t, base, clientHarry).Equal(money(t, "150")))
	assert.True(t, balanceOf(t, base, contractorNeo).Equal(money(t, "2214")))
}

type failingStore struct {
	*memory.Store
}

func (f failingStore) WithinUnitOfWork(context.Context, func(uow repository.UnitOfWork) error) error {
	return errors.New("connection reset")
}

func TestSettleJobStoreFailureIsInternal(t *testing.T) {
	svc := NewPaymentService(failingStore{Store: newScenarioStore(t)}, nil, zerolog.Nop())

	err := svc.SettleJob(context.Background(), clientHarry, 1)
	require.Error(t, err)
	assert.Equal(t, KindInternal, KindOf(err))
}
