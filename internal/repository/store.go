package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nurpe/ledger-service/internal/model"
)

// LedgerStore is the durable record of profiles, contracts and jobs.
type LedgerStore interface {
	GetProfile(ctx context.Context, id int64) (*model.Profile, error)
	GetContract(ctx context.Context, id int64) (*model.Contract, error)
	ListContracts(ctx context.Context, filter model.ContractFilter) ([]model.Contract, error)
	ListJobs(ctx context.Context, filter model.JobFilter) ([]model.Job, error)
	GetJobSettlement(ctx context.Context, jobID int64) (*model.JobSettlement, error)
	SumUnpaidJobs(ctx context.Context, clientID int64) (decimal.Decimal, error)

	// WithinUnitOfWork runs fn in a transaction. Either every write made
	// through the UnitOfWork commits or none does.
	WithinUnitOfWork(ctx context.Context, fn func(uow UnitOfWork) error) error
}

// UnitOfWork is the transactional handle passed to WithinUnitOfWork.
type UnitOfWork interface {
	// MarkJobPaid flips an unpaid job to paid if its stored version still
	// equals expectedVersion, bumping the version. Otherwise it returns
	// ErrConcurrentModification and writes nothing.
	MarkJobPaid(ctx context.Context, jobID, expectedVersion int64, paidAt time.Time) error
	CreditBalance(ctx context.Context, profileID int64, amount decimal.Decimal) error
	// DebitBalance returns ErrInsufficientBalance instead of driving the balance negative.
	DebitBalance(ctx context.Context, profileID int64, amount decimal.Decimal) error
}

type ReportStore interface {
	// BestProfession returns nil when no paid job falls in the window.
	BestProfession(ctx context.Context, window model.Window) (*model.ProfessionEarnings, error)
	BestClients(ctx context.Context, window model.Window, limit int) ([]model.ClientPayment, error)
}

// Writer creates ledger records. Onboarding itself lives outside this
// service; the seed command and tests use it to load fixtures.
type Writer interface {
	CreateProfile(ctx context.Context, profile *model.Profile) error
	CreateContract(ctx context.Context, contract *model.Contract) error
	CreateJob(ctx context.Context, job *model.Job) error
}
