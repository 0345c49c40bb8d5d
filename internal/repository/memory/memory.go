// Package memory is an in-memory ledger store. It is safe for concurrent use
// and backs the engine and HTTP tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nurpe/ledger-service/internal/model"
	"github.com/nurpe/ledger-service/internal/repository"
)

type Store struct {
	mu        sync.RWMutex
	nextID    int64
	profiles  map[int64]model.Profile
	contracts map[int64]model.Contract
	jobs      map[int64]model.Job
}

var (
	_ repository.LedgerStore = (*Store)(nil)
	_ repository.ReportStore = (*Store)(nil)
	_ repository.Writer      = (*Store)(nil)
)

func New() *Store {
	return &Store{
		nextID:    1,
		profiles:  make(map[int64]model.Profile),
		contracts: make(map[int64]model.Contract),
		jobs:      make(map[int64]model.Job),
	}
}

func (s *Store) assignIDLocked(id *int64) {
	if *id == 0 {
		*id = s.nextID
	}
	if *id >= s.nextID {
		s.nextID = *id + 1
	}
}

func (s *Store) CreateProfile(_ context.Context, profile *model.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.assignIDLocked(&profile.ID)
	stamp(&profile.CreatedAt, &profile.UpdatedAt)
	s.profiles[profile.ID] = *profile
	return nil
}

func (s *Store) CreateContract(_ context.Context, contract *model.Contract) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.assignIDLocked(&contract.ID)
	stamp(&contract.CreatedAt, &contract.UpdatedAt)
	s.contracts[contract.ID] = *contract
	return nil
}

func (s *Store) CreateJob(_ context.Context, job *model.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.contracts[job.ContractID]; !ok {
		return repository.ErrNotFound
	}
	s.assignIDLocked(&job.ID)
	stamp(&job.CreatedAt, &job.UpdatedAt)
	s.jobs[job.ID] = *job
	return nil
}

func (s *Store) GetProfile(_ context.Context, id int64) (*model.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	profile, ok := s.profiles[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &profile, nil
}

func (s *Store) GetContract(_ context.Context, id int64) (*model.Contract, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	contract, ok := s.contracts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &contract, nil
}

func (s *Store) ListContracts(_ context.Context, filter model.ContractFilter) ([]model.Contract, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]model.Contract, 0)
	for _, contract := range s.contracts {
		if !contract.HasParty(filter.PartyID) {
			continue
		}
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, contract.Status) {
			continue
		}
		result = append(result, contract)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (s *Store) ListJobs(_ context.Context, filter model.JobFilter) ([]model.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]model.Job, 0)
	for _, job := range s.jobs {
		contract, ok := s.contracts[job.ContractID]
		if !ok || !contract.HasParty(filter.PartyID) {
			continue
		}
		if filter.Paid != nil && job.Paid != *filter.Paid {
			continue
		}
		if filter.ContractStatus != "" && contract.Status != filter.ContractStatus {
			continue
		}
		result = append(result, job)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (s *Store) GetJobSettlement(_ context.Context, jobID int64) (*model.JobSettlement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[jobID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	contract, ok := s.contracts[job.ContractID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	client, ok := s.profiles[contract.ClientID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	contractor, ok := s.profiles[contract.ContractorID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &model.JobSettlement{
		Job:        job,
		Contract:   contract,
		Client:     client,
		Contractor: contractor,
	}, nil
}

func (s *Store) SumUnpaidJobs(_ context.Context, clientID int64) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := decimal.Zero
	for _, job := range s.jobs {
		if job.Paid {
			continue
		}
		if contract, ok := s.contracts[job.ContractID]; ok && contract.ClientID == clientID {
			total = total.Add(job.Price)
		}
	}
	return total, nil
}

// WithinUnitOfWork holds the write lock for the whole of fn. Writes land on
// copies of the profile and job tables that replace the live ones only when
// fn returns nil.
func (s *Store) WithinUnitOfWork(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	uow := &unitOfWork{
		profiles: make(map[int64]model.Profile, len(s.profiles)),
		jobs:     make(map[int64]model.Job, len(s.jobs)),
	}
	for id, profile := range s.profiles {
		uow.profiles[id] = profile
	}
	for id, job := range s.jobs {
		uow.jobs[id] = job
	}

	if err := fn(uow); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.profiles = uow.profiles
	s.jobs = uow.jobs
	return nil
}

type unitOfWork struct {
	profiles map[int64]model.Profile
	jobs     map[int64]model.Job
}

func (u *unitOfWork) MarkJobPaid(_ context.Context, jobID, expectedVersion int64, paidAt time.Time) error {
	job, ok := u.jobs[jobID]
	if !ok || job.Version != expectedVersion || job.Paid {
		return repository.ErrConcurrentModification
	}
	paidAt = paidAt.UTC()
	job.Paid = true
	job.PaymentDate = &paidAt
	job.Version++
	job.UpdatedAt = time.Now().UTC()
	u.jobs[jobID] = job
	return nil
}

func (u *unitOfWork) CreditBalance(_ context.Context, profileID int64, amount decimal.Decimal) error {
	profile, ok := u.profiles[profileID]
	if !ok {
		return repository.ErrNotFound
	}
	profile.Balance = profile.Balance.Add(amount)
	profile.UpdatedAt = time.Now().UTC()
	u.profiles[profileID] = profile
	return nil
}

func (u *unitOfWork) DebitBalance(_ context.Context, profileID int64, amount decimal.Decimal) error {
	profile, ok := u.profiles[profileID]
	if !ok || profile.Balance.LessThan(amount) {
		return repository.ErrInsufficientBalance
	}
	profile.Balance = profile.Balance.Sub(amount)
	profile.UpdatedAt = time.Now().UTC()
	u.profiles[profileID] = profile
	return nil
}

func (s *Store) BestProfession(_ context.Context, window model.Window) (*model.ProfessionEarnings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	totals := make(map[string]decimal.Decimal)
	for _, job := range s.paidJobsInLocked(window) {
		contractor := s.profiles[s.contracts[job.ContractID].ContractorID]
		totals[contractor.Profession] = totals[contractor.Profession].Add(job.Price)
	}
	if len(totals) == 0 {
		return nil, nil
	}

	var best *model.ProfessionEarnings
	for profession, sum := range totals {
		if best == nil || sum.GreaterThan(best.Sum) || (sum.Equal(best.Sum) && profession < best.Profession) {
			best = &model.ProfessionEarnings{Sum: sum, Profession: profession}
		}
	}
	return best, nil
}

func (s *Store) BestClients(_ context.Context, window model.Window, limit int) ([]model.ClientPayment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	totals := make(map[int64]decimal.Decimal)
	for _, job := range s.paidJobsInLocked(window) {
		clientID := s.contracts[job.ContractID].ClientID
		totals[clientID] = totals[clientID].Add(job.Price)
	}

	result := make([]model.ClientPayment, 0, len(totals))
	for clientID, sum := range totals {
		result = append(result, model.ClientPayment{
			Paid:     sum,
			ClientID: clientID,
			FullName: s.profiles[clientID].FullName(),
		})
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Paid.Equal(result[j].Paid) {
			return result[i].Paid.GreaterThan(result[j].Paid)
		}
		return result[i].ClientID > result[j].ClientID
	})
	if limit >= 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (s *Store) paidJobsInLocked(window model.Window) []model.Job {
	var jobs []model.Job
	for _, job := range s.jobs {
		if !job.Paid || job.PaymentDate == nil || !window.Contains(*job.PaymentDate) {
			continue
		}
		if _, ok := s.contracts[job.ContractID]; !ok {
			continue
		}
		jobs = append(jobs, job)
	}
	return jobs
}

func containsStatus(statuses []model.ContractStatus, status model.ContractStatus) bool {
	for _, candidate := range statuses {
		if candidate == status {
			return true
		}
	}
	return false
}

func stamp(createdAt, updatedAt *time.Time) {
	if createdAt.IsZero() {
		*createdAt = time.Now().UTC()
	}
	if updatedAt.IsZero() {
		*updatedAt = *createdAt
	}
}
