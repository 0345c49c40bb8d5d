package service

import (
	"context"
	"errors"

	"github.com/nurpe/ledger-service/internal/model"
	"github.com/nurpe/ledger-service/internal/policy"
	"github.com/nurpe/ledger-service/internal/repository"
)

type ContractService struct {
	store repository.LedgerStore
}

func NewContractService(store repository.LedgerStore) *ContractService {
	return &ContractService{store: store}
}

func (s *ContractService) GetContract(ctx context.Context, actorID, contractID int64) (*model.Contract, error) {
	contract, err := s.store.GetContract(ctx, contractID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound.With("contract %d not found", contractID)
		}
		return nil, internalError("load contract", err)
	}
	if !policy.CanViewContract(actorID, *contract) {
		return nil, ErrPermissionDenied.With("profile %d can't access contract %d", actorID, contractID)
	}
	return contract, nil
}

// ListContracts returns the actor's contracts that have not been terminated.
func (s *ContractService) ListContracts(ctx context.Context, actorID int64) ([]model.Contract, error) {
	contracts, err := s.store.ListContracts(ctx, model.ContractFilter{
		PartyID:  actorID,
		Statuses: model.ActiveContractStatuses,
	})
	if err != nil {
		return nil, internalError("list contracts", err)
	}
	return contracts, nil
}

// ListUnpaidJobs returns unpaid jobs on the actor's in-progress contracts.
func (s *ContractService) ListUnpaidJobs(ctx context.Context, actorID int64) ([]model.Job, error) {
	unpaid := false
	jobs, err := s.store.ListJobs(ctx, model.JobFilter{
		PartyID:        actorID,
		Paid:           &unpaid,
		ContractStatus: model.ContractStatusInProgress,
	})
	if err != nil {
		return nil, internalError("list unpaid jobs", err)
	}
	return jobs, nil
}
