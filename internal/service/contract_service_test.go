package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nurpe/ledger-service/internal/model"
	"github.com/nurpe/ledger-service/internal/repository/memory"
)

func newContractsStore(t *testing.T) *memory.Store {
	store := newScenarioStore(t)
	addProfile(t, store, clientMrRobot, "Mr", "Robot", "Hacker", "231.11", model.ProfileTypeClient)
	addProfile(t, store, contractorLinus, "Linus", "Torvalds", "Programmer", "1214", model.ProfileTypeContractor)
	addContract(t, store, 2, clientHarry, contractorLinus, model.ContractStatusNew)
	addContract(t, store, 3, clientHarry, contractorLinus, model.ContractStatusTerminated)
	addContract(t, store, 4, clientMrRobot, contractorLinus, model.ContractStatusInProgress)
	addJob(t, store, 2, 2, "50", nil)
	addJob(t, store, 3, 4, "121", nil)
	addJob(t, store, 4, 1, "21", day(t, "2020-08-15 19:11"))
	return store
}

func TestGetContractByParty(t *testing.T) {
	svc := NewContractService(newContractsStore(t))

	for _, actor := range []int64{clientHarry, contractorNeo} {
		contract, err := svc.GetContract(context.Background(), actor, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(1), contract.ID)
	}
}

func TestGetContractOfOthersIsForbidden(t *testing.T) {
	svc := NewContractService(newContractsStore(t))

	_, err := svc.GetContract(context.Background(), clientMrRobot, 1)
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestGetContractNotFound(t *testing.T) {
	svc := NewContractService(newContractsStore(t))

	_, err := svc.GetContract(context.Background(), clientHarry, 99)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListContractsSkipsTerminated(t *testing.T) {
	svc := NewContractService(newContractsStore(t))

	contracts, err := svc.ListContracts(context.Background(), clientHarry)
	require.NoError(t, err)
	ids := make([]int64, 0, len(contracts))
	for _, c := range contracts {
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []int64{1, 2}, ids)

	contracts, err = svc.ListContracts(context.Background(), contractorLinus)
	require.NoError(t, err)
	assert.Len(t, contracts, 2)
}

func TestListUnpaidJobsOnlyOnInProgressContracts(t *testing.T) {
	svc := NewContractService(newContractsStore(t))

	jobs, err := svc.ListUnpaidJobs(context.Background(), clientHarry)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, int64(1), jobs[0].ID)

	jobs, err = svc.ListUnpaidJobs(context.Background(), contractorLinus)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, int64(3), jobs[0].ID)
}

func TestListUnpaidJobsEmptyIsNotNil(t *testing.T) {
	store := memory.New()
	addProfile(t, store, 9, "No", "Jobs", "Idle", "0", model.ProfileTypeClient)
	svc := NewContractService(store)

	jobs, err := svc.ListUnpaidJobs(context.Background(), 9)
	require.NoError(t, err)
	assert.NotNil(t, jobs)
	assert.Empty(t, jobs)
}
