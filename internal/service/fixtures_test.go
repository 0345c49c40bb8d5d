package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/nurpe/ledger-service/internal/model"
	"github.com/nurpe/ledger-service/internal/repository/memory"
)

const (
	clientHarry     int64 = 1
	clientMrRobot   int64 = 2
	contractorNeo   int64 = 5
	contractorLinus int64 = 6
)

func money(t *testing.T, raw string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(raw)
	require.NoError(t, err)
	return d
}

func day(t *testing.T, raw string) *time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02 15:04", raw)
	require.NoError(t, err)
	return &parsed
}

func addProfile(t *testing.T, store *memory.Store, id int64, first, last, profession string, balance string, typ model.ProfileType) {
	t.Helper()
	require.NoError(t, store.CreateProfile(context.Background(), &model.Profile{
		ID:         id,
		FirstName:  first,
		LastName:   last,
		Profession: profession,
		Balance:    money(t, balance),
		Type:       typ,
	}))
}

func addContract(t *testing.T, store *memory.Store, id, clientID, contractorID int64, status model.ContractStatus) {
	t.Helper()
	require.NoError(t, store.CreateContract(context.Background(), &model.Contract{
		ID:           id,
		Terms:        "bla bla bla",
		Status:       status,
		ClientID:     clientID,
		ContractorID: contractorID,
	}))
}

func addJob(t *testing.T, store *memory.Store, id, contractID int64, price string, paidAt *time.Time) {
	t.Helper()
	require.NoError(t, store.CreateJob(context.Background(), &model.Job{
		ID:          id,
		Description: "work",
		Price:       money(t, price),
		Paid:        paidAt != nil,
		PaymentDate: paidAt,
		ContractID:  contractID,
	}))
}

// newScenarioStore loads a client (1, balance 1150) and a contractor
// (5, balance 1214) sharing in-progress contract 1 with unpaid job 1 priced 201.
func newScenarioStore(t *testing.T) *memory.Store {
	t.Helper()
	store := memory.New()
	addProfile(t, store, clientHarry, "Harry", "Potter", "Wizard", "1150", model.ProfileTypeClient)
	addProfile(t, store, contractorNeo, "John", "Lenon", "Musician", "1214", model.ProfileTypeContractor)
	addContract(t, store, 1, clientHarry, contractorNeo, model.ContractStatusInProgress)
	addJob(t, store, 1, 1, "201", nil)
	return store
}

func balanceOf(t *testing.T, store *memory.Store, id int64) decimal.Decimal {
	t.Helper()
	profile, err := store.GetProfile(context.Background(), id)
	require.NoError(t, err)
	return profile.Balance
}
