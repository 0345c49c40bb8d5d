package model

import "time"

type ContractStatus string

const (
	ContractStatusNew        ContractStatus = "new"
	ContractStatusInProgress ContractStatus = "in_progress"
	ContractStatusTerminated ContractStatus = "terminated"
)

// ActiveContractStatuses are the statuses of contracts that have not been terminated.
var ActiveContractStatuses = []ContractStatus{ContractStatusNew, ContractStatusInProgress}

type Contract struct {
	ID           int64          `json:"id"`
	Terms        string         `json:"terms"`
	Status       ContractStatus `json:"status"`
	ClientID     int64          `json:"ClientId"`
	ContractorID int64          `json:"ContractorId"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

// HasParty reports whether the profile is the client or the contractor of the contract.
func (c Contract) HasParty(profileID int64) bool {
	return c.ClientID == profileID || c.ContractorID == profileID
}

type ContractFilter struct {
	PartyID  int64
	Statuses []ContractStatus
}
