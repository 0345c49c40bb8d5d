// Package policy holds the authorization rules of the ledger. Every function
// is a pure predicate over the data model.
package policy

import "github.com/nurpe/ledger-service/internal/model"

// CanViewContract allows either party of the contract to read it.
func CanViewContract(actorID int64, contract model.Contract) bool {
	return contract.HasParty(actorID)
}

// CanSettleJob allows only the paying party, the client, to settle a job.
func CanSettleJob(actorID int64, contract model.Contract) bool {
	return actorID == contract.ClientID
}

// CanDeposit allows deposits into the actor's own balance only.
func CanDeposit(actorID, targetID int64) bool {
	return actorID == targetID
}
