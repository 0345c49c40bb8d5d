package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Job struct {
	ID          int64           `json:"id"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Paid        bool            `json:"paid"`
	PaymentDate *time.Time      `json:"paymentDate"`
	ContractID  int64           `json:"ContractId"`
	Version     int64           `json:"version"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

type JobFilter struct {
	PartyID        int64
	Paid           *bool
	ContractStatus ContractStatus
}

// JobSettlement is everything a payment needs, loaded in a single read.
type JobSettlement struct {
	Job        Job
	Contract   Contract
	Client     Profile
	Contractor Profile
}
