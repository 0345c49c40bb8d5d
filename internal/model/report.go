package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Window is a half-open [Start, End) range on payment date. A nil bound is unbounded.
type Window struct {
	Start *time.Time
	End   *time.Time
}

func (w Window) Contains(t time.Time) bool {
	if w.Start != nil && t.Before(*w.Start) {
		return false
	}
	if w.End != nil && !t.Before(*w.End) {
		return false
	}
	return true
}

type ProfessionEarnings struct {
	Sum        decimal.Decimal `json:"sum"`
	Profession string          `json:"profession"`
}

type ClientPayment struct {
	Paid     decimal.Decimal `json:"paid"`
	ClientID int64           `json:"ClientId"`
	FullName string          `json:"fullName"`
}

type ReportFormat string

const (
	ReportFormatXLSX ReportFormat = "xlsx"
	ReportFormatPDF  ReportFormat = "pdf"
)

// AdminReport is the exported summary for one reporting window.
type AdminReport struct {
	Window         Window
	BestProfession ProfessionEarnings
	BestClients    []ClientPayment
	GeneratedAt    time.Time
}
