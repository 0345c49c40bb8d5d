package policy

import (
	"testing"

	"github.com/nurpe/ledger-service/internal/model"
)

func TestCanViewContract(t *testing.T) {
	contract := model.Contract{ID: 1, ClientID: 1, ContractorID: 5}

	cases := []struct {
		actor int64
		want  bool
	}{
		{actor: 1, want: true},
		{actor: 5, want: true},
		{actor: 3, want: false},
	}
	for _, tc := range cases {
		if got := CanViewContract(tc.actor, contract); got != tc.want {
			t.Errorf("CanViewContract(%d) = %v, want %v", tc.actor, got, tc.want)
		}
	}
}

func TestCanSettleJobOnlyClient(t *testing.T) {
	contract := model.Contract{ID: 1, ClientID: 1, ContractorID: 5}

	if !CanSettleJob(1, contract) {
		t.Error("client should be allowed to settle")
	}
	if CanSettleJob(5, contract) {
		t.Error("contractor must not settle its own job")
	}
	if CanSettleJob(7, contract) {
		t.Error("outsider must not settle")
	}
}

func TestCanDepositSelfOnly(t *testing.T) {
	if !CanDeposit(2, 2) {
		t.Error("self deposit should be allowed")
	}
	if CanDeposit(2, 3) {
		t.Error("deposit into another balance should be denied")
	}
}
