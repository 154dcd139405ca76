package domain

import (
	"github.com/shopspring/decimal"
)

// AccountKind identifies one account in the household ledger.
type AccountKind string

const (
	AccountSavings     AccountKind = "savings"
	AccountRothSubject AccountKind = "roth_subject"
	AccountRothPartner AccountKind = "roth_partner"
	Account401kSubject AccountKind = "401k_subject"
	Account401kPartner AccountKind = "401k_partner"

	// Pool labels used in withdrawal plans and allocation decisions. They
	// aggregate ledger accounts and are never ledger keys themselves.
	AccountRothCombined AccountKind = "roth_combined"
	Account401kPool     AccountKind = "401k_pool"
)

// LedgerAccounts lists every ledger account in reporting order.
func LedgerAccounts() []AccountKind {
	return []AccountKind{
		AccountSavings,
		AccountRothSubject,
		AccountRothPartner,
		Account401kSubject,
		Account401kPartner,
	}
}

// AccountActivity is the availability snapshot for one account and tax year.
type AccountActivity struct {
	Account          AccountKind     `json:"account"`
	Year             int             `json:"year"`
	StartingBalance  decimal.Decimal `json:"starting_balance"`
	EndingBalance    decimal.Decimal `json:"ending_balance"`
	TotalDeposits    decimal.Decimal `json:"total_deposits"`
	TotalWithdrawals decimal.Decimal `json:"total_withdrawals"`
}

// NetFlow returns deposits minus withdrawals for the year.
func (a *AccountActivity) NetFlow() decimal.Decimal {
	return a.TotalDeposits.Sub(a.TotalWithdrawals)
}
