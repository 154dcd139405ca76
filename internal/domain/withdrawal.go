package domain

import (
	"github.com/shopspring/decimal"
)

// AllocationAction classifies one allocation decision in a withdrawal plan.
type AllocationAction string

const (
	ActionDrainedImmaterial      AllocationAction = "drained_immaterial"
	ActionAllocatedWeighted      AllocationAction = "allocated_weighted"
	ActionAllocatedProportional  AllocationAction = "allocated_proportional"
	ActionEliminatedBelowMinimum AllocationAction = "eliminated_below_minimum"
	ActionRMDFloorApplied        AllocationAction = "rmd_floor_applied"
	ActionCappedAtAvailable      AllocationAction = "capped_at_available"
)

// AllocationDecision records one choice the allocator made while building a
// withdrawal plan. Decisions are returned as data; the allocator never logs.
type AllocationDecision struct {
	Account AccountKind      `json:"account"`
	Action  AllocationAction `json:"action"`
	Amount  decimal.Decimal  `json:"amount"`
	Note    string           `json:"note,omitempty"`
}

// K401Withdrawal is the per-person 401k slice of a withdrawal plan. Gross
// amounts leave the accounts; net amounts are the cash that arrives after
// flat withholding.
type K401Withdrawal struct {
	SubjectGross decimal.Decimal `json:"subject_gross"`
	SubjectNet   decimal.Decimal `json:"subject_net"`
	PartnerGross decimal.Decimal `json:"partner_gross"`
	PartnerNet   decimal.Decimal `json:"partner_net"`

	// Combined net is the sum of the per-person floored nets, not a value
	// re-derived from the combined gross.
	CombinedGross decimal.Decimal `json:"combined_gross"`
	CombinedNet   decimal.Decimal `json:"combined_net"`

	SubjectRMDFloored bool `json:"subject_rmd_floored,omitempty"`
	PartnerRMDFloored bool `json:"partner_rmd_floored,omitempty"`
}

// IsZero reports whether no 401k withdrawal was planned.
func (k *K401Withdrawal) IsZero() bool {
	return k.CombinedGross.IsZero() && k.CombinedNet.IsZero()
}

// WithdrawalPlan is the allocator's output for one tax year: how much leaves
// each account to fund the ask, and what remains unmet.
type WithdrawalPlan struct {
	Year int             `json:"year"`
	Ask  decimal.Decimal `json:"ask"`

	Savings      decimal.Decimal `json:"savings"`
	RothCombined decimal.Decimal `json:"roth_combined"`
	K401         K401Withdrawal  `json:"k401"`

	// TotalWithdrawn is the net cash the plan produces: savings plus Roth
	// plus the 401k combined net.
	TotalWithdrawn decimal.Decimal `json:"total_withdrawn"`

	// Shortfall is the portion of the ask no account could fund. It is a
	// numeric outcome, never an error.
	Shortfall decimal.Decimal `json:"shortfall"`

	Decisions []AllocationDecision `json:"decisions,omitempty"`
}

// HasShortfall reports whether the plan leaves part of the ask unfunded.
func (wp *WithdrawalPlan) HasShortfall() bool {
	return wp.Shortfall.IsPositive()
}

// Funded returns the share of the ask the plan covers, in [0, 1].
func (wp *WithdrawalPlan) Funded() decimal.Decimal {
	if !wp.Ask.IsPositive() {
		return decimal.NewFromInt(1)
	}
	covered := wp.Ask.Sub(wp.Shortfall)
	if covered.IsNegative() {
		return decimal.Zero
	}
	return covered.Div(wp.Ask)
}
