package calculation

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/drawplan/withdrawal-planner/internal/domain"
	"github.com/drawplan/withdrawal-planner/pkg/money"
)

// Allocation defaults applied when the plan leaves them unset.
var (
	defaultImmaterialAbsolute = decimal.NewFromInt(200)
	defaultImmaterialFraction = decimal.NewFromFloat(0.01)
	defaultMinimumWithdrawal  = decimal.NewFromInt(200)
)

// AccountAvailability aggregates everything the allocator may draw on for
// one year: the generic accounts at their current balances and the 401k pool.
type AccountAvailability struct {
	Year int

	Savings     decimal.Decimal
	RothSubject decimal.Decimal
	RothPartner decimal.Decimal

	K401 *K401Availability
}

// RothCombined returns the Roth pool treated as one spendable account.
func (a *AccountAvailability) RothCombined() decimal.Decimal {
	return a.RothSubject.Add(a.RothPartner)
}

// GenericTotal returns the non-401k availability.
func (a *AccountAvailability) GenericTotal() decimal.Decimal {
	return a.Savings.Add(a.RothCombined())
}

// SpendCapableTotal returns every dollar the household could put toward the
// ask this year: generic balances plus the 401k pool's net availability.
func (a *AccountAvailability) SpendCapableTotal() decimal.Decimal {
	return a.GenericTotal().Add(a.K401.CombinedNet)
}

// BuildAccountAvailability assembles the year's availability from the ledger.
// Generic accounts expose their current (ending) balance; the 401k pool is
// measured against starting balances inside NewK401Availability.
func BuildAccountAvailability(params *domain.FiscalParameters, household *domain.Household, balances BalanceSource, rmdCalc *RMDCalculator, year int) (*AccountAvailability, error) {
	avail := &AccountAvailability{Year: year}

	var err error
	if params.UseSavings {
		avail.Savings, err = balances.EndingBalance(domain.AccountSavings, year)
		if err != nil {
			return nil, fmt.Errorf("savings availability: %w", err)
		}
	}
	if params.UseRoth {
		avail.RothSubject, err = balances.EndingBalance(domain.AccountRothSubject, year)
		if err != nil {
			return nil, fmt.Errorf("roth availability: %w", err)
		}
		avail.RothPartner, err = balances.EndingBalance(domain.AccountRothPartner, year)
		if err != nil {
			return nil, fmt.Errorf("roth availability: %w", err)
		}
	}

	avail.K401, err = NewK401Availability(params, household, balances, rmdCalc, year)
	if err != nil {
		return nil, err
	}
	return avail, nil
}

// AccountPortioner allocates one year's ask across the spendable accounts:
// immaterial balances drain first, the 401k pool takes a weighted share with
// RMD floors, and the remainder spreads proportionally across the generic
// accounts with minimum-withdrawal elimination. The portioner performs no
// I/O and no logging; every choice it makes is returned on the plan as an
// AllocationDecision.
type AccountPortioner struct {
	Params *domain.FiscalParameters

	immaterialAbsolute decimal.Decimal
	immaterialFraction decimal.Decimal
	minimumWithdrawal  decimal.Decimal
}

// NewAccountPortioner creates a portioner, applying allocation defaults for
// any unset threshold.
func NewAccountPortioner(params *domain.FiscalParameters) *AccountPortioner {
	p := &AccountPortioner{
		Params:             params,
		immaterialAbsolute: params.ImmaterialAbsolute,
		immaterialFraction: params.ImmaterialFraction,
		minimumWithdrawal:  params.MinimumWithdrawal,
	}
	if !p.immaterialAbsolute.IsPositive() {
		p.immaterialAbsolute = defaultImmaterialAbsolute
	}
	if !p.immaterialFraction.IsPositive() {
		p.immaterialFraction = defaultImmaterialFraction
	}
	if !p.minimumWithdrawal.IsPositive() {
		p.minimumWithdrawal = defaultMinimumWithdrawal
	}
	return p
}

// Plan builds the withdrawal plan for one year's ask. A non-positive ask is
// terminal: nothing is withdrawn anywhere. A shortfall is reported on the
// plan, never as an error.
func (ap *AccountPortioner) Plan(avail *AccountAvailability, ask decimal.Decimal) *domain.WithdrawalPlan {
	plan := &domain.WithdrawalPlan{
		Year: avail.Year,
		Ask:  money.RoundCents(ask),
	}
	if ask.LessThanOrEqual(decimal.Zero) {
		return plan
	}

	remaining := ask
	savingsAvail := avail.Savings
	rothAvail := avail.RothCombined()
	pool := avail.K401
	poolDone := false

	// Materiality is judged against everything spend-capable this year.
	materiality := decimal.Max(ap.immaterialAbsolute, avail.SpendCapableTotal().Mul(ap.immaterialFraction))

	// Immaterial generic balances drain in full.
	if savingsAvail.IsPositive() && savingsAvail.LessThan(materiality) {
		amount := money.RoundCents(savingsAvail)
		plan.Savings = amount
		remaining = remaining.Sub(amount)
		savingsAvail = decimal.Zero
		plan.Decisions = append(plan.Decisions, domain.AllocationDecision{
			Account: domain.AccountSavings,
			Action:  domain.ActionDrainedImmaterial,
			Amount:  amount,
			Note:    fmt.Sprintf("balance below materiality threshold %s", money.FormatUSD(materiality)),
		})
	}
	if rothAvail.IsPositive() && rothAvail.LessThan(materiality) {
		amount := money.RoundCents(rothAvail)
		plan.RothCombined = amount
		remaining = remaining.Sub(amount)
		rothAvail = decimal.Zero
		plan.Decisions = append(plan.Decisions, domain.AllocationDecision{
			Account: domain.AccountRothCombined,
			Action:  domain.ActionDrainedImmaterial,
			Amount:  amount,
			Note:    fmt.Sprintf("balance below materiality threshold %s", money.FormatUSD(materiality)),
		})
	}

	// An immaterial 401k pool drains in full through the 401k portioner.
	if pool.CombinedNet.IsPositive() && pool.CombinedNet.LessThan(materiality) {
		w := pool.PortionK401(pool.CombinedNet, pool.CombinedNet)
		plan.K401 = w
		remaining = remaining.Sub(w.CombinedNet)
		poolDone = true
		plan.Decisions = append(plan.Decisions, domain.AllocationDecision{
			Account: domain.Account401kPool,
			Action:  domain.ActionDrainedImmaterial,
			Amount:  w.CombinedNet,
			Note:    fmt.Sprintf("pool below materiality threshold %s", money.FormatUSD(materiality)),
		})
	}

	// The 401k pool takes a share of the remaining ask weighted by its net
	// availability against all remaining funds.
	if !poolDone && pool.CombinedNet.IsPositive() && remaining.IsPositive() {
		totalFunds := savingsAvail.Add(rothAvail).Add(pool.CombinedNet)
		w := pool.PortionK401(remaining, totalFunds)
		plan.K401 = w
		remaining = remaining.Sub(w.CombinedNet)
		plan.Decisions = append(plan.Decisions, domain.AllocationDecision{
			Account: domain.Account401kPool,
			Action:  domain.ActionAllocatedWeighted,
			Amount:  w.CombinedNet,
			Note:    fmt.Sprintf("net share of %s total funds", money.FormatUSD(totalFunds)),
		})
		if w.SubjectRMDFloored {
			plan.Decisions = append(plan.Decisions, domain.AllocationDecision{
				Account: domain.Account401kSubject,
				Action:  domain.ActionRMDFloorApplied,
				Amount:  w.SubjectNet,
				Note:    "required minimum raised the planned withdrawal",
			})
		}
		if w.PartnerRMDFloored {
			plan.Decisions = append(plan.Decisions, domain.AllocationDecision{
				Account: domain.Account401kPartner,
				Action:  domain.ActionRMDFloorApplied,
				Amount:  w.PartnerNet,
				Note:    "required minimum raised the planned withdrawal",
			})
		}
	}

	// The rest spreads proportionally across the remaining generic accounts.
	if remaining.IsPositive() {
		savingsAlloc, rothAlloc := ap.allocateProportionally(plan, remaining, savingsAvail, rothAvail)
		plan.Savings = plan.Savings.Add(savingsAlloc)
		plan.RothCombined = plan.RothCombined.Add(rothAlloc)
		remaining = remaining.Sub(savingsAlloc).Sub(rothAlloc)
	}

	plan.TotalWithdrawn = plan.Savings.Add(plan.RothCombined).Add(plan.K401.CombinedNet)
	if remaining.IsPositive() {
		plan.Shortfall = money.RoundCents(remaining)
	}
	return plan
}

// genericCandidate is one account still eligible for proportional allocation.
type genericCandidate struct {
	account   domain.AccountKind
	available decimal.Decimal
}

// allocateProportionally distributes the remaining ask across the generic
// accounts by availability. Any share that lands positive but below the
// minimum withdrawal eliminates its account and the distribution re-runs
// against the smaller set; the loop is capped at the initial set size.
func (ap *AccountPortioner) allocateProportionally(plan *domain.WithdrawalPlan, remaining, savingsAvail, rothAvail decimal.Decimal) (savingsAlloc, rothAlloc decimal.Decimal) {
	eligible := make([]genericCandidate, 0, 2)
	if savingsAvail.IsPositive() {
		eligible = append(eligible, genericCandidate{domain.AccountSavings, savingsAvail})
	}
	if rothAvail.IsPositive() {
		eligible = append(eligible, genericCandidate{domain.AccountRothCombined, rothAvail})
	}

	maxPasses := len(eligible)
	for pass := 0; pass < maxPasses && len(eligible) > 0; pass++ {
		total := decimal.Zero
		for _, c := range eligible {
			total = total.Add(c.available)
		}
		if !total.IsPositive() {
			break
		}

		shares := make([]decimal.Decimal, len(eligible))
		survivors := make([]genericCandidate, 0, len(eligible))
		eliminated := false
		for _, c := range eligible {
			share := remaining.Mul(c.available).Div(total)
			if share.GreaterThan(c.available) {
				share = c.available
			}
			if share.IsPositive() && share.LessThan(ap.minimumWithdrawal) {
				plan.Decisions = append(plan.Decisions, domain.AllocationDecision{
					Account: c.account,
					Action:  domain.ActionEliminatedBelowMinimum,
					Amount:  decimal.Zero,
					Note:    fmt.Sprintf("share %s below minimum withdrawal %s", money.FormatUSD(share), money.FormatUSD(ap.minimumWithdrawal)),
				})
				eliminated = true
				continue
			}
			shares[len(survivors)] = share
			survivors = append(survivors, c)
		}
		eligible = survivors
		if eliminated {
			continue
		}

		for i, c := range eligible {
			amount := money.RoundCents(shares[i])
			action := domain.ActionAllocatedProportional
			note := ""
			if amount.Equal(money.RoundCents(c.available)) && remaining.GreaterThan(total) {
				action = domain.ActionCappedAtAvailable
				note = "availability exhausted"
			}
			if !amount.IsPositive() {
				continue
			}
			plan.Decisions = append(plan.Decisions, domain.AllocationDecision{
				Account: c.account,
				Action:  action,
				Amount:  amount,
				Note:    note,
			})
			switch c.account {
			case domain.AccountSavings:
				savingsAlloc = savingsAlloc.Add(amount)
			case domain.AccountRothCombined:
				rothAlloc = rothAlloc.Add(amount)
			}
		}
		break
	}
	return savingsAlloc, rothAlloc
}
