package calculation

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/drawplan/withdrawal-planner/internal/domain"
	"github.com/drawplan/withdrawal-planner/pkg/money"
)

// BalanceSource supplies per-year account balances, typically the ledger.
type BalanceSource interface {
	StartingBalance(account domain.AccountKind, year int) (decimal.Decimal, error)
	EndingBalance(account domain.AccountKind, year int) (decimal.Decimal, error)
}

// K401Availability is the per-person 401k picture for one year: how much can
// come out gross and net, the required minimums, and each person's portion of
// the combined pool. 401k availability is measured against starting balances;
// required distributions are defined by law on the prior year-end balance.
type K401Availability struct {
	Year int

	SubjectGross decimal.Decimal
	SubjectNet   decimal.Decimal
	PartnerGross decimal.Decimal
	PartnerNet   decimal.Decimal

	CombinedGross decimal.Decimal
	CombinedNet   decimal.Decimal

	SubjectRMDGross decimal.Decimal
	SubjectRMDNet   decimal.Decimal
	PartnerRMDGross decimal.Decimal
	PartnerRMDNet   decimal.Decimal

	CombinedRMDGross decimal.Decimal
	CombinedRMDNet   decimal.Decimal

	// Portions are each person's share of the combined gross availability.
	// They sum to one whenever the combined pool is positive.
	SubjectPortion decimal.Decimal
	PartnerPortion decimal.Decimal

	WithholdingRate decimal.Decimal
}

// NewK401Availability builds the 401k availability picture for one year. A
// person contributes availability only when the 401k class is enabled, they
// are alive, and they have reached their 401k access age. An optional
// withdrawal ceiling caps each person's gross.
func NewK401Availability(params *domain.FiscalParameters, household *domain.Household, balances BalanceSource, rmdCalc *RMDCalculator, year int) (*K401Availability, error) {
	avail := &K401Availability{
		Year:            year,
		WithholdingRate: params.K401WithholdingRate,
	}

	var err error
	avail.SubjectGross, avail.SubjectRMDGross, err = personK401(params, &household.Subject, domain.Account401kSubject, balances, rmdCalc, year)
	if err != nil {
		return nil, err
	}
	if household.Partner != nil {
		avail.PartnerGross, avail.PartnerRMDGross, err = personK401(params, household.Partner, domain.Account401kPartner, balances, rmdCalc, year)
		if err != nil {
			return nil, err
		}
	}

	avail.SubjectNet = money.NetOfWithholding(avail.SubjectGross, params.K401WithholdingRate)
	avail.PartnerNet = money.NetOfWithholding(avail.PartnerGross, params.K401WithholdingRate)
	avail.SubjectRMDNet = money.NetOfWithholding(avail.SubjectRMDGross, params.K401WithholdingRate)
	avail.PartnerRMDNet = money.NetOfWithholding(avail.PartnerRMDGross, params.K401WithholdingRate)

	avail.CombinedGross = avail.SubjectGross.Add(avail.PartnerGross)
	avail.CombinedNet = avail.SubjectNet.Add(avail.PartnerNet)
	avail.CombinedRMDGross = avail.SubjectRMDGross.Add(avail.PartnerRMDGross)
	avail.CombinedRMDNet = avail.SubjectRMDNet.Add(avail.PartnerRMDNet)

	if avail.CombinedGross.IsPositive() {
		avail.SubjectPortion = avail.SubjectGross.Div(avail.CombinedGross)
		avail.PartnerPortion = decimal.NewFromInt(1).Sub(avail.SubjectPortion)
	}

	return avail, nil
}

// personK401 returns one person's gross availability and RMD gross. The RMD
// is computed on the uncapped starting balance, then capped at the (possibly
// ceiling-capped) availability so floors can never exceed what may be taken.
func personK401(params *domain.FiscalParameters, person *domain.Participant, account domain.AccountKind, balances BalanceSource, rmdCalc *RMDCalculator, year int) (gross, rmdGross decimal.Decimal, err error) {
	if !params.Use401k || !person.IsAliveInYear(year) || !person.Has401kAccessInYear(year) {
		return decimal.Zero, decimal.Zero, nil
	}

	starting, err := balances.StartingBalance(account, year)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("401k availability for %q: %w", account, err)
	}
	if !starting.IsPositive() {
		return decimal.Zero, decimal.Zero, nil
	}

	gross = starting
	if params.K401WithdrawalCeiling != nil && gross.GreaterThan(*params.K401WithdrawalCeiling) {
		gross = *params.K401WithdrawalCeiling
	}

	rmdGross = rmdCalc.CalculateRMD(person.AgeInYear(year), starting)
	if rmdGross.GreaterThan(gross) {
		rmdGross = gross
	}
	return gross, rmdGross, nil
}

// PortionK401 carves the 401k pool's slice out of an ask. The pool takes a
// share proportional to its weight in totalFundsAvailable, split between the
// participants by portion, with each person's net floored at their RMD net
// and capped at their net availability. Gross amounts are grossed back up
// through the withholding rate.
func (k *K401Availability) PortionK401(ask, totalFundsAvailable decimal.Decimal) domain.K401Withdrawal {
	var w domain.K401Withdrawal
	if k.CombinedNet.LessThanOrEqual(decimal.Zero) || ask.LessThanOrEqual(decimal.Zero) {
		return w
	}

	pct := decimal.Zero
	if totalFundsAvailable.IsPositive() {
		pct = k.CombinedNet.Div(totalFundsAvailable)
	}
	actualized := money.RoundCents(ask.Mul(pct))

	subjectShare := actualized.Mul(k.SubjectPortion)
	partnerShare := actualized.Sub(subjectShare)

	w.SubjectNet, w.SubjectRMDFloored = flooredNet(subjectShare, k.SubjectRMDNet, k.SubjectNet)
	w.PartnerNet, w.PartnerRMDFloored = flooredNet(partnerShare, k.PartnerRMDNet, k.PartnerNet)

	w.SubjectGross = grossFromNetCapped(w.SubjectNet, k.WithholdingRate, k.SubjectGross)
	w.PartnerGross = grossFromNetCapped(w.PartnerNet, k.WithholdingRate, k.PartnerGross)

	w.CombinedNet = w.SubjectNet.Add(w.PartnerNet)
	w.CombinedGross = w.SubjectGross.Add(w.PartnerGross)
	return w
}

// flooredNet applies the RMD floor to one person's net share, then caps the
// result at their net availability.
func flooredNet(share, rmdNet, netAvailable decimal.Decimal) (decimal.Decimal, bool) {
	net := share
	floored := false
	if rmdNet.GreaterThan(net) {
		net = rmdNet
		floored = true
	}
	if net.GreaterThan(netAvailable) {
		net = netAvailable
	}
	return money.RoundCents(net), floored
}

// grossFromNetCapped grosses a net amount back up and caps it at the gross
// availability, absorbing cent drift from rounding.
func grossFromNetCapped(net, rate, grossAvailable decimal.Decimal) decimal.Decimal {
	gross := money.RoundCents(money.GrossFromNet(net, rate))
	limit := money.RoundCents(grossAvailable)
	if gross.GreaterThan(limit) {
		return limit
	}
	return gross
}
