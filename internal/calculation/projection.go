package calculation

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/drawplan/withdrawal-planner/internal/domain"
	"github.com/drawplan/withdrawal-planner/internal/ledger"
	"github.com/drawplan/withdrawal-planner/pkg/dateutil"
	"github.com/drawplan/withdrawal-planner/pkg/money"
)

// GenerateAnnualProjection walks the plan year by year: balances carry
// forward, deceased spouses' accounts roll over, working participants
// contribute, fixed income arrives, the withdrawal waterfall funds the
// remaining spend, growth posts, and the year's federal tax is assessed.
// The projection ends early once no participant remains alive.
func (ce *CalculationEngine) GenerateAnnualProjection(ctx context.Context, cfg *domain.PlanConfig) ([]domain.AnnualSummary, error) {
	fiscal := &cfg.Fiscal
	household := &cfg.Household

	led := ledger.NewLedger(openingBalances(household), fiscal.BaseYear)
	portioner := NewAccountPortioner(fiscal)

	years := make([]domain.AnnualSummary, 0, fiscal.ProjectionYears)
	for i := 0; i < fiscal.ProjectionYears; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		year := fiscal.BaseYear + i
		if !household.AnyAliveInYear(year) {
			ce.Logger.Debugf("year %d: no participant alive, ending projection", year)
			break
		}

		if year > fiscal.BaseYear {
			if err := led.BeginYear(year); err != nil {
				return nil, fmt.Errorf("year %d: %w", year, err)
			}
		}

		if err := rolloverDeceased(led, household, year); err != nil {
			return nil, fmt.Errorf("year %d: %w", year, err)
		}
		if err := postContributions(led, household, fiscal, year); err != nil {
			return nil, fmt.Errorf("year %d: %w", year, err)
		}

		row, err := ce.projectYear(led, portioner, cfg, year)
		if err != nil {
			return nil, fmt.Errorf("year %d: %w", year, err)
		}

		if err := applyGrowth(led, fiscal, year); err != nil {
			return nil, fmt.Errorf("year %d: %w", year, err)
		}

		row.EndingBalances, err = led.EndingBalances(year)
		if err != nil {
			return nil, fmt.Errorf("year %d: %w", year, err)
		}
		row.NetWorth, err = led.NetWorth(year)
		if err != nil {
			return nil, fmt.Errorf("year %d: %w", year, err)
		}

		if ce.Debug {
			ce.Logger.Debugf("year %d: ask %s, withdrawn %s, shortfall %s, federal tax %s, net worth %s",
				year, row.Ask.StringFixed(2), row.Plan.TotalWithdrawn.StringFixed(2),
				row.Plan.Shortfall.StringFixed(2), row.Tax.FederalTax.StringFixed(2),
				row.NetWorth.StringFixed(2))
		}

		years = append(years, *row)
	}

	return years, nil
}

// projectYear runs the income, withdrawal, and tax steps for one year and
// returns the summary row, still missing ending balances.
func (ce *CalculationEngine) projectYear(led *ledger.Ledger, portioner *AccountPortioner, cfg *domain.PlanConfig, year int) (*domain.AnnualSummary, error) {
	fiscal := &cfg.Fiscal
	household := &cfg.Household
	status := household.FilingStatusInYear(year)

	row := &domain.AnnualSummary{
		Year:         year,
		SubjectAge:   household.Subject.AgeInYear(year),
		SubjectAlive: household.Subject.IsAliveInYear(year),
		Retired:      household.Subject.IsRetiredInYear(year),
		FilingStatus: status,
	}
	if household.Partner != nil {
		row.PartnerAge = household.Partner.AgeInYear(year)
		row.PartnerAlive = household.Partner.IsAliveInYear(year)
	}

	factor := inflationFactor(fiscal.InflationRate, fiscal.BaseYear, year)
	row.SubjectSSGross, row.PartnerSSGross = socialSecurityForYear(household, factor, year)
	row.PensionIncome = pensionForYear(household, factor, year)

	ssTotal := row.SubjectSSGross.Add(row.PartnerSSGross)
	row.CashOnHand = money.RoundCents(money.NetOfWithholding(ssTotal, fiscal.SSWithholdingRate).Add(row.PensionIncome))

	if row.Retired {
		row.TargetSpend = money.RoundCents(fiscal.AnnualSpend.Mul(factor))
		ask := row.TargetSpend.Sub(row.CashOnHand)
		row.Ask = ask

		avail, err := BuildAccountAvailability(fiscal, household, led, ce.RMD, year)
		if err != nil {
			return nil, err
		}
		plan := portioner.Plan(avail, ask)
		if err := applyWithdrawalPlan(led, plan, year); err != nil {
			return nil, err
		}
		row.Plan = *plan
	}

	otherTaxable := row.Plan.K401.CombinedGross.Add(row.PensionIncome)
	breakdown := ce.SSTax.TaxableBenefits(row.SubjectSSGross, row.PartnerSSGross, otherTaxable, status)
	row.SSTax = *breakdown

	taxResult, err := ce.FederalTax.CalculateTax(otherTaxable.Add(breakdown.TaxableAmount), status, year)
	if err != nil {
		return nil, fmt.Errorf("federal tax: %w", err)
	}
	row.Tax = *taxResult

	row.NetIncome = row.CashOnHand.Add(row.Plan.TotalWithdrawn).Sub(row.Tax.FederalTax)
	return row, nil
}

// openingBalances maps the household's configured balances onto the ledger
// accounts. Accounts with no configured holder open at zero.
func openingBalances(household *domain.Household) map[domain.AccountKind]decimal.Decimal {
	opening := map[domain.AccountKind]decimal.Decimal{
		domain.AccountSavings:     household.SavingsBalance,
		domain.AccountRothSubject: household.Subject.RothBalance,
		domain.Account401kSubject: household.Subject.K401Balance,
	}
	if household.Partner != nil {
		opening[domain.AccountRothPartner] = household.Partner.RothBalance
		opening[domain.Account401kPartner] = household.Partner.K401Balance
	}
	return opening
}

// rolloverDeceased moves a deceased spouse's 401k and Roth balances to the
// survivor in the first year after death.
func rolloverDeceased(led *ledger.Ledger, household *domain.Household, year int) error {
	if household.Partner == nil {
		return nil
	}

	subject := &household.Subject
	partner := household.Partner
	switch {
	case diedBefore(subject, year) && partner.IsAliveInYear(year):
		if err := transferBalance(led, domain.Account401kSubject, domain.Account401kPartner, year); err != nil {
			return err
		}
		return transferBalance(led, domain.AccountRothSubject, domain.AccountRothPartner, year)
	case diedBefore(partner, year) && subject.IsAliveInYear(year):
		if err := transferBalance(led, domain.Account401kPartner, domain.Account401kSubject, year); err != nil {
			return err
		}
		return transferBalance(led, domain.AccountRothPartner, domain.AccountRothSubject, year)
	}
	return nil
}

// diedBefore reports whether the participant's first year gone is this year.
func diedBefore(p *domain.Participant, year int) bool {
	return !p.IsAliveInYear(year) && p.IsAliveInYear(year-1)
}

func transferBalance(led *ledger.Ledger, from, to domain.AccountKind, year int) error {
	balance, err := led.EndingBalance(from, year)
	if err != nil {
		return err
	}
	if !balance.IsPositive() {
		return nil
	}
	return led.Transfer(from, to, year, balance, ledger.CategoryRollover)
}

// postContributions deposits the working-year contributions: each participant
// still below retirement age funds their own 401k and Roth, and the household
// savings contribution continues while the subject works. Contribution
// amounts are flat, not inflation-indexed.
func postContributions(led *ledger.Ledger, household *domain.Household, fiscal *domain.FiscalParameters, year int) error {
	subject := &household.Subject
	if subject.IsAliveInYear(year) && !subject.IsRetiredInYear(year) {
		if err := depositIfPositive(led, domain.Account401kSubject, year, subject.K401AnnualContribution); err != nil {
			return err
		}
		if err := depositIfPositive(led, domain.AccountRothSubject, year, subject.RothAnnualContribution); err != nil {
			return err
		}
		if err := depositIfPositive(led, domain.AccountSavings, year, household.SavingsAnnualContribution); err != nil {
			return err
		}
	}

	partner := household.Partner
	if partner != nil && partner.IsAliveInYear(year) && !partner.IsRetiredInYear(year) {
		if err := depositIfPositive(led, domain.Account401kPartner, year, partner.K401AnnualContribution); err != nil {
			return err
		}
		if err := depositIfPositive(led, domain.AccountRothPartner, year, partner.RothAnnualContribution); err != nil {
			return err
		}
	}
	return nil
}

func depositIfPositive(led *ledger.Ledger, account domain.AccountKind, year int, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return nil
	}
	return led.Deposit(account, year, amount, ledger.CategoryContribution)
}

// socialSecurityForYear returns each participant's gross Social Security for
// the year, inflation-indexed. A sole survivor at or past their own start age
// receives the larger of their own and the deceased spouse's benefit.
func socialSecurityForYear(household *domain.Household, factor decimal.Decimal, year int) (subjectSS, partnerSS decimal.Decimal) {
	subject := &household.Subject
	partner := household.Partner

	subjectSS = personSS(subject, factor, year)
	if partner != nil {
		partnerSS = personSS(partner, factor, year)

		if subject.IsAliveInYear(year) && !partner.IsAliveInYear(year) {
			subjectSS = survivorSS(subject, partner, subjectSS, factor, year)
			partnerSS = decimal.Zero
		}
		if partner.IsAliveInYear(year) && !subject.IsAliveInYear(year) {
			partnerSS = survivorSS(partner, subject, partnerSS, factor, year)
			subjectSS = decimal.Zero
		}
	}
	return subjectSS, partnerSS
}

func personSS(p *domain.Participant, factor decimal.Decimal, year int) decimal.Decimal {
	if !p.IsAliveInYear(year) || !p.SocialSecurity.AnnualAmount.IsPositive() {
		return decimal.Zero
	}
	if !dateutil.HasReachedAge(p.BirthYear, p.SocialSecurity.StartAge, year) {
		return decimal.Zero
	}
	return money.RoundCents(p.SocialSecurity.AnnualAmount.Mul(factor))
}

// survivorSS substitutes the deceased spouse's benefit when it is larger than
// the survivor's own. The survivor must have reached their own start age.
func survivorSS(survivor, deceased *domain.Participant, own, factor decimal.Decimal, year int) decimal.Decimal {
	if !dateutil.HasReachedAge(survivor.BirthYear, survivor.SocialSecurity.StartAge, year) {
		return own
	}
	inherited := money.RoundCents(deceased.SocialSecurity.AnnualAmount.Mul(factor))
	return decimal.Max(own, inherited)
}

// pensionForYear returns the household's pension income for the year. Each
// living participant at or past their pension start age receives their own
// indexed benefit; a survivor additionally receives the deceased spouse's
// benefit scaled by its survivorship percent.
func pensionForYear(household *domain.Household, factor decimal.Decimal, year int) decimal.Decimal {
	subject := &household.Subject
	partner := household.Partner

	pension := personPension(subject, factor, year).Add(personPension(partner, factor, year))
	if partner == nil {
		return pension
	}

	if subject.IsAliveInYear(year) && !partner.IsAliveInYear(year) {
		pension = pension.Add(survivorPension(partner, factor))
	}
	if partner.IsAliveInYear(year) && !subject.IsAliveInYear(year) {
		pension = pension.Add(survivorPension(subject, factor))
	}
	return pension
}

func personPension(p *domain.Participant, factor decimal.Decimal, year int) decimal.Decimal {
	if p == nil || !p.IsAliveInYear(year) || !p.Pension.AnnualAmount.IsPositive() {
		return decimal.Zero
	}
	if !dateutil.HasReachedAge(p.BirthYear, p.Pension.StartAge, year) {
		return decimal.Zero
	}
	return money.RoundCents(p.Pension.AnnualAmount.Mul(factor))
}

func survivorPension(deceased *domain.Participant, factor decimal.Decimal) decimal.Decimal {
	if !deceased.Pension.AnnualAmount.IsPositive() || !deceased.Pension.SurvivorshipPercent.IsPositive() {
		return decimal.Zero
	}
	indexed := deceased.Pension.AnnualAmount.Mul(factor)
	return money.RoundCents(indexed.Mul(deceased.Pension.SurvivorshipPercent))
}

// applyWithdrawalPlan posts the plan to the ledger: gross 401k amounts leave
// the 401k accounts, the combined Roth amount splits subject-first, and
// savings draws directly.
func applyWithdrawalPlan(led *ledger.Ledger, plan *domain.WithdrawalPlan, year int) error {
	if plan.Savings.IsPositive() {
		if err := led.Withdraw(domain.AccountSavings, year, plan.Savings, ledger.CategoryDrawdown); err != nil {
			return err
		}
	}

	if plan.RothCombined.IsPositive() {
		subjectBalance, err := led.EndingBalance(domain.AccountRothSubject, year)
		if err != nil {
			return err
		}
		fromSubject := decimal.Min(plan.RothCombined, subjectBalance)
		if fromSubject.IsPositive() {
			if err := led.Withdraw(domain.AccountRothSubject, year, fromSubject, ledger.CategoryDrawdown); err != nil {
				return err
			}
		}
		if rest := plan.RothCombined.Sub(fromSubject); rest.IsPositive() {
			if err := led.Withdraw(domain.AccountRothPartner, year, rest, ledger.CategoryDrawdown); err != nil {
				return err
			}
		}
	}

	if plan.K401.SubjectGross.IsPositive() {
		if err := led.Withdraw(domain.Account401kSubject, year, plan.K401.SubjectGross, ledger.CategoryDrawdown); err != nil {
			return err
		}
	}
	if plan.K401.PartnerGross.IsPositive() {
		if err := led.Withdraw(domain.Account401kPartner, year, plan.K401.PartnerGross, ledger.CategoryDrawdown); err != nil {
			return err
		}
	}
	return nil
}

// applyGrowth posts each account class's return on the post-withdrawal
// balance at year end.
func applyGrowth(led *ledger.Ledger, fiscal *domain.FiscalParameters, year int) error {
	for _, account := range led.Accounts() {
		if err := led.ApplyGrowth(account, year, growthRateFor(account, fiscal)); err != nil {
			return err
		}
	}
	return nil
}

func growthRateFor(account domain.AccountKind, fiscal *domain.FiscalParameters) decimal.Decimal {
	switch account {
	case domain.AccountSavings:
		return fiscal.SavingsReturnRate
	case domain.AccountRothSubject, domain.AccountRothPartner:
		return fiscal.RothReturnRate
	default:
		return fiscal.K401ReturnRate
	}
}

// inflationFactor returns (1 + rate)^(year - baseYear), one at or before the
// base year.
func inflationFactor(rate decimal.Decimal, baseYear, year int) decimal.Decimal {
	yearsOut := year - baseYear
	if yearsOut <= 0 || rate.IsZero() {
		return decimal.NewFromInt(1)
	}
	return decimal.NewFromInt(1).Add(rate).Pow(decimal.NewFromInt(int64(yearsOut)))
}
