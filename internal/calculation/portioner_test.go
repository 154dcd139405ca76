package calculation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drawplan/withdrawal-planner/internal/domain"
)

// subjectOnlyPool builds a 401k pool held entirely by the subject, with the
// net derived from the gross at a 20% withholding rate.
func subjectOnlyPool(gross decimal.Decimal) *K401Availability {
	rate := decimal.NewFromFloat(0.20)
	net := gross.Mul(decimal.NewFromFloat(0.80))
	return &K401Availability{
		Year:            2025,
		SubjectGross:    gross,
		SubjectNet:      net,
		CombinedGross:   gross,
		CombinedNet:     net,
		SubjectPortion:  decimal.NewFromInt(1),
		PartnerPortion:  decimal.Zero,
		WithholdingRate: rate,
	}
}

func emptyPool() *K401Availability {
	return &K401Availability{Year: 2025, WithholdingRate: decimal.NewFromFloat(0.20)}
}

func findDecision(plan *domain.WithdrawalPlan, account domain.AccountKind, action domain.AllocationAction) *domain.AllocationDecision {
	for i := range plan.Decisions {
		d := &plan.Decisions[i]
		if d.Account == account && d.Action == action {
			return d
		}
	}
	return nil
}

func assertPlanReconciles(t *testing.T, plan *domain.WithdrawalPlan) {
	t.Helper()
	expected := plan.Savings.Add(plan.RothCombined).Add(plan.K401.CombinedNet)
	assert.True(t, plan.TotalWithdrawn.Equal(expected),
		"Total withdrawn %s should equal savings+roth+401k net %s", plan.TotalWithdrawn, expected)
}

func TestAccountPortionerNonPositiveAsk(t *testing.T) {
	portioner := NewAccountPortioner(&domain.FiscalParameters{})
	avail := &AccountAvailability{
		Year:    2025,
		Savings: decimal.NewFromInt(100000),
		K401:    emptyPool(),
	}

	for _, ask := range []decimal.Decimal{decimal.Zero, decimal.NewFromInt(-500)} {
		plan := portioner.Plan(avail, ask)
		assert.True(t, plan.TotalWithdrawn.IsZero(),
			"Non-positive ask should withdraw nothing, got %s", plan.TotalWithdrawn)
		assert.True(t, plan.Savings.IsZero(), "Savings untouched for ask %s", ask)
		assert.Empty(t, plan.Decisions, "No decisions expected for ask %s", ask)
		assert.False(t, plan.HasShortfall())
	}
}

func TestAccountPortionerSingleAccountFullAllocation(t *testing.T) {
	portioner := NewAccountPortioner(&domain.FiscalParameters{})
	avail := &AccountAvailability{
		Year:    2025,
		Savings: decimal.NewFromInt(100000),
		K401:    emptyPool(),
	}

	plan := portioner.Plan(avail, decimal.NewFromInt(40000))

	assert.True(t, plan.Savings.Equal(decimal.NewFromInt(40000)),
		"Savings should fund the full ask, got %s", plan.Savings)
	assert.True(t, plan.RothCombined.IsZero())
	assert.True(t, plan.K401.IsZero())
	assert.False(t, plan.HasShortfall())
	assertPlanReconciles(t, plan)

	require.Len(t, plan.Decisions, 1)
	assert.Equal(t, domain.ActionAllocatedProportional, plan.Decisions[0].Action)
	assert.Equal(t, domain.AccountSavings, plan.Decisions[0].Account)
}

func TestAccountPortionerDrainsImmaterialSavings(t *testing.T) {
	// Savings of 150 sits below the materiality threshold (1% of the 50150
	// spend-capable total), so it drains in full before anything else.
	portioner := NewAccountPortioner(&domain.FiscalParameters{})
	avail := &AccountAvailability{
		Year:        2025,
		Savings:     decimal.NewFromInt(150),
		RothSubject: decimal.NewFromInt(30000),
		RothPartner: decimal.NewFromInt(20000),
		K401:        emptyPool(),
	}

	plan := portioner.Plan(avail, decimal.NewFromInt(10000))

	assert.True(t, plan.Savings.Equal(decimal.NewFromInt(150)),
		"Immaterial savings should drain in full, got %s", plan.Savings)
	assert.True(t, plan.RothCombined.Equal(decimal.NewFromInt(9850)),
		"Roth should fund the remainder, got %s", plan.RothCombined)
	assert.False(t, plan.HasShortfall())
	assertPlanReconciles(t, plan)

	drained := findDecision(plan, domain.AccountSavings, domain.ActionDrainedImmaterial)
	require.NotNil(t, drained, "Expected an immaterial-drain decision for savings")
	assert.True(t, drained.Amount.Equal(decimal.NewFromInt(150)))
	assert.NotNil(t, findDecision(plan, domain.AccountRothCombined, domain.ActionAllocatedProportional))
}

func TestAccountPortionerDrainsImmaterialPool(t *testing.T) {
	// A 401k pool netting 300 is immaterial next to 50000 of savings; it
	// drains in full through the 401k portioner, gross 375 at 20% withholding.
	portioner := NewAccountPortioner(&domain.FiscalParameters{})
	avail := &AccountAvailability{
		Year:    2025,
		Savings: decimal.NewFromInt(50000),
		K401:    subjectOnlyPool(decimal.NewFromInt(375)),
	}

	plan := portioner.Plan(avail, decimal.NewFromInt(10000))

	assert.True(t, plan.K401.CombinedNet.Equal(decimal.NewFromInt(300)),
		"Pool net should drain in full, got %s", plan.K401.CombinedNet)
	assert.True(t, plan.K401.SubjectGross.Equal(decimal.NewFromInt(375)),
		"Pool gross should back out withholding, got %s", plan.K401.SubjectGross)
	assert.True(t, plan.Savings.Equal(decimal.NewFromInt(9700)),
		"Savings should fund the remainder, got %s", plan.Savings)
	assert.False(t, plan.HasShortfall())
	assertPlanReconciles(t, plan)

	require.NotNil(t, findDecision(plan, domain.Account401kPool, domain.ActionDrainedImmaterial))
}

func TestAccountPortionerWeighted401kShare(t *testing.T) {
	// Pool net 40000 against 100000 total funds takes 40% of the ask; the
	// generic remainder lands on savings.
	portioner := NewAccountPortioner(&domain.FiscalParameters{})
	avail := &AccountAvailability{
		Year:    2025,
		Savings: decimal.NewFromInt(60000),
		K401:    subjectOnlyPool(decimal.NewFromInt(50000)),
	}

	plan := portioner.Plan(avail, decimal.NewFromInt(20000))

	assert.True(t, plan.K401.CombinedNet.Equal(decimal.NewFromInt(8000)),
		"Pool should take its weighted share, got %s", plan.K401.CombinedNet)
	assert.True(t, plan.K401.SubjectGross.Equal(decimal.NewFromInt(10000)),
		"Pool gross should back out withholding, got %s", plan.K401.SubjectGross)
	assert.True(t, plan.Savings.Equal(decimal.NewFromInt(12000)),
		"Savings should fund the remainder, got %s", plan.Savings)
	assert.False(t, plan.HasShortfall())
	assertPlanReconciles(t, plan)

	weighted := findDecision(plan, domain.Account401kPool, domain.ActionAllocatedWeighted)
	require.NotNil(t, weighted, "Expected a weighted-allocation decision for the pool")
	assert.True(t, weighted.Amount.Equal(decimal.NewFromInt(8000)))
}

func TestAccountPortionerEliminatesBelowMinimumShare(t *testing.T) {
	// Roth's proportional share of the ask comes to about 148, below the 200
	// minimum, so Roth drops out and savings absorbs the whole ask.
	portioner := NewAccountPortioner(&domain.FiscalParameters{})
	avail := &AccountAvailability{
		Year:        2025,
		Savings:     decimal.NewFromInt(100000),
		RothSubject: decimal.NewFromInt(1500),
		K401:        emptyPool(),
	}

	plan := portioner.Plan(avail, decimal.NewFromInt(10000))

	assert.True(t, plan.Savings.Equal(decimal.NewFromInt(10000)),
		"Savings should absorb the full ask after elimination, got %s", plan.Savings)
	assert.True(t, plan.RothCombined.IsZero(),
		"Eliminated Roth should take nothing, got %s", plan.RothCombined)
	assert.False(t, plan.HasShortfall())
	assertPlanReconciles(t, plan)

	require.NotNil(t, findDecision(plan, domain.AccountRothCombined, domain.ActionEliminatedBelowMinimum))
	require.NotNil(t, findDecision(plan, domain.AccountSavings, domain.ActionAllocatedProportional))
}

func TestAccountPortionerShortfall(t *testing.T) {
	// 8000 of generic funds cannot cover a 20000 ask; both accounts cap at
	// availability and the 12000 gap reports as shortfall, not as an error.
	portioner := NewAccountPortioner(&domain.FiscalParameters{})
	avail := &AccountAvailability{
		Year:        2025,
		Savings:     decimal.NewFromInt(5000),
		RothSubject: decimal.NewFromInt(3000),
		K401:        emptyPool(),
	}

	plan := portioner.Plan(avail, decimal.NewFromInt(20000))

	assert.True(t, plan.Savings.Equal(decimal.NewFromInt(5000)),
		"Savings should cap at availability, got %s", plan.Savings)
	assert.True(t, plan.RothCombined.Equal(decimal.NewFromInt(3000)),
		"Roth should cap at availability, got %s", plan.RothCombined)
	assert.True(t, plan.Shortfall.Equal(decimal.NewFromInt(12000)),
		"Shortfall should be the unfunded remainder, got %s", plan.Shortfall)
	assert.True(t, plan.HasShortfall())
	assert.True(t, plan.Funded().Equal(decimal.NewFromFloat(0.4)),
		"Plan should report 40%% funded, got %s", plan.Funded())
	assertPlanReconciles(t, plan)

	assert.NotNil(t, findDecision(plan, domain.AccountSavings, domain.ActionCappedAtAvailable))
	assert.NotNil(t, findDecision(plan, domain.AccountRothCombined, domain.ActionCappedAtAvailable))
}

func TestAccountPortionerShortfallAfterPoolExhausted(t *testing.T) {
	portioner := NewAccountPortioner(&domain.FiscalParameters{})
	avail := &AccountAvailability{
		Year:    2025,
		Savings: decimal.NewFromInt(5000),
		K401:    subjectOnlyPool(decimal.NewFromInt(10000)),
	}

	plan := portioner.Plan(avail, decimal.NewFromInt(20000))

	assert.True(t, plan.K401.CombinedNet.Equal(decimal.NewFromInt(8000)),
		"Pool should drain to its net availability, got %s", plan.K401.CombinedNet)
	assert.True(t, plan.K401.SubjectGross.Equal(decimal.NewFromInt(10000)),
		"Pool gross should equal the balance, got %s", plan.K401.SubjectGross)
	assert.True(t, plan.Savings.Equal(decimal.NewFromInt(5000)),
		"Savings should cap at availability, got %s", plan.Savings)
	assert.True(t, plan.Shortfall.Equal(decimal.NewFromInt(7000)),
		"Shortfall should be the unfunded remainder, got %s", plan.Shortfall)
	assertPlanReconciles(t, plan)
}

func TestAccountPortionerRMDExceedsAsk(t *testing.T) {
	// A required distribution larger than the ask still withdraws in full.
	// The plan overshoots the ask and reports no shortfall.
	pool := subjectOnlyPool(decimal.NewFromInt(300000))
	pool.SubjectRMDGross = decimal.RequireFromString("12195.12")
	pool.SubjectRMDNet = decimal.RequireFromString("9756.096")
	pool.CombinedRMDGross = pool.SubjectRMDGross
	pool.CombinedRMDNet = pool.SubjectRMDNet

	portioner := NewAccountPortioner(&domain.FiscalParameters{})
	avail := &AccountAvailability{Year: 2025, K401: pool}

	plan := portioner.Plan(avail, decimal.NewFromInt(5000))

	assert.True(t, plan.K401.SubjectRMDFloored, "RMD floor should apply")
	assert.True(t, plan.K401.CombinedNet.Equal(decimal.RequireFromString("9756.10")),
		"Withdrawal should rise to the RMD net, got %s", plan.K401.CombinedNet)
	assert.True(t, plan.TotalWithdrawn.GreaterThan(plan.Ask),
		"Forced distribution may overshoot the ask")
	assert.False(t, plan.HasShortfall())
	assertPlanReconciles(t, plan)

	require.NotNil(t, findDecision(plan, domain.Account401kSubject, domain.ActionRMDFloorApplied))
}

func TestAccountPortionerThresholdOverrides(t *testing.T) {
	// Raising the minimum withdrawal to 5000 eliminates a Roth share that
	// would survive the default threshold.
	portioner := NewAccountPortioner(&domain.FiscalParameters{
		MinimumWithdrawal: decimal.NewFromInt(5000),
	})
	avail := &AccountAvailability{
		Year:        2025,
		Savings:     decimal.NewFromInt(100000),
		RothSubject: decimal.NewFromInt(20000),
		K401:        emptyPool(),
	}

	plan := portioner.Plan(avail, decimal.NewFromInt(12000))

	// Roth's proportional share would be 2000, below the raised minimum.
	assert.True(t, plan.RothCombined.IsZero(),
		"Roth share below the raised minimum should eliminate, got %s", plan.RothCombined)
	assert.True(t, plan.Savings.Equal(decimal.NewFromInt(12000)),
		"Savings should absorb the full ask, got %s", plan.Savings)
	assertPlanReconciles(t, plan)
}

func TestBuildAccountAvailability(t *testing.T) {
	params := availabilityParams()
	params.UseSavings = true
	params.UseRoth = true

	household := availabilityHousehold(1960, 1962)
	balances := &stubBalances{
		starting: map[domain.AccountKind]decimal.Decimal{
			domain.Account401kSubject: decimal.NewFromInt(300000),
			domain.Account401kPartner: decimal.NewFromInt(100000),
		},
		ending: map[domain.AccountKind]decimal.Decimal{
			domain.AccountSavings:     decimal.NewFromInt(80000),
			domain.AccountRothSubject: decimal.NewFromInt(30000),
			domain.AccountRothPartner: decimal.NewFromInt(20000),
		},
	}

	avail, err := BuildAccountAvailability(params, household, balances, NewRMDCalculator(true), 2025)
	require.NoError(t, err)

	assert.True(t, avail.Savings.Equal(decimal.NewFromInt(80000)))
	assert.True(t, avail.RothCombined().Equal(decimal.NewFromInt(50000)))
	assert.True(t, avail.GenericTotal().Equal(decimal.NewFromInt(130000)))
	assert.True(t, avail.K401.CombinedNet.Equal(decimal.NewFromInt(320000)))
	assert.True(t, avail.SpendCapableTotal().Equal(decimal.NewFromInt(450000)),
		"Spend-capable total should sum generic and pool net, got %s", avail.SpendCapableTotal())
}

func TestBuildAccountAvailabilityDisabledClasses(t *testing.T) {
	params := availabilityParams()
	params.UseSavings = false
	params.UseRoth = false
	params.Use401k = false

	household := availabilityHousehold(1960, 1962)
	balances := &stubBalances{}

	avail, err := BuildAccountAvailability(params, household, balances, NewRMDCalculator(true), 2025)
	require.NoError(t, err)

	assert.True(t, avail.Savings.IsZero(), "Disabled savings contributes nothing")
	assert.True(t, avail.RothCombined().IsZero(), "Disabled Roth contributes nothing")
	assert.True(t, avail.K401.CombinedNet.IsZero(), "Disabled 401k contributes nothing")
	assert.True(t, avail.SpendCapableTotal().IsZero())
}
