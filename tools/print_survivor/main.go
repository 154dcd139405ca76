package main

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/drawplan/withdrawal-planner/internal/calculation"
	"github.com/drawplan/withdrawal-planner/internal/domain"
)

func main() {
	ce := calculation.NewCalculationEngine()

	// Partner dies at 80 (2045); the subject should then pick up the larger
	// SS benefit plus the survivor share of the pension.
	subject := domain.Participant{
		Name:          "Subject",
		BirthYear:     1963,
		RetirementAge: 65,
		LifeSpanAge:   95,
		K401AccessAge: 60,
		SocialSecurity: domain.SocialSecurityBenefit{
			AnnualAmount: decimal.NewFromInt(20000),
			StartAge:     67,
		},
		K401Balance: decimal.NewFromInt(400000),
	}
	partner := domain.Participant{
		Name:          "Partner",
		BirthYear:     1965,
		RetirementAge: 65,
		LifeSpanAge:   80,
		K401AccessAge: 60,
		SocialSecurity: domain.SocialSecurityBenefit{
			AnnualAmount: decimal.NewFromInt(34000),
			StartAge:     67,
		},
		Pension: domain.PensionBenefit{
			AnnualAmount:        decimal.NewFromInt(24000),
			StartAge:            65,
			SurvivorshipPercent: decimal.NewFromFloat(0.5),
		},
	}

	cfg := &domain.PlanConfig{
		PlanName: "survivor-probe",
		Household: domain.Household{
			Subject:      subject,
			Partner:      &partner,
			FilingStatus: domain.FilingMarriedJointly,
		},
		Fiscal: domain.FiscalParameters{
			BaseYear:        2025,
			ProjectionYears: 30,
			InflationRate:   decimal.Zero,
			AnnualSpend:     decimal.NewFromInt(60000),
			UseSavings:      true,
			Use401k:         true,
			UseRoth:         true,
			UseRMD:          true,
		},
	}

	projection, err := ce.RunPlan(context.Background(), cfg)
	if err != nil {
		panic(err)
	}

	fmt.Println("Year,SubjAlive,PartAlive,Filing,SubjSS,PartSS,Pension")
	for i := range projection.Years {
		yr := &projection.Years[i]
		if yr.Year < 2044 || yr.Year > 2048 {
			continue
		}
		fmt.Printf("%d,%t,%t,%s,%s,%s,%s\n",
			yr.Year, yr.SubjectAlive, yr.PartnerAlive, yr.FilingStatus,
			yr.SubjectSSGross.StringFixed(2), yr.PartnerSSGross.StringFixed(2),
			yr.PensionIncome.StringFixed(2))
	}
}
