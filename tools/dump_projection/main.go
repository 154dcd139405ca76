package main

import (
	"context"
	"fmt"
	"os"

	calc "github.com/drawplan/withdrawal-planner/internal/calculation"
	"github.com/drawplan/withdrawal-planner/internal/config"
	"github.com/shopspring/decimal"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("usage: dump_projection <plan-file>")
		return
	}
	f := os.Args[1]
	p := config.NewInputParser()
	cfg, err := p.LoadFromFile(f)
	if err != nil {
		panic(err)
	}
	engine := calc.NewCalculationEngineWithConfig(cfg)
	projection, err := engine.RunPlan(context.Background(), cfg)
	if err != nil {
		panic(err)
	}
	if len(projection.Years) == 0 {
		fmt.Println("no projection data")
		return
	}

	fmt.Println("Year,Ask,Savings,Roth,K401Net,Withdrawn,Shortfall,FedTax,NetIncome,NetWorth")
	for i := range projection.Years {
		yr := &projection.Years[i]
		fmt.Printf("%d,%s,%s,%s,%s,%s,%s,%s,%s,%s\n",
			yr.Year,
			yr.Ask.StringFixed(0),
			yr.Plan.Savings.StringFixed(0),
			yr.Plan.RothCombined.StringFixed(0),
			yr.Plan.K401.CombinedNet.StringFixed(0),
			yr.Plan.TotalWithdrawn.StringFixed(0),
			yr.Plan.Shortfall.StringFixed(0),
			yr.Tax.FederalTax.StringFixed(0),
			yr.NetIncome.StringFixed(0),
			yr.NetWorth.StringFixed(0))
	}

	cum := decimal.Zero
	for i := range projection.Years {
		cum = cum.Add(projection.Years[i].Plan.TotalWithdrawn)
	}
	fmt.Printf("\nCumulative withdrawn=%s engine total=%s first shortfall=%d\n",
		cum.StringFixed(0), projection.TotalWithdrawals.StringFixed(0), projection.FirstShortfallYear)
}
