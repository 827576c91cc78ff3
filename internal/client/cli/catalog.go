package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/ariefr/credline/internal/client/services"
)

func (a *App) Products(ctx context.Context) error {
	for snapshot := range a.catalog.Products(ctx) {
		for _, p := range snapshot {
			fmt.Printf("%4d  %-20s  %12d - %-12d  %5.2f%% p.a.  tenors %v\n",
				p.ID, p.Name, p.MinAmount, p.MaxAmount, p.AnnualRate, p.Tenors)
		}
	}
	return nil
}

func (a *App) Branches(ctx context.Context) error {
	for snapshot := range a.catalog.Branches(ctx) {
		for _, b := range snapshot {
			fmt.Printf("%4d  %-20s  %s  %s\n", b.ID, b.Name, b.Address, b.Phone)
		}
	}
	return nil
}

func (a *App) Simulate(ctx context.Context) error {
	productID, err := GetInt64(a.reader, "Product ID", os.Stdout)
	if err != nil {
		fmt.Println(err)
		return err
	}
	amount, err := GetInt64(a.reader, "Amount", os.Stdout)
	if err != nil {
		fmt.Println(err)
		return err
	}
	tenor, err := GetInt(a.reader, "Tenor (months)", os.Stdout)
	if err != nil {
		fmt.Println(err)
		return err
	}

	sim, err := services.Simulate(ctx, a.catalog, productID, amount, tenor)
	if err != nil {
		fmt.Println(err)
		return err
	}

	fmt.Printf("Amount %d over %d months at %.2f%% p.a. flat\n", sim.Amount, sim.Tenor, sim.AnnualRate)
	for _, row := range sim.Schedule {
		fmt.Printf("  %2d  principal %12d  interest %10d  total %12d  remaining %12d\n",
			row.Month, row.Principal, row.Interest, row.Total, row.Remaining)
	}
	fmt.Printf("Total interest %d, total payment %d\n", sim.TotalInterest, sim.TotalPayment)
	return nil
}
