package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/ariefr/credline/internal/client/models"
)

func loanLine(l models.Loan) string {
	if l.ID == models.PlaceholderID {
		s := fmt.Sprintf("   -  plafond %4d  %12d  %2d mo  %s  ref %s", l.PlafondID, l.Amount, l.Tenor, l.Status, l.LocalRef)
		if l.FailReason != "" {
			s += "  (" + l.FailReason + ")"
		}
		return s
	}
	return fmt.Sprintf("%4d  plafond %4d  %12d  %2d mo  %s", l.ID, l.PlafondID, l.Amount, l.Tenor, l.Status)
}

func (a *App) Loans(ctx context.Context) error {
	for snapshot := range a.loans.List(ctx) {
		for _, l := range snapshot {
			fmt.Println(loanLine(l))
		}
	}
	return nil
}

func (a *App) Show(ctx context.Context) error {
	id, err := GetInt64(a.reader, "Loan ID", os.Stdout)
	if err != nil {
		fmt.Println(err)
		return err
	}

	l, err := a.loans.GetByID(ctx, id)
	if err != nil {
		fmt.Println(err)
		return err
	}
	fmt.Println(loanLine(*l))
	return nil
}

func (a *App) Submit(ctx context.Context) error {
	plafondID, err := GetInt64(a.reader, "Credit line (plafond) ID", os.Stdout)
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

	l, err := a.loans.Submit(ctx, models.SubmitLoanPayload{PlafondID: plafondID, Amount: amount, Tenor: tenor})
	if err != nil {
		fmt.Println(err)
		return err
	}
	if l.ID == models.PlaceholderID {
		fmt.Printf("Offline: submission queued as %s, will sync when connection returns\n", l.LocalRef)
		return nil
	}
	fmt.Printf("Submitted, loan ID %d, status %s\n", l.ID, l.Status)
	return nil
}
