package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/ariefr/credline/internal/client/models"
)

func creditLine(cl models.CreditLine) string {
	if cl.ID == models.PlaceholderID {
		s := fmt.Sprintf("   -  product %4d  limit %12d  %s  ref %s", cl.ProductID, cl.Limit, cl.Status, cl.LocalRef)
		if cl.FailReason != "" {
			s += "  (" + cl.FailReason + ")"
		}
		return s
	}
	return fmt.Sprintf("%4d  product %4d  limit %12d  available %12d  %s", cl.ID, cl.ProductID, cl.Limit, cl.Available, cl.Status)
}

func (a *App) Lines(ctx context.Context) error {
	for snapshot := range a.creditLines.List(ctx) {
		for _, cl := range snapshot {
			fmt.Println(creditLine(cl))
		}
	}
	return nil
}

func (a *App) Apply(ctx context.Context) error {
	productID, err := GetInt64(a.reader, "Product ID", os.Stdout)
	if err != nil {
		fmt.Println(err)
		return err
	}
	amount, err := GetInt64(a.reader, "Requested limit", os.Stdout)
	if err != nil {
		fmt.Println(err)
		return err
	}

	cl, err := a.creditLines.Apply(ctx, models.ApplyCreditLinePayload{ProductID: productID, Amount: amount})
	if err != nil {
		fmt.Println(err)
		return err
	}
	if cl.ID == models.PlaceholderID {
		fmt.Printf("Offline: application queued as %s, will sync when connection returns\n", cl.LocalRef)
		return nil
	}
	fmt.Printf("Applied, credit line ID %d, status %s\n", cl.ID, cl.Status)
	return nil
}
