package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/ariefr/credline/internal/client/models"
)

func (a *App) Disburse(ctx context.Context) error {
	creditLineID, err := GetInt64(a.reader, "Credit line ID", os.Stdout)
	if err != nil {
		fmt.Println(err)
		return err
	}
	amount, err := GetInt64(a.reader, "Amount", os.Stdout)
	if err != nil {
		fmt.Println(err)
		return err
	}

	d, err := a.disbursements.Request(ctx, models.DisbursePayload{CreditLineID: creditLineID, Amount: amount})
	if err != nil {
		fmt.Println(err)
		return err
	}
	if d.ID == models.PlaceholderID {
		fmt.Printf("Offline: disbursement queued as %s, will sync when connection returns\n", d.LocalRef)
		return nil
	}
	fmt.Printf("Disbursed, ID %d, status %s\n", d.ID, d.Status)
	return nil
}

// Pending lists queued and failed writes across every partition.
func (a *App) Pending(ctx context.Context) error {
	found := false
	for _, kind := range models.AllActionKinds {
		actions, err := a.queue.ListUnresolved(ctx, kind)
		if err != nil {
			fmt.Println(err)
			return err
		}
		for _, act := range actions {
			found = true
			line := fmt.Sprintf("%s  %-18s  %-8s  retries %d", act.LocalID, act.Kind, act.Status, act.RetryCount)
			if act.LastError != "" {
				line += "  (" + act.LastError + ")"
			}
			fmt.Println(line)
		}
	}
	if !found {
		fmt.Println("Nothing pending")
	}
	return nil
}

// Ack discards a FAILED write the user has acknowledged.
func (a *App) Ack(ctx context.Context) error {
	localID, err := GetSimpleText(a.reader, "Failed action ID", os.Stdout)
	if err != nil {
		fmt.Println(err)
		return err
	}

	act, err := a.queue.Get(ctx, localID)
	if err != nil {
		fmt.Println(err)
		return err
	}

	switch act.Kind {
	case models.ActionSubmitLoan:
		err = a.loans.Discard(ctx, localID)
	case models.ActionApplyCreditLine:
		err = a.creditLines.Discard(ctx, localID)
	case models.ActionDisburse:
		err = a.disbursements.Discard(ctx, localID)
	default:
		err = fmt.Errorf("unknown action kind %q", act.Kind)
	}
	if err != nil {
		fmt.Println(err)
		return err
	}
	fmt.Println("Discarded", localID)
	return nil
}

// Sync wakes the drain for every partition without waiting for the watcher.
func (a *App) Sync(ctx context.Context) error {
	for _, kind := range models.AllActionKinds {
		a.worker.Schedule(kind)
	}
	fmt.Println("Sync scheduled")
	return nil
}
