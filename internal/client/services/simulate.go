package services

import (
	"context"
	"fmt"
	"math"

	"github.com/ariefr/credline/internal/common"
)

// Installment is one row of a flat-rate repayment schedule.
type Installment struct {
	Month     int   `json:"month"`
	Principal int64 `json:"principal"`
	Interest  int64 `json:"interest"`
	Total     int64 `json:"total"`
	Remaining int64 `json:"remaining"`
}

// Simulation is a locally computed repayment preview. It never leaves the
// device and carries no server-assigned identity.
type Simulation struct {
	ProductID     int64         `json:"product_id"`
	Amount        int64         `json:"amount"`
	Tenor         int           `json:"tenor"`
	AnnualRate    float64       `json:"annual_rate"`
	TotalInterest int64         `json:"total_interest"`
	TotalPayment  int64         `json:"total_payment"`
	Schedule      []Installment `json:"schedule"`
}

// Simulate builds a flat-rate monthly schedule for amount over tenor months.
// Interest per month is constant; principal is split evenly with the
// remainder folded into the final installment so the schedule sums exactly
// to the requested amount.
func Simulate(ctx context.Context, catalog CatalogService, productID int64, amount int64, tenor int) (*Simulation, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("amount must be positive: %w", common.ErrValidation)
	}
	if tenor <= 0 {
		return nil, fmt.Errorf("tenor must be positive: %w", common.ErrValidation)
	}

	p, err := catalog.ProductByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if amount < p.MinAmount || amount > p.MaxAmount {
		return nil, fmt.Errorf("amount %d outside product bounds [%d, %d]: %w",
			amount, p.MinAmount, p.MaxAmount, common.ErrValidation)
	}
	if !p.AllowsTenor(tenor) {
		return nil, fmt.Errorf("tenor %d not offered for product %q: %w", tenor, p.Name, common.ErrValidation)
	}

	monthlyInterest := int64(math.Round(float64(amount) * p.AnnualRate / 100 / 12))
	basePrincipal := amount / int64(tenor)

	schedule := make([]Installment, 0, tenor)
	remaining := amount
	for m := 1; m <= tenor; m++ {
		principal := basePrincipal
		if m == tenor {
			principal = remaining
		}
		remaining -= principal
		schedule = append(schedule, Installment{
			Month:     m,
			Principal: principal,
			Interest:  monthlyInterest,
			Total:     principal + monthlyInterest,
			Remaining: remaining,
		})
	}

	totalInterest := monthlyInterest * int64(tenor)
	return &Simulation{
		ProductID:     productID,
		Amount:        amount,
		Tenor:         tenor,
		AnnualRate:    p.AnnualRate,
		TotalInterest: totalInterest,
		TotalPayment:  amount + totalInterest,
		Schedule:      schedule,
	}, nil
}
