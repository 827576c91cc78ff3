// Package models defines client-side data models for the credline client.
//
// Cached entities (Product, Branch, CreditLine, Loan, Disbursement) mirror
// what the server has confirmed; they are replaced wholesale on refresh and
// never hold unconfirmed local writes. Amounts are rupiah, stored as int64.
package models

import "time"

// PlaceholderID is the sentinel identifier carried by optimistic
// placeholders. Server-assigned ids are always positive.
const PlaceholderID int64 = -1

// Statuses surfaced to the UI for entities that originated locally.
const (
	StatusPendingSync = "PENDING_SYNC"
	StatusSyncFailed  = "SYNC_FAILED"
)

// Product is a loan product from the catalog.
type Product struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	MinAmount  int64   `json:"min_amount"`
	MaxAmount  int64   `json:"max_amount"`
	AnnualRate float64 `json:"annual_rate"`
	Tenors     []int   `json:"tenors"`
}

// AllowsTenor reports whether the tenor (in months) is offered for the product.
func (p Product) AllowsTenor(tenor int) bool {
	for _, t := range p.Tenors {
		if t == tenor {
			return true
		}
	}
	return false
}

// Branch is a physical branch office.
type Branch struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
}

// CreditLine is an approved credit line (plafond) against which loans are
// disbursed. Available is the server-confirmed balance; the displayed balance
// is derived at read time by subtracting queued disbursements.
type CreditLine struct {
	ID        int64     `json:"id"`
	ProductID int64     `json:"product_id"`
	Limit     int64     `json:"limit"`
	Available int64     `json:"available"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`

	// LocalRef ties a placeholder to its pending action. Empty on
	// server-confirmed records.
	LocalRef   string `json:"-"`
	FailReason string `json:"-"`
}

// Loan is a loan application.
type Loan struct {
	ID        int64     `json:"id"`
	PlafondID int64     `json:"plafond_id"`
	Amount    int64     `json:"amount"`
	Tenor     int       `json:"tenor"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`

	LocalRef   string `json:"-"`
	FailReason string `json:"-"`
}

// Disbursement is a payout request against a credit line.
type Disbursement struct {
	ID           int64     `json:"id"`
	CreditLineID int64     `json:"credit_line_id"`
	Amount       int64     `json:"amount"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`

	LocalRef   string `json:"-"`
	FailReason string `json:"-"`
}
