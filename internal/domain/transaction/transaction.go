// Package transaction defines the cash-movement records that reconciliation
// classifies, together with their tri-state flag and persistence contract.
package transaction

import (
	"time"

	"github.com/google/uuid"
)

// Flag is the tri-state classification outcome attached to a transaction
// after rule evaluation.
type Flag string

const (
	FlagValid   Flag = "valid"
	FlagInvalid Flag = "invalid"
	FlagReview  Flag = "review" // Default until a rule decides otherwise
)

// IsValidFlag reports whether f is one of the three known flag values.
func IsValidFlag(f Flag) bool {
	return f == FlagValid || f == FlagInvalid || f == FlagReview
}

// Cash movement direction as reported upstream. IN movements are reversals
// of the expense ledger and are soft-deleted on ingestion.
const (
	TypeIn  = "IN"
	TypeOut = "OUT"
)

// Transaction is one upstream cash in/out event. CashID is the upstream
// business key and stays unique across soft-deleted rows so a record that
// reappears in a later fetch is revived in place rather than duplicated.
type Transaction struct {
	ID         uuid.UUID `json:"id"`
	CashID     string    `json:"cash_id"` // Upstream business key
	Amount     int64     `json:"amount"`
	StoreID    string    `json:"store_id"`
	BrandID    string    `json:"brand_id"`
	CompanyID  string    `json:"company_id"`
	Time       int64     `json:"time"` // Ms epoch
	Type       string    `json:"type"` // IN or OUT
	Note       string    `json:"note"`

	PaymentMethodID   string `json:"payment_method_id"`
	PaymentMethodName string `json:"payment_method_name"`
	EmployeeEmail     string `json:"employee_email"`
	EmployeeName      string `json:"employee_name"`
	ShiftID           string `json:"shift_id"`
	ShiftName         string `json:"shift_name"`

	CategoryID *uuid.UUID `json:"category_id,omitempty"`
	Flag       Flag       `json:"flag"`
	SystemNote string     `json:"system_note,omitempty"` // Human-readable rule explanation

	// Derived from the matched order, when the shipping rule found one.
	MatchedOrderPaymentMethodID   string  `json:"matched_order_payment_method_id,omitempty"`
	MatchedOrderPaymentMethodName string  `json:"matched_order_payment_method_name,omitempty"`
	MatchedOrderPaymentAmount     int64   `json:"matched_order_payment_amount,omitempty"`
	ExtractedDistanceKm           float64 `json:"extracted_distance_km,omitempty"`

	DeletedAt *time.Time `json:"deleted_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// SoftDelete marks the transaction as logically deleted.
func (t *Transaction) SoftDelete(at time.Time) {
	t.DeletedAt = &at
}

// Revive clears the deletion marker.
func (t *Transaction) Revive() {
	t.DeletedAt = nil
}

// ErrTransactionNotFound indicates a missing transaction
type ErrTransactionNotFound struct {
	ID uuid.UUID
}

func (e ErrTransactionNotFound) Error() string {
	return "transaction not found: " + e.ID.String()
}
