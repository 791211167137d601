// Package order holds the order snapshot used by the reconciliation engine.
// Orders are created by the order crawl and treated as read-only input when
// cash transactions are classified.
package order

import "time"

// Order represents a single upstream sale, keyed by the upstream transaction ID.
type Order struct {
	TranID            string    `json:"tran_id"`  // Upstream business key
	SourceID          string    `json:"source_id"` // Alternate business key (delivery platform order ID)
	TranNo            string    `json:"tran_no"`
	StoreID           string    `json:"store_id"`
	TranDate          int64     `json:"tran_date"`  // Ms epoch
	StartDate         int64     `json:"start_date"` // Ms epoch, used for window filtering
	AmountOrigin      int64     `json:"amount_origin"`
	PaymentMethodID   string    `json:"payment_method_id"`
	PaymentMethodName string    `json:"payment_method_name"`
	PaymentAmount     int64     `json:"payment_amount"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}
