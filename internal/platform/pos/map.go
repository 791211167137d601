package pos

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pos-cash-recon/internal/domain/order"
	"github.com/pos-cash-recon/internal/domain/store"
	"github.com/pos-cash-recon/internal/domain/transaction"
)

// ErrMissingBusinessKey is returned when an upstream record lacks the field
// it is keyed on. Such records cannot be upserted and are skipped.
type ErrMissingBusinessKey struct {
	Kind string
}

func (e *ErrMissingBusinessKey) Error() string {
	return fmt.Sprintf("%s record has no business key", e.Kind)
}

// ToTransaction maps a cash record into a domain transaction. Classification
// fields (category, flag, system note) are left at their zero values for the
// engine to fill in. The generated ID only applies on first insert; upserts
// keep the existing row's ID.
func ToTransaction(rec *CashRecord) (*transaction.Transaction, error) {
	if rec.CashID == "" {
		return nil, &ErrMissingBusinessKey{Kind: "cash"}
	}

	tx := &transaction.Transaction{
		ID:                uuid.New(),
		CashID:            rec.CashID,
		Amount:            rec.Amount,
		StoreID:           rec.StoreUID,
		BrandID:           rec.BrandUID,
		CompanyID:         rec.CompanyUID,
		Time:              rec.Time,
		Type:              rec.Type,
		Note:              rec.Note,
		PaymentMethodID:   rec.PaymentMethodID,
		PaymentMethodName: rec.PaymentMethodName,
		EmployeeEmail:     rec.EmployeeEmail,
		EmployeeName:      rec.EmployeeName,
		ShiftID:           rec.ShiftID,
		ShiftName:         rec.ShiftName,
	}

	if rec.DeletedAt != nil && *rec.DeletedAt > 0 {
		at := time.UnixMilli(*rec.DeletedAt).UTC()
		tx.DeletedAt = &at
	}

	return tx, nil
}

// ToOrder maps a sale record into a domain order. The store UID comes from
// the query rather than the record; the report does not repeat it per row.
func ToOrder(rec *SaleRecord, storeUID string) (*order.Order, error) {
	if rec.TranID == "" {
		return nil, &ErrMissingBusinessKey{Kind: "sale"}
	}

	o := &order.Order{
		TranID:       rec.TranID,
		SourceID:     rec.SourceFBID,
		TranNo:       rec.TranNo,
		StoreID:      storeUID,
		TranDate:     rec.TranDate,
		StartDate:    rec.StartDate,
		AmountOrigin: rec.AmountOrigin,
	}

	if len(rec.PaymentMethods) > 0 {
		o.PaymentMethodID = rec.PaymentMethods[0].PaymentMethodID
		o.PaymentMethodName = rec.PaymentMethods[0].PaymentMethodName
		o.PaymentAmount = rec.PaymentMethods[0].Amount
	}

	return o, nil
}

// ToStore maps a login-response store entry into a domain store.
func ToStore(info StoreInfo, companyUID string) *store.Store {
	return &store.Store{
		POSID:     info.ID,
		Name:      info.Name,
		ShortName: store.ShortNameOf(info.Name),
		BrandID:   info.BrandUID,
		CompanyID: companyUID,
		Active:    info.IsActive(),
	}
}
