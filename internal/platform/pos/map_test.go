package pos

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToTransaction(t *testing.T) {
	t.Run("MapsAllFields", func(t *testing.T) {
		deletedAt := int64(1700000000000)
		rec := &CashRecord{
			CashID:            "c-1",
			Amount:            20000,
			BrandUID:          "brand-1",
			CompanyUID:        "company-1",
			StoreUID:          "store-1",
			Time:              1690000000000,
			Type:              "OUT",
			Note:              "ship ABC12 3km",
			PaymentMethodID:   "CASH",
			PaymentMethodName: "Tiền mặt",
			EmployeeEmail:     "nv@example.com",
			EmployeeName:      "Nguyễn Văn A",
			ShiftID:           "shift-1",
			ShiftName:         "Ca sáng",
			DeletedAt:         &deletedAt,
		}

		tx, err := ToTransaction(rec)
		require.NoError(t, err)

		assert.Equal(t, "c-1", tx.CashID)
		assert.Equal(t, int64(20000), tx.Amount)
		assert.Equal(t, "store-1", tx.StoreID)
		assert.Equal(t, "OUT", tx.Type)
		assert.Equal(t, "Ca sáng", tx.ShiftName)
		assert.NotEqual(t, tx.ID.String(), "00000000-0000-0000-0000-000000000000")
		require.NotNil(t, tx.DeletedAt)
		assert.Equal(t, time.UnixMilli(deletedAt).UTC(), *tx.DeletedAt)
		// Classification is the engine's job.
		assert.Nil(t, tx.CategoryID)
		assert.Empty(t, tx.SystemNote)
	})

	t.Run("MissingCashIDIsSkippable", func(t *testing.T) {
		_, err := ToTransaction(&CashRecord{Amount: 100})
		var keyErr *ErrMissingBusinessKey
		require.ErrorAs(t, err, &keyErr)
	})
}

func TestToOrder(t *testing.T) {
	t.Run("MapsFirstPaymentMethod", func(t *testing.T) {
		rec := &SaleRecord{
			TranID:       "ABC12-0301-77",
			SourceFBID:   "FB-99",
			TranNo:       "77",
			TranDate:     1690000000000,
			StartDate:    1690000100000,
			AmountOrigin: 250000,
			PaymentMethods: []SalePayment{
				{PaymentMethodID: "QR_CODE", PaymentMethodName: "QR", Amount: 250000},
				{PaymentMethodID: "CASH", PaymentMethodName: "Tiền mặt", Amount: 0},
			},
		}

		o, err := ToOrder(rec, "store-1")
		require.NoError(t, err)

		assert.Equal(t, "store-1", o.StoreID)
		assert.Equal(t, "QR_CODE", o.PaymentMethodID)
		assert.Equal(t, int64(250000), o.PaymentAmount)
	})

	t.Run("NoPaymentMethods", func(t *testing.T) {
		o, err := ToOrder(&SaleRecord{TranID: "XYZ00-1"}, "store-1")
		require.NoError(t, err)
		assert.Empty(t, o.PaymentMethodID)
	})

	t.Run("MissingTranIDIsSkippable", func(t *testing.T) {
		_, err := ToOrder(&SaleRecord{TranNo: "77"}, "store-1")
		var keyErr *ErrMissingBusinessKey
		require.ErrorAs(t, err, &keyErr)
	})
}

func TestToStore(t *testing.T) {
	info := StoreInfo{
		ID:       "store-1",
		BrandUID: "brand-1",
		Name:     "ZangTee - 111 Láng Hạ",
		Active:   1,
	}

	s := ToStore(info, "company-1")
	assert.Equal(t, "store-1", s.POSID)
	assert.Equal(t, "ZangTee -", s.ShortName)
	assert.Equal(t, "company-1", s.CompanyID)
	assert.True(t, s.Active)
}
