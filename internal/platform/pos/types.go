package pos

import "encoding/json"

// envelope is the common response wrapper of the upstream API. Every endpoint
// nests its payload under "data"; the shape of the payload varies per endpoint
// so it is kept raw here and decoded by the caller.
type envelope struct {
	Data    json.RawMessage `json:"data"`
	TrackID string          `json:"track_id"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginData struct {
	Token   string `json:"token"`
	Company struct {
		ID string `json:"id"`
	} `json:"company"`
	Stores []StoreInfo `json:"stores"`
}

// StoreInfo is a store entry from the login response. The upstream flags
// active stores with the integer 1.
type StoreInfo struct {
	ID         string `json:"id"`
	BrandUID   string `json:"brand_uid"`
	CompanyUID string `json:"company_uid"`
	StoreID    string `json:"store_id"`
	Name       string `json:"store_name"`
	Active     int    `json:"active"`
}

// IsActive reports whether the upstream considers the store operational.
func (s StoreInfo) IsActive() bool {
	return s.Active == 1
}

// Session carries the credentials and scope of a logged-in crawl account:
// the bearer token plus the company and stores the account can see.
type Session struct {
	Token      string
	CompanyUID string
	Stores     []StoreInfo
}

// CashRecord is one cash in/out entry as returned by the upstream. All
// timestamps are epoch milliseconds; DeletedAt is nil for live records.
type CashRecord struct {
	CashID            string `json:"cash_id"`
	Amount            int64  `json:"amount"`
	BrandUID          string `json:"brand_uid"`
	CompanyUID        string `json:"company_uid"`
	StoreUID          string `json:"store_uid"`
	Time              int64  `json:"time"`
	Type              string `json:"type"`
	Note              string `json:"note"`
	ProfessionUID     string `json:"profession_uid"`
	ProfessionName    string `json:"profession_name"`
	PaymentMethodID   string `json:"payment_method_id"`
	PaymentMethodName string `json:"payment_method_name"`
	EmployeeEmail     string `json:"employee_email"`
	EmployeeName      string `json:"employee_name"`
	ShiftID           string `json:"shift_id"`
	ShiftName         string `json:"shift_name"`
	Deleted           bool   `json:"deleted"`
	DeletedAt         *int64 `json:"deleted_at"`
	CreatedAt         int64  `json:"created_at"`
	UpdatedAt         int64  `json:"updated_at"`
}

// SalePayment is one payment line of a sale record. Sales carry a list but
// only the first entry is meaningful for reconciliation.
type SalePayment struct {
	PaymentMethodID   string `json:"payment_method_id"`
	PaymentMethodName string `json:"payment_method_name"`
	Amount            int64  `json:"amount"`
}

// SaleRecord is one finished order from the sale-by-date report.
type SaleRecord struct {
	TranID          string        `json:"tran_id"`
	FoodbookOrderID string        `json:"foodbook_order_id"`
	SourceFBID      string        `json:"source_fb_id"`
	TranNo          string        `json:"tran_no"`
	TranDate        int64         `json:"tran_date"`
	StartDate       int64         `json:"start_date"`
	AmountOrigin    int64         `json:"amount_origin"`
	PaymentMethods  []SalePayment `json:"payment_method"`
}
