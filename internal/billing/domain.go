package billing

import (
	"errors"
	"time"
)

// BillType distinguishes dine-in tables from takeaway parcels.
type BillType string

const (
	BillTypeTable  BillType = "TABLE"
	BillTypeParcel BillType = "PARCEL"
)

// Valid reports whether the type is known.
func (t BillType) Valid() bool {
	return t == BillTypeTable || t == BillTypeParcel
}

// BillStatus is the bill lifecycle.
type BillStatus string

const (
	BillStatusOpen      BillStatus = "OPEN"
	BillStatusSettled   BillStatus = "SETTLED"
	BillStatusCancelled BillStatus = "CANCELLED"
)

// PaymentMode is how a settled bill was paid.
type PaymentMode string

const (
	PaymentCash PaymentMode = "CASH"
	PaymentCard PaymentMode = "CARD"
	PaymentUPI  PaymentMode = "UPI"
)

// Valid reports whether the mode is known.
func (m PaymentMode) Valid() bool {
	return m == PaymentCash || m == PaymentCard || m == PaymentUPI
}

// Line is one sold item on a bill. Voided lines stay on the bill for the
// audit trail but drop out of the total.
type Line struct {
	ID        int64     `json:"id"`
	BillID    int64     `json:"bill_id"`
	ProductID int64     `json:"product_id"`
	Name      string    `json:"name"`
	Variant   string    `json:"variant,omitempty"`
	Quantity  int       `json:"quantity"`
	UnitPrice float64   `json:"unit_price"`
	LineTotal float64   `json:"line_total"`
	Voided    bool      `json:"voided"`
	CreatedAt time.Time `json:"created_at"`
}

// Bill is one table or parcel order. Counter stock is consumed as lines are
// added and returned when lines are voided or the bill is cancelled; settling
// freezes the bill and feeds it into daily revenue.
type Bill struct {
	ID          int64       `json:"id"`
	Number      string      `json:"number"`
	Type        BillType    `json:"type"`
	TableNo     string      `json:"table_no,omitempty"`
	Status      BillStatus  `json:"status"`
	Lines       []Line      `json:"lines"`
	Subtotal    float64     `json:"subtotal"`
	Total       float64     `json:"total"`
	PaymentMode PaymentMode `json:"payment_mode,omitempty"`
	StaffID     int64       `json:"staff_id"`
	CreatedAt   time.Time   `json:"created_at"`
	SettledAt   *time.Time  `json:"settled_at,omitempty"`
}

// Recalculate recomputes subtotal and total from non-voided lines.
func (b *Bill) Recalculate() {
	var subtotal float64
	for _, l := range b.Lines {
		if !l.Voided {
			subtotal += l.LineTotal
		}
	}
	b.Subtotal = subtotal
	b.Total = subtotal
}

var (
	ErrNotFound        = errors.New("billing: bill not found")
	ErrLineNotFound    = errors.New("billing: line not found")
	ErrBillNotOpen     = errors.New("billing: bill is not open")
	ErrEmptyBill       = errors.New("billing: bill has no lines")
	ErrInvalidType     = errors.New("billing: invalid bill type")
	ErrInvalidPayment  = errors.New("billing: invalid payment mode")
	ErrTableRequired   = errors.New("billing: table number required for table bills")
	ErrInvalidQuantity = errors.New("billing: quantity must be positive")
)
