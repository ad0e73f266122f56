package reporting

import (
	"errors"
	"time"

	"github.com/tavern-pos/tavern-pos/internal/catalog"
)

// Spending is one cash outflow recorded for a day (supplies, wages, misc).
type Spending struct {
	ID        int64     `json:"id"`
	Date      time.Time `json:"date"`
	Category  string    `json:"category"`
	Note      string    `json:"note,omitempty"`
	Amount    float64   `json:"amount"`
	StaffID   int64     `json:"staff_id"`
	CreatedAt time.Time `json:"created_at"`
}

// OpeningBalance is the cash-in-drawer figure a day starts with. When no
// manual entry exists the previous day's closing is carried forward.
type OpeningBalance struct {
	Date   time.Time `json:"date"`
	Amount float64   `json:"amount"`
	Manual bool      `json:"manual"`
}

// DailyReport is the end-of-day financial summary.
type DailyReport struct {
	Date           time.Time             `json:"date"`
	OpeningBalance float64               `json:"opening_balance"`
	Revenue        float64               `json:"revenue"`
	SpendingsTotal float64               `json:"spendings_total"`
	ClosingBalance float64               `json:"closing_balance"`
	BillCount      int                   `json:"bill_count"`
	TransferCount  int                   `json:"transfer_count"`
	Spendings      []Spending            `json:"spendings"`
	LowStock       []catalog.ProductView `json:"low_stock"`
}

// RangeSummary aggregates daily figures across an inclusive date range.
type RangeSummary struct {
	From           time.Time `json:"from"`
	To             time.Time `json:"to"`
	Revenue        float64   `json:"revenue"`
	SpendingsTotal float64   `json:"spendings_total"`
	BillCount      int       `json:"bill_count"`
	TransferCount  int       `json:"transfer_count"`
}

var (
	ErrSpendingNotFound = errors.New("reporting: spending not found")
	ErrInvalidAmount    = errors.New("reporting: amount must be positive")
)
