package ledger

import (
	"errors"
	"time"
)

// Location names one of the two stock locations tracked per product.
type Location string

const (
	// LocationGodown is the backroom store.
	LocationGodown Location = "godown"
	// LocationCounter is the point-of-sale store items are sold from.
	LocationCounter Location = "counter"
)

// Valid reports whether the location is one of the two known names.
func (l Location) Valid() bool {
	return l == LocationGodown || l == LocationCounter
}

// MovementType enumerates supported stock movements.
type MovementType string

const (
	// MovementTransfer moves stock between the two locations.
	MovementTransfer MovementType = "TRANSFER"
	// MovementAdjust is an absolute administrative correction.
	MovementAdjust MovementType = "ADJUST"
	// MovementSale consumes counter stock for a bill line.
	MovementSale MovementType = "SALE"
	// MovementReturn puts counter stock back for a voided bill line.
	MovementReturn MovementType = "RETURN"
)

// StockLevel is the live per-product balance at both locations.
type StockLevel struct {
	ProductID int64     `json:"product_id"`
	Godown    int       `json:"godown"`
	Counter   int       `json:"counter"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Total returns godown plus counter stock.
func (s StockLevel) Total() int {
	return s.Godown + s.Counter
}

// At reads the balance at one location.
func (s StockLevel) At(loc Location) int {
	if loc == LocationGodown {
		return s.Godown
	}
	return s.Counter
}

// Movement is one journal row. The journal is append-only; balances can be
// rebuilt from it when a day needs manual reconciliation.
type Movement struct {
	ID        int64        `json:"id"`
	ProductID int64        `json:"product_id"`
	Type      MovementType `json:"type"`
	Quantity  int          `json:"quantity"`
	From      Location     `json:"from,omitempty"`
	To        Location     `json:"to,omitempty"`
	Note      string       `json:"note,omitempty"`
	RefModule string       `json:"ref_module,omitempty"`
	RefID     string       `json:"ref_id,omitempty"`
	StaffID   int64        `json:"staff_id,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}

// TransferInput describes a single godown/counter move.
type TransferInput struct {
	ProductID int64
	Quantity  int
	From      Location
	To        Location
	Note      string
	RefModule string
	RefID     string
	StaffID   int64
}

// BatchMove is one line of an atomic multi-product transfer.
type BatchMove struct {
	ProductID int64
	Quantity  int
}

// Error kinds surfaced to the UI. None are retried automatically; the caller
// must re-validate against fresh stock and resubmit.
var (
	ErrNotFound          = errors.New("ledger: product not found")
	ErrInvalidLocation   = errors.New("ledger: invalid source or destination location")
	ErrInvalidQuantity   = errors.New("ledger: quantity must be positive")
	ErrInsufficientStock = errors.New("ledger: insufficient stock at source location")
	ErrNegativeStock     = errors.New("ledger: stock may not go negative")
)
