package transfer

import (
	"errors"
	"time"
)

// StagingEntry is one pending godown-to-counter move inside a session. The
// entry caps its quantity at the godown stock seen when it was last touched;
// commit re-validates against locked rows anyway.
type StagingEntry struct {
	ProductID   int64  `json:"product_id"`
	Name        string `json:"name"`
	SKU         string `json:"sku"`
	Variant     string `json:"variant,omitempty"`
	Quantity    int    `json:"quantity"`
	GodownStock int    `json:"godown_stock"`
}

// Session is the staging list assembled before one commit. It is owned by a
// single UI session and persisted server-side so a reload does not lose it.
type Session struct {
	ID        string         `json:"id"`
	Entries   []StagingEntry `json:"entries"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// IsEmpty reports whether nothing is staged.
func (s *Session) IsEmpty() bool {
	return len(s.Entries) == 0
}

// TotalQuantity sums staged quantities.
func (s *Session) TotalQuantity() int {
	total := 0
	for _, e := range s.Entries {
		total += e.Quantity
	}
	return total
}

func (s *Session) find(productID int64) *StagingEntry {
	for i := range s.Entries {
		if s.Entries[i].ProductID == productID {
			return &s.Entries[i]
		}
	}
	return nil
}

// Add stages one more unit of the product, capped at its godown stock.
// Re-adding an already staged product increments it; adding beyond the cap
// leaves the quantity unchanged.
func (s *Session) Add(productID int64, name, sku, variant string, godownStock int) {
	if entry := s.find(productID); entry != nil {
		entry.GodownStock = godownStock
		if entry.Quantity < godownStock {
			entry.Quantity++
		} else if entry.Quantity > godownStock {
			entry.Quantity = godownStock
		}
		return
	}
	qty := 1
	if godownStock < 1 {
		qty = 0
	}
	s.Entries = append(s.Entries, StagingEntry{
		ProductID:   productID,
		Name:        name,
		SKU:         sku,
		Variant:     variant,
		Quantity:    qty,
		GodownStock: godownStock,
	})
}

// SetQuantity clamps the requested quantity to [0, godownStock]. A zero
// quantity is kept in place; the entry must be removed explicitly.
func (s *Session) SetQuantity(productID int64, quantity, godownStock int) bool {
	entry := s.find(productID)
	if entry == nil {
		return false
	}
	if quantity < 0 {
		quantity = 0
	}
	if quantity > godownStock {
		quantity = godownStock
	}
	entry.Quantity = quantity
	entry.GodownStock = godownStock
	return true
}

// Remove deletes the entry unconditionally.
func (s *Session) Remove(productID int64) bool {
	for i := range s.Entries {
		if s.Entries[i].ProductID == productID {
			s.Entries = append(s.Entries[:i], s.Entries[i+1:]...)
			return true
		}
	}
	return false
}

// RecordItem is one line of a persisted transfer record.
type RecordItem struct {
	ProductID    int64     `json:"id"`
	Name         string    `json:"name"`
	Variant      string    `json:"variant,omitempty"`
	Quantity     int       `json:"quantity"`
	TransferTime time.Time `json:"transfer_time"`
}

// Record is the immutable summary of one committed transfer batch. It is
// created exactly once per commit and never mutated afterwards.
type Record struct {
	ID            int64        `json:"id"`
	Code          string       `json:"code"`
	TransferDate  time.Time    `json:"transfer_date"`
	TotalItems    int          `json:"total_items"`
	TotalQuantity int          `json:"total_quantity"`
	Items         []RecordItem `json:"items_transferred"`
	CreatedAt     time.Time    `json:"created_at"`
}

var (
	// ErrEmptyTransfer indicates a commit with nothing staged.
	ErrEmptyTransfer = errors.New("transfer: staging list is empty")
	// ErrZeroQuantity indicates a commit with a zero-quantity staged entry.
	ErrZeroQuantity = errors.New("transfer: staged entry has zero quantity")
	// ErrSessionNotFound indicates an unknown or expired staging session.
	ErrSessionNotFound = errors.New("transfer: staging session not found")
	// ErrEntryNotFound indicates the product is not staged.
	ErrEntryNotFound = errors.New("transfer: product not staged")
	// ErrRecordNotFound indicates an unknown transfer record.
	ErrRecordNotFound = errors.New("transfer: record not found")
)
