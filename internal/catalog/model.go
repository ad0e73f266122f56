package catalog

import "time"

// StockStatus classifies a product's combined stock level.
type StockStatus string

const (
	StockStatusLow    StockStatus = "LOW"
	StockStatusNormal StockStatus = "NORMAL"
	StockStatusOver   StockStatus = "OVER"
)

// Product is a catalog item sold at the counter. Stock is held at two
// locations; godown is the backroom store, counter is what the bar sells from.
type Product struct {
	ID            int64     `json:"id" db:"id"`
	Name          string    `json:"name" db:"name"`
	SKU           string    `json:"sku" db:"sku"`
	Barcode       string    `json:"barcode,omitempty" db:"barcode"`
	Variant       string    `json:"variant,omitempty" db:"variant"`
	Category      string    `json:"category,omitempty" db:"category"`
	Price         float64   `json:"price" db:"price"`
	Cost          float64   `json:"cost" db:"cost"`
	GodownStock   int       `json:"godown_stock" db:"godown_stock"`
	CounterStock  int       `json:"counter_stock" db:"counter_stock"`
	MinStockLevel int       `json:"min_stock_level" db:"min_stock_level"`
	MaxStockLevel int       `json:"max_stock_level" db:"max_stock_level"`
	IsActive      bool      `json:"is_active" db:"is_active"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// TotalStock returns godown plus counter stock.
func (p Product) TotalStock() int {
	return p.GodownStock + p.CounterStock
}

// Status recomputes the stock classification from current counters.
func (p Product) Status() StockStatus {
	total := p.TotalStock()
	switch {
	case total <= p.MinStockLevel:
		return StockStatusLow
	case p.MaxStockLevel > 0 && total >= p.MaxStockLevel:
		return StockStatusOver
	default:
		return StockStatusNormal
	}
}
