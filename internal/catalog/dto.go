package catalog

type CreateProductRequest struct {
	Name          string  `json:"name" validate:"required,max=200"`
	SKU           string  `json:"sku" validate:"required,max=64"`
	Barcode       string  `json:"barcode" validate:"max=64"`
	Variant       string  `json:"variant" validate:"max=100"`
	Category      string  `json:"category" validate:"max=100"`
	Price         float64 `json:"price" validate:"gte=0"`
	Cost          float64 `json:"cost" validate:"gte=0"`
	GodownStock   int     `json:"godown_stock" validate:"gte=0"`
	CounterStock  int     `json:"counter_stock" validate:"gte=0"`
	MinStockLevel int     `json:"min_stock_level" validate:"gte=0"`
	MaxStockLevel int     `json:"max_stock_level" validate:"gte=0"`
}

type UpdateProductRequest struct {
	Name          *string  `json:"name,omitempty" validate:"omitempty,max=200"`
	Barcode       *string  `json:"barcode,omitempty" validate:"omitempty,max=64"`
	Variant       *string  `json:"variant,omitempty" validate:"omitempty,max=100"`
	Category      *string  `json:"category,omitempty" validate:"omitempty,max=100"`
	Price         *float64 `json:"price,omitempty" validate:"omitempty,gte=0"`
	Cost          *float64 `json:"cost,omitempty" validate:"omitempty,gte=0"`
	MinStockLevel *int     `json:"min_stock_level,omitempty" validate:"omitempty,gte=0"`
	MaxStockLevel *int     `json:"max_stock_level,omitempty" validate:"omitempty,gte=0"`
	IsActive      *bool    `json:"is_active,omitempty"`
}

type ListProductsRequest struct {
	Search     string `json:"search"`
	Category   string `json:"category"`
	OnlyLow    bool   `json:"only_low"`
	OnlyActive bool   `json:"only_active"`
	Page       int    `json:"page" validate:"gte=0"`
	PerPage    int    `json:"per_page" validate:"gte=0,lte=500"`
}

// ProductView is a Product plus its recomputed stock status.
type ProductView struct {
	Product
	TotalStock  int         `json:"total_stock"`
	StockStatus StockStatus `json:"stock_status"`
}

func viewOf(p Product) ProductView {
	return ProductView{Product: p, TotalStock: p.TotalStock(), StockStatus: p.Status()}
}
