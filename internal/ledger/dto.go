package ledger

type TransferRequest struct {
	Quantity int    `json:"quantity" validate:"required,gt=0"`
	From     string `json:"from" validate:"required,oneof=godown counter"`
	To       string `json:"to" validate:"required,oneof=godown counter"`
	Note     string `json:"note" validate:"max=500"`
}

type UpdateStockRequest struct {
	GodownStock  int    `json:"godown_stock" validate:"gte=0"`
	CounterStock int    `json:"counter_stock" validate:"gte=0"`
	Note         string `json:"note" validate:"max=500"`
}
