package billing

type OpenBillRequest struct {
	Type    BillType `json:"type" validate:"required"`
	TableNo string   `json:"table_no" validate:"max=16"`
}

type AddLineRequest struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"required,gt=0"`
}

type SettleBillRequest struct {
	PaymentMode PaymentMode `json:"payment_mode" validate:"required"`
}
