package reporting

type CreateSpendingRequest struct {
	Date     string  `json:"date" validate:"required"`
	Category string  `json:"category" validate:"required,max=64"`
	Note     string  `json:"note" validate:"max=256"`
	Amount   float64 `json:"amount" validate:"required,gt=0"`
}

type SetOpeningBalanceRequest struct {
	Date   string  `json:"date" validate:"required"`
	Amount float64 `json:"amount" validate:"gte=0"`
}

type EmailReportRequest struct {
	Date string `json:"date" validate:"required"`
	To   string `json:"to" validate:"required,email"`
}
