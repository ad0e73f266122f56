package transfer

type AddItemRequest struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
}

type SetQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type CommitRequest struct {
	IdempotencyKey string `json:"idempotency_key" validate:"max=128"`
}

// ExportResult mirrors what the desktop UI expects from an export call.
type ExportResult struct {
	Success  bool   `json:"success"`
	FilePath string `json:"file_path,omitempty"`
	Error    string `json:"error,omitempty"`
}
