package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeReportEmail delivers a rendered daily report over SMTP.
	TaskTypeReportEmail = "report:email"
	// TaskTypeLowStockScan walks the catalog for products at or below
	// their minimum stock level.
	TaskTypeLowStockScan = "stock:low_scan"
)

// ReportEmailPayload carries a fully rendered report email.
type ReportEmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// NewReportEmailTask constructs the asynq task.
func NewReportEmailTask(payload ReportEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeReportEmail, data), nil
}

// NewLowStockScanTask constructs the nightly scan task.
func NewLowStockScanTask() *asynq.Task {
	return asynq.NewTask(TaskTypeLowStockScan, nil)
}
