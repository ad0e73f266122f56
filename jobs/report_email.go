package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/tavern-pos/tavern-pos/internal/jobs"
)

// ReportEmailJob sends rendered daily reports through the configured mailer.
type ReportEmailJob struct {
	Mailer  *Mailer
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewReportEmailJob initialises the handler.
func NewReportEmailJob(mailer *Mailer, logger *slog.Logger, metrics *jobmetrics.Metrics) *ReportEmailJob {
	return &ReportEmailJob{Mailer: mailer, Logger: logger, Metrics: metrics}
}

// Handle processes one report email task.
func (j *ReportEmailJob) Handle(ctx context.Context, t *asynq.Task) error {
	tracker := j.Metrics.Track("report_email")
	var payload ReportEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		j.Logger.Error("report email payload malformed", slog.Any("error", err))
		return tracker.End(asynq.SkipRetry)
	}
	if err := j.Mailer.Send(payload.To, payload.Subject, payload.Body); err != nil {
		j.Logger.Error("report email delivery failed",
			slog.String("to", payload.To), slog.Any("error", err))
		return tracker.End(err)
	}
	j.Logger.Info("report email sent",
		slog.String("to", payload.To), slog.String("subject", payload.Subject))
	return tracker.End(nil)
}
