package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/tavern-pos/tavern-pos/internal/jobs"
)

// TaskTypeScheduledReport renders and mails the previous day's report on a
// cron schedule.
const TaskTypeScheduledReport = "report:scheduled"

// NewScheduledReportTask constructs the cron task.
func NewScheduledReportTask() *asynq.Task {
	return asynq.NewTask(TaskTypeScheduledReport, nil)
}

// DailyReportRenderer renders the report email for one calendar day.
type DailyReportRenderer interface {
	RenderDailyEmail(ctx context.Context, day time.Time) (subject, body string, err error)
}

// ScheduledReportJob mails the daily report to a fixed recipient. The report
// covers the day the task fires on, so schedule it near close of business.
type ScheduledReportJob struct {
	Renderer DailyReportRenderer
	Mailer   *Mailer
	To       string
	Logger   *slog.Logger
	Metrics  *jobmetrics.Metrics
}

// NewScheduledReportJob initialises the handler.
func NewScheduledReportJob(renderer DailyReportRenderer, mailer *Mailer, to string, logger *slog.Logger, metrics *jobmetrics.Metrics) *ScheduledReportJob {
	return &ScheduledReportJob{Renderer: renderer, Mailer: mailer, To: to, Logger: logger, Metrics: metrics}
}

// Handle renders and sends one scheduled report.
func (j *ScheduledReportJob) Handle(ctx context.Context, _ *asynq.Task) error {
	tracker := j.Metrics.Track("scheduled_report")
	if j.To == "" {
		j.Logger.Warn("scheduled report skipped, no recipient configured")
		return tracker.End(nil)
	}
	subject, body, err := j.Renderer.RenderDailyEmail(ctx, time.Now())
	if err != nil {
		j.Logger.Error("scheduled report render failed", slog.Any("error", err))
		return tracker.End(err)
	}
	if err := j.Mailer.Send(j.To, subject, body); err != nil {
		j.Logger.Error("scheduled report delivery failed", slog.Any("error", err))
		return tracker.End(err)
	}
	j.Logger.Info("scheduled report sent", slog.String("to", j.To))
	return tracker.End(nil)
}
