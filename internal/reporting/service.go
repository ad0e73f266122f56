package reporting

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hibiken/asynq"

	"github.com/tavern-pos/tavern-pos/internal/billing"
	"github.com/tavern-pos/tavern-pos/internal/catalog"
	"github.com/tavern-pos/tavern-pos/internal/shared"
	"github.com/tavern-pos/tavern-pos/internal/transfer"
	"github.com/tavern-pos/tavern-pos/jobs"
)

// RepositoryPort is the persistence surface the service needs.
type RepositoryPort interface {
	InsertSpending(ctx context.Context, sp Spending) (int64, error)
	DeleteSpending(ctx context.Context, id int64) error
	SpendingsByRange(ctx context.Context, from, to time.Time) ([]Spending, error)
	UpsertOpeningBalance(ctx context.Context, day time.Time, amount float64) error
	GetOpeningBalance(ctx context.Context, day time.Time) (float64, bool, error)
}

// BillingPort reads settled bills for revenue.
type BillingPort interface {
	SettledBetween(ctx context.Context, rng shared.DateRange) ([]billing.Bill, error)
}

// TransferPort reads committed transfer records.
type TransferPort interface {
	History(ctx context.Context, rng shared.DateRange) ([]transfer.Record, error)
}

// CatalogPort reads products at or below their minimum stock level.
type CatalogPort interface {
	LowStock(ctx context.Context) ([]catalog.ProductView, error)
}

// EmailQueue enqueues background email delivery.
type EmailQueue interface {
	Enqueue(ctx context.Context, task *asynq.Task) error
}

// Service builds the daily financial picture: revenue from settled bills,
// spendings, and a running opening/closing balance chain.
type Service struct {
	logger   *slog.Logger
	repo     RepositoryPort
	billing  BillingPort
	transfer TransferPort
	catalog  CatalogPort
	queue    EmailQueue
	money    *shared.MoneyFormatter
}

// NewService builds Service.
func NewService(logger *slog.Logger, repo RepositoryPort, billingPort BillingPort, transferPort TransferPort, catalogPort CatalogPort, queue EmailQueue, money *shared.MoneyFormatter) *Service {
	return &Service{logger: logger, repo: repo, billing: billingPort, transfer: transferPort, catalog: catalogPort, queue: queue, money: money}
}

// AddSpending records a spending for a day.
func (s *Service) AddSpending(ctx context.Context, req CreateSpendingRequest, staffID int64) (Spending, error) {
	if req.Amount <= 0 {
		return Spending{}, ErrInvalidAmount
	}
	day, err := shared.ParseDate(req.Date)
	if err != nil {
		return Spending{}, err
	}
	sp := Spending{
		Date:      day,
		Category:  req.Category,
		Note:      req.Note,
		Amount:    req.Amount,
		StaffID:   staffID,
		CreatedAt: time.Now(),
	}
	id, err := s.repo.InsertSpending(ctx, sp)
	if err != nil {
		return Spending{}, err
	}
	sp.ID = id
	return sp, nil
}

// DeleteSpending removes a spending.
func (s *Service) DeleteSpending(ctx context.Context, id int64) error {
	return s.repo.DeleteSpending(ctx, id)
}

// Spendings lists spendings inside the range, newest first.
func (s *Service) Spendings(ctx context.Context, rng shared.DateRange) ([]Spending, error) {
	return s.repo.SpendingsByRange(ctx, rng.From, rng.To)
}

// SetOpeningBalance records a manual opening balance for a day.
func (s *Service) SetOpeningBalance(ctx context.Context, req SetOpeningBalanceRequest) (OpeningBalance, error) {
	day, err := shared.ParseDate(req.Date)
	if err != nil {
		return OpeningBalance{}, err
	}
	day = shared.DayStart(day)
	if err := s.repo.UpsertOpeningBalance(ctx, day, req.Amount); err != nil {
		return OpeningBalance{}, err
	}
	return OpeningBalance{Date: day, Amount: req.Amount, Manual: true}, nil
}

// OpeningBalanceFor resolves the opening balance of a day: the manual entry
// when one exists, otherwise the previous day's closing balance.
func (s *Service) OpeningBalanceFor(ctx context.Context, day time.Time) (OpeningBalance, error) {
	day = shared.DayStart(day)
	amount, found, err := s.repo.GetOpeningBalance(ctx, day)
	if err != nil {
		return OpeningBalance{}, err
	}
	if found {
		return OpeningBalance{Date: day, Amount: amount, Manual: true}, nil
	}
	prev := day.AddDate(0, 0, -1)
	prevOpening, _, err := s.repo.GetOpeningBalance(ctx, prev)
	if err != nil {
		return OpeningBalance{}, err
	}
	prevRevenue, _, err := s.revenue(ctx, shared.SingleDay(prev))
	if err != nil {
		return OpeningBalance{}, err
	}
	prevSpendings, _, err := s.spendingsTotal(ctx, shared.SingleDay(prev))
	if err != nil {
		return OpeningBalance{}, err
	}
	return OpeningBalance{Date: day, Amount: prevOpening + prevRevenue - prevSpendings}, nil
}

func (s *Service) revenue(ctx context.Context, rng shared.DateRange) (float64, int, error) {
	bills, err := s.billing.SettledBetween(ctx, rng)
	if err != nil {
		return 0, 0, err
	}
	var total float64
	for _, b := range bills {
		total += b.Total
	}
	return total, len(bills), nil
}

func (s *Service) spendingsTotal(ctx context.Context, rng shared.DateRange) (float64, []Spending, error) {
	spendings, err := s.repo.SpendingsByRange(ctx, rng.From, rng.To)
	if err != nil {
		return 0, nil, err
	}
	var total float64
	for _, sp := range spendings {
		total += sp.Amount
	}
	return total, spendings, nil
}

// Daily builds the report for one day.
func (s *Service) Daily(ctx context.Context, day time.Time) (DailyReport, error) {
	rng := shared.SingleDay(day)
	opening, err := s.OpeningBalanceFor(ctx, day)
	if err != nil {
		return DailyReport{}, err
	}
	revenue, billCount, err := s.revenue(ctx, rng)
	if err != nil {
		return DailyReport{}, err
	}
	spendingsTotal, spendings, err := s.spendingsTotal(ctx, rng)
	if err != nil {
		return DailyReport{}, err
	}
	transfers, err := s.transfer.History(ctx, rng)
	if err != nil {
		return DailyReport{}, err
	}
	lowStock, err := s.catalog.LowStock(ctx)
	if err != nil {
		return DailyReport{}, err
	}
	return DailyReport{
		Date:           shared.DayStart(day),
		OpeningBalance: opening.Amount,
		Revenue:        revenue,
		SpendingsTotal: spendingsTotal,
		ClosingBalance: opening.Amount + revenue - spendingsTotal,
		BillCount:      billCount,
		TransferCount:  len(transfers),
		Spendings:      spendings,
		LowStock:       lowStock,
	}, nil
}

// Summary aggregates figures across a date range.
func (s *Service) Summary(ctx context.Context, rng shared.DateRange) (RangeSummary, error) {
	revenue, billCount, err := s.revenue(ctx, rng)
	if err != nil {
		return RangeSummary{}, err
	}
	spendingsTotal, _, err := s.spendingsTotal(ctx, rng)
	if err != nil {
		return RangeSummary{}, err
	}
	transfers, err := s.transfer.History(ctx, rng)
	if err != nil {
		return RangeSummary{}, err
	}
	return RangeSummary{
		From:           rng.From,
		To:             rng.To,
		Revenue:        revenue,
		SpendingsTotal: spendingsTotal,
		BillCount:      billCount,
		TransferCount:  len(transfers),
	}, nil
}

// EmailReport enqueues the day's report for background SMTP delivery.
func (s *Service) EmailReport(ctx context.Context, day time.Time, to string) error {
	subject, body, err := s.RenderDailyEmail(ctx, day)
	if err != nil {
		return err
	}
	task, err := jobs.NewReportEmailTask(jobs.ReportEmailPayload{
		To:      to,
		Subject: subject,
		Body:    body,
	})
	if err != nil {
		return fmt.Errorf("reporting: build email task: %w", err)
	}
	if err := s.queue.Enqueue(ctx, task); err != nil {
		return fmt.Errorf("reporting: enqueue email: %w", err)
	}
	s.logger.Info("report email enqueued", slog.String("date", shared.FormatDate(day)), slog.String("to", to))
	return nil
}

// RenderDailyEmail builds the subject and plain-text body for a day's report.
// The worker uses it for scheduled deliveries.
func (s *Service) RenderDailyEmail(ctx context.Context, day time.Time) (string, string, error) {
	report, err := s.Daily(ctx, day)
	if err != nil {
		return "", "", err
	}
	subject := "Daily report " + shared.FormatDate(report.Date)
	return subject, s.renderEmailBody(report), nil
}

func (s *Service) renderEmailBody(r DailyReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Daily report for %s\n\n", shared.FormatDate(r.Date))
	fmt.Fprintf(&b, "Opening balance: %s\n", s.money.Format(r.OpeningBalance))
	fmt.Fprintf(&b, "Revenue:         %s (%d bills)\n", s.money.Format(r.Revenue), r.BillCount)
	fmt.Fprintf(&b, "Spendings:       %s\n", s.money.Format(r.SpendingsTotal))
	fmt.Fprintf(&b, "Closing balance: %s\n", s.money.Format(r.ClosingBalance))
	fmt.Fprintf(&b, "Transfers committed: %d\n", r.TransferCount)
	if len(r.Spendings) > 0 {
		b.WriteString("\nSpendings:\n")
		for _, sp := range r.Spendings {
			fmt.Fprintf(&b, "  - %s: %s", sp.Category, s.money.Format(sp.Amount))
			if sp.Note != "" {
				fmt.Fprintf(&b, " (%s)", sp.Note)
			}
			b.WriteString("\n")
		}
	}
	if len(r.LowStock) > 0 {
		b.WriteString("\nLow stock:\n")
		for _, p := range r.LowStock {
			fmt.Fprintf(&b, "  - %s (%s): %d left\n", p.Name, p.SKU, p.TotalStock)
		}
	}
	return b.String()
}
