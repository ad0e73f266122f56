package reporting

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"

	"github.com/tavern-pos/tavern-pos/internal/billing"
	"github.com/tavern-pos/tavern-pos/internal/catalog"
	"github.com/tavern-pos/tavern-pos/internal/shared"
	"github.com/tavern-pos/tavern-pos/internal/transfer"
	"github.com/tavern-pos/tavern-pos/jobs"
)

type memoryRepo struct {
	nextID    int64
	spendings []Spending
	openings  map[string]float64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{openings: map[string]float64{}}
}

func (m *memoryRepo) InsertSpending(_ context.Context, sp Spending) (int64, error) {
	m.nextID++
	sp.ID = m.nextID
	m.spendings = append(m.spendings, sp)
	return sp.ID, nil
}

func (m *memoryRepo) DeleteSpending(_ context.Context, id int64) error {
	for i, sp := range m.spendings {
		if sp.ID == id {
			m.spendings = append(m.spendings[:i], m.spendings[i+1:]...)
			return nil
		}
	}
	return ErrSpendingNotFound
}

func (m *memoryRepo) SpendingsByRange(_ context.Context, from, to time.Time) ([]Spending, error) {
	var out []Spending
	for i := len(m.spendings) - 1; i >= 0; i-- {
		sp := m.spendings[i]
		if !sp.Date.Before(from) && !sp.Date.After(to) {
			out = append(out, sp)
		}
	}
	return out, nil
}

func (m *memoryRepo) UpsertOpeningBalance(_ context.Context, day time.Time, amount float64) error {
	m.openings[shared.FormatDate(day)] = amount
	return nil
}

func (m *memoryRepo) GetOpeningBalance(_ context.Context, day time.Time) (float64, bool, error) {
	amount, ok := m.openings[shared.FormatDate(day)]
	return amount, ok, nil
}

type fakeBilling struct {
	bills []billing.Bill
}

func (f *fakeBilling) SettledBetween(_ context.Context, rng shared.DateRange) ([]billing.Bill, error) {
	var out []billing.Bill
	for _, b := range f.bills {
		if b.SettledAt != nil && rng.Contains(*b.SettledAt) {
			out = append(out, b)
		}
	}
	return out, nil
}

type fakeTransfer struct {
	records []transfer.Record
}

func (f *fakeTransfer) History(_ context.Context, rng shared.DateRange) ([]transfer.Record, error) {
	var out []transfer.Record
	for _, r := range f.records {
		if rng.Contains(r.TransferDate) {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeCatalog struct {
	low []catalog.ProductView
}

func (f *fakeCatalog) LowStock(_ context.Context) ([]catalog.ProductView, error) {
	return f.low, nil
}

type captureQueue struct {
	tasks []*asynq.Task
}

func (c *captureQueue) Enqueue(_ context.Context, task *asynq.Task) error {
	c.tasks = append(c.tasks, task)
	return nil
}

func settledBill(total float64, at time.Time) billing.Bill {
	return billing.Bill{Status: billing.BillStatusSettled, Total: total, SettledAt: &at}
}

func newTestService(t *testing.T) (*Service, *memoryRepo, *fakeBilling, *captureQueue) {
	t.Helper()
	repo := newMemoryRepo()
	bills := &fakeBilling{}
	queue := &captureQueue{}
	trans := &fakeTransfer{}
	cat := &fakeCatalog{}
	svc := NewService(slog.Default(), repo, bills, trans, cat, queue, shared.NewMoneyFormatter("Rs."))
	return svc, repo, bills, queue
}

func TestDailyReportMath(t *testing.T) {
	svc, repo, bills, _ := newTestService(t)
	ctx := context.Background()
	today := time.Now()

	require.NoError(t, repo.UpsertOpeningBalance(ctx, shared.DayStart(today), 1000))
	bills.bills = []billing.Bill{
		settledBill(540, today),
		settledBill(260, today),
		settledBill(999, today.AddDate(0, 0, -3)),
	}
	_, err := svc.AddSpending(ctx, CreateSpendingRequest{
		Date: shared.FormatDate(today), Category: "supplies", Amount: 300,
	}, 1)
	require.NoError(t, err)

	report, err := svc.Daily(ctx, today)
	require.NoError(t, err)
	require.Equal(t, 1000.0, report.OpeningBalance)
	require.Equal(t, 800.0, report.Revenue)
	require.Equal(t, 300.0, report.SpendingsTotal)
	require.Equal(t, 1500.0, report.ClosingBalance)
	require.Equal(t, 2, report.BillCount)
	require.Len(t, report.Spendings, 1)
}

func TestOpeningBalanceCarriesForward(t *testing.T) {
	svc, repo, bills, _ := newTestService(t)
	ctx := context.Background()
	today := time.Now()
	yesterday := today.AddDate(0, 0, -1)

	require.NoError(t, repo.UpsertOpeningBalance(ctx, shared.DayStart(yesterday), 500))
	bills.bills = []billing.Bill{settledBill(700, yesterday)}
	_, err := svc.AddSpending(ctx, CreateSpendingRequest{
		Date: shared.FormatDate(yesterday), Category: "ice", Amount: 200,
	}, 1)
	require.NoError(t, err)

	// No manual entry today: opening = yesterday's closing 500+700-200.
	opening, err := svc.OpeningBalanceFor(ctx, today)
	require.NoError(t, err)
	require.Equal(t, 1000.0, opening.Amount)
	require.False(t, opening.Manual)

	// A manual entry wins over the carried balance.
	_, err = svc.SetOpeningBalance(ctx, SetOpeningBalanceRequest{Date: shared.FormatDate(today), Amount: 750})
	require.NoError(t, err)
	opening, err = svc.OpeningBalanceFor(ctx, today)
	require.NoError(t, err)
	require.Equal(t, 750.0, opening.Amount)
	require.True(t, opening.Manual)
}

func TestSpendingValidation(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddSpending(ctx, CreateSpendingRequest{Date: "2026-08-31", Category: "x", Amount: -5}, 1)
	require.ErrorIs(t, err, ErrInvalidAmount)

	_, err = svc.AddSpending(ctx, CreateSpendingRequest{Date: "31/08/2026", Category: "x", Amount: 10}, 1)
	require.ErrorIs(t, err, shared.ErrInvalidDate)

	err = svc.DeleteSpending(ctx, 42)
	require.ErrorIs(t, err, ErrSpendingNotFound)
}

func TestRangeSummary(t *testing.T) {
	svc, _, bills, _ := newTestService(t)
	ctx := context.Background()
	today := time.Now()

	bills.bills = []billing.Bill{
		settledBill(100, today),
		settledBill(250, today.AddDate(0, 0, -1)),
		settledBill(999, today.AddDate(0, 0, -10)),
	}
	summary, err := svc.Summary(ctx, shared.NewDateRange(today.AddDate(0, 0, -2), today))
	require.NoError(t, err)
	require.Equal(t, 350.0, summary.Revenue)
	require.Equal(t, 2, summary.BillCount)
}

func TestEmailReportEnqueuesTask(t *testing.T) {
	svc, _, bills, queue := newTestService(t)
	ctx := context.Background()
	today := time.Now()
	bills.bills = []billing.Bill{settledBill(1240.50, today)}

	require.NoError(t, svc.EmailReport(ctx, today, "owner@example.com"))
	require.Len(t, queue.tasks, 1)
	require.Equal(t, jobs.TaskTypeReportEmail, queue.tasks[0].Type())

	var payload jobs.ReportEmailPayload
	require.NoError(t, json.Unmarshal(queue.tasks[0].Payload(), &payload))
	require.Equal(t, "owner@example.com", payload.To)
	require.Contains(t, payload.Subject, shared.FormatDate(today))
	require.Contains(t, payload.Body, "Rs. 1,240.50")
}
