package billing

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tavern-pos/tavern-pos/internal/catalog"
	"github.com/tavern-pos/tavern-pos/internal/ledger"
	"github.com/tavern-pos/tavern-pos/internal/shared"
)

type memoryRepo struct {
	nextBillID int64
	nextLineID int64
	bills      map[int64]*Bill
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{bills: map[int64]*Bill{}}
}

func (m *memoryRepo) Insert(_ context.Context, b Bill) (int64, error) {
	m.nextBillID++
	b.ID = m.nextBillID
	m.bills[b.ID] = &b
	return b.ID, nil
}

func (m *memoryRepo) Get(_ context.Context, id int64) (Bill, error) {
	b, ok := m.bills[id]
	if !ok {
		return Bill{}, ErrNotFound
	}
	out := *b
	out.Lines = append([]Line(nil), b.Lines...)
	return out, nil
}

func (m *memoryRepo) InsertLine(_ context.Context, l Line) (int64, error) {
	b, ok := m.bills[l.BillID]
	if !ok {
		return 0, ErrNotFound
	}
	m.nextLineID++
	l.ID = m.nextLineID
	b.Lines = append(b.Lines, l)
	return l.ID, nil
}

func (m *memoryRepo) VoidLine(_ context.Context, billID, lineID int64) error {
	b, ok := m.bills[billID]
	if !ok {
		return ErrNotFound
	}
	for i := range b.Lines {
		if b.Lines[i].ID == lineID && !b.Lines[i].Voided {
			b.Lines[i].Voided = true
			return nil
		}
	}
	return ErrLineNotFound
}

func (m *memoryRepo) UpdateTotals(_ context.Context, billID int64, subtotal, total float64) error {
	b, ok := m.bills[billID]
	if !ok {
		return ErrNotFound
	}
	b.Subtotal, b.Total = subtotal, total
	return nil
}

func (m *memoryRepo) SetStatus(_ context.Context, billID int64, status BillStatus, mode PaymentMode, settledAt *time.Time) error {
	b, ok := m.bills[billID]
	if !ok {
		return ErrNotFound
	}
	b.Status = status
	b.PaymentMode = mode
	b.SettledAt = settledAt
	return nil
}

func (m *memoryRepo) ListByStatus(_ context.Context, status BillStatus) ([]Bill, error) {
	var out []Bill
	for _, b := range m.bills {
		if b.Status == status {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (m *memoryRepo) ListSettledByRange(_ context.Context, from, to time.Time) ([]Bill, error) {
	var out []Bill
	for _, b := range m.bills {
		if b.Status == BillStatusSettled && b.SettledAt != nil &&
			!b.SettledAt.Before(from) && !b.SettledAt.After(to) {
			out = append(out, *b)
		}
	}
	return out, nil
}

type fakeCounter struct {
	counter map[int64]int
}

func (f *fakeCounter) ConsumeCounter(_ context.Context, productID int64, quantity int, _, _ string, _ int64) (ledger.StockLevel, error) {
	if f.counter[productID] < quantity {
		return ledger.StockLevel{}, fmt.Errorf("%w: product %d", ledger.ErrInsufficientStock, productID)
	}
	f.counter[productID] -= quantity
	return ledger.StockLevel{ProductID: productID, Counter: f.counter[productID]}, nil
}

func (f *fakeCounter) ReturnCounter(_ context.Context, productID int64, quantity int, _, _ string, _ int64) (ledger.StockLevel, error) {
	f.counter[productID] += quantity
	return ledger.StockLevel{ProductID: productID, Counter: f.counter[productID]}, nil
}

type staticCatalog struct{}

func (staticCatalog) Get(_ context.Context, id int64) (catalog.ProductView, error) {
	switch id {
	case 1:
		return catalog.ProductView{Product: catalog.Product{ID: 1, Name: "Old Monk", Variant: "60ml", Price: 120}}, nil
	case 2:
		return catalog.ProductView{Product: catalog.Product{ID: 2, Name: "Kingfisher", Price: 180}}, nil
	}
	return catalog.ProductView{}, catalog.ErrNotFound
}

func newTestService(t *testing.T) (*Service, *fakeCounter, *memoryRepo) {
	t.Helper()
	led := &fakeCounter{counter: map[int64]int{1: 10, 2: 4}}
	repo := newMemoryRepo()
	svc := NewService(slog.Default(), repo, led, staticCatalog{}, nil)
	return svc, led, repo
}

func TestOpenValidation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Open(ctx, OpenBillRequest{Type: "DRIVE_THRU"}, 1)
	require.ErrorIs(t, err, ErrInvalidType)

	_, err = svc.Open(ctx, OpenBillRequest{Type: BillTypeTable}, 1)
	require.ErrorIs(t, err, ErrTableRequired)

	bill, err := svc.Open(ctx, OpenBillRequest{Type: BillTypeParcel, TableNo: "T4"}, 1)
	require.NoError(t, err)
	require.Equal(t, BillStatusOpen, bill.Status)
	require.Empty(t, bill.TableNo)
	require.NotEmpty(t, bill.Number)
}

func TestAddLineConsumesCounterStock(t *testing.T) {
	svc, led, _ := newTestService(t)
	ctx := context.Background()

	bill, err := svc.Open(ctx, OpenBillRequest{Type: BillTypeTable, TableNo: "T1"}, 1)
	require.NoError(t, err)

	bill, err = svc.AddLine(ctx, bill.ID, AddLineRequest{ProductID: 1, Quantity: 2}, 1)
	require.NoError(t, err)
	require.Len(t, bill.Lines, 1)
	require.Equal(t, 240.0, bill.Total)
	require.Equal(t, 8, led.counter[1])

	// Not enough counter stock: bill and stock stay untouched.
	_, err = svc.AddLine(ctx, bill.ID, AddLineRequest{ProductID: 2, Quantity: 5}, 1)
	require.ErrorIs(t, err, ledger.ErrInsufficientStock)
	require.Equal(t, 4, led.counter[2])

	got, err := svc.Get(ctx, bill.ID)
	require.NoError(t, err)
	require.Len(t, got.Lines, 1)
	require.Equal(t, 240.0, got.Total)
}

func TestVoidLineReturnsStock(t *testing.T) {
	svc, led, _ := newTestService(t)
	ctx := context.Background()

	bill, err := svc.Open(ctx, OpenBillRequest{Type: BillTypeTable, TableNo: "T1"}, 1)
	require.NoError(t, err)
	bill, err = svc.AddLine(ctx, bill.ID, AddLineRequest{ProductID: 1, Quantity: 3}, 1)
	require.NoError(t, err)
	bill, err = svc.AddLine(ctx, bill.ID, AddLineRequest{ProductID: 2, Quantity: 1}, 1)
	require.NoError(t, err)
	require.Equal(t, 540.0, bill.Total)

	bill, err = svc.VoidLine(ctx, bill.ID, bill.Lines[0].ID, 1)
	require.NoError(t, err)
	require.Equal(t, 180.0, bill.Total)
	require.Equal(t, 10, led.counter[1])
	require.True(t, bill.Lines[0].Voided)

	_, err = svc.VoidLine(ctx, bill.ID, 999, 1)
	require.ErrorIs(t, err, ErrLineNotFound)
}

func TestSettleLifecycle(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	bill, err := svc.Open(ctx, OpenBillRequest{Type: BillTypeParcel}, 1)
	require.NoError(t, err)

	_, err = svc.Settle(ctx, bill.ID, SettleBillRequest{PaymentMode: PaymentCash}, 1)
	require.ErrorIs(t, err, ErrEmptyBill)

	_, err = svc.AddLine(ctx, bill.ID, AddLineRequest{ProductID: 2, Quantity: 2}, 1)
	require.NoError(t, err)

	_, err = svc.Settle(ctx, bill.ID, SettleBillRequest{PaymentMode: "CHEQUE"}, 1)
	require.ErrorIs(t, err, ErrInvalidPayment)

	settled, err := svc.Settle(ctx, bill.ID, SettleBillRequest{PaymentMode: PaymentUPI}, 1)
	require.NoError(t, err)
	require.Equal(t, BillStatusSettled, settled.Status)
	require.Equal(t, PaymentUPI, settled.PaymentMode)
	require.NotNil(t, settled.SettledAt)

	// Settled bills are frozen.
	_, err = svc.AddLine(ctx, bill.ID, AddLineRequest{ProductID: 1, Quantity: 1}, 1)
	require.ErrorIs(t, err, ErrBillNotOpen)
	_, err = svc.Settle(ctx, bill.ID, SettleBillRequest{PaymentMode: PaymentCash}, 1)
	require.ErrorIs(t, err, ErrBillNotOpen)

	today := shared.SingleDay(time.Now())
	list, err := svc.SettledBetween(ctx, today)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, 360.0, list[0].Total)
}

func TestCancelReturnsAllStock(t *testing.T) {
	svc, led, _ := newTestService(t)
	ctx := context.Background()

	bill, err := svc.Open(ctx, OpenBillRequest{Type: BillTypeTable, TableNo: "T2"}, 1)
	require.NoError(t, err)
	bill, err = svc.AddLine(ctx, bill.ID, AddLineRequest{ProductID: 1, Quantity: 4}, 1)
	require.NoError(t, err)
	bill, err = svc.AddLine(ctx, bill.ID, AddLineRequest{ProductID: 2, Quantity: 2}, 1)
	require.NoError(t, err)
	require.Equal(t, 6, led.counter[1])
	require.Equal(t, 2, led.counter[2])

	cancelled, err := svc.Cancel(ctx, bill.ID, 1)
	require.NoError(t, err)
	require.Equal(t, BillStatusCancelled, cancelled.Status)
	require.Equal(t, 10, led.counter[1])
	require.Equal(t, 4, led.counter[2])

	pending, err := svc.Pending(ctx)
	require.NoError(t, err)
	require.Empty(t, pending)
}
